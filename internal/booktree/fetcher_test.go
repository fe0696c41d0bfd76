package booktree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/bookbind/internal/wordpress"
)

// fakeSource serves fixed collections and can fail the first N calls of
// each tier.
type fakeSource struct {
	chapters, topics, sections []wordpress.Item

	chapterFails, topicFails, sectionFails int
	chapterCalls, topicCalls, sectionCalls int
}

var errDown = errors.New("origin down")

func (f *fakeSource) Chapters(ctx context.Context) ([]wordpress.Item, error) {
	f.chapterCalls++
	if f.chapterCalls <= f.chapterFails {
		return nil, errDown
	}
	return f.chapters, nil
}

func (f *fakeSource) Topics(ctx context.Context) ([]wordpress.Item, error) {
	f.topicCalls++
	if f.topicCalls <= f.topicFails {
		return nil, errDown
	}
	return f.topics, nil
}

func (f *fakeSource) Sections(ctx context.Context) ([]wordpress.Item, error) {
	f.sectionCalls++
	if f.sectionCalls <= f.sectionFails {
		return nil, errDown
	}
	return f.sections, nil
}

func newTestFetcher(src Source) *Fetcher {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFetcher(src, 3, time.Millisecond, log)
}

func TestFetchTree_OrdersSiblingsByID(t *testing.T) {
	src := &fakeSource{
		chapters: []wordpress.Item{
			{ID: 10, Title: "Ten", Parent: 1},
			{ID: 9, Title: "Nine", Parent: 1},
			{ID: 8, Title: "Other book", Parent: 2},
		},
	}
	tree, err := newTestFetcher(src).FetchTree(context.Background(), 1, "Field Notes", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Field Notes" {
		t.Errorf("expected title on the constructed tree, got %q", tree.Title)
	}
	if len(tree.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(tree.Chapters))
	}
	if tree.Chapters[0].ID != 9 || tree.Chapters[1].ID != 10 {
		t.Errorf("expected chapter order [9 10], got [%d %d]", tree.Chapters[0].ID, tree.Chapters[1].ID)
	}
}

func TestFetchTree_DropsOrphans(t *testing.T) {
	src := &fakeSource{
		chapters: []wordpress.Item{{ID: 5, Title: "Ch", Parent: 1}},
		topics: []wordpress.Item{
			{ID: 20, Title: "Mine", Parent: 5},
			{ID: 21, Title: "Orphan", Parent: 999},
		},
		sections: []wordpress.Item{
			{ID: 30, Title: "Mine", Parent: 20},
			{ID: 31, Title: "Orphan", Parent: 888},
		},
	}
	tree, err := newTestFetcher(src).FetchTree(context.Background(), 1, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(tree.Chapters[0].Topics); got != 1 {
		t.Fatalf("expected 1 topic, got %d", got)
	}
	topic := tree.Chapters[0].Topics[0]
	if topic.ID != 20 {
		t.Errorf("expected topic 20, got %d", topic.ID)
	}
	if len(topic.Sections) != 1 || topic.Sections[0].ID != 30 {
		t.Errorf("expected only section 30, got %+v", topic.Sections)
	}

	// Every surviving child points at its container.
	for _, ch := range tree.Chapters {
		if ch.Parent != tree.BookID {
			t.Errorf("chapter %d has parent %d, want %d", ch.ID, ch.Parent, tree.BookID)
		}
		for _, tp := range ch.Topics {
			if tp.Parent != ch.ID {
				t.Errorf("topic %d has parent %d, want %d", tp.ID, tp.Parent, ch.ID)
			}
			for _, sec := range tp.Sections {
				if sec.Parent != tp.ID {
					t.Errorf("section %d has parent %d, want %d", sec.ID, sec.Parent, tp.ID)
				}
			}
		}
	}
}

func TestFetchTree_EmptyChaptersIsValid(t *testing.T) {
	src := &fakeSource{
		chapters: []wordpress.Item{{ID: 8, Title: "Elsewhere", Parent: 2}},
	}
	tree, err := newTestFetcher(src).FetchTree(context.Background(), 1, "", nil)
	if err != nil {
		t.Fatalf("expected no error for empty tree, got %v", err)
	}
	if len(tree.Chapters) != 0 {
		t.Errorf("expected no chapters, got %d", len(tree.Chapters))
	}
	if src.topicCalls != 0 || src.sectionCalls != 0 {
		t.Errorf("lower tiers must not be fetched for an empty tree: topics=%d sections=%d",
			src.topicCalls, src.sectionCalls)
	}
}

func TestFetchTree_SectionFetchIsLazy(t *testing.T) {
	src := &fakeSource{
		chapters: []wordpress.Item{{ID: 5, Title: "Ch", Parent: 1}},
		// No topics at all: the section endpoint must never be touched.
	}
	if _, err := newTestFetcher(src).FetchTree(context.Background(), 1, "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.sectionCalls != 0 {
		t.Errorf("expected 0 section fetches, got %d", src.sectionCalls)
	}
}

func TestFetchTree_RetriesThenSucceeds(t *testing.T) {
	src := &fakeSource{
		chapters:     []wordpress.Item{{ID: 5, Title: "Ch", Parent: 1}},
		chapterFails: 2, // fails twice, third attempt succeeds
	}
	tree, err := newTestFetcher(src).FetchTree(context.Background(), 1, "", nil)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(tree.Chapters) != 1 {
		t.Errorf("expected 1 chapter, got %d", len(tree.Chapters))
	}
	if src.chapterCalls != 3 {
		t.Errorf("expected 3 chapter attempts, got %d", src.chapterCalls)
	}
}

func TestFetchTree_ExhaustsRetries(t *testing.T) {
	src := &fakeSource{
		chapters:     []wordpress.Item{{ID: 5, Title: "Ch", Parent: 1}},
		chapterFails: 100,
	}
	_, err := newTestFetcher(src).FetchTree(context.Background(), 1, "", nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if src.chapterCalls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", src.chapterCalls)
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fe.Tier != TierChapter || fe.Attempts != 3 {
		t.Errorf("unexpected FetchError: %+v", fe)
	}
	if !errors.Is(err, errDown) {
		t.Error("expected FetchError to wrap the underlying error")
	}
}

func TestFetchTree_TopicFailurePropagates(t *testing.T) {
	src := &fakeSource{
		chapters:   []wordpress.Item{{ID: 5, Title: "Ch", Parent: 1}},
		topicFails: 100,
	}
	_, err := newTestFetcher(src).FetchTree(context.Background(), 1, "", nil)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Tier != TierTopic {
		t.Fatalf("expected topic FetchError, got %v", err)
	}
}

func TestFetchTree_PlaceholdersForMissingFields(t *testing.T) {
	src := &fakeSource{
		chapters: []wordpress.Item{{ID: 5, Parent: 1}}, // no title, no content
	}
	tree, err := newTestFetcher(src).FetchTree(context.Background(), 1, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ch := tree.Chapters[0]
	if ch.Title != "Untitled chapter 5" {
		t.Errorf("unexpected title placeholder %q", ch.Title)
	}
	if ch.Content != "No content available for chapter 5." {
		t.Errorf("unexpected content placeholder %q", ch.Content)
	}
}

func TestFetchTree_ProgressSequence(t *testing.T) {
	src := &fakeSource{
		chapters: []wordpress.Item{
			{ID: 1, Title: "A", Parent: 1},
			{ID: 2, Title: "B", Parent: 1},
		},
		topics:   []wordpress.Item{{ID: 10, Title: "T", Parent: 1}},
		sections: []wordpress.Item{{ID: 100, Title: "S", Parent: 10}},
	}

	var got []string
	_, err := newTestFetcher(src).FetchTree(context.Background(), 1, "", func(phase, message string) {
		got = append(got, fmt.Sprintf("%s: %s", phase, message))
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"chapters: fetching chapters",
		"topics: collecting topics for chapter 1/2",
		"sections: collecting sections for topic 1/1 of chapter 1/2",
		"topics: collecting topics for chapter 2/2",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d progress updates, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("progress[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSummary(t *testing.T) {
	tree := &Tree{
		BookID: 1,
		Chapters: []Chapter{
			{Item: Item{ID: 1}, Topics: []Topic{
				{Item: Item{ID: 10}, Sections: []Item{{ID: 100}, {ID: 101}}},
				{Item: Item{ID: 11}},
			}},
			{Item: Item{ID: 2}},
		},
	}
	sum := tree.Summary()
	if sum.Chapters != 2 || sum.Topics != 2 || sum.Sections != 2 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestFetchError_Message(t *testing.T) {
	fe := &FetchError{Tier: TierSection, Attempts: 3, Err: errDown}
	if !strings.Contains(fe.Error(), "section") || !strings.Contains(fe.Error(), "3") {
		t.Errorf("unexpected message %q", fe.Error())
	}
}
