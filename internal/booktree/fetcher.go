package booktree

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/bookbind/internal/wordpress"
)

// Source provides the three tiered collection endpoints. Satisfied by
// *wordpress.Client; tests substitute fakes.
type Source interface {
	Chapters(ctx context.Context) ([]wordpress.Item, error)
	Topics(ctx context.Context) ([]wordpress.Item, error)
	Sections(ctx context.Context) ([]wordpress.Item, error)
}

// ProgressFunc receives phase/message pairs as the fetch advances. It is
// invoked synchronously; each update replaces the previous one.
type ProgressFunc func(phase, message string)

// Progress phases.
const (
	PhaseChapters = "chapters"
	PhaseTopics   = "topics"
	PhaseSections = "sections"
)

// FetchError reports a collection fetch that exhausted its retries.
type FetchError struct {
	Tier     string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s collection: gave up after %d attempts: %v", e.Tier, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher assembles a Tree by walking the three child tiers. Each
// collection is fetched once per build and filtered in memory for every
// parent, which yields the same tree as refetching per parent with far
// fewer requests.
type Fetcher struct {
	src         Source
	maxAttempts int
	backoff     time.Duration
	log         *slog.Logger
}

func NewFetcher(src Source, maxAttempts int, backoff time.Duration, log *slog.Logger) *Fetcher {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &Fetcher{src: src, maxAttempts: maxAttempts, backoff: backoff, log: log}
}

// FetchTree builds the tree for one book. The title comes from the
// catalog; an empty one gets a placeholder at render time. A book with
// zero matching chapters is a valid empty tree, not an error; only a
// collection fetch that exhausts its retries fails the build. Children
// whose parent reference matches no surviving parent are dropped
// silently.
func (f *Fetcher) FetchTree(ctx context.Context, bookID int, title string, progress ProgressFunc) (*Tree, error) {
	report := func(phase, message string) {
		if progress != nil {
			progress(phase, message)
		}
	}

	report(PhaseChapters, "fetching chapters")
	chapterItems, err := f.fetchCollection(ctx, TierChapter, f.src.Chapters)
	if err != nil {
		return nil, err
	}

	tree := &Tree{BookID: bookID, Title: title}
	chapters := childrenOf(chapterItems, bookID, TierChapter)
	if len(chapters) == 0 {
		return tree, nil
	}

	topicItems, err := f.fetchCollection(ctx, TierTopic, f.src.Topics)
	if err != nil {
		return nil, err
	}

	// Sections are fetched lazily so a book whose chapters have no
	// topics never touches the section endpoint.
	var sectionItems []wordpress.Item
	sectionsFetched := false

	for i, chItem := range chapters {
		report(PhaseTopics, fmt.Sprintf("collecting topics for chapter %d/%d", i+1, len(chapters)))
		chapter := Chapter{Item: chItem}

		topics := childrenOf(topicItems, chItem.ID, TierTopic)
		for j, tpItem := range topics {
			report(PhaseSections, fmt.Sprintf("collecting sections for topic %d/%d of chapter %d/%d",
				j+1, len(topics), i+1, len(chapters)))

			if !sectionsFetched {
				sectionItems, err = f.fetchCollection(ctx, TierSection, f.src.Sections)
				if err != nil {
					return nil, err
				}
				sectionsFetched = true
			}

			topic := Topic{Item: tpItem}
			topic.Sections = childrenOf(sectionItems, tpItem.ID, TierSection)
			chapter.Topics = append(chapter.Topics, topic)
		}

		tree.Chapters = append(tree.Chapters, chapter)
	}

	return tree, nil
}

// fetchCollection wraps one collection fetch in a bounded retry with
// linear backoff: attempt n waits n*backoff before the next try.
func (f *Fetcher) fetchCollection(ctx context.Context, tier string, fetch func(context.Context) ([]wordpress.Item, error)) ([]wordpress.Item, error) {
	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		items, err := fetch(ctx)
		if err == nil {
			return items, nil
		}
		lastErr = err
		f.log.Warn("collection fetch failed", "tier", tier, "attempt", attempt, "error", err)
		if attempt == f.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * f.backoff):
		}
	}
	return nil, &FetchError{Tier: tier, Attempts: f.maxAttempts, Err: lastErr}
}

// childrenOf filters a collection to the children of one parent, sorted
// ascending by id regardless of source order, with placeholders filled
// in for missing titles and content.
func childrenOf(items []wordpress.Item, parent int, tier string) []Item {
	var out []Item
	for _, it := range items {
		if it.Parent != parent {
			continue
		}
		out = append(out, newItem(it, tier))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func newItem(it wordpress.Item, tier string) Item {
	title := strings.TrimSpace(it.Title)
	if title == "" {
		title = fmt.Sprintf("Untitled %s %d", tier, it.ID)
	}
	content := strings.TrimSpace(it.Content)
	if content == "" {
		content = fmt.Sprintf("No content available for %s %d.", tier, it.ID)
	}
	return Item{ID: it.ID, Title: title, Content: content, Parent: it.Parent}
}
