package booktree

// Tier labels, used in placeholder text and progress messages.
const (
	TierChapter = "chapter"
	TierTopic   = "topic"
	TierSection = "section"
)

// Item is a single node at any tier of the hierarchy.
type Item struct {
	ID      int
	Title   string
	Content string
	Parent  int
}

// Tree is a fully assembled book. It is built fresh per generation,
// consumed once by a renderer and discarded; nothing mutates it after
// FetchTree returns.
type Tree struct {
	BookID   int
	Title    string
	Chapters []Chapter
}

type Chapter struct {
	Item
	Topics []Topic
}

type Topic struct {
	Item
	Sections []Item
}

// Summary holds per-tier node counts.
type Summary struct {
	Chapters int `json:"chapters"`
	Topics   int `json:"topics"`
	Sections int `json:"sections"`
}

// Summary counts the nodes at each tier by traversal.
func (t *Tree) Summary() Summary {
	var s Summary
	s.Chapters = len(t.Chapters)
	for _, ch := range t.Chapters {
		s.Topics += len(ch.Topics)
		for _, tp := range ch.Topics {
			s.Sections += len(tp.Sections)
		}
	}
	return s
}
