package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/bookbind/internal/wordpress"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Book is one selectable entry in the catalog.
type Book struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

const cacheKey = "catalog"

// Loader fetches and orders the book catalog. The fetch is a single
// attempt: unlike the tiered content fetches, the catalog load does
// not retry.
type Loader struct {
	wp    *wordpress.Client
	coll  *collate.Collator
	cache *cache.Cache
	log   *slog.Logger
}

func NewLoader(wp *wordpress.Client, locale string, ttl time.Duration, log *slog.Logger) *Loader {
	tag, err := language.Parse(locale)
	if err != nil {
		log.Warn("unrecognized catalog locale, using neutral collation", "locale", locale)
		tag = language.Und
	}
	return &Loader{
		wp:    wp,
		coll:  collate.New(tag),
		cache: cache.New(ttl, 2*ttl),
		log:   log,
	}
}

// Load returns the catalog, sorted by title under the configured locale.
// Entries without a positive id or a non-empty title are dropped. An
// empty catalog is not an error; callers decide how to present it.
func (l *Loader) Load(ctx context.Context) ([]Book, error) {
	if v, ok := l.cache.Get(cacheKey); ok {
		return v.([]Book), nil
	}

	items, err := l.wp.Books(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	books := make([]Book, 0, len(items))
	for _, it := range items {
		if it.ID <= 0 || strings.TrimSpace(it.Title) == "" {
			continue
		}
		books = append(books, Book{ID: it.ID, Title: strings.TrimSpace(it.Title)})
	}

	sort.SliceStable(books, func(i, j int) bool {
		return l.coll.CompareString(books[i].Title, books[j].Title) < 0
	})

	if len(books) == 0 {
		l.log.Warn("catalog is empty")
	}
	l.cache.Set(cacheKey, books, cache.DefaultExpiration)
	return books, nil
}

// Find resolves a book by id from the loaded catalog.
func (l *Loader) Find(ctx context.Context, id int) (Book, bool, error) {
	books, err := l.Load(ctx)
	if err != nil {
		return Book{}, false, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, true, nil
		}
	}
	return Book{}, false, nil
}
