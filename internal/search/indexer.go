// Package search filters the content index by title and description, and
// optionally by article body.
package search

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/cgblog/internal/content"
)

const (
	// DefaultSnippetRadius is the context kept on each side of a body match.
	DefaultSnippetRadius = 50
	// MinContentQuery is the shortest query, in runes, that searches bodies.
	MinContentQuery = 3
)

// Corpus is where the indexer reads articles from.
type Corpus interface {
	FetchIndex(ctx context.Context) ([]content.Item, error)
	FetchArticleContent(ctx context.Context, name string) (string, error)
}

// Result is one matching index entry. Snippet is set when the match was
// found in the article body.
type Result struct {
	Item    content.Item `json:"item"`
	Snippet string       `json:"snippet,omitempty"`
}

// Indexer searches a corpus. The index is fetched once per Indexer.
type Indexer struct {
	corpus Corpus
	radius int
	log    logrus.FieldLogger

	mu     sync.Mutex
	items  []content.Item
	loaded bool
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithSnippetRadius sets how many runes of context surround a body match.
func WithSnippetRadius(n int) IndexerOption {
	return func(ix *Indexer) { ix.radius = n }
}

// WithIndexerLogger sets the logger used for skipped articles.
func WithIndexerLogger(l logrus.FieldLogger) IndexerOption {
	return func(ix *Indexer) { ix.log = l }
}

// NewIndexer creates an indexer over corpus.
func NewIndexer(corpus Corpus, opts ...IndexerOption) *Indexer {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	ix := &Indexer{corpus: corpus, radius: DefaultSnippetRadius, log: quiet}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Index returns the corpus index, fetching it on first use. A failed fetch
// is retried on the next call.
func (ix *Indexer) Index(ctx context.Context) ([]content.Item, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.loaded {
		return ix.items, nil
	}
	items, err := ix.corpus.FetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	ix.items = items
	ix.loaded = true
	return items, nil
}

// Search returns the index entries matching query, in index order. With
// includeContent and a query of at least MinContentQuery runes, entries that
// miss on title and description are matched against their bodies. Bodies
// that fail to load are skipped.
func (ix *Indexer) Search(ctx context.Context, query string, includeContent bool) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	items, err := ix.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading search index: %w", err)
	}

	q := strings.ToLower(query)
	deep := includeContent && utf8.RuneCountInString(query) >= MinContentQuery

	var results []Result
	for _, it := range items {
		if matchesMetadata(it, q) {
			results = append(results, Result{Item: it})
			continue
		}
		if !deep {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := ix.corpus.FetchArticleContent(ctx, it.Name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			ix.log.WithError(err).WithField("name", it.Name).Warn("skipping article in content search")
			continue
		}
		if strings.Contains(strings.ToLower(body), q) {
			results = append(results, Result{Item: it, Snippet: Snippet(body, query, ix.radius)})
		}
	}
	return results, nil
}

// FilterBaseline keeps the items whose title or description contains query,
// ignoring case. A blank query matches nothing.
func FilterBaseline(items []content.Item, query string) []content.Item {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	q := strings.ToLower(query)
	var out []content.Item
	for _, it := range items {
		if matchesMetadata(it, q) {
			out = append(out, it)
		}
	}
	return out
}

func matchesMetadata(it content.Item, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(it.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(it.Description), lowerQuery)
}

// Snippet returns the text around the first case-insensitive occurrence of
// query in body, with radius runes on each side. "..." marks a window that
// does not reach the start or end of body. It returns "" when query does
// not occur.
func Snippet(body, query string, radius int) string {
	if query == "" {
		return ""
	}
	hay := []rune(body)
	needle := []rune(query)
	at := indexFold(hay, needle)
	if at < 0 {
		return ""
	}
	start := max(0, at-radius)
	end := min(len(hay), at+len(needle)+radius)

	s := string(hay[start:end])
	if start > 0 {
		s = "..." + s
	}
	if end < len(hay) {
		s += "..."
	}
	return s
}

// indexFold finds needle in hay comparing runes case-insensitively, so the
// returned offset indexes the original runes.
func indexFold(hay, needle []rune) int {
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j, r := range needle {
			if unicode.ToLower(hay[i+j]) != unicode.ToLower(r) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
