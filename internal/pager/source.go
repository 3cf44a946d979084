package pager

import (
	"context"
	"sync"

	"github.com/ziadkadry99/cgblog/internal/content"
)

// Source yields consecutive slices of an ordered index along with the
// index length.
type Source interface {
	Slice(ctx context.Context, offset, limit int) ([]content.Item, int, error)
}

// SliceSource is an index already held in memory.
type SliceSource []content.Item

func (s SliceSource) Slice(_ context.Context, offset, limit int) ([]content.Item, int, error) {
	return window(s, offset, limit), len(s), nil
}

func window(items []content.Item, offset, limit int) []content.Item {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]content.Item(nil), items[offset:end]...)
}

// IndexFetcher loads the content index.
type IndexFetcher interface {
	FetchIndex(ctx context.Context) ([]content.Item, error)
}

// IndexSource fetches the index once and pages over it in memory. A failed
// fetch is retried on the next call.
type IndexSource struct {
	fetcher IndexFetcher

	mu    sync.Mutex
	items []content.Item
	ready bool
}

// NewIndexSource creates a source backed by f.
func NewIndexSource(f IndexFetcher) *IndexSource {
	return &IndexSource{fetcher: f}
}

// Items returns the whole index, fetching it on first use.
func (s *IndexSource) Items(ctx context.Context) ([]content.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return s.items, nil
	}
	items, err := s.fetcher.FetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	s.items = items
	s.ready = true
	return items, nil
}

func (s *IndexSource) Slice(ctx context.Context, offset, limit int) ([]content.Item, int, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, 0, err
	}
	return window(items, offset, limit), len(items), nil
}
