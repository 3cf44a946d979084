// Package pager lists the content index incrementally: one page on start,
// one more each time the end-of-list sentinel becomes visible.
package pager

import (
	"context"
	"fmt"
	"sync"

	"github.com/ziadkadry99/cgblog/internal/content"
)

// DefaultPageSize is the number of items per page.
const DefaultPageSize = 5

// Phase is the state of a Pager.
type Phase int

const (
	Idle Phase = iota
	LoadingMore
	Exhausted
)

func (p Phase) String() string {
	switch p {
	case LoadingMore:
		return "loading"
	case Exhausted:
		return "exhausted"
	default:
		return "idle"
	}
}

// State is the serializable cursor of a Pager. Items is always a prefix of
// the index.
type State struct {
	Items       []content.Item `json:"items"`
	Page        int            `json:"page"`
	HasMore     bool           `json:"hasMore"`
	ScrollRatio float64        `json:"scrollRatio"`
}

// Pager holds the displayed prefix of an index.
type Pager struct {
	mu    sync.Mutex
	src   Source
	size  int
	state State
	phase Phase

	store Store
	key   string
}

// New loads the first page from src. An error means the index itself could
// not be read.
func New(ctx context.Context, src Source, pageSize int) (*Pager, error) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	items, total, err := src.Slice(ctx, 0, pageSize)
	if err != nil {
		return nil, fmt.Errorf("loading first page: %w", err)
	}
	p := &Pager{src: src, size: pageSize}
	p.state = State{Items: items, Page: 1}
	p.settle(len(items), total)
	return p, nil
}

// Restore hydrates a pager from store when key has saved state that still
// matches the head of src, and loads the first page otherwise. The returned
// pager saves back to store.
func Restore(ctx context.Context, src Source, pageSize int, store Store, key string) (*Pager, error) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if store != nil {
		saved, ok, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("reading pager state: %w", err)
		}
		if ok {
			items, total, err := src.Slice(ctx, 0, len(saved.Items))
			if err != nil {
				return nil, fmt.Errorf("loading first page: %w", err)
			}
			if current(saved, items, total) {
				saved.Items = items
				p := &Pager{src: src, size: pageSize, state: saved, store: store, key: key}
				if saved.HasMore {
					p.phase = Idle
				} else {
					p.phase = Exhausted
				}
				return p, nil
			}
		}
	}

	p, err := New(ctx, src, pageSize)
	if err != nil {
		return nil, err
	}
	p.store = store
	p.key = key
	return p, nil
}

// current reports whether saved was taken over the index whose head is
// items and whose length is total.
func current(saved State, items []content.Item, total int) bool {
	if len(items) != len(saved.Items) {
		return false
	}
	for i := range items {
		if items[i].Name != saved.Items[i].Name {
			return false
		}
	}
	return saved.HasMore == (len(items) < total)
}

// settle updates HasMore and the phase after a slice of n items arrived.
// Caller holds mu or owns p exclusively.
func (p *Pager) settle(n, total int) {
	if n < p.size || len(p.state.Items) >= total {
		p.state.HasMore = false
		p.phase = Exhausted
		return
	}
	p.state.HasMore = true
	p.phase = Idle
}

// Trigger reports a sentinel visibility change. A visible sentinel loads the
// next page unless a load is running or the index is exhausted. The first
// result tells whether a page was requested.
func (p *Pager) Trigger(ctx context.Context, visible bool) (bool, error) {
	if !visible {
		return false, nil
	}
	return p.loadMore(ctx)
}

// LoadMore appends the next page. It is a no-op while loading or once
// exhausted. On failure the pager stays idle and can be triggered again.
func (p *Pager) LoadMore(ctx context.Context) error {
	_, err := p.loadMore(ctx)
	return err
}

func (p *Pager) loadMore(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.phase != Idle || !p.state.HasMore {
		p.mu.Unlock()
		return false, nil
	}
	p.phase = LoadingMore
	offset := len(p.state.Items)
	p.mu.Unlock()

	items, total, err := p.src.Slice(ctx, offset, p.size)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.phase = Idle
		return true, fmt.Errorf("loading page %d: %w", p.state.Page+1, err)
	}
	p.state.Items = append(p.state.Items, items...)
	p.state.Page++
	p.settle(len(items), total)
	return true, nil
}

// SetScrollRatio records the scroll position as a fraction of the page
// height, clamped to [0, 1].
func (p *Pager) SetScrollRatio(r float64) {
	switch {
	case r < 0:
		r = 0
	case r > 1:
		r = 1
	}
	p.mu.Lock()
	p.state.ScrollRatio = r
	p.mu.Unlock()
}

// Save persists the current state under the pager's key. Pagers created
// without a store save nothing.
func (p *Pager) Save(ctx context.Context) error {
	if p.store == nil {
		return nil
	}
	if err := p.store.Set(ctx, p.key, p.State()); err != nil {
		return fmt.Errorf("saving pager state: %w", err)
	}
	return nil
}

// State returns a copy of the current state.
func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.state
	st.Items = append([]content.Item(nil), p.state.Items...)
	return st
}

// Phase returns the current phase.
func (p *Pager) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// PageSize returns the fixed page size.
func (p *Pager) PageSize() int { return p.size }
