package pager

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ziadkadry99/cgblog/internal/content"
	"github.com/ziadkadry99/cgblog/internal/db"
)

// Store persists pager state per session and route.
type Store interface {
	Get(ctx context.Context, key string) (State, bool, error)
	Set(ctx context.Context, key string, st State) error
}

// DefaultStateTTL is how long saved state outlives its last save. It bounds
// listing state to one browsing session.
const DefaultStateTTL = 30 * time.Minute

type storeOptions struct {
	ttl time.Duration
	now func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

// WithStateTTL sets how long state stays readable after it was saved.
// A zero ttl keeps state until it is overwritten.
func WithStateTTL(ttl time.Duration) StoreOption {
	return func(o *storeOptions) { o.ttl = ttl }
}

// WithClock sets the clock used to age state.
func WithClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) { o.now = now }
}

func newStoreOptions(opts []StoreOption) storeOptions {
	o := storeOptions{ttl: DefaultStateTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Key builds the store key for a session and route.
func Key(session, route string) string {
	return session + ":" + route
}

type memoryEntry struct {
	raw   []byte
	saved time.Time
}

// MemoryStore keeps serialized state in process memory.
type MemoryStore struct {
	opts storeOptions
	mu   sync.Mutex
	data map[string]memoryEntry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	return &MemoryStore{opts: newStoreOptions(opts), data: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (State, bool, error) {
	m.mu.Lock()
	e, ok := m.data[key]
	if ok && m.opts.ttl > 0 && m.opts.now().Sub(e.saved) > m.opts.ttl {
		delete(m.data, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return State{}, false, nil
	}
	var st State
	if err := json.Unmarshal(e.raw, &st); err != nil {
		return State{}, false, fmt.Errorf("decoding state for %s: %w", key, err)
	}
	return st, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	m.mu.Lock()
	m.data[key] = memoryEntry{raw: raw, saved: m.opts.now()}
	m.mu.Unlock()
	return nil
}

// SQLStore keeps state in the pager_state table. Rows older than the
// store's TTL read as missing; db.PruneSessions deletes them.
type SQLStore struct {
	db   *db.DB
	opts storeOptions
}

// NewSQLStore creates a store on d.
func NewSQLStore(d *db.DB, opts ...StoreOption) *SQLStore {
	return &SQLStore{db: d, opts: newStoreOptions(opts)}
}

func splitKey(key string) (session, route string) {
	session, route, ok := strings.Cut(key, ":")
	if !ok {
		return "", key
	}
	return session, route
}

func (s *SQLStore) Get(ctx context.Context, key string) (State, bool, error) {
	session, route := splitKey(key)
	var (
		items   string
		st      State
		hasMore int
	)
	query := `SELECT items, page, has_more, scroll_ratio FROM pager_state WHERE session_id = ? AND route = ?`
	args := []any{session, route}
	if s.opts.ttl > 0 {
		query += ` AND updated_at >= ?`
		args = append(args, s.opts.now().Add(-s.opts.ttl).UTC().Format(db.TimeFormat))
	}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&items, &st.Page, &hasMore, &st.ScrollRatio)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("querying pager state: %w", err)
	}
	if err := json.Unmarshal([]byte(items), &st.Items); err != nil {
		return State{}, false, fmt.Errorf("decoding pager items: %w", err)
	}
	st.HasMore = hasMore != 0
	return st, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, st State) error {
	session, route := splitKey(key)
	if st.Items == nil {
		st.Items = []content.Item{}
	}
	items, err := json.Marshal(st.Items)
	if err != nil {
		return fmt.Errorf("encoding pager items: %w", err)
	}
	hasMore := 0
	if st.HasMore {
		hasMore = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pager_state (session_id, route, items, page, has_more, scroll_ratio, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id, route) DO UPDATE SET
		   items = excluded.items,
		   page = excluded.page,
		   has_more = excluded.has_more,
		   scroll_ratio = excluded.scroll_ratio,
		   updated_at = excluded.updated_at`,
		session, route, string(items), st.Page, hasMore, st.ScrollRatio,
		s.opts.now().UTC().Format(db.TimeFormat),
	)
	if err != nil {
		return fmt.Errorf("upserting pager state: %w", err)
	}
	return nil
}
