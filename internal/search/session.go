package search

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long a session waits after the last change before
// it runs a search.
const DefaultDebounce = 300 * time.Millisecond

// Searcher runs one search.
type Searcher interface {
	Search(ctx context.Context, query string, includeContent bool) ([]Result, error)
}

// State is what a search surface displays. Selected is -1 when no result
// is selected.
type State struct {
	Open           bool     `json:"open"`
	Query          string   `json:"query"`
	IncludeContent bool     `json:"includeContent"`
	Results        []Result `json:"results"`
	Loading        bool     `json:"loading"`
	Error          string   `json:"error,omitempty"`
	Selected       int      `json:"selected"`
}

// Key names understood by Session.Key.
const (
	KeyDown  = "ArrowDown"
	KeyUp    = "ArrowUp"
	KeyEnter = "Enter"
)

// Session is one live search surface. Query changes are debounced; every
// run carries a sequence number and only the latest run may publish.
type Session struct {
	searcher Searcher
	debounce time.Duration
	log      logrus.FieldLogger
	notify   func(State)
	pubMu    sync.Mutex

	mu     sync.Mutex
	state  State
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) { s.debounce = d }
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(l logrus.FieldLogger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithNotify registers fn to receive every published state. fn is called
// without the session lock held.
func WithNotify(fn func(State)) SessionOption {
	return func(s *Session) { s.notify = fn }
}

// NewSession creates a closed session.
func NewSession(searcher Searcher, opts ...SessionOption) *Session {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	s := &Session{
		searcher: searcher,
		debounce: DefaultDebounce,
		log:      quiet,
		state:    State{Selected: -1},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() State {
	st := s.state
	st.Results = append([]Result(nil), s.state.Results...)
	return st
}

// changed hands the latest state to the notify hook. Calls are serialized
// and always read the current state, so the last delivery is never stale.
func (s *Session) changed() {
	if s.notify == nil {
		return
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.notify(s.State())
}

// Open shows the search surface with a cleared query, results and
// selection.
func (s *Session) Open() {
	s.mu.Lock()
	s.supersede()
	s.state = State{Open: true, IncludeContent: s.state.IncludeContent, Selected: -1}
	s.mu.Unlock()
	s.changed()
}

// Close hides the search surface and drops pending work.
func (s *Session) Close() {
	s.mu.Lock()
	s.supersede()
	s.state = State{IncludeContent: s.state.IncludeContent, Selected: -1}
	s.mu.Unlock()
	s.changed()
}

// SetQuery records a new query and schedules a search.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	s.state.Query = q
	scheduled := s.schedule()
	s.mu.Unlock()
	if !scheduled {
		s.changed()
	}
}

// SetIncludeContent toggles body search and schedules a search.
func (s *Session) SetIncludeContent(on bool) {
	s.mu.Lock()
	s.state.IncludeContent = on
	scheduled := s.schedule()
	s.mu.Unlock()
	if !scheduled {
		s.changed()
	}
}

// supersede invalidates the pending timer and any running search. Caller
// holds mu.
func (s *Session) supersede() {
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// schedule arms the debounce timer for the current query. A blank query
// clears the results at once and reports false. Caller holds mu.
func (s *Session) schedule() bool {
	s.supersede()
	if strings.TrimSpace(s.state.Query) == "" {
		s.state.Results = nil
		s.state.Loading = false
		s.state.Error = ""
		s.state.Selected = -1
		return false
	}
	seq := s.seq
	s.timer = time.AfterFunc(s.debounce, func() { s.run(seq) })
	return true
}

func (s *Session) run(seq uint64) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	query, includeContent := s.state.Query, s.state.IncludeContent
	s.state.Loading = true
	s.mu.Unlock()
	s.changed()

	results, err := s.searcher.Search(ctx, query, includeContent)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.log.WithField("query", query).Debug("discarding stale search results")
		return
	}
	cancel()
	s.cancel = nil
	s.state.Loading = false
	if err != nil {
		s.log.WithError(err).WithField("query", query).Warn("search failed")
		s.state.Results = nil
		s.state.Error = err.Error()
	} else {
		s.state.Results = results
		s.state.Error = ""
	}
	s.state.Selected = -1
	s.mu.Unlock()
	s.changed()
}

// Key applies a navigation key. Enter on a selected result closes the
// session and returns the path to navigate to; otherwise the path is "".
func (s *Session) Key(key string) string {
	s.mu.Lock()
	n := len(s.state.Results)
	if n == 0 {
		s.mu.Unlock()
		return ""
	}
	switch key {
	case KeyDown:
		s.state.Selected = (s.state.Selected + 1) % n
	case KeyUp:
		if s.state.Selected <= 0 {
			s.state.Selected = n - 1
		} else {
			s.state.Selected--
		}
	case KeyEnter:
		if s.state.Selected < 0 {
			s.mu.Unlock()
			return ""
		}
		target := "/blog/" + s.state.Results[s.state.Selected].Item.Name
		s.mu.Unlock()
		s.Close()
		return target
	default:
		s.mu.Unlock()
		return ""
	}
	s.mu.Unlock()
	s.changed()
	return ""
}

// Stop releases the session's timer and running search.
func (s *Session) Stop() {
	s.mu.Lock()
	s.supersede()
	s.mu.Unlock()
}
