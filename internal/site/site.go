// Package site serves the blog pages, the listing and search APIs and the
// live search socket on top of the content host.
package site

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/cgblog/internal/content"
	"github.com/ziadkadry99/cgblog/internal/db"
	"github.com/ziadkadry99/cgblog/internal/pager"
	"github.com/ziadkadry99/cgblog/internal/render"
	"github.com/ziadkadry99/cgblog/internal/search"
)

const (
	// SessionCookie carries the visitor's session id. It has no expiry, so
	// the browser drops it when the browsing session ends.
	SessionCookie = "cgblog_session"
	// SessionIdleTimeout is how long a session and its listing state
	// survive without activity.
	SessionIdleTimeout = pager.DefaultStateTTL

	// LatestPosts is how many posts the home page lists.
	LatestPosts = 3
)

// Config is the site identity and behavior.
type Config struct {
	Name              string
	LogoText          string
	GitHubURL         string
	LinkedInURL       string
	ResumeURL         string
	CheckResumeExists bool
	UseCoverImage     bool

	PageSize       int
	SearchDebounce time.Duration
	SnippetRadius  int
	// RequestTimeout bounds page and API handlers. Zero disables it.
	RequestTimeout time.Duration
}

// Site holds the page handlers and their collaborators.
type Site struct {
	cfg      Config
	client   *content.Client
	renderer *render.Renderer
	store    pager.Store
	db       *db.DB
	log      logrus.FieldLogger
	pages    map[string]*template.Template
	projects *projectCache

	listings sync.Map // session id -> *sync.Mutex
}

// New creates a site reading from client. database may be nil, in which
// case listing state lives in memory for the life of the process.
func New(cfg Config, client *content.Client, database *db.DB, log logrus.FieldLogger) (*Site, error) {
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = pager.DefaultPageSize
	}
	if cfg.SearchDebounce <= 0 {
		cfg.SearchDebounce = search.DefaultDebounce
	}
	if cfg.SnippetRadius <= 0 {
		cfg.SnippetRadius = search.DefaultSnippetRadius
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	var store pager.Store = pager.NewMemoryStore(pager.WithStateTTL(SessionIdleTimeout))
	if database != nil {
		store = pager.NewSQLStore(database, pager.WithStateTTL(SessionIdleTimeout))
	}

	return &Site{
		cfg:      cfg,
		client:   client,
		renderer: render.New(client),
		store:    store,
		db:       database,
		log:      log,
		pages:    pages,
		projects: newProjectCache(client, projectsTTL),
	}, nil
}

// RegisterRoutes mounts all site routes onto the given router.
func (s *Site) RegisterRoutes(r chi.Router) {
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler()))
	r.Get("/ws/search", s.handleSearchSocket)

	r.Group(func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		}
		r.Use(s.withSession)

		r.Get("/", s.handleHome)
		r.Get("/blog", s.handleBlog)
		r.Get("/blog/*", s.handleArticle)
		r.Get("/about", s.handleAbout)
		r.Get("/projects", s.handleProjects)
		r.Get("/resume", s.handleResume)
		r.Get("/sitemap.xml", s.handleSitemap)

		r.Post("/api/blog/more", s.handleMore)
		r.Post("/api/blog/cursor", s.handleCursor)
		r.Get("/api/search", s.handleSearch)
	})
}

// indexSource reads the content index once per request. Freshness across
// requests is bounded by the client cache.
func (s *Site) indexSource() *pager.IndexSource {
	return pager.NewIndexSource(s.client)
}

// newIndexer creates an indexer for one search surface.
func (s *Site) newIndexer() *search.Indexer {
	return search.NewIndexer(s.client,
		search.WithSnippetRadius(s.cfg.SnippetRadius),
		search.WithIndexerLogger(s.log.WithField("component", "search")),
	)
}

// lockListing serializes listing requests of one session, so a load in
// flight is never started twice.
func (s *Site) lockListing(id string) func() {
	v, _ := s.listings.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type sessionKey struct{}

// withSession makes sure every visitor carries a session cookie and records
// the visit.
func (s *Site) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		if s.db != nil {
			if err := s.db.Touch(id); err != nil {
				s.log.WithError(err).Warn("recording session")
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey{}).(string)
	return id
}
