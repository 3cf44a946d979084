// Package contenthost serves a local content directory the way the static
// content host does, for developing articles offline.
package contenthost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// DefaultPort is the port the content host listens on unless told otherwise.
const DefaultPort = 4000

// mimeTypes pins the content types the blog depends on. Anything else is
// served as application/octet-stream.
var mimeTypes = map[string]string{
	".html":  "text/html",
	".css":   "text/css",
	".js":    "application/javascript",
	".json":  "application/json",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".webp":  "image/webp",
	".ico":   "image/x-icon",
	".pdf":   "application/pdf",
	".md":    "text/markdown",
	".txt":   "text/plain",
	".xml":   "application/xml",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
}

// MimeType returns the content type served for name.
func MimeType(name string) string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return "application/octet-stream"
}

// Host serves files under a root directory.
type Host struct {
	root string
	log  logrus.FieldLogger
}

// New creates a host for root, which must be an existing directory.
func New(root string, log logrus.FieldLogger) (*Host, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving content directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("content directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content directory %s is not a directory", abs)
	}
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}
	return &Host{root: abs, log: log}, nil
}

// Root returns the absolute directory being served.
func (h *Host) Root() string { return h.root }

// Handler returns the HTTP handler: GET and HEAD serve files, OPTIONS
// answers preflights, and every origin is allowed.
func (h *Host) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/*", h.serveFile)
	r.Head("/*", h.serveFile)
	r.Options("/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		plain(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (h *Host) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	h.log.WithFields(logrus.Fields{"addr": addr, "root": h.root}).Info("content host running")
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.log.Info("shutting down content host")
		return srv.Shutdown(shutdownCtx)
	}
}

func plain(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	io.WriteString(w, msg)
}

// resolve maps a URL path to a file under root. It reports false for paths
// that try to leave root.
func (h *Host) resolve(urlPath string) (string, bool) {
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == ".." {
			return "", false
		}
	}
	clean := path.Clean("/" + urlPath)
	if clean == "/" {
		clean = "/index.html"
	}
	full := filepath.Join(h.root, filepath.FromSlash(clean))
	if full != h.root && !strings.HasPrefix(full, h.root+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}

func (h *Host) serveFile(w http.ResponseWriter, r *http.Request) {
	full, ok := h.resolve(r.URL.Path)
	if !ok {
		h.log.WithField("path", r.URL.Path).Warn("rejected path outside content directory")
		plain(w, http.StatusForbidden, "Forbidden")
		return
	}

	info, err := os.Stat(full)
	if err == nil && info.IsDir() {
		full = filepath.Join(full, "index.html")
		info, err = os.Stat(full)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			plain(w, http.StatusNotFound, "Not Found")
			return
		}
		h.log.WithError(err).WithField("path", full).Error("stat failed")
		plain(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	f, err := os.Open(full)
	if err != nil {
		h.log.WithError(err).WithField("path", full).Error("open failed")
		plain(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	defer f.Close()

	h.log.WithField("path", r.URL.Path).Debug("serving content")
	w.Header().Set("Content-Type", MimeType(full))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
