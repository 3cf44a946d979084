package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageNames = []string{"home", "blog", "article", "projects", "notfound"}

// pageData is the root value of every page template.
type pageData struct {
	Site        Config
	Title       string
	Description string
	Image       string
	Nav         string
	Body        any
}

// ShowResume reports whether the navbar links to /resume.
func (p pageData) ShowResume() bool {
	return p.Site.ResumeURL != "" || p.Site.CheckResumeExists
}

// DebounceMS is the search debounce handed to the client script.
func (p pageData) DebounceMS() int64 {
	return int64(p.Site.SearchDebounce / time.Millisecond)
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// renderPage executes a page into a buffer first so a template error never
// leaves a half-written response.
func (s *Site) renderPage(w http.ResponseWriter, status int, name string, data pageData) {
	data.Site = s.cfg
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.WithError(err).WithField("page", name).Error("rendering page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// renderCards renders card markup for the listing API.
func (s *Site) renderCards(cards []card) (string, error) {
	var buf bytes.Buffer
	if err := s.pages["blog"].ExecuteTemplate(&buf, "cards", cards); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
