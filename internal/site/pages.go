package site

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/cgblog/internal/content"
	"github.com/ziadkadry99/cgblog/internal/direction"
	"github.com/ziadkadry99/cgblog/internal/pager"
	"github.com/ziadkadry99/cgblog/internal/render"
)

// BlogRoute is the pager key route of the post listing.
const BlogRoute = "/blog"

type homeView struct {
	Cover      string
	Intro      template.HTML
	IntroError string
	Posts      []card
	PostsError string
}

type blogView struct {
	Posts       []card
	HasMore     bool
	Page        int
	ScrollRatio float64
	Error       string
}

type articleView struct {
	Title       string
	Description string
	Author      string
	Date        string
	Image       string
	Dir         direction.Direction
	HTML        template.HTML
	Contents    []render.Block
	Error       string
	ErrorTitle  string
}

type projectsView struct {
	Projects []card
}

func (s *Site) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := homeView{}
	if s.cfg.UseCoverImage {
		view.Cover = s.client.URL(content.PagePath("cover.jpg"))
	}

	var (
		intro *content.Item
		items []content.Item
	)
	// Each half reports its own failure; one never cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		it, err := s.client.FetchItem(ctx, content.PagePath("home"))
		if err != nil {
			s.log.WithError(err).Warn("loading home intro")
			view.IntroError = "Failed to load the introduction."
			return nil
		}
		intro = it
		return nil
	})
	g.Go(func() error {
		all, err := s.indexSource().Items(ctx)
		if err != nil {
			s.log.WithError(err).Warn("loading latest posts")
			view.PostsError = "Failed to load the latest posts."
			return nil
		}
		items = all[:min(len(all), LatestPosts)]
		return nil
	})
	g.Wait()

	if intro != nil {
		doc, err := s.renderer.RenderString(intro.Content)
		if err != nil {
			s.log.WithError(err).Warn("rendering home intro")
			view.IntroError = "Failed to load the introduction."
		} else {
			view.Intro = doc.HTML
		}
	}
	view.Posts = s.postCards(ctx, items)

	s.renderPage(w, http.StatusOK, "home", pageData{
		Description: "Articles and projects by " + s.cfg.Name,
		Image:       view.Cover,
		Nav:         "home",
		Body:        view,
	})
}

func (s *Site) handleBlog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := pageData{Title: "Blog", Nav: "blog"}

	defer s.lockListing(sessionID(r))()
	p, err := pager.Restore(ctx, s.indexSource(), s.cfg.PageSize, s.store, pager.Key(sessionID(r), BlogRoute))
	if err != nil {
		s.log.WithError(err).Warn("loading post listing")
		data.Body = blogView{Error: "Failed to load articles. Please try again later."}
		s.renderPage(w, http.StatusBadGateway, "blog", data)
		return
	}
	if err := p.Save(ctx); err != nil {
		s.log.WithError(err).Warn("saving listing state")
	}

	st := p.State()
	data.Body = blogView{
		Posts:       s.postCards(ctx, st.Items),
		HasMore:     st.HasMore,
		Page:        st.Page,
		ScrollRatio: st.ScrollRatio,
	}
	s.renderPage(w, http.StatusOK, "blog", data)
}

// articleName cleans the wildcard path of an article route. It reports
// false for paths that try to leave the articles directory.
func articleName(raw string) (string, bool) {
	name := strings.Trim(raw, "/")
	if name == "" {
		return "", false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", false
		}
	}
	return name, true
}

func (s *Site) handleArticle(w http.ResponseWriter, r *http.Request) {
	name, ok := articleName(chi.URLParam(r, "*"))
	if !ok {
		s.notFound(w, "This article does not exist.")
		return
	}
	s.serveItem(w, r, content.ArticlePath(name), "blog")
}

func (s *Site) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.serveItem(w, r, content.PagePath("about"), "about")
}

// serveItem renders a Markdown item. A missing item is a 404; any other
// fetch failure is shown inline with a 502.
func (s *Site) serveItem(w http.ResponseWriter, r *http.Request, path, nav string) {
	item, err := s.client.FetchItem(r.Context(), path)
	if err != nil {
		s.log.WithError(err).WithField("path", path).Warn("loading article")
		view := articleView{ErrorTitle: "Failed to load article", Error: "The article could not be loaded. Please try again later."}
		status := http.StatusBadGateway
		var fe *content.FetchError
		if errors.As(err, &fe) && fe.NotFound() {
			view = articleView{ErrorTitle: "Article not found", Error: "This article does not exist."}
			status = http.StatusNotFound
		}
		s.renderPage(w, status, "article", pageData{Title: view.ErrorTitle, Nav: nav, Body: view})
		return
	}

	doc, err := s.renderer.RenderString(item.Content)
	if err != nil {
		s.log.WithError(err).WithField("path", path).Error("rendering article")
		view := articleView{ErrorTitle: "Failed to load article", Error: "The article could not be rendered."}
		s.renderPage(w, http.StatusInternalServerError, "article", pageData{Title: view.ErrorTitle, Nav: nav, Body: view})
		return
	}

	var contents []render.Block
	for _, h := range doc.Headings() {
		if h.DeepLink && h.Level > 1 {
			contents = append(contents, h)
		}
	}

	title := item.DisplayTitle()
	view := articleView{
		Title:       title,
		Description: item.Description,
		Author:      item.Author,
		Date:        item.Date,
		Image:       item.Image,
		Dir:         direction.ClassifyString(title, direction.StartsWith).Direction,
		HTML:        doc.HTML,
		Contents:    contents,
	}
	s.renderPage(w, http.StatusOK, "article", pageData{
		Title:       title,
		Description: item.Description,
		Image:       item.Image,
		Nav:         nav,
		Body:        view,
	})
}

func (s *Site) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.Get(r.Context())
	if err != nil {
		s.log.WithError(err).Warn("loading projects")
	}
	cards := make([]card, len(projects))
	for i, p := range projects {
		cards[i] = p.card()
	}
	s.renderPage(w, http.StatusOK, "projects", pageData{
		Title:       "Projects",
		Description: "Explore projects by " + s.cfg.Name,
		Nav:         "projects",
		Body:        projectsView{Projects: cards},
	})
}

// handleResume redirects to the configured resume, or to the hosted PDF
// when it exists.
func (s *Site) handleResume(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ResumeURL != "" {
		http.Redirect(w, r, s.cfg.ResumeURL, http.StatusFound)
		return
	}
	hosted := content.PagePath("resume.pdf")
	if s.cfg.CheckResumeExists && s.client.Exists(r.Context(), hosted) {
		http.Redirect(w, r, s.client.URL(hosted), http.StatusFound)
		return
	}
	s.notFound(w, "No resume is available.")
}

func (s *Site) notFound(w http.ResponseWriter, msg string) {
	s.renderPage(w, http.StatusNotFound, "notfound", pageData{Title: "Not found", Body: msg})
}
