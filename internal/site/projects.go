package site

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ziadkadry99/cgblog/internal/content"
)

const (
	projectsTTL = 5 * time.Minute
	// ProjectsPath is the generated projects document on the content host.
	ProjectsPath = content.PagesDir + "/projects-generated.json"
)

// Project is one entry of the generated projects document.
type Project struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Date        string `json:"date,omitempty"`
	Author      string `json:"author,omitempty"`
	Path        string `json:"path,omitempty"`
}

func (p Project) card() card {
	href := "/blog/" + p.Name
	switch {
	case content.IsAbsoluteURL(p.Path):
		href = p.Path
	case strings.HasPrefix(p.Path, content.ArticlesDir+"/"):
		href = "/blog/" + strings.TrimPrefix(p.Path, content.ArticlesDir+"/")
	}
	return newCard(content.Item{
		Name:        p.Name,
		Title:       p.Title,
		Description: p.Description,
		Author:      p.Author,
		Date:        p.Date,
	}, href, p.Image)
}

type projectsDocument struct {
	Projects []*Project `json:"projects"`
}

// projectCache keeps the projects document for a fixed time. Failures are
// not cached.
type projectCache struct {
	client *content.Client
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	data    []Project
	fetched time.Time
}

func newProjectCache(client *content.Client, ttl time.Duration) *projectCache {
	return &projectCache{client: client, ttl: ttl, now: time.Now}
}

// Get returns the normalized projects. On failure it returns an empty list
// along with the error.
func (c *projectCache) Get(ctx context.Context) ([]Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data != nil && c.now().Sub(c.fetched) < c.ttl {
		return c.data, nil
	}

	var doc projectsDocument
	if err := c.client.FetchJSON(ctx, ProjectsPath, &doc); err != nil {
		return []Project{}, err
	}
	c.data = normalizeProjects(c.client.BaseURL(), doc.Projects)
	c.fetched = c.now()
	return c.data, nil
}

// normalizeProjects drops entries without a name or title and fills in
// image and author defaults.
func normalizeProjects(base string, raw []*Project) []Project {
	out := make([]Project, 0, len(raw))
	for _, p := range raw {
		if p == nil || p.Name == "" || p.Title == "" {
			continue
		}
		np := *p
		switch {
		case np.Image == "":
			np.Image = base + "/" + content.ArticlesDir + "/" + np.Name + ".jpg"
		case !strings.HasPrefix(np.Image, "http"):
			np.Image = base + "/" + content.ArticlesDir + "/" + np.Image
		}
		if np.Author == "" {
			np.Author = "Unknown"
		}
		out = append(out, np)
	}
	return out
}
