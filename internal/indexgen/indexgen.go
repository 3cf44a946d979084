// Package indexgen builds the generated files of a content directory: the
// article index, the sitemap template and the projects document.
package indexgen

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ziadkadry99/cgblog/internal/content"
	"github.com/ziadkadry99/cgblog/internal/progress"
)

const (
	// SitemapPlaceholder stands in for the site origin in the sitemap
	// template. The frontend substitutes its own URL.
	SitemapPlaceholder = "__FRONTEND_URL_PLACEHOLDER__"

	IndexFile           = "index.json"
	SitemapTemplateFile = "sitemap_template.xml"
	ProjectsSourceFile  = "projects.json"
	ProjectsOutputFile  = "projects-generated.json"
)

// Options controls a generation run.
type Options struct {
	// Root is the content directory holding Articles/ and Pages/.
	Root string
	// Exclude lists doublestar patterns, relative to Articles/, of metadata
	// files to leave out.
	Exclude  []string
	Reporter progress.Reporter
	Log      logrus.FieldLogger
}

// Result summarizes a generation run.
type Result struct {
	Articles       int
	Hidden         int
	Invalid        int
	SitemapEntries int
	// Projects is -1 when no projects.json exists.
	Projects int
}

// article is one metadata file as read from disk.
type article struct {
	name    string
	meta    map[string]any
	item    content.Item
	valid   bool
	modTime string
}

// Generate reads every article metadata file under Root/Articles and writes
// the index, the sitemap template and, when Pages/projects.json exists, the
// projects document.
func Generate(opts Options) (*Result, error) {
	if opts.Reporter == nil {
		opts.Reporter = progress.Nop{}
	}
	if opts.Log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		opts.Log = quiet
	}
	articlesDir := filepath.Join(opts.Root, content.ArticlesDir)
	pagesDir := filepath.Join(opts.Root, content.PagesDir)

	files, err := metadataFiles(articlesDir, opts.Exclude)
	if err != nil {
		return nil, err
	}

	res := &Result{Projects: -1}
	var articles []article
	opts.Reporter.Start(len(files))
	for i, rel := range files {
		opts.Reporter.Update(i+1, rel)
		a, err := readArticle(articlesDir, rel)
		if err != nil {
			return nil, err
		}
		if !a.valid {
			opts.Log.WithField("file", rel).Warn("invalid article metadata")
			res.Invalid++
		}
		if a.item.Hidden {
			opts.Log.WithField("file", rel).Info("skipping hidden article")
			res.Hidden++
			continue
		}
		articles = append(articles, a)
	}
	opts.Reporter.Finish()

	if err := writeIndex(filepath.Join(articlesDir, IndexFile), articles); err != nil {
		return nil, err
	}
	res.Articles = len(articles)

	n, err := writeSitemapTemplate(filepath.Join(articlesDir, SitemapTemplateFile), articles)
	if err != nil {
		return nil, err
	}
	res.SitemapEntries = n

	projects, err := generateProjects(articlesDir, pagesDir, opts.Log)
	if err != nil {
		// Projects are optional; a broken projects.json never fails the run.
		opts.Log.WithError(err).Warn("skipping projects generation")
	} else {
		res.Projects = projects
	}
	return res, nil
}

// metadataFiles lists the article metadata files relative to dir, in
// lexical order.
func metadataFiles(dir string, exclude []string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.json")
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	var files []string
	for _, rel := range matches {
		if rel == IndexFile || excluded(rel, exclude) {
			continue
		}
		files = append(files, rel)
	}
	if len(files) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("articles directory: %w", err)
		}
	}
	return files, nil
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

var titler = cases.Title(language.English)

// TitleFromName turns an article name into a readable title, for entries
// whose metadata has none.
func TitleFromName(name string) string {
	base := path.Base(name)
	words := strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' })
	return titler.String(strings.Join(words, " "))
}

func readArticle(dir, rel string) (article, error) {
	name := strings.TrimSuffix(filepath.ToSlash(rel), ".json")
	p := filepath.Join(dir, filepath.FromSlash(rel))
	info, err := os.Stat(p)
	if err != nil {
		return article{}, fmt.Errorf("reading %s: %w", rel, err)
	}
	a := article{
		name:    name,
		meta:    map[string]any{"name": name},
		item:    content.Item{Name: name, Title: "Invalid Article", Author: "Unknown"},
		modTime: info.ModTime().UTC().Format("2006-01-02"),
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return article{}, fmt.Errorf("reading %s: %w", rel, err)
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil || meta == nil {
		return a, nil
	}
	var item content.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return a, nil
	}

	meta["name"] = name
	item.Name = name
	if item.Title == "" {
		item.Title = TitleFromName(name)
	}
	if item.Author == "" {
		item.Author = "Unknown"
	}
	a.meta = meta
	a.item = item
	a.valid = true
	return a, nil
}

// writeIndex writes the full metadata of every article, newest first.
func writeIndex(p string, articles []article) error {
	items := make([]content.Item, len(articles))
	byName := make(map[string]map[string]any, len(articles))
	for i, a := range articles {
		items[i] = a.item
		byName[a.name] = a.meta
	}
	content.SortByDate(items)

	index := make([]map[string]any, len(items))
	for i, it := range items {
		index[i] = byName[it.Name]
	}
	return writeJSON(p, index)
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// writeSitemapTemplate lists every valid article under the placeholder
// origin. The date comes from the metadata, or the file time when it does
// not parse.
func writeSitemapTemplate(p string, articles []article) (int, error) {
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, a := range articles {
		if !a.valid {
			continue
		}
		lastMod := a.modTime
		if t, ok := content.ParseDate(a.item.Date); ok {
			lastMod = t.Format("2006-01-02")
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        SitemapPlaceholder + "/blog/" + url.PathEscape(a.name),
			LastMod:    lastMod,
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encoding sitemap template: %w", err)
	}
	data := append([]byte(xml.Header), out...)
	data = append(data, '\n')
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing sitemap template: %w", err)
	}
	return len(set.URLs), nil
}

// projectRef is one entry of projects.json: a bare name or an object with
// a content path.
type projectRef struct {
	Name string
}

func (r *projectRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		r.Name = name
		return nil
	}
	var obj struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Path != "" {
		r.Name = path.Base(obj.Path)
	}
	return nil
}

// generateProjects enriches Pages/projects.json with article metadata. It
// returns -1 without error when there is no projects.json. Projects whose
// metadata is missing or invalid are skipped.
func generateProjects(articlesDir, pagesDir string, log logrus.FieldLogger) (int, error) {
	data, err := os.ReadFile(filepath.Join(pagesDir, ProjectsSourceFile))
	if os.IsNotExist(err) {
		log.Info("no projects.json found, skipping projects generation")
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading projects: %w", err)
	}

	var src struct {
		Projects []projectRef `json:"projects"`
	}
	if err := json.Unmarshal(data, &src); err != nil {
		return 0, fmt.Errorf("invalid %s: %w", ProjectsSourceFile, err)
	}

	projects := []map[string]any{}
	for _, ref := range src.Projects {
		if ref.Name == "" {
			log.Warn("skipping project entry without a name")
			continue
		}
		raw, err := os.ReadFile(filepath.Join(articlesDir, ref.Name+".json"))
		if err != nil {
			continue
		}
		var meta map[string]any
		if err := json.Unmarshal(raw, &meta); err != nil || meta == nil {
			continue
		}

		p := map[string]any{
			"name":        ref.Name,
			"title":       TitleFromName(ref.Name),
			"description": "",
			"image":       ref.Name + ".jpg",
			"date":        "",
			"author":      "Unknown",
			"path":        content.ArticlesDir + "/" + ref.Name,
		}
		for k, v := range meta {
			p[k] = v
		}
		projects = append(projects, p)
		log.WithField("project", ref.Name).Debug("processed project")
	}

	if err := writeJSON(filepath.Join(pagesDir, ProjectsOutputFile), map[string]any{"projects": projects}); err != nil {
		return 0, err
	}
	return len(projects), nil
}

func writeJSON(p string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(p), err)
	}
	if err := os.WriteFile(p, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(p), err)
	}
	return nil
}
