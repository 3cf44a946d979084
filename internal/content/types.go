package content

import "path"

// ArticlesDir is the content host directory holding articles and the index.
const ArticlesDir = "Articles"

// PagesDir is the content host directory holding standalone pages.
const PagesDir = "Pages"

// IndexPath is the content index location relative to the base URL.
const IndexPath = ArticlesDir + "/index.json"

// ImageExtensions is the probe order used when metadata carries no image.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// Item is an article or page. Metadata fields come from {name}.json and
// Content from {name}.md; index entries usually carry metadata only.
type Item struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	Date        string `json:"date,omitempty"`
	Image       string `json:"image,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"`
	Content     string `json:"content,omitempty"`
}

// DisplayTitle falls back to the name when the title is empty.
func (it Item) DisplayTitle() string {
	if it.Title != "" {
		return it.Title
	}
	return it.Name
}

// ArticlePath returns the content path of an article index entry.
func ArticlePath(name string) string {
	return path.Join(ArticlesDir, name)
}

// PagePath returns the content path of a page.
func PagePath(name string) string {
	return path.Join(PagesDir, name)
}
