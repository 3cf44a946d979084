package site

import (
	"context"
	"encoding/xml"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/cgblog/internal/content"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// siteURL is the public origin of the request.
func siteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host
}

// lastMod returns the sitemap date of an item, or "" when it has none.
func lastMod(date string) string {
	t, ok := content.ParseDate(date)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// buildSitemap lists the fixed pages and every article. Articles missing a
// date in the index fall back to their own metadata; a failed lookup only
// drops the lastmod.
func (s *Site) buildSitemap(ctx context.Context, origin string) (*urlSet, error) {
	items, err := s.indexSource().Items(ctx)
	if err != nil {
		return nil, err
	}

	set := &urlSet{XMLNS: sitemapNS, URLs: []sitemapURL{
		{Loc: origin + "/", ChangeFreq: "weekly", Priority: "1.0"},
		{Loc: origin + "/blog", ChangeFreq: "weekly", Priority: "0.8"},
		{Loc: origin + "/about", ChangeFreq: "monthly", Priority: "0.7"},
		{Loc: origin + "/projects", ChangeFreq: "monthly", Priority: "0.7"},
	}}

	articles := make([]sitemapURL, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, it := range items {
		g.Go(func() error {
			date := it.Date
			if date == "" {
				meta, err := s.client.FetchMetadata(gctx, content.ArticlePath(it.Name))
				if err != nil {
					s.log.WithError(err).WithField("name", it.Name).Debug("no sitemap date")
				} else {
					date = meta.Date
				}
			}
			articles[i] = sitemapURL{
				Loc:        origin + "/blog/" + it.Name,
				LastMod:    lastMod(date),
				ChangeFreq: "monthly",
				Priority:   "0.6",
			}
			return nil
		})
	}
	g.Wait()

	set.URLs = append(set.URLs, articles...)
	return set, nil
}

func (s *Site) handleSitemap(w http.ResponseWriter, r *http.Request) {
	set, err := s.buildSitemap(r.Context(), siteURL(r))
	if err != nil {
		s.log.WithError(err).Error("generating sitemap")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Error generating sitemap"))
		return
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		s.log.WithError(err).Error("encoding sitemap")
		http.Error(w, "Error generating sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	w.Write(out)
}
