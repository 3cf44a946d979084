package site

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/cgblog/internal/content"
	"github.com/ziadkadry99/cgblog/internal/direction"
)

// descriptionLimit is where card descriptions are cut, in runes.
const descriptionLimit = 150

// card is one entry of a post or project grid.
type card struct {
	Name        string              `json:"name"`
	Href        string              `json:"href"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Author      string              `json:"author,omitempty"`
	Date        string              `json:"date,omitempty"`
	Image       string              `json:"image,omitempty"`
	Dir         direction.Direction `json:"dir"`
	Align       direction.Alignment `json:"align"`
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

func newCard(it content.Item, href, image string) card {
	title := it.DisplayTitle()
	c := direction.ClassifyString(title, direction.StartsWith)
	return card{
		Name:        it.Name,
		Href:        href,
		Title:       title,
		Description: truncate(strings.TrimSpace(it.Description), descriptionLimit),
		Author:      it.Author,
		Date:        it.Date,
		Image:       image,
		Dir:         c.Direction,
		Align:       c.Align,
	}
}

// postCards turns index entries into cards, resolving images concurrently.
// An unresolvable image leaves the card without one.
func (s *Site) postCards(ctx context.Context, items []content.Item) []card {
	cards := make([]card, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, it := range items {
		g.Go(func() error {
			img := s.client.ResolveImage(gctx, content.ArticlePath(it.Name), it.Image)
			cards[i] = newCard(it, "/blog/"+it.Name, img)
			return nil
		})
	}
	g.Wait()
	return cards
}
