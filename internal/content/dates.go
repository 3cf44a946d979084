package content

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	looseDatePattern = regexp.MustCompile(`(\d{1,2})\s+([A-Za-z]{3,})\s+(\d{4})`)
)

// ParseDate reads the free-text date of an item. It accepts a strict
// YYYY-MM-DD value or the first "D Mon YYYY" run inside the text. The
// second result is false when neither form parses.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if isoDatePattern.MatchString(s) {
		t, err := time.Parse("2006-01-02", s)
		return t, err == nil
	}
	m := looseDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(m[2]+" "+m[1]+", "+m[3], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SortByDate orders items newest first. Items without a parsable date come
// before dated ones, ordered by title. Items sharing a date keep their input
// order.
func SortByDate(items []Item) {
	type keyed struct {
		item  Item
		date  time.Time
		dated bool
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		d, ok := ParseDate(it.Date)
		ks[i] = keyed{item: it, date: d, dated: ok}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		switch {
		case a.dated && b.dated:
			return a.date.After(b.date)
		case a.dated != b.dated:
			return b.dated
		default:
			return a.item.Title < b.item.Title
		}
	})
	for i := range ks {
		items[i] = ks[i].item
	}
}
