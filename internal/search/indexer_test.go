package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ziadkadry99/cgblog/internal/content"
)

type fakeCorpus struct {
	mu         sync.Mutex
	index      []content.Item
	bodies     map[string]string
	indexErr   error
	indexCalls int
	bodyCalls  []string
}

func (f *fakeCorpus) FetchIndex(context.Context) ([]content.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexCalls++
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	return f.index, nil
}

func (f *fakeCorpus) FetchArticleContent(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodyCalls = append(f.bodyCalls, name)
	body, ok := f.bodies[name]
	if !ok {
		return "", &content.FetchError{Name: name, StatusCode: 404}
	}
	return body, nil
}

func resultNames(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Item.Name
	}
	return out
}

func TestFilterBaseline(t *testing.T) {
	items := []content.Item{{Name: "rust", Title: "Rust Basics"}, {Name: "go", Title: "Go Tips"}}

	got := FilterBaseline(items, "rust")
	if len(got) != 1 || got[0].Name != "rust" {
		t.Errorf("FilterBaseline(rust) = %+v", got)
	}
	if got := FilterBaseline(items, "RUST"); len(got) != 1 {
		t.Error("baseline filter should ignore case")
	}
	if got := FilterBaseline(items, ""); len(got) != 0 {
		t.Errorf("blank query returned %d items", len(got))
	}
	if got := FilterBaseline(items, "   "); len(got) != 0 {
		t.Errorf("whitespace query returned %d items", len(got))
	}
}

func TestSearchMatchesDescription(t *testing.T) {
	corpus := &fakeCorpus{index: []content.Item{
		{Name: "a", Title: "Alpha", Description: "About goroutines"},
		{Name: "b", Title: "Beta", Description: "Nothing here"},
	}}
	res, err := NewIndexer(corpus).Search(context.Background(), "GOROUTINE", false)
	if err != nil {
		t.Fatal(err)
	}
	if got := resultNames(res); len(got) != 1 || got[0] != "a" {
		t.Errorf("results = %v", got)
	}
	if len(corpus.bodyCalls) != 0 {
		t.Error("baseline search must not fetch bodies")
	}
}

func TestSearchContent(t *testing.T) {
	corpus := &fakeCorpus{
		index: []content.Item{
			{Name: "one", Title: "Channels"},
			{Name: "two", Title: "Maps"},
			{Name: "three", Title: "Slices"},
			{Name: "four", Title: "Broken"},
		},
		bodies: map[string]string{
			"two":   "Maps are hash tables. Iterating over channels is different.",
			"three": "Nothing relevant.",
		},
	}
	ix := NewIndexer(corpus)

	res, err := ix.Search(context.Background(), "channels", true)
	if err != nil {
		t.Fatal(err)
	}
	got := resultNames(res)
	if strings.Join(got, ",") != "one,two" {
		t.Fatalf("results = %v, want [one two]", got)
	}
	if res[0].Snippet != "" {
		t.Error("metadata matches carry no snippet")
	}
	if !strings.Contains(res[1].Snippet, "channels") {
		t.Errorf("snippet = %q", res[1].Snippet)
	}
	if strings.Contains(strings.Join(corpus.bodyCalls, ","), "one") {
		t.Error("bodies of metadata matches must not be fetched")
	}
}

func TestSearchContentNeedsThreeRunes(t *testing.T) {
	corpus := &fakeCorpus{
		index:  []content.Item{{Name: "x", Title: "Nope"}},
		bodies: map[string]string{"x": "go go go"},
	}
	res, err := NewIndexer(corpus).Search(context.Background(), "go", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 0 || len(corpus.bodyCalls) != 0 {
		t.Errorf("short query searched bodies: %v, calls %v", resultNames(res), corpus.bodyCalls)
	}
}

func TestSearchBlankQuery(t *testing.T) {
	corpus := &fakeCorpus{index: []content.Item{{Name: "x", Title: "Anything"}}}
	res, err := NewIndexer(corpus).Search(context.Background(), "  ", true)
	if err != nil || len(res) != 0 {
		t.Errorf("blank query = %v, %v", res, err)
	}
	if corpus.indexCalls != 0 {
		t.Error("blank query should not load the index")
	}
}

func TestIndexLoadedOnce(t *testing.T) {
	corpus := &fakeCorpus{indexErr: errors.New("down")}
	ix := NewIndexer(corpus)
	ctx := context.Background()

	if _, err := ix.Search(ctx, "x", false); err == nil {
		t.Fatal("expected index error")
	}
	corpus.indexErr = nil
	corpus.index = []content.Item{{Name: "x", Title: "x"}}
	for i := 0; i < 3; i++ {
		if _, err := ix.Search(ctx, "x", false); err != nil {
			t.Fatal(err)
		}
	}
	if corpus.indexCalls != 2 {
		t.Errorf("index calls = %d, want 2", corpus.indexCalls)
	}
}

func TestSearchStopsOnCancel(t *testing.T) {
	corpus := &fakeCorpus{
		index:  []content.Item{{Name: "a"}, {Name: "b"}},
		bodies: map[string]string{"a": "match", "b": "match"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewIndexer(corpus).Search(ctx, "match", true); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSnippet(t *testing.T) {
	body := strings.Repeat("a", 100) + "NEEDLE" + strings.Repeat("b", 100)
	tests := []struct {
		name, body, query, want string
		radius                  int
	}{
		{"clipped both sides", body, "needle", "..." + strings.Repeat("a", 50) + "NEEDLE" + strings.Repeat("b", 50) + "...", 50},
		{"at start", "needle then text", "NEEDLE", "needle then...", 5},
		{"at end", "text then needle", "needle", "...then needle", 5},
		{"whole body", "short needle", "needle", "short needle", 50},
		{"missing", "nothing", "needle", "", 50},
		{"runes not bytes", "مرحبا بالعالم needle", "needle", "...عالم needle", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet(tt.body, tt.query, tt.radius); got != tt.want {
				t.Errorf("Snippet = %q, want %q", got, tt.want)
			}
		})
	}
}
