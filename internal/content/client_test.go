package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeHost serves an in-memory content tree and records request paths.
type fakeHost struct {
	mu       sync.Mutex
	files    map[string]string
	requests []string
}

func (h *fakeHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.requests = append(h.requests, r.URL.Path)
	body, ok := h.files[r.URL.Path]
	h.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write([]byte(body))
}

func (h *fakeHost) count(p string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.requests {
		if r == p {
			n++
		}
	}
	return n
}

func newTestHost(t *testing.T, files map[string]string) (*fakeHost, *httptest.Server) {
	t.Helper()
	h := &fakeHost{files: files}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return h, srv
}

func TestFetchItem(t *testing.T) {
	_, srv := newTestHost(t, map[string]string{
		"/Articles/foo.md":   "# Foo\n\nBody",
		"/Articles/foo.json": `{"title":"Foo","description":"d","author":"a","date":"2024-01-01","image":"bar.png"}`,
	})
	c := NewClient(srv.URL + "/")

	item, err := c.FetchItem(context.Background(), "Articles/foo")
	if err != nil {
		t.Fatalf("FetchItem: %v", err)
	}
	if item.Title != "Foo" || item.Author != "a" || item.Date != "2024-01-01" {
		t.Errorf("metadata not decoded: %+v", item)
	}
	if item.Content != "# Foo\n\nBody" {
		t.Errorf("content = %q", item.Content)
	}
	if want := srv.URL + "/Articles/bar.png"; item.Image != want {
		t.Errorf("image = %q, want %q", item.Image, want)
	}
	if item.Name != "Articles/foo" {
		t.Errorf("name = %q", item.Name)
	}
}

func TestFetchItemPartialFailure(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"missing markdown", map[string]string{"/Articles/foo.json": `{"title":"Foo"}`}},
		{"missing metadata", map[string]string{"/Articles/foo.md": "# Foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newTestHost(t, tt.files)
			c := NewClient(srv.URL)

			item, err := c.FetchItem(context.Background(), "Articles/foo")
			if err == nil {
				t.Fatalf("expected error, got item %+v", item)
			}
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FetchError, got %T", err)
			}
			if !fe.NotFound() || !IsNotFound(err) {
				t.Errorf("expected not-found fetch error, got status %d", fe.StatusCode)
			}
			if item != nil {
				t.Error("partial results must not be returned")
			}
		})
	}
}

func TestFetchItemNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(base).FetchItem(context.Background(), "Articles/foo")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.StatusCode != 0 {
		t.Errorf("status = %d, want 0 for a transport failure", fe.StatusCode)
	}
}

func TestResolveImage(t *testing.T) {
	h, srv := newTestHost(t, map[string]string{
		"/Articles/probe.png": "png",
		"/Articles/probe.jpg": "", // present but checked first
	})
	c := NewClient(srv.URL)
	ctx := context.Background()

	tests := []struct {
		name, item, image, want string
	}{
		{"absolute kept", "Articles/foo", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"protocol relative kept", "Articles/foo", "//cdn.example.com/a.png", "//cdn.example.com/a.png"},
		{"relative resolved against dir", "Articles/foo", "bar.png", srv.URL + "/Articles/bar.png"},
		{"root item", "about", "me.png", srv.URL + "/me.png"},
		{"probe first hit", "Articles/probe", "", srv.URL + "/Articles/probe.jpg"},
		{"probe miss", "Articles/none", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ResolveImage(ctx, tt.item, tt.image); got != tt.want {
				t.Errorf("ResolveImage(%q, %q) = %q, want %q", tt.item, tt.image, got, tt.want)
			}
		})
	}

	if h.count("/Articles/probe.png") != 0 {
		t.Error("probing should stop at the first successful extension")
	}
	for _, ext := range ImageExtensions {
		if h.count("/Articles/none"+ext) != 1 {
			t.Errorf("expected one probe for %s", ext)
		}
	}
}

func TestResolveImageIdempotent(t *testing.T) {
	c := NewClient("https://content.example.com")
	abs := "https://content.example.com/Articles/bar.png"
	if got := c.ResolveImage(context.Background(), "Articles/foo", abs); got != abs {
		t.Errorf("absolute image changed: %q", got)
	}
}

func TestResolveAsset(t *testing.T) {
	c := NewClient("https://content.example.com/")
	tests := []struct{ in, want string }{
		{"~/Articles/pic.png", "https://content.example.com/Articles/pic.png"},
		{"https://other/pic.png", "https://other/pic.png"},
		{"pic.png", "pic.png"},
	}
	for _, tt := range tests {
		if got := c.ResolveAsset(tt.in); got != tt.want {
			t.Errorf("ResolveAsset(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFetchIndex(t *testing.T) {
	_, srv := newTestHost(t, map[string]string{
		"/Articles/index.json": `[{"name":"b","title":"B"},{"name":"a","title":"A"}]`,
	})
	items, err := NewClient(srv.URL).FetchIndex(context.Background())
	if err != nil {
		t.Fatalf("FetchIndex: %v", err)
	}
	if len(items) != 2 || items[0].Name != "b" || items[1].Name != "a" {
		t.Errorf("index order not preserved: %+v", items)
	}
}

func TestFetchIndexError(t *testing.T) {
	_, srv := newTestHost(t, map[string]string{"/Articles/index.json": "not json"})
	_, err := NewClient(srv.URL).FetchIndex(context.Background())
	var ie *IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *IndexError, got %v", err)
	}

	_, srv2 := newTestHost(t, nil)
	_, err = NewClient(srv2.URL).FetchIndex(context.Background())
	if !errors.As(err, &ie) || ie.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 IndexError, got %v", err)
	}
}

func TestClientMemoizesWithinTTL(t *testing.T) {
	h, srv := newTestHost(t, map[string]string{"/Articles/foo.md": "body"})
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := NewClient(srv.URL, WithCache(NewMemoryCache(clock)), WithTTL(5*time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.FetchContent(ctx, "Articles/foo"); err != nil {
			t.Fatalf("FetchContent: %v", err)
		}
	}
	if n := h.count("/Articles/foo.md"); n != 1 {
		t.Errorf("requests within TTL = %d, want 1", n)
	}

	clock.advance(5*time.Minute + time.Second)
	if _, err := c.FetchContent(ctx, "Articles/foo"); err != nil {
		t.Fatalf("FetchContent: %v", err)
	}
	if n := h.count("/Articles/foo.md"); n != 2 {
		t.Errorf("requests after TTL = %d, want 2", n)
	}
}

func TestClientDoesNotCacheFailures(t *testing.T) {
	h, srv := newTestHost(t, map[string]string{})
	c := NewClient(srv.URL, WithCache(NewMemoryCache(nil)))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := c.FetchContent(ctx, "Articles/missing"); err == nil {
			t.Fatal("expected error")
		}
	}
	if n := h.count("/Articles/missing.md"); n != 2 {
		t.Errorf("failed responses were cached: %d requests", n)
	}
}

func TestURLEscapesSegments(t *testing.T) {
	c := NewClient("https://content.example.com")
	got := c.URL("Articles/my post.md")
	if !strings.HasSuffix(got, "/Articles/my%20post.md") {
		t.Errorf("URL = %q", got)
	}
}
