package contenthost

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupHost(t *testing.T) *Host {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.html":               "<h1>root</h1>",
		"Articles/index.json":      `[{"name":"hello"}]`,
		"Articles/hello.md":        "# Hello",
		"Articles/hello.json":      `{"title":"Hello"}`,
		"Articles/hello.webp":      "RIFF",
		"Pages/docs/index.html":    "<p>docs</p>",
		"Pages/font.woff2":         "wOF2",
		"Pages/data.bin":           "\x00\x01",
		"Pages/nested/empty/.keep": "",
	}
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	h, err := New(root, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func do(h *Host, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.Handler().ServeHTTP(w, req)
	return w
}

func TestServeFiles(t *testing.T) {
	h := setupHost(t)
	tests := []struct {
		path        string
		status      int
		contentType string
		body        string
	}{
		{"/", 200, "text/html", "<h1>root</h1>"},
		{"/Articles/index.json", 200, "application/json", `[{"name":"hello"}]`},
		{"/Articles/hello.md", 200, "text/markdown", "# Hello"},
		{"/Articles/hello.webp", 200, "image/webp", "RIFF"},
		{"/Pages/font.woff2", 200, "font/woff2", "wOF2"},
		{"/Pages/data.bin", 200, "application/octet-stream", "\x00\x01"},
		{"/Pages/docs", 200, "text/html", "<p>docs</p>"},
		{"/Pages/docs/", 200, "text/html", "<p>docs</p>"},
		{"/Pages/nested/empty", 404, "text/plain", "Not Found"},
		{"/Articles/missing.md", 404, "text/plain", "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(h, http.MethodGet, tt.path, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if got := w.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestTraversalRejected(t *testing.T) {
	h := setupHost(t)
	outside := filepath.Join(filepath.Dir(h.Root()), "secret.txt")
	os.WriteFile(outside, []byte("secret"), 0o644)

	for _, p := range []string{"/../secret.txt", "/Articles/../../secret.txt"} {
		w := do(h, http.MethodGet, p, nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s: status = %d, want 403", p, w.Code)
		}
		if strings.Contains(w.Body.String(), "secret") {
			t.Errorf("%s leaked the file", p)
		}
	}
}

func TestHead(t *testing.T) {
	h := setupHost(t)
	w := do(h, http.MethodHead, "/Articles/hello.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("Content-Length") != "7" {
		t.Errorf("Content-Length = %q", w.Header().Get("Content-Length"))
	}
	if w.Body.Len() != 0 {
		t.Error("HEAD returned a body")
	}
}

func TestMethodsAndCORS(t *testing.T) {
	h := setupHost(t)

	w := do(h, http.MethodGet, "/Articles/hello.md", map[string]string{"Origin": "http://localhost:5173"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" && got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}

	w = do(h, http.MethodOptions, "/Articles/hello.md", map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": "GET",
	})
	if w.Code != http.StatusOK && w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("preflight missing Allow-Origin")
	}

	w = do(h, http.MethodOptions, "/Articles/hello.md", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("plain OPTIONS status = %d", w.Code)
	}

	w = do(h, http.MethodPost, "/Articles/hello.md", nil)
	if w.Code != http.StatusMethodNotAllowed || w.Body.String() != "Method Not Allowed" {
		t.Errorf("POST: status %d body %q", w.Code, w.Body.String())
	}
}

func TestNewRejectsMissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Error("expected error for missing directory")
	}
	f := filepath.Join(t.TempDir(), "file")
	os.WriteFile(f, nil, 0o644)
	if _, err := New(f, nil); err == nil {
		t.Error("expected error for a file root")
	}
}

func TestMimeType(t *testing.T) {
	if got := MimeType("A.JPG"); got != "image/jpeg" {
		t.Errorf("MimeType(A.JPG) = %q", got)
	}
	if got := MimeType("noext"); got != "application/octet-stream" {
		t.Errorf("MimeType(noext) = %q", got)
	}
}
