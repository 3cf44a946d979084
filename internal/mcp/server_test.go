package mcp

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/cgblog/internal/content"
)

// mockLibrary implements Library for testing.
type mockLibrary struct {
	items    []content.Item
	bodies   map[string]string
	indexErr error
}

func (m *mockLibrary) FetchIndex(_ context.Context) ([]content.Item, error) {
	if m.indexErr != nil {
		return nil, m.indexErr
	}
	return m.items, nil
}

func (m *mockLibrary) FetchArticleContent(_ context.Context, name string) (string, error) {
	body, ok := m.bodies[name]
	if !ok {
		return "", &content.FetchError{Name: name, StatusCode: http.StatusNotFound}
	}
	return body, nil
}

func (m *mockLibrary) FetchItem(_ context.Context, name string) (*content.Item, error) {
	short := strings.TrimPrefix(name, content.ArticlesDir+"/")
	body, ok := m.bodies[short]
	if !ok {
		return nil, &content.FetchError{Name: name, StatusCode: http.StatusNotFound}
	}
	for _, it := range m.items {
		if it.Name == short {
			it.Content = body
			return &it, nil
		}
	}
	return &content.Item{Name: name, Content: body}, nil
}

func newLibrary() *mockLibrary {
	return &mockLibrary{
		items: []content.Item{
			{Name: "go-maps", Title: "Go maps", Description: "Hash maps in Go", Author: "Ziad", Date: "2024-03-01"},
			{Name: "arabic", Title: "مقالة", Description: "نص عربي"},
			{Name: "sqlite", Title: "SQLite notes", Description: "Embedded databases"},
		},
		bodies: map[string]string{
			"go-maps": "# Go maps\n\nMaps are hash tables.\n\n## Iteration order\n\nRandom.\n",
			"arabic":  "# مرحبا\n\nهذا نص.\n",
			"sqlite":  "WAL mode keeps readers and writers apart.",
		},
	}
}

func callText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"search_articles", searchArticlesTool, "search_articles"},
		{"get_article", getArticleTool, "get_article"},
		{"list_articles", listArticlesTool, "list_articles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	lib := newLibrary()
	srv := NewServer(lib, 0, nil)

	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.lib != lib {
		t.Error("library not set correctly")
	}
	if srv.pageSize != 5 {
		t.Errorf("pageSize = %d, want default 5", srv.pageSize)
	}
}

func TestHandleSearchArticles(t *testing.T) {
	srv := NewServer(newLibrary(), 5, nil)
	ctx := context.Background()

	t.Run("metadata match", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "GO"}

		result, err := srv.handleSearchArticles(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := callText(t, result)
		if !strings.Contains(text, "Found 1 article(s)") || !strings.Contains(text, "Path: /blog/go-maps") {
			t.Errorf("unexpected output:\n%s", text)
		}
	})

	t.Run("content match with snippet", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "readers", "include_content": true}

		result, err := srv.handleSearchArticles(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := callText(t, result)
		if !strings.Contains(text, "Name: sqlite") || !strings.Contains(text, "Snippet: ") {
			t.Errorf("unexpected output:\n%s", text)
		}
	})

	t.Run("no match", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "readers"}

		result, err := srv.handleSearchArticles(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Error("no results should not be an error")
		}
		if text := callText(t, result); !strings.HasPrefix(text, "No articles matched") {
			t.Errorf("unexpected output: %q", text)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleSearchArticles(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("index failure", func(t *testing.T) {
		lib := newLibrary()
		lib.indexErr = errors.New("host down")
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "go"}

		result, err := NewServer(lib, 5, nil).handleSearchArticles(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected tool error when the index fails")
		}
	})
}

func TestHandleGetArticle(t *testing.T) {
	srv := NewServer(newLibrary(), 5, nil)
	ctx := context.Background()

	t.Run("existing article", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"name": "go-maps"}

		result, err := srv.handleGetArticle(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := callText(t, result)
		for _, want := range []string{
			"# Go maps\n",
			"Author: Ziad\n",
			"Direction: ltr\n",
			"- Go maps (#go-maps)\n",
			"  - Iteration order (#iteration-order)\n",
			"Maps are hash tables.",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("output missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("right-to-left article", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"name": "/arabic/"}

		result, err := srv.handleGetArticle(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text := callText(t, result); !strings.Contains(text, "Direction: rtl") {
			t.Errorf("expected rtl direction:\n%s", text)
		}
	})

	t.Run("direction follows the title", func(t *testing.T) {
		lib := newLibrary()
		lib.items = append(lib.items, content.Item{Name: "quotes", Title: "Favourite quotes"})
		lib.bodies["quotes"] = "قال الحكيم: العلم نور.\n\nAnd in English too.\n"

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"name": "quotes"}

		result, err := NewServer(lib, 0, nil).handleGetArticle(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text := callText(t, result); !strings.Contains(text, "Direction: ltr\n") {
			t.Errorf("expected ltr direction for a Latin title over an Arabic body:\n%s", text)
		}
	})

	t.Run("missing article", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"name": "nope"}

		result, err := srv.handleGetArticle(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing article")
		}
		if text := callText(t, result); !strings.Contains(text, "list_articles") {
			t.Errorf("unexpected message: %q", text)
		}
	})

	t.Run("missing name param", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleGetArticle(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing name")
		}
	})
}

func TestHandleListArticles(t *testing.T) {
	srv := NewServer(newLibrary(), 2, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		args  map[string]any
		want  []string
		avoid []string
	}{
		{"default page", map[string]any{}, []string{"Page 1 of 2 (3 article(s))", "Name: go-maps", "Name: arabic"}, []string{"Name: sqlite"}},
		{"second page", map[string]any{"page": 2}, []string{"Page 2 of 2", "Name: sqlite"}, []string{"Name: go-maps"}},
		{"past the end", map[string]any{"page": 9}, []string{"No articles on page 9. There are 2 page(s)."}, nil},
		{"zero page", map[string]any{"page": 0}, []string{"Page 1 of 2"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.CallToolRequest{}
			req.Params.Arguments = tt.args

			result, err := srv.handleListArticles(ctx, req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.IsError {
				t.Fatalf("unexpected tool error: %v", result.Content)
			}
			text := callText(t, result)
			for _, w := range tt.want {
				if !strings.Contains(text, w) {
					t.Errorf("output missing %q:\n%s", w, text)
				}
			}
			for _, a := range tt.avoid {
				if strings.Contains(text, a) {
					t.Errorf("output should not contain %q:\n%s", a, text)
				}
			}
		})
	}

	t.Run("empty index", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		result, err := NewServer(&mockLibrary{}, 2, nil).handleListArticles(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text := callText(t, result); text != "No articles published yet." {
			t.Errorf("unexpected output: %q", text)
		}
	})
}

func TestFormatSearchResults(t *testing.T) {
	if got := formatSearchResults(nil); got != "Found 0 article(s):\n" {
		t.Errorf("unexpected output for empty results: %q", got)
	}
}
