package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/cgblog/internal/content"
	"github.com/ziadkadry99/cgblog/internal/direction"
	"github.com/ziadkadry99/cgblog/internal/pager"
	"github.com/ziadkadry99/cgblog/internal/search"
)

// handleSearchArticles runs the same search as the site's search dialog.
func (s *Server) handleSearchArticles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	includeContent := request.GetBool("include_content", false)

	results, err := search.NewIndexer(s.lib, search.WithIndexerLogger(s.log)).Search(ctx, query, includeContent)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No articles matched %q.", query)), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleGetArticle returns one article with its metadata header and outline.
func (s *Server) handleGetArticle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	name = strings.Trim(name, "/")
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	item, err := s.lib.FetchItem(ctx, content.ArticlePath(name))
	if err != nil {
		if content.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("No article named %q. Use list_articles to see what exists.", name)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load article: %v", err)), nil
	}
	item.Name = name

	doc, err := s.renderer.RenderString(item.Content)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read article: %v", err)), nil
	}

	var sb strings.Builder
	writeHeader(&sb, *item)
	sb.WriteString(fmt.Sprintf("Direction: %s\n", direction.ClassifyString(item.DisplayTitle(), direction.StartsWith).Direction))

	if headings := doc.Headings(); len(headings) > 0 {
		sb.WriteString("\nOutline:\n")
		for _, h := range headings {
			sb.WriteString(fmt.Sprintf("%s- %s (#%s)\n", strings.Repeat("  ", h.Level-1), h.Text, h.Anchor))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(item.Content)
	if !strings.HasSuffix(item.Content, "\n") {
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleListArticles returns one page of the index.
func (s *Server) handleListArticles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := request.GetInt("page", 1)
	if page < 1 {
		page = 1
	}

	items, total, err := pager.NewIndexSource(s.lib).Slice(ctx, (page-1)*s.pageSize, s.pageSize)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load the article index: %v", err)), nil
	}
	pages := (total + s.pageSize - 1) / s.pageSize

	if len(items) == 0 {
		if total == 0 {
			return mcp.NewToolResultText("No articles published yet."), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("No articles on page %d. There are %d page(s).", page, pages)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Page %d of %d (%d article(s)):\n", page, pages, total))
	for _, it := range items {
		sb.WriteString("\n")
		writeHeader(&sb, it)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func writeHeader(sb *strings.Builder, it content.Item) {
	sb.WriteString(fmt.Sprintf("# %s\n", it.DisplayTitle()))
	sb.WriteString(fmt.Sprintf("Name: %s\n", it.Name))
	sb.WriteString(fmt.Sprintf("Path: /blog/%s\n", it.Name))
	if it.Author != "" {
		sb.WriteString(fmt.Sprintf("Author: %s\n", it.Author))
	}
	if it.Date != "" {
		sb.WriteString(fmt.Sprintf("Date: %s\n", it.Date))
	}
	if it.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", it.Description))
	}
}

// formatSearchResults converts search results into text for agents.
func formatSearchResults(results []search.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d article(s):\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		writeHeader(&sb, r.Item)
		if r.Snippet != "" {
			sb.WriteString(fmt.Sprintf("Snippet: %s\n", r.Snippet))
		}
	}

	return sb.String()
}
