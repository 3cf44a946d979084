package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchArticlesTool defines the search_articles MCP tool.
var searchArticlesTool = mcp.NewTool("search_articles",
	mcp.WithDescription("Search blog articles by title and description, and optionally by their full text. Returns matching articles with snippets."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Text to look for, matched case-insensitively"),
	),
	mcp.WithBoolean("include_content",
		mcp.Description("Also search article bodies (queries longer than two characters only)"),
	),
)

// getArticleTool defines the get_article MCP tool.
var getArticleTool = mcp.NewTool("get_article",
	mcp.WithDescription("Get an article's metadata, outline and Markdown body."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Article name as listed in the index, e.g. go-maps"),
	),
)

// listArticlesTool defines the list_articles MCP tool.
var listArticlesTool = mcp.NewTool("list_articles",
	mcp.WithDescription("List articles newest first, one page at a time."),
	mcp.WithNumber("page",
		mcp.Description("Page number starting at 1 (default 1)"),
	),
)
