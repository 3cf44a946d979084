package mcp

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/cgblog/internal/content"
	"github.com/ziadkadry99/cgblog/internal/pager"
	"github.com/ziadkadry99/cgblog/internal/render"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Library is the content the tools read from. content.Client satisfies it.
type Library interface {
	FetchIndex(ctx context.Context) ([]content.Item, error)
	FetchArticleContent(ctx context.Context, name string) (string, error)
	FetchItem(ctx context.Context, name string) (*content.Item, error)
}

// Server wraps an MCP server that exposes the blog's articles.
type Server struct {
	lib      Library
	renderer *render.Renderer
	pageSize int
	log      logrus.FieldLogger
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server reading from lib. pageSize applies to
// list_articles; values below one use the listing default.
func NewServer(lib Library, pageSize int, log logrus.FieldLogger) *Server {
	if pageSize < 1 {
		pageSize = pager.DefaultPageSize
	}
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}
	s := &Server{
		lib:      lib,
		renderer: render.New(nil),
		pageSize: pageSize,
		log:      log,
	}

	s.mcp = server.NewMCPServer(
		"cgblog",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchArticlesTool, s.handleSearchArticles)
	s.mcp.AddTool(getArticleTool, s.handleGetArticle)
	s.mcp.AddTool(listArticlesTool, s.handleListArticles)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
