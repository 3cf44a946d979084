package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/cgblog/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio exposing the
blog's articles: search_articles, get_article and list_articles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg.LogLevel)

		client, release, err := newContentClient(cfg, log)
		if err != nil {
			return fmt.Errorf("creating content client: %w", err)
		}
		defer release()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		log.WithField("content", cfg.BaseURL).Info("cgblog MCP server started on stdio")

		srv := mcpserver.NewServer(client, cfg.PageSize, log)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
