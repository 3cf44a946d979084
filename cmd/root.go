package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cgblog/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cgblog",
	Short: "Personal blog and portfolio served from a static content host",
	Long: `cgblog renders a personal blog and portfolio whose articles, pages and
index live on a static content host. It serves the site with paged
article lists and live search, hosts a content directory locally for
writing, regenerates the article index, and exposes articles to AI
agents over MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.FileName, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
