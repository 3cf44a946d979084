package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cgblog/internal/config"
	"github.com/ziadkadry99/cgblog/internal/contenthost"
)

var contentPort int

var contentCmd = &cobra.Command{
	Use:   "content [content-dir]",
	Short: "Serve a local content directory like the content host",
	Long: `Serves a local content directory (Articles/, Pages/) over HTTP with
permissive CORS, so the blog can be pointed at it with
base_url: http://localhost:4000 while writing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		log := newLogger(config.DefaultLogLevel)

		host, err := contenthost.New(root, log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at http://localhost:%d\n", host.Root(), contentPort)
		if err := host.ListenAndServe(ctx, fmt.Sprintf(":%d", contentPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	contentCmd.Flags().IntVar(&contentPort, "port", contenthost.DefaultPort, "port to listen on")
	rootCmd.AddCommand(contentCmd)
}
