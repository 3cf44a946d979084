package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cgblog/internal/db"
	"github.com/ziadkadry99/cgblog/internal/server"
	"github.com/ziadkadry99/cgblog/internal/site"
)

// pruneInterval is how often expired visitor sessions are removed.
const pruneInterval = 10 * time.Minute

var (
	servePort int
	serveDev  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blog",
	Long: `Starts the blog web server: home, paged article list, articles, about,
projects, resume and sitemap, plus the live search socket. Listing
state is kept per visitor session in a SQLite database under data_dir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		if serveDev {
			cfg.AllowAllOrigins = true
		}
		log := newLogger(cfg.LogLevel)

		client, release, err := newContentClient(cfg, log)
		if err != nil {
			return fmt.Errorf("creating content client: %w", err)
		}
		defer release()

		dbPath := filepath.Join(cfg.DataDir, "cgblog.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: cfg.AllowAllOrigins,
			Logger:   log,
		}, database)

		blog, err := site.New(site.Config{
			Name:              cfg.Name,
			LogoText:          cfg.LogoText,
			GitHubURL:         cfg.GitHubURL,
			LinkedInURL:       cfg.LinkedInURL,
			ResumeURL:         cfg.ResumeURL,
			CheckResumeExists: cfg.CheckResumeExists,
			UseCoverImage:     cfg.UseCoverImage,
			PageSize:          cfg.PageSize,
			SearchDebounce:    cfg.SearchDebounce,
			SnippetRadius:     cfg.SnippetRadius,
			RequestTimeout:    cfg.RequestTimeout,
		}, client, database, log)
		if err != nil {
			return fmt.Errorf("creating site: %w", err)
		}
		blog.RegisterRoutes(srv.Router())

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go pruneSessions(ctx, database, log)
		go func() {
			<-ctx.Done()
			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		log.WithFields(logrus.Fields{
			"version":  Version,
			"content":  cfg.BaseURL,
			"database": dbPath,
		}).Info("cgblog starting")

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// pruneSessions drops sessions and listing state idle for longer than
// site.SessionIdleTimeout, once at start and then every pruneInterval, until
// ctx is done.
func pruneSessions(ctx context.Context, database *db.DB, log logrus.FieldLogger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		n, err := database.PruneSessions(time.Now().Add(-site.SessionIdleTimeout))
		if err != nil {
			log.WithError(err).Warn("pruning sessions failed")
		} else if n > 0 {
			log.WithField("sessions", n).Debug("pruned expired sessions")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "allow all CORS origins")
	rootCmd.AddCommand(serveCmd)
}
