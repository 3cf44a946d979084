package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/cgblog/internal/config"
	"github.com/ziadkadry99/cgblog/internal/content"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `cgblog init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Output goes to stderr so stdout stays
// free for MCP and command output.
func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	log.SetLevel(lvl)
	return log
}

// newContentClient creates the content client with a Redis cache when
// redis_addr is set and an in-memory cache otherwise. The returned func
// releases the cache.
func newContentClient(cfg *config.Config, log logrus.FieldLogger) (*content.Client, func(), error) {
	var cache content.Cache
	release := func() {}

	if cfg.RedisAddr != "" {
		rc, err := content.NewRedisCache(content.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		cache = rc
		release = func() { rc.Close() }
		log.WithField("addr", cfg.RedisAddr).Info("using redis content cache")
	} else {
		cache = content.NewMemoryCache(nil)
	}

	client := content.NewClient(cfg.BaseURL,
		content.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		content.WithCache(cache),
		content.WithTTL(cfg.CacheTTL),
		content.WithLogger(log),
	)
	return client, release, nil
}
