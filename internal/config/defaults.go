package config

import "time"

// Defaults for a fresh configuration.
const (
	DefaultBaseURL        = "https://cg-blog-articles.pages.dev"
	DefaultName           = "Creative Geek"
	DefaultLogoText       = "CG Blog"
	DefaultPort           = 8080
	DefaultDataDir        = ".cgblog"
	DefaultPageSize       = 5
	DefaultCacheTTL       = 5 * time.Minute
	DefaultRequestTimeout = 15 * time.Second
	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultSnippetRadius  = 50
	DefaultLogLevel       = "info"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".cgblog.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		Name:           DefaultName,
		LogoText:       DefaultLogoText,
		GitHubURL:      "https://github.com/",
		LinkedInURL:    "https://www.linkedin.com/",
		Port:           DefaultPort,
		DataDir:        DefaultDataDir,
		PageSize:       DefaultPageSize,
		CacheTTL:       DefaultCacheTTL,
		RequestTimeout: DefaultRequestTimeout,
		SearchDebounce: DefaultSearchDebounce,
		SnippetRadius:  DefaultSnippetRadius,
		LogLevel:       DefaultLogLevel,
	}
}
