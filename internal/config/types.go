package config

import "time"

// Config is the top-level cgblog configuration, corresponding to .cgblog.yml.
type Config struct {
	// Content host and site identity.
	BaseURL           string `yaml:"base_url" koanf:"base_url"`
	Name              string `yaml:"name" koanf:"name"`
	LogoText          string `yaml:"logo_text" koanf:"logo_text"`
	GitHubURL         string `yaml:"github_url" koanf:"github_url"`
	LinkedInURL       string `yaml:"linkedin_url" koanf:"linkedin_url"`
	ResumeURL         string `yaml:"resume_url" koanf:"resume_url"`
	CheckResumeExists bool   `yaml:"check_resume_exists" koanf:"check_resume_exists"`
	UseCoverImage     bool   `yaml:"use_cover_image" koanf:"use_cover_image"`

	// Server.
	Port            int    `yaml:"port" koanf:"port"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	DataDir         string `yaml:"data_dir" koanf:"data_dir"`

	// Behavior.
	PageSize       int           `yaml:"page_size" koanf:"page_size"`
	CacheTTL       time.Duration `yaml:"cache_ttl" koanf:"cache_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
	SearchDebounce time.Duration `yaml:"search_debounce" koanf:"search_debounce"`
	SnippetRadius  int           `yaml:"snippet_radius" koanf:"snippet_radius"`

	// Optional shared cache. Empty RedisAddr keeps the cache in memory.
	RedisAddr     string `yaml:"redis_addr" koanf:"redis_addr"`
	RedisPassword string `yaml:"redis_password" koanf:"redis_password"`
	RedisDB       int    `yaml:"redis_db" koanf:"redis_db"`

	LogLevel string `yaml:"log_level" koanf:"log_level"`
}
