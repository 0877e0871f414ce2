package config

import (
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/pkg/config"
)

// Serper holds the configuration for the Serper.dev search API.
type Serper struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	NumResults    int           `mapstructure:"num_results"`
}

// Gemini holds the configuration for the Gemini grounded-search client.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Anthropic holds the configuration for the Anthropic Messages API.
type Anthropic struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// OpenAI holds the configuration for the OpenAI-compatible extraction client.
type OpenAI struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// Extraction selects and configures the extraction provider.
type Extraction struct {
	Provider  string    `mapstructure:"provider"`
	Anthropic Anthropic `mapstructure:"anthropic"`
	OpenAI    OpenAI    `mapstructure:"openai"`
}

// Cache configures the provider response caches.
type Cache struct {
	Backend     string        `mapstructure:"backend"`
	Dir         string        `mapstructure:"dir"`
	SearchTTL   time.Duration `mapstructure:"search_ttl"`
	GroundedTTL time.Duration `mapstructure:"grounded_ttl"`
}

// Fetcher holds run-level settings.
type Fetcher struct {
	StatusPath         string `mapstructure:"status_path"`
	CronSchedule       string `mapstructure:"cron_schedule"`
	ContentFetch       bool   `mapstructure:"content_fetch"`
	MinSnippetLength   int    `mapstructure:"min_snippet_length"`
	MaxContentBodySize int    `mapstructure:"max_content_body_size"`
}

// Telegram holds configuration for the optional run-summary notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the fetcher service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	Serper     Serper          `mapstructure:"serper"`
	Gemini     Gemini          `mapstructure:"gemini"`
	Extraction Extraction      `mapstructure:"extraction"`
	Cache      Cache           `mapstructure:"cache"`
	Fetcher    Fetcher         `mapstructure:"fetcher"`
	Telegram   Telegram        `mapstructure:"telegram"`
}

// Load loads the fetcher configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Serper.BaseURL == "" {
		c.Serper.BaseURL = "https://google.serper.dev"
	}
	if c.Serper.MaxConcurrent <= 0 {
		c.Serper.MaxConcurrent = 3
	}
	if c.Serper.Timeout <= 0 {
		c.Serper.Timeout = 30 * time.Second
	}
	if c.Serper.NumResults <= 0 {
		c.Serper.NumResults = 10
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Gemini.MaxRequestPerMinute <= 0 {
		c.Gemini.MaxRequestPerMinute = 10
	}
	if c.Extraction.Provider == "" {
		c.Extraction.Provider = "anthropic"
	}
	if c.Extraction.Anthropic.BaseURL == "" {
		c.Extraction.Anthropic.BaseURL = "https://api.anthropic.com"
	}
	if c.Extraction.Anthropic.Model == "" {
		c.Extraction.Anthropic.Model = "claude-haiku-4-5-20251001"
	}
	if c.Extraction.Anthropic.MaxTokens <= 0 {
		c.Extraction.Anthropic.MaxTokens = 8000
	}
	if c.Extraction.OpenAI.Model == "" {
		c.Extraction.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Extraction.OpenAI.MaxTokens <= 0 {
		c.Extraction.OpenAI.MaxTokens = 8000
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "disk"
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "cache"
	}
	if c.Cache.SearchTTL <= 0 {
		c.Cache.SearchTTL = 7 * 24 * time.Hour
	}
	if c.Cache.GroundedTTL <= 0 {
		c.Cache.GroundedTTL = 24 * time.Hour
	}
	if c.Fetcher.StatusPath == "" {
		c.Fetcher.StatusPath = "public/refresh_status.json"
	}
	if c.Fetcher.MinSnippetLength <= 0 {
		c.Fetcher.MinSnippetLength = 80
	}
	if c.Fetcher.MaxContentBodySize <= 0 {
		c.Fetcher.MaxContentBodySize = 500
	}
}
