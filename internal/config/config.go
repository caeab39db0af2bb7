// Package config handles configuration loading for marketbrief.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/seenimoa/marketbrief/pkg/models"
)

// Config represents the complete application configuration. It is read
// once at process start and treated as immutable afterwards; every
// component receives it (or a sub-section) explicitly.
type Config struct {
	Report     ReportConfig        `mapstructure:"report"     yaml:"report"`
	Indices    []models.Instrument `mapstructure:"indices"    yaml:"indices"`
	Groups     []Group             `mapstructure:"groups"     yaml:"groups"`
	Categories []models.Category   `mapstructure:"categories" yaml:"categories"`
	Sources    []SourceConfig      `mapstructure:"sources"    yaml:"sources"`
	Fetch      FetchConfig         `mapstructure:"fetch"      yaml:"fetch"`
	Sentiment  SentimentConfig     `mapstructure:"sentiment"  yaml:"sentiment"`
	Logging    LoggingConfig       `mapstructure:"logging"    yaml:"logging"`
}

// ReportConfig holds document-level settings.
type ReportConfig struct {
	Title     string `mapstructure:"title"      yaml:"title"`
	Author    string `mapstructure:"author"     yaml:"author"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// Group is a named watchlist of equities rendered as one report section.
type Group struct {
	Name   string              `mapstructure:"name"   yaml:"name"`
	Stocks []models.Instrument `mapstructure:"stocks" yaml:"stocks"`
}

// SourceKind selects the fetch strategy for a news source.
type SourceKind string

const (
	SourceRSS    SourceKind = "rss"
	SourceScrape SourceKind = "scrape"
)

// SourceConfig describes one news source: either an RSS feed endpoint
// or a page-scrape target with CSS selectors.
type SourceConfig struct {
	Name      string     `mapstructure:"name"      yaml:"name"`
	Kind      SourceKind `mapstructure:"kind"      yaml:"kind"`
	URL       string     `mapstructure:"url"       yaml:"url"`
	Selectors Selectors  `mapstructure:"selectors" yaml:"selectors"`
}

// Selectors holds the CSS selectors for a scrape source.
type Selectors struct {
	Item    string `mapstructure:"item"    yaml:"item"` // article container
	Title   string `mapstructure:"title"   yaml:"title"`
	Link    string `mapstructure:"link"    yaml:"link"`
	Summary string `mapstructure:"summary" yaml:"summary"`
}

// FetchConfig holds quote retrieval settings.
type FetchConfig struct {
	HistoryDays int    `mapstructure:"history_days" yaml:"history_days"` // price series window
	Timeout     string `mapstructure:"timeout"      yaml:"timeout"`      // per-request timeout
	Benchmark   string `mapstructure:"benchmark"    yaml:"benchmark"`    // index symbol for beta
	Concurrency int    `mapstructure:"concurrency"  yaml:"concurrency"`  // parallel fetches per batch
}

// GetTimeout parses and returns the per-request timeout.
func (c *FetchConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// SentimentConfig holds the fear/greed gauge interpretation thresholds.
// A score at or below each bound falls into that band.
type SentimentConfig struct {
	ExtremeFearMax float64 `mapstructure:"extreme_fear_max" yaml:"extreme_fear_max"`
	FearMax        float64 `mapstructure:"fear_max"         yaml:"fear_max"`
	NeutralMax     float64 `mapstructure:"neutral_max"      yaml:"neutral_max"`
	GreedMax       float64 `mapstructure:"greed_max"        yaml:"greed_max"`
}

// Level interprets a 0–100 gauge score against the configured bands.
func (s *SentimentConfig) Level(score float64) string {
	switch {
	case score <= s.ExtremeFearMax:
		return "Extreme Fear"
	case score <= s.FearMax:
		return "Fear"
	case score <= s.NeutralMax:
		return "Neutral"
	case score <= s.GreedMax:
		return "Greed"
	default:
		return "Extreme Greed"
	}
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.marketbrief/config.yaml (home directory)
//  3. /etc/marketbrief/config.yaml (system)
//
// Environment variables override config file values.
// Format: MARKETBRIEF_<SECTION>_<KEY>, e.g., MARKETBRIEF_REPORT_OUTPUT_DIR
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".marketbrief"))
	v.AddConfigPath("/etc/marketbrief")

	v.SetEnvPrefix("MARKETBRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("MARKETBRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the watchlists and category tables are usable.
// An invalid configuration aborts the run before any fetch.
func (c *Config) Validate() error {
	if len(c.Indices) == 0 {
		return fmt.Errorf("config: no market indices configured")
	}
	if len(c.Groups) == 0 {
		return fmt.Errorf("config: no watchlist groups configured")
	}
	for _, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("config: watchlist group with empty name")
		}
		if len(g.Stocks) == 0 {
			return fmt.Errorf("config: watchlist group %q has no stocks", g.Name)
		}
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("config: no news categories configured")
	}
	for _, cat := range c.Categories {
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("config: category %q has no keywords", cat.Name)
		}
	}
	for _, s := range c.Sources {
		if s.Kind != SourceRSS && s.Kind != SourceScrape {
			return fmt.Errorf("config: source %q has unknown kind %q", s.Name, s.Kind)
		}
	}
	return nil
}

// setDefaults sets sensible defaults for all config values. The default
// watchlist mirrors the AI and power sector lists the report was built
// around, so the tool is usable with no config file at all.
func setDefaults(v *viper.Viper) {
	// Report defaults
	v.SetDefault("report.title", "Daily Market Brief")
	v.SetDefault("report.author", "marketbrief")
	v.SetDefault("report.output_dir", "reports")

	// Market indices
	v.SetDefault("indices", []map[string]any{
		{"symbol": "^GSPC", "name": "S&P 500"},
		{"symbol": "^IXIC", "name": "Nasdaq"},
		{"symbol": "^DJI", "name": "Dow Jones"},
		{"symbol": "^VIX", "name": "VIX"},
	})

	// Watchlist groups
	v.SetDefault("groups", []map[string]any{
		{
			"name": "AI",
			"stocks": []map[string]any{
				{"symbol": "NVDA", "name": "NVIDIA"},
				{"symbol": "MSFT", "name": "Microsoft"},
				{"symbol": "GOOGL", "name": "Alphabet"},
				{"symbol": "AMD", "name": "AMD"},
				{"symbol": "TSLA", "name": "Tesla"},
				{"symbol": "TSM", "name": "TSMC"},
			},
		},
		{
			"name": "Power",
			"stocks": []map[string]any{
				{"symbol": "CEG", "name": "Constellation Energy"},
				{"symbol": "VST", "name": "Vistra"},
			},
		},
	})

	// News categories and keyword tables
	v.SetDefault("categories", []map[string]any{
		{
			"name": "AI sector",
			"keywords": []string{
				"AI", "artificial intelligence", "NVIDIA", "NVDA", "GPU",
				"chatgpt", "openai", "machine learning", "deep learning",
				"data center", "llm", "neural network",
			},
			"max_items": 3,
		},
		{
			"name": "Power sector",
			"keywords": []string{
				"nuclear", "energy", "power", "electricity", "CEG", "VST",
				"constellation", "vistra", "renewable", "solar", "wind",
				"grid", "utility",
			},
			"max_items": 2,
		},
		{
			"name": "Macro",
			"keywords": []string{
				"S&P 500", "SPX", "nasdaq", "stock market", "federal reserve",
				"fed", "interest rate", "inflation", "GDP", "earnings",
				"bull market", "bear market", "rally",
			},
			"max_items": 2,
		},
	})

	// News sources
	v.SetDefault("sources", []map[string]any{
		{"name": "Yahoo Finance", "kind": "rss", "url": "https://finance.yahoo.com/news/rssindex"},
		{"name": "MarketWatch", "kind": "rss", "url": "https://feeds.marketwatch.com/marketwatch/topstories"},
		{"name": "CNBC", "kind": "rss", "url": "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
		{
			"name": "Yahoo Finance Latest", "kind": "scrape",
			"url": "https://finance.yahoo.com/news/",
			"selectors": map[string]any{
				"item": "article", "title": "h3", "link": "a", "summary": "p",
			},
		},
	})

	// Fetch defaults
	v.SetDefault("fetch.history_days", 60)
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.benchmark", "^GSPC")
	v.SetDefault("fetch.concurrency", 4)

	// Sentiment gauge thresholds
	v.SetDefault("sentiment.extreme_fear_max", 25.0)
	v.SetDefault("sentiment.fear_max", 45.0)
	v.SetDefault("sentiment.neutral_max", 55.0)
	v.SetDefault("sentiment.greed_max", 75.0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
