// Package config handles configuration loading for StratLens.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	Alerts    AlertsConfig    `mapstructure:"alerts"    yaml:"alerts"`
	Forecast  ForecastConfig  `mapstructure:"forecast"  yaml:"forecast"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"  yaml:"analysis"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// NewsConfig holds news source configuration.
type NewsConfig struct {
	APIKey   string   `mapstructure:"api_key"   yaml:"api_key"` // NewsAPI key
	Language string   `mapstructure:"language"  yaml:"language"`
	PageSize int      `mapstructure:"page_size" yaml:"page_size"`
	RSSFeeds []string `mapstructure:"rss_feeds" yaml:"rss_feeds"` // "Name|URL" entries
	UseRSS   bool     `mapstructure:"use_rss"   yaml:"use_rss"`
}

// SentimentConfig holds sentiment scorer configuration.
type SentimentConfig struct {
	Model       string `mapstructure:"model"        yaml:"model"` // "fast" or "deep"
	OpenAIKey   string `mapstructure:"openai_key"   yaml:"openai_key"`
	OpenAIModel string `mapstructure:"openai_model" yaml:"openai_model"`
}

// AlertsConfig holds alert engine and notification settings.
type AlertsConfig struct {
	SpikeThreshold  float64 `mapstructure:"spike_threshold"   yaml:"spike_threshold"`
	SlackWebhookURL string  `mapstructure:"slack_webhook_url" yaml:"slack_webhook_url"`
	TelegramToken   string  `mapstructure:"telegram_token"    yaml:"telegram_token"`
	TelegramChatID  int64   `mapstructure:"telegram_chat_id"  yaml:"telegram_chat_id"`
	DigestLimit     int     `mapstructure:"digest_limit"      yaml:"digest_limit"`
}

// ForecastConfig holds sentiment trend projection settings.
type ForecastConfig struct {
	Days int `mapstructure:"days" yaml:"days"`
}

// AnalysisConfig holds pipeline settings.
type AnalysisConfig struct {
	CacheTTL          int `mapstructure:"cache_ttl"          yaml:"cache_ttl"` // seconds
	ConcurrentFetches int `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches"`
	DefaultRangeDays  int `mapstructure:"default_range_days" yaml:"default_range_days"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.stratlens/config.yaml (home directory)
//  3. /etc/stratlens/config.yaml (system)
//
// Environment variables override config file values.
// Format: STRATLENS_<SECTION>_<KEY>, e.g., STRATLENS_NEWS_API_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".stratlens"))
	v.AddConfigPath("/etc/stratlens")

	v.SetEnvPrefix("STRATLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("STRATLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// News defaults
	v.SetDefault("news.language", "en")
	v.SetDefault("news.page_size", 100)
	v.SetDefault("news.use_rss", false)

	// Sentiment defaults
	v.SetDefault("sentiment.model", "fast")
	v.SetDefault("sentiment.openai_model", "gpt-4o-mini")

	// Alert defaults
	v.SetDefault("alerts.spike_threshold", 0.5)
	v.SetDefault("alerts.digest_limit", 10)

	// Forecast defaults
	v.SetDefault("forecast.days", 14)

	// Analysis defaults
	v.SetDefault("analysis.cache_ttl", 600) // 10 minutes
	v.SetDefault("analysis.concurrent_fetches", 5)
	v.SetDefault("analysis.default_range_days", 7)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("STRATLENS_NEWS_API_KEY"); key != "" {
		cfg.News.APIKey = key
	}
	if key := os.Getenv("STRATLENS_SENTIMENT_OPENAI_KEY"); key != "" {
		cfg.Sentiment.OpenAIKey = key
	}
	if key := os.Getenv("STRATLENS_ALERTS_SLACK_WEBHOOK_URL"); key != "" {
		cfg.Alerts.SlackWebhookURL = key
	}
	if key := os.Getenv("STRATLENS_ALERTS_TELEGRAM_TOKEN"); key != "" {
		cfg.Alerts.TelegramToken = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
