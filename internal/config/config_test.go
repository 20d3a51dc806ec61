package config

import (
	"os"
	"path/filepath"
	"testing"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	// Unset any env vars that would interfere
	envVars := []string{
		"STRATLENS_NEWS_API_KEY", "STRATLENS_SENTIMENT_OPENAI_KEY",
		"STRATLENS_ALERTS_SLACK_WEBHOOK_URL", "STRATLENS_ALERTS_TELEGRAM_TOKEN",
	}
	for _, e := range envVars {
		os.Unsetenv(e)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// News defaults
	if cfg.News.Language != "en" {
		t.Errorf("News.Language: got %q, want %q", cfg.News.Language, "en")
	}
	if cfg.News.PageSize != 100 {
		t.Errorf("News.PageSize: got %d, want 100", cfg.News.PageSize)
	}
	if cfg.News.UseRSS {
		t.Error("News.UseRSS should be false by default")
	}

	// Sentiment defaults
	if cfg.Sentiment.Model != "fast" {
		t.Errorf("Sentiment.Model: got %q, want %q", cfg.Sentiment.Model, "fast")
	}
	if cfg.Sentiment.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("Sentiment.OpenAIModel: got %q", cfg.Sentiment.OpenAIModel)
	}

	// Alert defaults
	if cfg.Alerts.SpikeThreshold != 0.5 {
		t.Errorf("Alerts.SpikeThreshold: got %f, want 0.5", cfg.Alerts.SpikeThreshold)
	}
	if cfg.Alerts.DigestLimit != 10 {
		t.Errorf("Alerts.DigestLimit: got %d, want 10", cfg.Alerts.DigestLimit)
	}

	// Forecast defaults
	if cfg.Forecast.Days != 14 {
		t.Errorf("Forecast.Days: got %d, want 14", cfg.Forecast.Days)
	}

	// Analysis defaults
	if cfg.Analysis.CacheTTL != 600 {
		t.Errorf("Analysis.CacheTTL: got %d, want 600", cfg.Analysis.CacheTTL)
	}
	if cfg.Analysis.ConcurrentFetches != 5 {
		t.Errorf("Analysis.ConcurrentFetches: got %d, want 5", cfg.Analysis.ConcurrentFetches)
	}
	if cfg.Analysis.DefaultRangeDays != 7 {
		t.Errorf("Analysis.DefaultRangeDays: got %d, want 7", cfg.Analysis.DefaultRangeDays)
	}

	// API defaults
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
news:
  api_key: "newsapi-test-key-123456"
  page_size: 50
  use_rss: true
sentiment:
  model: "deep"
  openai_model: "gpt-4o"
alerts:
  spike_threshold: 0.3
  digest_limit: 5
forecast:
  days: 7
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	os.Unsetenv("STRATLENS_NEWS_API_KEY")
	os.Unsetenv("STRATLENS_SENTIMENT_OPENAI_KEY")

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.News.APIKey != "newsapi-test-key-123456" {
		t.Errorf("News.APIKey: got %q", cfg.News.APIKey)
	}
	if cfg.News.PageSize != 50 {
		t.Errorf("News.PageSize: got %d, want 50", cfg.News.PageSize)
	}
	if !cfg.News.UseRSS {
		t.Error("News.UseRSS: got false, want true")
	}
	if cfg.Sentiment.Model != "deep" {
		t.Errorf("Sentiment.Model: got %q, want %q", cfg.Sentiment.Model, "deep")
	}
	if cfg.Alerts.SpikeThreshold != 0.3 {
		t.Errorf("Alerts.SpikeThreshold: got %f, want 0.3", cfg.Alerts.SpikeThreshold)
	}
	if cfg.Alerts.DigestLimit != 5 {
		t.Errorf("Alerts.DigestLimit: got %d, want 5", cfg.Alerts.DigestLimit)
	}
	if cfg.Forecast.Days != 7 {
		t.Errorf("Forecast.Days: got %d, want 7", cfg.Forecast.Days)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	cfg := &Config{}

	os.Setenv("STRATLENS_NEWS_API_KEY", "newsapi-from-env-key")
	os.Setenv("STRATLENS_SENTIMENT_OPENAI_KEY", "sk-test-openai-key-123456")
	os.Setenv("STRATLENS_ALERTS_SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")
	os.Setenv("STRATLENS_ALERTS_TELEGRAM_TOKEN", "123456:telegram-token")
	defer func() {
		os.Unsetenv("STRATLENS_NEWS_API_KEY")
		os.Unsetenv("STRATLENS_SENTIMENT_OPENAI_KEY")
		os.Unsetenv("STRATLENS_ALERTS_SLACK_WEBHOOK_URL")
		os.Unsetenv("STRATLENS_ALERTS_TELEGRAM_TOKEN")
	}()

	overrideFromEnv(cfg)

	if cfg.News.APIKey != "newsapi-from-env-key" {
		t.Errorf("News.APIKey: got %q", cfg.News.APIKey)
	}
	if cfg.Sentiment.OpenAIKey != "sk-test-openai-key-123456" {
		t.Errorf("Sentiment.OpenAIKey: got %q", cfg.Sentiment.OpenAIKey)
	}
	if cfg.Alerts.SlackWebhookURL != "https://hooks.slack.com/services/T/B/x" {
		t.Errorf("Alerts.SlackWebhookURL: got %q", cfg.Alerts.SlackWebhookURL)
	}
	if cfg.Alerts.TelegramToken != "123456:telegram-token" {
		t.Errorf("Alerts.TelegramToken: got %q", cfg.Alerts.TelegramToken)
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	os.Unsetenv("STRATLENS_NEWS_API_KEY")
	os.Unsetenv("STRATLENS_SENTIMENT_OPENAI_KEY")
	os.Unsetenv("STRATLENS_ALERTS_SLACK_WEBHOOK_URL")
	os.Unsetenv("STRATLENS_ALERTS_TELEGRAM_TOKEN")

	cfg := &Config{
		News: NewsConfig{APIKey: "from-config"},
	}
	overrideFromEnv(cfg)

	// Should retain the original value when env is not set
	if cfg.News.APIKey != "from-config" {
		t.Errorf("News.APIKey should stay as 'from-config' when env is unset, got %q", cfg.News.APIKey)
	}
}

// ── maskKey ──

func TestMaskKeyShort(t *testing.T) {
	// Keys with 8 or fewer characters should be fully masked
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"a", "***"},
		{"abcd", "***"},
		{"12345678", "***"},
	}
	for _, tc := range tests {
		got := maskKey(tc.input)
		if got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestMaskKeyLong(t *testing.T) {
	// Keys with more than 8 characters show first 3 + ... + last 3
	tests := []struct {
		input string
		want  string
	}{
		{"123456789", "123...789"},
		{"sk-abcdef1234567890xyz", "sk-...xyz"},
		{"ABCDEFGHIJKLMNOP", "ABC...NOP"},
	}
	for _, tc := range tests {
		got := maskKey(tc.input)
		if got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

// ── CheckAPIKeys / checkKey ──

func TestCheckAPIKeysAllEmpty(t *testing.T) {
	envVars := []string{
		"STRATLENS_NEWS_API_KEY", "STRATLENS_SENTIMENT_OPENAI_KEY",
		"STRATLENS_ALERTS_SLACK_WEBHOOK_URL", "STRATLENS_ALERTS_TELEGRAM_TOKEN",
	}
	for _, e := range envVars {
		os.Unsetenv(e)
	}

	cfg := &Config{}
	statuses := CheckAPIKeys(cfg)

	if len(statuses) != 4 {
		t.Fatalf("CheckAPIKeys: got %d statuses, want 4", len(statuses))
	}
	for _, s := range statuses {
		if s.IsSet {
			t.Errorf("Key %q should not be set", s.Name)
		}
		if s.Source != KeySourceNone {
			t.Errorf("Key %q source: got %q, want %q", s.Name, s.Source, KeySourceNone)
		}
	}
}

func TestCheckAPIKeysFromConfig(t *testing.T) {
	os.Unsetenv("STRATLENS_NEWS_API_KEY")

	cfg := &Config{
		News: NewsConfig{
			APIKey: "newsapi-very-long-key-value",
		},
	}
	statuses := CheckAPIKeys(cfg)

	found := false
	for _, s := range statuses {
		if s.Name == "NewsAPI Key" {
			found = true
			if !s.IsSet {
				t.Error("NewsAPI key should be set")
			}
			if s.Source != KeySourceConfig {
				t.Errorf("Source: got %q, want %q", s.Source, KeySourceConfig)
			}
			if s.Masked != "new...lue" {
				t.Errorf("Masked: got %q, want %q", s.Masked, "new...lue")
			}
		}
	}
	if !found {
		t.Error("NewsAPI Key status not found")
	}
}

func TestCheckAPIKeysFromEnv(t *testing.T) {
	os.Setenv("STRATLENS_NEWS_API_KEY", "newsapi-env-key-for-testing")
	defer os.Unsetenv("STRATLENS_NEWS_API_KEY")

	cfg := &Config{
		News: NewsConfig{
			APIKey: "newsapi-env-key-for-testing",
		},
	}
	statuses := CheckAPIKeys(cfg)

	for _, s := range statuses {
		if s.Name == "NewsAPI Key" {
			if s.Source != KeySourceEnv {
				t.Errorf("Source: got %q, want %q", s.Source, KeySourceEnv)
			}
		}
	}
}

func TestCheckKeySourceDetection(t *testing.T) {
	// No env, no value
	os.Unsetenv("TEST_VAR")
	s := checkKey("Test", "", "TEST_VAR")
	if s.Source != KeySourceNone {
		t.Errorf("empty value: got source %q, want %q", s.Source, KeySourceNone)
	}
	if s.IsSet {
		t.Error("empty value should not be set")
	}

	// Value from config (no env)
	s = checkKey("Test", "config-value-long-enough", "TEST_VAR")
	if s.Source != KeySourceConfig {
		t.Errorf("config value: got source %q, want %q", s.Source, KeySourceConfig)
	}
	if !s.IsSet {
		t.Error("config value should be set")
	}

	// Value from env
	os.Setenv("TEST_VAR", "env-value-long-enough")
	defer os.Unsetenv("TEST_VAR")
	s = checkKey("Test", "env-value-long-enough", "TEST_VAR")
	if s.Source != KeySourceEnv {
		t.Errorf("env value: got source %q, want %q", s.Source, KeySourceEnv)
	}
}

// ── homeDir ──

func TestHomeDirReturnsNonEmpty(t *testing.T) {
	h := homeDir()
	if h == "" {
		t.Error("homeDir() should not return empty string")
	}
}
