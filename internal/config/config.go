package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port  string      `toml:"port"`
	Log   LogConfig   `toml:"log"`
	Yahoo YahooConfig `toml:"yahoo"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// YahooConfig holds the upstream settings. Empty URLs keep the scraper's
// built-in endpoints.
type YahooConfig struct {
	RateLimit     int    `toml:"rate_limit"`
	Timeout       string `toml:"timeout"`
	CookieURL     string `toml:"cookie_url"`
	CrumbURL      string `toml:"crumb_url"`
	HistoryURL    string `toml:"history_url"`
	StatisticsURL string `toml:"statistics_url"`
}

func Default() Config {
	return Config{
		Port: "8080",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Yahoo: YahooConfig{
			RateLimit: 2,
			Timeout:   "30s",
		},
	}
}

// Load reads the TOML file named by CONFIG_FILE, if set, then applies
// environment overrides on top.
func Load() (Config, error) {
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile applies defaults, then the file at path, then the environment.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if _, err := time.ParseDuration(cfg.Yahoo.Timeout); err != nil {
		return Config{}, fmt.Errorf("invalid yahoo timeout %q: %w", cfg.Yahoo.Timeout, err)
	}
	if cfg.Yahoo.RateLimit < 0 {
		return Config{}, fmt.Errorf("rate limit must not be negative, got %d", cfg.Yahoo.RateLimit)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Yahoo.RateLimit = getEnvInt("RATE_LIMIT", cfg.Yahoo.RateLimit)
	cfg.Yahoo.Timeout = getEnv("HTTP_TIMEOUT", cfg.Yahoo.Timeout)
	cfg.Yahoo.CookieURL = getEnv("YAHOO_COOKIE_URL", cfg.Yahoo.CookieURL)
	cfg.Yahoo.CrumbURL = getEnv("YAHOO_CRUMB_URL", cfg.Yahoo.CrumbURL)
	cfg.Yahoo.HistoryURL = getEnv("YAHOO_HISTORY_URL", cfg.Yahoo.HistoryURL)
	cfg.Yahoo.StatisticsURL = getEnv("YAHOO_STATISTICS_URL", cfg.Yahoo.StatisticsURL)
}

// HTTPTimeout is the parsed Timeout. LoadFile has already validated it.
func (y YahooConfig) HTTPTimeout() time.Duration {
	d, err := time.ParseDuration(y.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SlogLevel maps Level onto slog, falling back to info.
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}
