package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is loaded from an optional YAML file and overridden by
// environment variables.
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// Optional server-side ingestion sources for the dataset snapshot.
	FeedURL    string `yaml:"feed_url"`
	MySQLDSN   string `yaml:"mysql_dsn"`
	MySQLTable string `yaml:"mysql_table"`

	HTTPTimeoutSeconds int   `yaml:"http_timeout_seconds"`
	MaxUploadBytes     int64 `yaml:"max_upload_bytes"`

	MAPEThreshold float64 `yaml:"mape_threshold"`
}

// Load reads CONFIG_PATH (default config.yaml) when present, applies
// environment overrides, then fills defaults.
func Load() Config {
	var cfg Config

	path := envOr("CONFIG_PATH", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		// a broken config file is a deployment error; defaults still apply
		_ = yaml.Unmarshal(data, &cfg)
	}

	envOverride(&cfg.Port, "PORT")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.FeedURL, "FEED_URL")
	envOverride(&cfg.MySQLDSN, "MYSQL_DSN")
	envOverride(&cfg.MySQLTable, "MYSQL_TABLE")
	envOverrideInt(&cfg.HTTPTimeoutSeconds, "HTTP_TIMEOUT_SECONDS")
	envOverrideFloat(&cfg.MAPEThreshold, "MAPE_THRESHOLD")

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = 15
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 64 << 20
	}
	if cfg.MAPEThreshold <= 0 {
		cfg.MAPEThreshold = 15
	}
	if cfg.MySQLTable == "" {
		cfg.MySQLTable = "transactions"
	}
	return cfg
}

func (c Config) SlogLevel() slog.Level {
	if c.LogLevel == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envOverride(dst *string, k string) {
	if v := os.Getenv(k); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, k string) {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envOverrideFloat(dst *float64, k string) {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
