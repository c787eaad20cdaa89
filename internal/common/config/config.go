package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HDX     HDXConfig
	Preview PreviewConfig
	Logging LoggingConfig
}

// HDXConfig for the CKAN catalogue that serves dataset metadata
type HDXConfig struct {
	Site      string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	UserAgent string
}

// PreviewConfig for downloading and reading resource data
type PreviewConfig struct {
	Rows        int
	Timeout     time.Duration
	DownloadDir string
}

type LoggingConfig struct {
	Level    string
	FilePath string
}

func Load() (*Config, error) {
	cfg := &Config{
		HDX: HDXConfig{
			Site:      getEnv("HDX_SITE", "https://data.humdata.org"),
			Timeout:   getDurationEnv("HDX_API_TIMEOUT", 30*time.Second),
			RateLimit: getFloatEnv("HDX_RATE_LIMIT", 2),
			UserAgent: getEnv("HDX_USER_AGENT", "hdx-schema/1.0"),
		},
		Preview: PreviewConfig{
			Rows:        getIntEnv("PREVIEW_ROWS", 10),
			Timeout:     getDurationEnv("PREVIEW_TIMEOUT", 2*time.Minute),
			DownloadDir: getEnv("DOWNLOAD_DIR", os.TempDir()),
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "warn"),
			FilePath: getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.HDX.Site)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid HDX_SITE %q", c.HDX.Site)
	}
	if c.HDX.RateLimit <= 0 {
		return fmt.Errorf("HDX_RATE_LIMIT must be positive, got %v", c.HDX.RateLimit)
	}
	if c.Preview.Rows <= 0 {
		return fmt.Errorf("PREVIEW_ROWS must be positive, got %d", c.Preview.Rows)
	}
	return nil
}

// APIBase returns the CKAN action endpoint root for the configured site
func (c *HDXConfig) APIBase() string {
	return strings.TrimRight(c.Site, "/") + "/api/3/action"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
