package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	DB       DatabaseConfig
	Weather  WeatherConfig
	Geocoder GeocoderConfig
	Sites    SitesConfig
	Rescore  RescoreConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	RateLimit int // requests per second, global
}

type DatabaseConfig struct {
	Path string
}

type WeatherConfig struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

type GeocoderConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
	CacheSize int
}

type SitesConfig struct {
	// Path to a JSON file of critical-infrastructure sites. Empty
	// disables the site index.
	Path string
}

type RescoreConfig struct {
	Enabled    bool
	Interval   time.Duration
	Workers    int
	BufferSize int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvInt("SERVER_PORT", 8080),
			RateLimit: getEnvInt("SERVER_RATE_LIMIT", 10),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/disaster-response.db"),
		},
		Weather: WeatherConfig{
			Enabled: getEnvBool("WEATHER_ENABLED", true),
			URL:     getEnv("WEATHER_URL", "https://api.open-meteo.com/v1/forecast"),
			Timeout: getEnvDuration("WEATHER_TIMEOUT", 10*time.Second),
		},
		Geocoder: GeocoderConfig{
			URL:       getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
			UserAgent: getEnv("GEOCODER_USER_AGENT", "go-disaster-response"),
			Timeout:   getEnvDuration("GEOCODER_TIMEOUT", 10*time.Second),
			CacheSize: getEnvInt("GEOCODER_CACHE_SIZE", 500),
		},
		Sites: SitesConfig{
			Path: getEnv("SITES_PATH", ""),
		},
		Rescore: RescoreConfig{
			Enabled:    getEnvBool("RESCORE_ENABLED", true),
			Interval:   getEnvDuration("RESCORE_INTERVAL", 15*time.Minute),
			Workers:    getEnvInt("RESCORE_WORKERS", 2),
			BufferSize: getEnvInt("RESCORE_BUFFER_SIZE", 64),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("invalid rate limit: %d", c.Server.RateLimit)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Rescore.Enabled && c.Rescore.Interval < time.Minute {
		return fmt.Errorf("rescore interval must be at least 1 minute")
	}
	if c.Geocoder.CacheSize < 1 {
		return fmt.Errorf("invalid geocoder cache size: %d", c.Geocoder.CacheSize)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
