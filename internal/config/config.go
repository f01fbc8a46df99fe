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
	Server   ServerConfig
	Scraper  ScraperConfig
	Browser  BrowserConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	URL               string
	InitialDelay      time.Duration
	SettleDelay       time.Duration
	PresenceTimeout   time.Duration
	MaxScrolls        int
	MaxScrollDuration time.Duration
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	ProxyServer    string
}

type StorageConfig struct {
	RawPath   string
	CleanPath string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Stream   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getIntOrDefault("SERVER_PORT", 8080),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Scraper: ScraperConfig{
			URL:               getEnvOrDefault("SCRAPER_URL", "https://www.ebay.com/globaldeals/tech"),
			InitialDelay:      getDurationOrDefault("SCRAPER_INITIAL_DELAY", 5*time.Second),
			SettleDelay:       getDurationOrDefault("SCRAPER_SETTLE_DELAY", 2*time.Second),
			PresenceTimeout:   getDurationOrDefault("SCRAPER_PRESENCE_TIMEOUT", 15*time.Second),
			MaxScrolls:        getIntOrDefault("SCRAPER_MAX_SCROLLS", 50),
			MaxScrollDuration: getDurationOrDefault("SCRAPER_MAX_SCROLL_DURATION", 3*time.Minute),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			UserAgent:      getEnvOrDefault("BROWSER_USER_AGENT", ""),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "America/New_York"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-US"),
			ProxyServer:    getEnvOrDefault("BROWSER_PROXY", ""),
		},
		Storage: StorageConfig{
			RawPath:   getEnvOrDefault("STORAGE_RAW_PATH", "ebay_tech_deals.csv"),
			CleanPath: getEnvOrDefault("STORAGE_CLEAN_PATH", "cleaned_ebay_deals.csv"),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolOrDefault("DB_ENABLED", false),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			Name:     getEnvOrDefault("DB_NAME", "deals"),
			MaxConns: int32(getIntOrDefault("DB_MAX_CONNS", 4)),
		},
		Redis: RedisConfig{
			Enabled:  getBoolOrDefault("REDIS_ENABLED", false),
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			Stream:   getEnvOrDefault("REDIS_STREAM", "stream:deal_runs"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.URL == "" {
		return fmt.Errorf("SCRAPER_URL is required")
	}

	if u, err := url.Parse(c.Scraper.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SCRAPER_URL must be an absolute URL: %q", c.Scraper.URL)
	}

	if c.Scraper.SettleDelay < 0 || c.Scraper.InitialDelay < 0 {
		return fmt.Errorf("SCRAPER_SETTLE_DELAY and SCRAPER_INITIAL_DELAY cannot be negative")
	}

	if c.Scraper.PresenceTimeout <= 0 {
		return fmt.Errorf("SCRAPER_PRESENCE_TIMEOUT must be positive")
	}

	// At least one bound keeps the scroll loop finite.
	if c.Scraper.MaxScrolls <= 0 && c.Scraper.MaxScrollDuration <= 0 {
		return fmt.Errorf("SCRAPER_MAX_SCROLLS or SCRAPER_MAX_SCROLL_DURATION must be set")
	}

	if c.Storage.RawPath == "" || c.Storage.CleanPath == "" {
		return fmt.Errorf("STORAGE_RAW_PATH and STORAGE_CLEAN_PATH are required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Enabled && c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required when DB_ENABLED is set")
	}

	if c.Redis.Enabled && c.Redis.Stream == "" {
		return fmt.Errorf("REDIS_STREAM is required when REDIS_ENABLED is set")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
