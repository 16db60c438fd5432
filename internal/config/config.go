package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// CMS (Sanity) configuration
	CMS CMSConfig

	// Database configuration for the dispatch log
	Database DatabaseConfig

	// Redis configuration for the shared tag cache
	Redis RedisConfig

	Search SearchConfig

	RSS RSSConfig

	Mail MailConfig

	Site SiteConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port             string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	AllowedOrigins   []string
	RevalidateSecret string
}

// CMSConfig holds the content store connection settings
type CMSConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
	Timeout    time.Duration
	// Revalidate is the default lifetime of cached query results
	Revalidate time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Enabled        bool
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// RedisConfig holds the optional redis connection; empty URL selects the in-memory store
type RedisConfig struct {
	URL string
}

// SearchConfig holds search endpoint tuning
type SearchConfig struct {
	CacheTTL        time.Duration
	CacheCapacity   int
	DebounceDelay   time.Duration
	DefaultLimit    int
	MaxLimit        int
	SuggestionCount int
}

// RSSConfig holds feed aggregation settings
type RSSConfig struct {
	SourcesFile string
	Sources     []FeedSource
	Revalidate  time.Duration
	Timeout     time.Duration
}

// MailConfig holds provider-independent email settings
type MailConfig struct {
	DefaultFrom     string
	SendGridBaseURL string
	ResendBaseURL   string
	Timeout         time.Duration
}

// SiteConfig holds values rendered into every page
type SiteConfig struct {
	Name     string
	URL      string
	Language string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// defaultLogFormat keeps console output for local development
func defaultLogFormat() string {
	if os.Getenv("ENV") == "development" {
		return "pretty"
	}
	return "json"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:             getEnv("PORT", "8080"),
			ReadTimeout:      getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:     getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout:  getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			AllowedOrigins:   getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
			RevalidateSecret: getEnv("REVALIDATE_SECRET", ""),
		},
		CMS: CMSConfig{
			ProjectID:  getEnv("SANITY_PROJECT_ID", ""),
			Dataset:    getEnv("SANITY_DATASET", "production"),
			APIVersion: getEnv("SANITY_API_VERSION", "2024-01-01"),
			Token:      getEnv("SANITY_API_TOKEN", ""),
			UseCDN:     getBoolEnv("SANITY_USE_CDN", true),
			Timeout:    getDurationEnv("SANITY_TIMEOUT", 15*time.Second),
			Revalidate: getDurationEnv("SANITY_REVALIDATE", 60*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:        getBoolEnv("DB_ENABLED", false),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "khabar"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Search: SearchConfig{
			CacheTTL:        getDurationEnv("SEARCH_CACHE_TTL", 5*time.Minute),
			CacheCapacity:   getIntEnv("SEARCH_CACHE_CAPACITY", 100),
			DebounceDelay:   getDurationEnv("SEARCH_DEBOUNCE", 150*time.Millisecond),
			DefaultLimit:    getIntEnv("SEARCH_DEFAULT_LIMIT", 10),
			MaxLimit:        getIntEnv("SEARCH_MAX_LIMIT", 50),
			SuggestionCount: getIntEnv("SEARCH_SUGGESTIONS", 5),
		},
		RSS: RSSConfig{
			SourcesFile: getEnv("RSS_SOURCES_FILE", ""),
			Revalidate:  getDurationEnv("RSS_REVALIDATE", 10*time.Minute),
			Timeout:     getDurationEnv("RSS_TIMEOUT", 10*time.Second),
		},
		Mail: MailConfig{
			DefaultFrom:     getEnv("MAIL_DEFAULT_FROM", "noreply@khabar.news"),
			SendGridBaseURL: getEnv("SENDGRID_BASE_URL", "https://api.sendgrid.com"),
			ResendBaseURL:   getEnv("RESEND_BASE_URL", "https://api.resend.com"),
			Timeout:         getDurationEnv("MAIL_TIMEOUT", 20*time.Second),
		},
		Site: SiteConfig{
			Name:     getEnv("SITE_NAME", "खबर"),
			URL:      getEnv("SITE_URL", "http://localhost:8080"),
			Language: getEnv("SITE_LANGUAGE", "hi"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", defaultLogFormat()),
		},
	}

	sources, err := LoadFeedSources(cfg.RSS.SourcesFile)
	if err != nil {
		return nil, err
	}
	cfg.RSS.Sources = sources

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.CMS.ProjectID == "" {
		return fmt.Errorf("SANITY_PROJECT_ID is required")
	}
	if c.CMS.Dataset == "" {
		return fmt.Errorf("SANITY_DATASET is required")
	}
	if len(c.RSS.Sources) == 0 {
		return fmt.Errorf("at least one RSS source is required")
	}
	if c.Search.CacheCapacity <= 0 {
		return fmt.Errorf("SEARCH_CACHE_CAPACITY must be positive")
	}
	if c.Search.CacheTTL <= 0 {
		return fmt.Errorf("SEARCH_CACHE_TTL must be positive")
	}
	if c.Search.DefaultLimit <= 0 || c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("SEARCH_DEFAULT_LIMIT must be positive and not exceed SEARCH_MAX_LIMIT")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required when DB_ENABLED is set")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required when DB_ENABLED is set")
		}
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
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

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
