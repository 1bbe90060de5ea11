package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and only here
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Storage
	StoreBackend string // postgres, memory
	Database     DatabaseConfig

	// Redis
	Redis RedisConfig

	// Live quotes
	Quote QuoteConfig

	// Session (last used CPF)
	Session SessionConfig

	// Scheduled bulk refresh
	Refresh RefreshConfig

	// Location used for calendar-day comparisons (dateLastCheck filter)
	Timezone string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// QuoteConfig holds live quote source configuration
type QuoteConfig struct {
	Provider string // tradingview, statusinvest, chain

	TradingViewBaseURL  string
	TradingViewMarket   string // scanner market path, e.g. "brazil"
	TradingViewExchange string // ticker prefix, e.g. "BMFBOVESPA"
	StatusInvestBaseURL string

	Timeout   time.Duration // 0 = no timeout
	RateLimit int           // requests per minute, 0 = unlimited
	Retry     bool
}

// SessionConfig holds session persistence configuration
type SessionConfig struct {
	Backend string // file, redis
	Path    string
	MaxOpen int // watchlists the API keeps subscribed, 0 = unbounded
}

// RefreshConfig holds the scheduled bulk refresh configuration
type RefreshConfig struct {
	Enabled  bool
	Schedule string   // cron expression with seconds field
	Workers  int      // 0 = unbounded
	CPFs     []string // sessions refreshed even when no client has them open
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "postgres")),
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Quote: QuoteConfig{
			Provider:            strings.ToLower(getEnv("QUOTE_PROVIDER", "chain")),
			TradingViewBaseURL:  getEnv("TRADINGVIEW_BASE_URL", "https://scanner.tradingview.com"),
			TradingViewMarket:   getEnv("TRADINGVIEW_MARKET", "brazil"),
			TradingViewExchange: getEnv("TRADINGVIEW_EXCHANGE", "BMFBOVESPA"),
			StatusInvestBaseURL: getEnv("STATUSINVEST_BASE_URL", "https://statusinvest.com.br"),
			Timeout:             getEnvAsDuration("QUOTE_TIMEOUT", "0s"),
			RateLimit:           getEnvAsInt("QUOTE_RATE_LIMIT", 0),
			Retry:               getEnvAsBool("QUOTE_RETRY", false),
		},

		Session: SessionConfig{
			Backend: strings.ToLower(getEnv("SESSION_BACKEND", "file")),
			Path:    getEnv("SESSION_PATH", defaultSessionPath()),
			MaxOpen: getEnvAsInt("SESSION_MAX_OPEN", 5),
		},

		Refresh: RefreshConfig{
			Enabled:  getEnvAsBool("REFRESH_ENABLED", false),
			Schedule: getEnv("REFRESH_SCHEDULE", "0 30 18 * * 1-5"),
			Workers:  getEnvAsInt("REFRESH_WORKERS", 0),
			CPFs:     getEnvAsList("REFRESH_CPFS"),
		},

		Timezone: getEnv("TIMEZONE", "America/Sao_Paulo"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	switch c.StoreBackend {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: postgres, memory")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Quote.Provider {
	case "tradingview", "statusinvest", "chain":
	default:
		return fmt.Errorf("QUOTE_PROVIDER must be one of: tradingview, statusinvest, chain")
	}

	switch c.Session.Backend {
	case "file":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("SESSION_BACKEND=redis requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be one of: file, redis")
	}

	if c.Session.MaxOpen < 0 {
		return fmt.Errorf("SESSION_MAX_OPEN must not be negative")
	}
	// every open postgres watchlist holds one pooled LISTEN connection
	if c.StoreBackend == "postgres" && c.Session.MaxOpen > 0 && c.Database.MaxConns > 0 &&
		c.Session.MaxOpen >= c.Database.MaxConns {
		return fmt.Errorf("SESSION_MAX_OPEN must be below DB_MAX_CONNS")
	}

	if c.Refresh.Workers < 0 {
		return fmt.Errorf("REFRESH_WORKERS must not be negative")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}

	return nil
}

// Location returns the configured time zone, UTC when it cannot be loaded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".dailyb3", "session.json")
	}
	return filepath.Join(home, ".dailyb3", "session.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsList(key string) []string {
	var values []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
