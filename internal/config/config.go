package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Quotes   QuotesConfig
	Log      LogConfig
	Currency string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// StoreConfig selects where positions are persisted
type StoreConfig struct {
	Backend string
	Path    string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// MigrationsPath is applied on startup when the postgres backend is selected
	MigrationsPath string
}

// KafkaConfig holds Kafka configuration. No brokers disables publishing.
type KafkaConfig struct {
	Brokers        []string
	Topic          string
	PublishTimeout time.Duration
}

// Enabled reports whether any broker is configured
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// QuotesConfig holds market data provider settings
type QuotesConfig struct {
	BaseURL            string
	Timeout            time.Duration
	Period             string
	Interval           string
	RefreshMinInterval time.Duration
	// Watchlist tickers are quoted on every refresh whether or not they are held
	Watchlist          []string
}

// DefaultWatchlist applies when WATCHLIST is unset. Setting it empty disables the watchlist.
const DefaultWatchlist = "AAPL,NVDA,MSFT,GOOGL,XOM,BP,NEE,SPY,VEA,SCHD"

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables, after loading an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := getEnvAsDuration("QUOTES_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	minInterval, err := getEnvAsDuration("REFRESH_MIN_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, err
	}
	publishTimeout, err := getEnvAsDuration("KAFKA_PUBLISH_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}
	watchlist := DefaultWatchlist
	if value, ok := os.LookupEnv("WATCHLIST"); ok {
		watchlist = value
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "127.0.0.1"),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", BackendFile),
			Path:    getEnv("STORE_PATH", "data/positions.json"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "investments"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "db/migrations"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "position-events"),

			PublishTimeout: publishTimeout,
		},
		Quotes: QuotesConfig{
			BaseURL:            getEnv("QUOTES_BASE_URL", "https://query1.finance.yahoo.com"),
			Timeout:            timeout,
			Period:             getEnv("QUOTES_PERIOD", "1d"),
			Interval:           getEnv("QUOTES_INTERVAL", "1h"),
			RefreshMinInterval: minInterval,
			Watchlist:          splitList(watchlist),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", false),
		},
		Currency: getEnv("CURRENCY", "USD"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("STORE_PATH is required for the file backend")
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q: must be %q or %q", c.Store.Backend, BackendFile, BackendPostgres)
	}

	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.Server.Port, err)
	}
	if c.Quotes.Timeout <= 0 {
		return fmt.Errorf("QUOTES_TIMEOUT must be positive")
	}
	if c.Quotes.RefreshMinInterval < 0 {
		return fmt.Errorf("REFRESH_MIN_INTERVAL must not be negative")
	}
	if c.Kafka.PublishTimeout <= 0 {
		return fmt.Errorf("KAFKA_PUBLISH_TIMEOUT must be positive")
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
