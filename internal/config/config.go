package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the application configuration.
var Module = fx.Provide(Load)

// Config holds application configuration.
type Config struct {
	AppName     string
	Environment string
	Port        string
	LogLevel    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBCACert          string
	DBMaxOpenConn     int
	DBMaxIdleConn     int
	DBConnMaxLifetime int

	CountriesAPIBaseURL string
	ExchangeAPIBaseURL  string

	RefreshInterval time.Duration
	SummaryCacheDir string
}

// Load loads configuration from environment variables and .env file.
// Blank or malformed values fall back to their defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "countrypulse"),
		Environment: getenv("ENVIRONMENT", "development"),
		Port:        getenv("PORT", "3000"),
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),

		DBType:            getenv("DB_TYPE", "postgres"),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBName:            getenv("DB_DATABASE_NAME", "countrypulse"),
		DBUser:            getenv("DB_USER", "postgres"),
		DBPassword:        getenv("DB_PASSWORD", ""),
		DBSSLMode:         getenv("DB_SSLMODE", "disable"),
		DBCACert:          unescapeCert(os.Getenv("DB_CERT")),
		DBMaxOpenConn:     getenvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConn:     getenvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getenvInt("DB_CONN_MAX_LIFETIME", 1800),

		CountriesAPIBaseURL: getenv("COUNTRIES_API_BASE_URL", "https://restcountries.com"),
		ExchangeAPIBaseURL:  getenv("EXCHANGE_API_BASE_URL", "https://open.er-api.com"),

		RefreshInterval: getenvDuration("REFRESH_INTERVAL", 0),
		SummaryCacheDir: getenv("SUMMARY_CACHE_DIR", "cache"),
	}
}

// unescapeCert turns the newline-escaped PEM blob delivered through the
// environment back into a real multi-line certificate.
func unescapeCert(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.ReplaceAll(raw, `\n`, "\n")
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
