package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"coinwatch/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Auth          AuthConfig
	CoinGecko     CoinGeckoConfig
	News          NewsConfig
	Email         EmailConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"coinwatch"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type ServerConfig struct {
	Port            int           `envconfig:"HTTP_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	TokenIssuer   string        `envconfig:"JWT_ISSUER" default:"coinwatch"`
	TokenDuration time.Duration `envconfig:"JWT_DURATION" default:"168h"` // 7 days
	CookieName    string        `envconfig:"AUTH_COOKIE_NAME" default:"auth_token"`
	CookieSecure  bool          `envconfig:"AUTH_COOKIE_SECURE" default:"true"`
}

type CoinGeckoConfig struct {
	BaseURL string `envconfig:"COINGECKO_BASE_URL" default:"https://api.coingecko.com"`
	APIKey  string `envconfig:"COINGECKO_API_KEY"`
	// Free tier allows 30 calls/min; keep headroom for bursts
	RequestsPerMinute int           `envconfig:"COINGECKO_REQUESTS_PER_MINUTE" default:"30"`
	Timeout           time.Duration `envconfig:"COINGECKO_TIMEOUT" default:"10s"`
	CacheTTL          time.Duration `envconfig:"COINGECKO_CACHE_TTL" default:"60s"`
	ChartCacheTTL     time.Duration `envconfig:"COINGECKO_CHART_CACHE_TTL" default:"30s"`
}

type NewsConfig struct {
	BaseURL string        `envconfig:"NEWS_API_BASE_URL" default:"https://newsapi.org"`
	APIKey  string        `envconfig:"NEWS_API_KEY"`
	Timeout time.Duration `envconfig:"NEWS_API_TIMEOUT" default:"10s"`
}

type EmailConfig struct {
	BaseURL     string        `envconfig:"EMAIL_API_BASE_URL" default:"https://api.resend.com"`
	APIKey      string        `envconfig:"RESEND_API_KEY"`
	FromAddress string        `envconfig:"EMAIL_FROM" default:"CoinWatch <onboarding@resend.dev>"`
	Timeout     time.Duration `envconfig:"EMAIL_TIMEOUT" default:"10s"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for background workers
type WorkerConfig struct {
	AlertEvaluatorInterval time.Duration `envconfig:"WORKER_ALERT_EVALUATOR_INTERVAL" default:"1m"`
	AlertEvaluatorEnabled  bool          `envconfig:"WORKER_ALERT_EVALUATOR_ENABLED" default:"true"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
