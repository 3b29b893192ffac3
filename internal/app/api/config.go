package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	"github.com/plantnet/plantnet-api/internal/platform/auth"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config carries environment-driven settings for the plantNet processes.
type Config struct {
	Port        string
	Environment string

	TokenSecret string
	TokenTTL    time.Duration

	StorageDriver string
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string

	StripeSecretKey string
	PaymentCurrency string

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	KafkaBrokers []string
	KafkaTopic   string

	RedisAddr     string
	RedisPassword string
	StatsCacheTTL time.Duration

	ElasticsearchURL      string
	ElasticsearchUsername string
	ElasticsearchPassword string
	ElasticsearchIndex    string

	CORSOrigins []string
	// CORSHeaders are request headers allowed on top of the defaults.
	CORSHeaders []string

	TokenPurgeIntervalMinute int
}

// Production reports whether cookies must be cross-site secure.
func (c Config) Production() bool {
	return c.Environment == "production"
}

// CookiePolicy derives the session cookie attributes.
func (c Config) CookiePolicy() auth.CookiePolicy {
	return auth.CookiePolicy{Production: c.Production(), MaxAge: c.TokenTTL}
}

// LoadConfig reads a .env file when present, then the environment, applies
// defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Config{
		Port:                  envDefault("PORT", "8080"),
		Environment:           strings.ToLower(envDefault("ENVIRONMENT", envDefault("NODE_ENV", "development"))),
		TokenSecret:           strings.TrimSpace(os.Getenv("ACCESS_TOKEN_SECRET")),
		TokenTTL:              auth.DefaultTTL,
		PostgresDSN:           strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		MongoURI:              strings.TrimSpace(os.Getenv("MONGODB_URI")),
		MongoDatabase:         envDefault("MONGODB_DATABASE", "plantdb"),
		StripeSecretKey:       strings.TrimSpace(os.Getenv("STRIPE_SK_KEY")),
		PaymentCurrency:       strings.ToLower(envDefault("PAYMENT_CURRENCY", "usd")),
		TemporalAddress:       envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:     envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:      isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		KafkaBrokers:          splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:            envDefault("KAFKA_TOPIC", "plantnet.events"),
		RedisAddr:             strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		StatsCacheTTL:         30 * time.Second,
		ElasticsearchURL:      strings.TrimSpace(os.Getenv("ELASTICSEARCH_URL")),
		ElasticsearchUsername: strings.TrimSpace(os.Getenv("ELASTICSEARCH_USERNAME")),
		ElasticsearchPassword: os.Getenv("ELASTICSEARCH_PASSWORD"),
		ElasticsearchIndex:    envDefault("ELASTICSEARCH_INDEX", "plants"),
		CORSOrigins:           splitList(envDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		CORSHeaders:           splitList(os.Getenv("CORS_ALLOW_HEADERS")),
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("ACCESS_TOKEN_SECRET is required")
	}
	for _, origin := range cfg.CORSOrigins {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return Config{}, fmt.Errorf("CORS_ORIGINS entry %q must start with http:// or https://", origin)
		}
	}
	if raw := strings.TrimSpace(os.Getenv("TOKEN_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("TOKEN_TTL must be a positive duration")
		}
		cfg.TokenTTL = ttl
	}
	if raw := strings.TrimSpace(os.Getenv("STATS_CACHE_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("STATS_CACHE_TTL must be a positive duration")
		}
		cfg.StatsCacheTTL = ttl
	}
	driver, err := resolveDriver(strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_DRIVER"))), cfg)
	if err != nil {
		return Config{}, err
	}
	cfg.StorageDriver = driver
	if raw := strings.TrimSpace(os.Getenv("TOKEN_PURGE_INTERVAL_MINUTES")); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return Config{}, fmt.Errorf("TOKEN_PURGE_INTERVAL_MINUTES must be a positive integer")
		}
		cfg.TokenPurgeIntervalMinute = minutes
	}
	return cfg, nil
}

// resolveDriver infers the driver from the configured DSNs when unset.
func resolveDriver(driver string, cfg Config) (string, error) {
	switch driver {
	case "":
		switch {
		case cfg.PostgresDSN != "":
			return DriverPostgres, nil
		case cfg.MongoURI != "":
			return DriverMongo, nil
		default:
			return DriverMemory, nil
		}
	case DriverMemory:
		return driver, nil
	case DriverPostgres:
		if cfg.PostgresDSN == "" {
			return "", errors.New("STORAGE_DRIVER=postgres requires POSTGRES_DSN")
		}
		return driver, nil
	case DriverMongo:
		if cfg.MongoURI == "" {
			return "", errors.New("STORAGE_DRIVER=mongo requires MONGODB_URI")
		}
		return driver, nil
	default:
		return "", fmt.Errorf("STORAGE_DRIVER must be one of memory, postgres, mongo; got %q", driver)
	}
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
