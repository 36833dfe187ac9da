package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"catalog-service/database"
	aws_pkg "catalog-service/pkg/aws"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const dbCredentialsSecret = "catalog/DB_CREDENTIALS"

// Config holds all configuration for the catalog service.
type Config struct {
	Port        string
	Env         string
	RoutePrefix string

	Postgres database.PostgresConfig

	RedisURL string
	CacheTTL time.Duration

	// PhotoStorage is "local" or "s3".
	PhotoStorage  string
	PhotoRoot     string
	PhotoS3Bucket string

	CatalogSNSTopicARN    string
	CatalogEventsQueueURL string

	RateLimitPerMinute int
	RateLimitBurst     int

	CORSAllowedOrigins []string
}

type secretMapReader interface {
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// LoadConfig reads configuration from environment variables with optional
// Secrets Manager override of the DB credentials.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using system environment variables")
	}

	var secrets secretMapReader
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
			secrets = aws_pkg.NewSecretsClient(awsCfg)
		} else {
			zap.L().Warn("AWS config unavailable, skipping secrets override", zap.Error(err))
		}
	}
	return loadConfig(context.Background(), secrets)
}

func loadConfig(ctx context.Context, secrets secretMapReader) (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8093"),
		Env:         getEnv("APP_ENV", "development"),
		RoutePrefix: normalizePrefix(getEnv("ROUTE_PREFIX", "/goods")),
		Postgres: database.PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		},
		RedisURL:              os.Getenv("REDIS_URL"),
		PhotoStorage:          strings.ToLower(getEnv("PHOTO_STORAGE", "local")),
		PhotoRoot:             getEnv("PHOTO_ROOT", "."),
		PhotoS3Bucket:         os.Getenv("PHOTO_S3_BUCKET"),
		CatalogSNSTopicARN:    os.Getenv("CATALOG_SNS_TOPIC_ARN"),
		CatalogEventsQueueURL: os.Getenv("CATALOG_EVENTS_QUEUE_URL"),
		CORSAllowedOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ALLOWED_ORIGINS has no origins")
	}

	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = ttl

	if cfg.RateLimitPerMinute, err = strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "600")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "50")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	if secrets != nil {
		m, err := secrets.GetSecretMap(ctx, dbCredentialsSecret)
		if err != nil {
			zap.L().Warn("DB credentials secret unavailable, using environment", zap.Error(err))
		} else {
			override(&cfg.Postgres.User, m["POSTGRES_USER"])
			override(&cfg.Postgres.Password, m["POSTGRES_PASSWORD"])
			override(&cfg.Postgres.DBName, m["POSTGRES_DB"])
			override(&cfg.Postgres.Host, m["POSTGRES_HOST"])
			override(&cfg.Postgres.Port, m["POSTGRES_PORT"])
		}
	}

	if err := cfg.Postgres.Validate(); err != nil {
		return nil, fmt.Errorf("database config incomplete: %w", err)
	}
	switch cfg.PhotoStorage {
	case "local":
	case "s3":
		if cfg.PhotoS3Bucket == "" {
			return nil, fmt.Errorf("PHOTO_S3_BUCKET must be set when PHOTO_STORAGE=s3")
		}
	default:
		return nil, fmt.Errorf("unknown PHOTO_STORAGE %q", cfg.PhotoStorage)
	}
	return cfg, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// normalizePrefix makes sure the prefix starts with a slash and has no
// trailing one.
func normalizePrefix(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
