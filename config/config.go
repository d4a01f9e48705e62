package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort    int
	StorageDriver string
	DatabaseURL   string
	// JWTSecretKey включает защиту административных маршрутов; пустой = выключено.
	JWTSecretKey string
	LogLevel     slog.Level

	RedisURL      string
	RedisPassword string
	RedisDB       int

	RankingURLTemplate string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	CORSAllowedOrigins []string
}

// RedisEnabled reports whether event forwarding and the all-time leaderboard are on.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// ArchiveEnabled reports whether completed tournaments are archived to R2.
func (c *Config) ArchiveEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		StorageDriver:      strings.ToLower(getenv("STORAGE_DRIVER")),
		DatabaseURL:        getenv("DATABASE_URL"),
		JWTSecretKey:       getenv("JWT_SECRET_KEY"),
		RedisURL:           getenv("REDIS_URL"),
		RedisPassword:      getenv("REDIS_PASSWORD"),
		RankingURLTemplate: getenv("RANKING_URL_TEMPLATE"),
		R2AccountID:        getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    getenv("R2_PUBLIC_BASE_URL"),
	}

	if cfg.StorageDriver == "" {
		cfg.StorageDriver = StorageDriverPostgres
	}
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverPostgres, StorageDriverMemory, cfg.StorageDriver)
	}

	portStr := getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080" // Порт по умолчанию
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if dbStr := getenv("REDIS_DB"); dbStr != "" {
		redisDB, err := strconv.Atoi(dbStr)
		if err != nil || redisDB < 0 {
			return nil, fmt.Errorf("invalid REDIS_DB environment variable %q", dbStr)
		}
		cfg.RedisDB = redisDB
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(defaultString(getenv("LOG_LEVEL"), "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	if tpl := cfg.RankingURLTemplate; tpl != "" && !strings.Contains(tpl, "{league}") {
		return nil, fmt.Errorf("RANKING_URL_TEMPLATE must contain the {league} placeholder")
	}

	cfg.CORSAllowedOrigins = []string{"*"}
	if origins := getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	return cfg, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
