package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort            string
	PostgresDSN         string
	RedisURL            string
	RabbitMQURL         string
	NotificationQueue   string
	NotificationBuffer  int
	NotificationWorkers int
	JWTSecret           string
	LogLevel            string
	InviteTTL           time.Duration
	DBMaxOpenConns      int
	DBMaxIdleConns      int
	DBConnMaxIdle       time.Duration
	DBConnMaxLife       time.Duration
	RequestTimeout      time.Duration
	ConnectPerMin       int
	ApplyPerMin         int
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, fills variables that are not already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		PostgresDSN:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		RabbitMQURL:         getEnv("RABBITMQ_URL", ""),
		NotificationQueue:   getEnv("NOTIFICATION_QUEUE", "notifications"),
		NotificationBuffer:  getInt("NOTIFICATION_BUFFER", 256),
		NotificationWorkers: getInt("NOTIFICATION_WORKERS", 2),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		InviteTTL:           getDuration("INVITE_TTL", 14*24*time.Hour),
		DBMaxOpenConns:      getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:      getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxIdle:       getDuration("DB_CONN_MAX_IDLE", 5*time.Minute),
		DBConnMaxLife:       getDuration("DB_CONN_MAX_LIFE", 30*time.Minute),
		RequestTimeout:      getDuration("REQUEST_TIMEOUT", 10*time.Second),
		ConnectPerMin:       getInt("CONNECT_RATE_LIMIT_PER_MIN", 10),
		ApplyPerMin:         getInt("APPLY_RATE_LIMIT_PER_MIN", 3),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.InviteTTL <= 0 {
		return nil, errors.New("INVITE_TTL must be positive")
	}
	if cfg.NotificationBuffer <= 0 || cfg.NotificationWorkers <= 0 {
		return nil, errors.New("NOTIFICATION_BUFFER and NOTIFICATION_WORKERS must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}
