package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port          string
	CartKeyPrefix string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
}

type EmailConfig struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
}

type Config struct {
	App         AppConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Email       EmailConfig
	AdminEmails []string
}

// NewConfig loads configuration from the environment, optionally seeded from
// a .env file. Database settings are required; everything else has a default
// or degrades (no email credentials = notifications disabled).
func NewConfig() (*Config, error) {
	// .env es opcional: en despliegue todo llega por entorno.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.Port = getEnv("APP_PORT", "8080")
	cfg.App.CartKeyPrefix = getEnv("CART_KEY_PREFIX", "dulzuras_cart")

	cfg.Postgres.Host = os.Getenv("DB_HOST")
	cfg.Postgres.Port = getEnv("DB_PORT", "5432")
	cfg.Postgres.User = os.Getenv("DB_USER")
	cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
	cfg.Postgres.DBName = os.Getenv("DB_NAME")
	cfg.Postgres.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Postgres.MaxConns = int32(getEnvInt("DB_MAX_CONNS", 10))
	cfg.Postgres.MinConns = int32(getEnvInt("DB_MIN_CONNS", 2))
	cfg.Postgres.MaxConnLifetime = time.Duration(getEnvInt("DB_CONN_LIFETIME_MINUTES", 30)) * time.Minute

	for _, key := range []string{"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME"} {
		if os.Getenv(key) == "" {
			return nil, fmt.Errorf("config: %s is required", key)
		}
	}

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	cfg.Email.ServiceID = os.Getenv("EMAILJS_SERVICE_ID")
	cfg.Email.TemplateID = os.Getenv("EMAILJS_TEMPLATE_ID")
	cfg.Email.PublicKey = os.Getenv("EMAILJS_PUBLIC_KEY")

	if raw := os.Getenv("ADMIN_EMAILS"); raw != "" {
		cfg.AdminEmails = strings.Split(raw, ",")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
