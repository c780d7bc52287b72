package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Port        string
		CartDBPath  string
		SessionTTL  time.Duration
		CookieHTTPS bool
	}
	Postgres struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
}

// Load reads configuration from the environment, optionally preloading a
// .env file. Database settings without sane defaults are required.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.Port = getenv("APP_PORT", "8080")
	cfg.App.CartDBPath = getenv("CART_DB_PATH", "carts.db")
	cfg.App.SessionTTL = 7 * 24 * time.Hour
	cfg.App.CookieHTTPS = os.Getenv("COOKIE_SECURE") == "true"

	cfg.Postgres.Host = os.Getenv("DB_HOST")
	if cfg.Postgres.Host == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Postgres.Port = getenv("DB_PORT", "5432")
	cfg.Postgres.User = os.Getenv("DB_USER")
	if cfg.Postgres.User == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
	if cfg.Postgres.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Postgres.DBName = os.Getenv("DB_NAME")
	if cfg.Postgres.DBName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Postgres.SSLMode = getenv("DB_SSLMODE", "disable")

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
