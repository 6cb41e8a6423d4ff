package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	BackendMemory   = "memory"
	BackendSqlite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Port    string
	Service string

	Store struct {
		Backend     string
		DBPath      string
		DatabaseURL string
		RedisAddr   string
	}

	Events struct {
		AMQPURL  string
		Exchange string
	}

	Limits struct {
		MaxDrivers int
		MaxOrders  int
	}
}

// Load reads the process environment. Call godotenv.Load first to pick up a .env file.
func Load() (Config, error) {
	var cfg Config
	cfg.Port = Get("PORT", "8080")
	cfg.Service = Get("SERVICE_NAME", "delivery-dispatch-service")

	cfg.Store.Backend = strings.ToLower(Get("STORE_BACKEND", BackendSqlite))
	cfg.Store.DBPath = Get("DB_PATH", "data/app.db")
	cfg.Store.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Store.RedisAddr = Get("REDIS_ADDR", "localhost:6379")

	cfg.Events.AMQPURL = os.Getenv("AMQP_URL")
	cfg.Events.Exchange = Get("AMQP_EXCHANGE", "dispatch.events")

	var err error
	if cfg.Limits.MaxDrivers, err = GetInt("MAX_DRIVERS", 1000); err != nil {
		return Config{}, err
	}
	if cfg.Limits.MaxOrders, err = GetInt("MAX_ORDERS", 10000); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendSqlite, BackendRedis:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for STORE_BACKEND=%s", BackendPostgres)
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Limits.MaxDrivers <= 0 || c.Limits.MaxOrders <= 0 {
		return fmt.Errorf("config: MAX_DRIVERS and MAX_ORDERS must be positive")
	}
	return nil
}

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	return n, nil
}
