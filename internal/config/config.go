package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string        // dev, prod
	HTTPPort    string        // default 8080
	DatabaseURL string        // required; postgres:// or a sqlite file path
	JWTSecret   string        // required; shared with the auth service
	JWTTTL      time.Duration // token lifetime accepted for dev tokens

	RedisAddr     string
	RedisPassword string
	LockTTL       time.Duration // how long a booking/intent lock lives

	CommissionRate float64 // platform cut, fraction of the session amount
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:            getEnv("APP_ENV", "dev"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTTTL:         getDuration("JWT_TTL", 24*time.Hour),
		RedisAddr:      os.Getenv("REDIS_ADDR"), // empty = process-local locks
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		LockTTL:        getDuration("LOCK_TTL", 5*time.Second),
		CommissionRate: getFloat("PLATFORM_COMMISSION_RATE", 0.10),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.CommissionRate < 0 || cfg.CommissionRate >= 1 {
		return Config{}, errors.New("PLATFORM_COMMISSION_RATE must be in [0, 1)")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
