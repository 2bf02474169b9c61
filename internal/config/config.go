package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort            string
	BaseURL             string
	DBDriver            string // mysql | postgres | sqlite
	DatabaseDSN         string
	JWTSecret           string
	JWTTTL              time.Duration
	CORSOrigins         []string
	AllowRegistration   bool
	EnforceCatalogPrice bool // reject cart lines whose unit_price differs from the catalog
	CurrencyScale       int32
	GeminiAPIKey        string
	OTLPEndpoint        string
	Seed                bool
	LoginRatePerMinute  int
	Debug               bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can feed a map.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		HTTPPort:     get("HTTP_PORT", "8080"),
		DBDriver:     strings.ToLower(get("DB_DRIVER", "mysql")),
		DatabaseDSN:  get("DB_DSN", ""),
		JWTSecret:    get("JWT_SECRET", ""),
		GeminiAPIKey: get("GEMINI_API_KEY", ""),
		OTLPEndpoint: get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Debug:        get("GIN_MODE", "") == "debug",
	}
	cfg.BaseURL = strings.TrimRight(get("BASE_URL", "http://localhost:"+cfg.HTTPPort), "/")

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(get("JWT_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("JWT_TTL: %w", err)
	}
	if cfg.AllowRegistration, err = strconv.ParseBool(get("ALLOW_REGISTRATION", "false")); err != nil {
		return nil, fmt.Errorf("ALLOW_REGISTRATION: %w", err)
	}
	if cfg.EnforceCatalogPrice, err = strconv.ParseBool(get("ENFORCE_CATALOG_PRICE", "false")); err != nil {
		return nil, fmt.Errorf("ENFORCE_CATALOG_PRICE: %w", err)
	}
	if cfg.Seed, err = strconv.ParseBool(get("SEED", "false")); err != nil {
		return nil, fmt.Errorf("SEED: %w", err)
	}
	scale, err := strconv.Atoi(get("CURRENCY_SCALE", "2"))
	if err != nil || scale < 0 || scale > 2 {
		return nil, fmt.Errorf("CURRENCY_SCALE must be an integer between 0 and 2")
	}
	cfg.CurrencyScale = int32(scale)
	if cfg.LoginRatePerMinute, err = strconv.Atoi(get("LOGIN_RATE_PER_MINUTE", "5")); err != nil || cfg.LoginRatePerMinute < 1 {
		return nil, fmt.Errorf("LOGIN_RATE_PER_MINUTE must be a positive integer")
	}

	for _, origin := range strings.Split(get("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	switch cfg.DBDriver {
	case "mysql", "postgres":
		if cfg.DatabaseDSN == "" {
			return nil, errors.New("DB_DSN is required for " + cfg.DBDriver)
		}
	case "sqlite":
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = "coop.db"
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}

	return cfg, nil
}
