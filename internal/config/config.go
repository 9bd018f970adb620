package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDatabaseURL    = "sqlite://tasks.db"
	defaultServerPort     = "8000"
	defaultRequestTimeout = 5 * time.Second
)

type Config struct {
	DatabaseURL    string
	Debug          bool
	ServerPort     string
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    databaseURL(),
		ServerPort:     getenv("SERVER_PORT", defaultServerPort),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "*")),
		RequestTimeout: defaultRequestTimeout,
	}

	if v := os.Getenv("DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("DEBUG must be a boolean: %w", err)
		}
		cfg.Debug = debug
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("REQUEST_TIMEOUT must be a duration: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", d)
		}
		cfg.RequestTimeout = d
	}
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return nil, fmt.Errorf("SERVER_PORT must be numeric, got %q", cfg.ServerPort)
	}
	if _, _, err := cfg.Database(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Database resolves DatabaseURL into a database/sql driver name and DSN.
func (c *Config) Database() (driver, dsn string, err error) {
	raw := c.DatabaseURL
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return "postgres", raw, nil
	case strings.HasPrefix(raw, "host="):
		return "postgres", raw, nil
	case strings.HasPrefix(raw, "file:"):
		return "sqlite3", raw, nil
	case strings.HasPrefix(raw, "sqlite://"), strings.HasPrefix(raw, "sqlite3://"):
		path := raw[strings.Index(raw, "://")+3:]
		if path == "" {
			return "", "", fmt.Errorf("DATABASE_URL %q has no database path", raw)
		}
		if !strings.Contains(path, "?") {
			path += "?_busy_timeout=5000"
		}
		return "sqlite3", path, nil
	}

	scheme := raw
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		scheme = u.Scheme
	}
	return "", "", fmt.Errorf("unsupported DATABASE_URL scheme %q", scheme)
}

// databaseURL falls back to the discrete POSTGRES_* variables when
// DATABASE_URL is not set.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	required := []string{
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"POSTGRES_HOST", "POSTGRES_PORT",
	}
	for _, env := range required {
		if os.Getenv(env) == "" {
			return defaultDatabaseURL
		}
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("POSTGRES_HOST"), os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_DB"), os.Getenv("POSTGRES_PORT"))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
