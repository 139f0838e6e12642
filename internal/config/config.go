package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Addr               string
	DBPath             string
	Debug              bool
	DemoMode           bool
	RulesPath          string
	ReportValidityDays int
	Workers            int
	RunTimeout         time.Duration
	RunRateLimit       int
	AllowedOrigins     []string
}

// ReportValidity returns the validity window of newly created reports.
func (c *Config) ReportValidity() time.Duration {
	return time.Duration(c.ReportValidityDays) * 24 * time.Hour
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.DBPath == "" && !c.DemoMode:
		return errors.New("database path is required")
	case c.ReportValidityDays <= 0:
		return fmt.Errorf("report validity must be positive, got %d days", c.ReportValidityDays)
	case c.Workers <= 0:
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	case c.RunTimeout < 0:
		return fmt.Errorf("run timeout must not be negative, got %s", c.RunTimeout)
	case c.RunRateLimit <= 0:
		return fmt.Errorf("run rate limit must be positive, got %d", c.RunRateLimit)
	}
	return nil
}

// Load reads an optional .env file and RECONRISK_* environment variables on top of the
// defaults. Command line flags are bound by the caller and override these values.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		Addr:               getEnv("RECONRISK_ADDR", ":8080"),
		DBPath:             getEnv("RECONRISK_DB", ""),
		Debug:              getEnvBool("RECONRISK_DEBUG", false),
		DemoMode:           getEnvBool("RECONRISK_DEMO", false),
		RulesPath:          getEnv("RECONRISK_RULES", ""),
		ReportValidityDays: getEnvInt("RECONRISK_REPORT_VALIDITY_DAYS", 365),
		Workers:            getEnvInt("RECONRISK_WORKERS", runtime.NumCPU()),
		RunTimeout:         getEnvDuration("RECONRISK_RUN_TIMEOUT", 5*time.Minute),
		RunRateLimit:       getEnvInt("RECONRISK_RUN_RATE_LIMIT", 30),
		AllowedOrigins:     parseList(getEnv("RECONRISK_ALLOWED_ORIGINS", "http://localhost:8080,http://127.0.0.1:8080")),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = getDefaultDBPath()
	}
	return cfg, nil
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("ignoring invalid integer", "key", key, "value", value)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		slog.Warn("ignoring invalid boolean", "key", key, "value", value)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("ignoring invalid duration", "key", key, "value", value)
	}
	return fallback
}

// getDefaultDBPath returns the default database path in the user's home directory.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("could not get user home directory, using current dir", "error", err)
		return "reconrisk.db"
	}
	return filepath.Join(home, ".reconrisk", "reconrisk.db")
}
