package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = 8080
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultLocalStorePath = "./plans.db"
	defaultRequestTimeout = 60 * time.Second
)

type Config struct {
	Port           int
	DatabaseURL    string
	LogLevel       string
	LogFormat      string
	GeminiAPIKey   string
	GeminiModel    string
	LocalStorePath string
	RequestTimeout time.Duration
}

// Load reads the process environment first and falls back to ./.env.
func Load() (Config, error) {
	return LoadFrom(filepath.Join(".", ".env"))
}

func LoadFrom(envPath string) (Config, error) {
	values := map[string]string{}
	if _, err := os.Stat(envPath); err == nil {
		fileValues, err := godotenv.Read(envPath)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", envPath, err)
		}
		values = fileValues
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat %s: %w", envPath, err)
	}

	lookup := func(key string) string {
		return firstNonEmpty(os.Getenv(key), values[key])
	}

	cfg := Config{
		Port:           defaultPort,
		DatabaseURL:    lookup("DATABASE_URL"),
		LogLevel:       strings.ToLower(firstNonEmpty(lookup("LOG_LEVEL"), "info")),
		LogFormat:      strings.ToLower(firstNonEmpty(lookup("LOG_FORMAT"), "json")),
		GeminiAPIKey:   lookup("GEMINI_API_KEY"),
		GeminiModel:    firstNonEmpty(lookup("GEMINI_MODEL"), defaultGeminiModel),
		LocalStorePath: firstNonEmpty(lookup("PLANCTL_DB"), defaultLocalStorePath),
		RequestTimeout: defaultRequestTimeout,
	}

	if portRaw := lookup("PORT"); portRaw != "" {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid PORT: %q", portRaw)
		}
		cfg.Port = port
	}

	if timeoutRaw := lookup("REQUEST_TIMEOUT"); timeoutRaw != "" {
		timeout, err := time.ParseDuration(timeoutRaw)
		if err != nil || timeout <= 0 {
			return Config{}, fmt.Errorf("invalid REQUEST_TIMEOUT: %q", timeoutRaw)
		}
		cfg.RequestTimeout = timeout
	}

	switch cfg.LogFormat {
	case "json", "console":
	default:
		return Config{}, fmt.Errorf("invalid LOG_FORMAT: %q (want json or console)", cfg.LogFormat)
	}

	return cfg, nil
}

// RequireDatabase is checked by the server; the CLI works without PostgreSQL.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required (environment variable or .env)")
	}
	return nil
}

func (c Config) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}
