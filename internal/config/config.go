// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the serve and run commands need.
type Config struct {
	ListenAddr   string
	TemplatesDir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DraftTTL time.Duration

	// DraftKey enables encryption of drafts at rest when set (32 bytes).
	DraftKey []byte
	// DraftMask holds key patterns whose values are masked in stored drafts.
	DraftMask []string

	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first; a missing file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:   getEnv("LATTICE_ADDR", ":8080"),
		TemplatesDir: getEnv("LATTICE_TEMPLATES_DIR", ".lattice/templates"),

		RedisAddr:     getEnv("LATTICE_REDIS_ADDR", ""),
		RedisPassword: getEnv("LATTICE_REDIS_PASSWORD", ""),

		LogLevel: getEnv("LATTICE_LOG_LEVEL", "info"),
	}

	db, err := getEnvInt("LATTICE_REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.RedisDB = db

	ttl, err := getEnvDuration("LATTICE_DRAFT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.DraftTTL = ttl

	if keyHex := os.Getenv("LATTICE_DRAFT_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid LATTICE_DRAFT_KEY: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("invalid LATTICE_DRAFT_KEY: need 32 bytes, got %d", len(key))
		}
		cfg.DraftKey = key
	}
	if mask := os.Getenv("LATTICE_DRAFT_MASK"); mask != "" {
		cfg.DraftMask = strings.Split(mask, ",")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
