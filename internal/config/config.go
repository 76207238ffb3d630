// Package config loads server configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds server configuration.
type Config struct {
	Addr             string
	DBPath           string // empty means db.DefaultPath
	MediaDir         string
	DevMode          bool
	ReadRequiresAuth bool  // require a token for post and comment reads
	MaxBodyBytes     int64 // request body limit for JSON payloads
	LoginMaxFailures int
	LoginWindow      time.Duration
}

// FromEnv creates a Config from environment variables.
func FromEnv() Config {
	addr := envOrDefault("YT_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}

	return Config{
		Addr:             addr,
		DBPath:           os.Getenv("YT_DB"),
		MediaDir:         envOrDefault("YT_MEDIA_DIR", defaultMediaDir()),
		DevMode:          envBool("YT_DEV_MODE", false),
		ReadRequiresAuth: envBool("YT_READ_REQUIRES_AUTH", false),
		MaxBodyBytes:     int64(envInt("YT_MAX_BODY_BYTES", 8<<20)),
		LoginMaxFailures: envInt("YT_LOGIN_MAX_FAILURES", 10),
		LoginWindow:      envDuration("YT_LOGIN_WINDOW", time.Minute),
	}
}

func defaultMediaDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "media"
	}
	return filepath.Join(home, ".config", "yt", "media")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
