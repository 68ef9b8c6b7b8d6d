// Package config は環境変数ベースのアプリケーション設定を提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	JWKSURL     string
	JWKSTimeout time.Duration

	// Catalog
	TMDBAPIKey     string
	TMDBBaseURL    string
	CatalogTimeout time.Duration

	// Cache
	CacheDriver   string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CachePrefix   string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWKSURL = os.Getenv("JWKS_URL")
	if cfg.JWKSURL == "" {
		missing = append(missing, "JWKS_URL")
	}

	cfg.TMDBAPIKey = os.Getenv("TMDB_API_KEY")
	if cfg.TMDBAPIKey == "" {
		missing = append(missing, "TMDB_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.JWKSTimeout = getEnvDuration("JWKS_TIMEOUT", 5*time.Second)
	cfg.TMDBBaseURL = getEnvString("TMDB_BASE_URL", "")
	cfg.CatalogTimeout = getEnvDuration("CATALOG_TIMEOUT", 10*time.Second)
	cfg.CacheDriver = getEnvString("CACHE_DRIVER", "redis")
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", time.Hour)
	cfg.RedisAddr = getEnvString("REDIS_ADDR", "127.0.0.1:6379")
	cfg.RedisPassword = getEnvString("REDIS_PASSWORD", "")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.CachePrefix = getEnvString("CACHE_PREFIX", "")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
