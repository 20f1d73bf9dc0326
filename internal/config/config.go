package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string
	DBMaxConns  int // 0 keeps the pgxpool default

	// Cache
	RedisURL string        // empty = in-process cache
	CacheTTL time.Duration // lifetime of cached competitor tracking responses

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// RateLimit is the per-IP request budget per minute on API routes.
	RateLimit int

	// APIToken guards the endpoints that trigger SERP work. Empty disables the check.
	APIToken string

	// SERP source
	LiveScraperEnabled bool   // env: LIVE_SCRAPER_ENABLED
	SERPBaseURL        string // results page queried by the live scraper
	SERPUserAgent      string
	SERPTimeout        time.Duration
	SERPMaxRetries     int
	SERPDelay          time.Duration // pause between consecutive SERP calls in a pass

	// Tracking
	OperatorDomain    string // the business's own site; never reported as a competitor
	RankingWindowDays int    // recency window for "current" keyword rankings
	TopCompetitors    int
	DiscoveryLimit    int
	ScheduleInterval  time.Duration // 0 disables the in-process schedule loop

	// OAuth credential store (Search Console and similar providers)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleTokenURL     string
}

// Load reads the optional .env file and returns configuration from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/solardash?sslmode=disable"),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),
		RedisURL:    getEnv("REDIS_URL", ""),
		CacheTTL:    getEnvDuration("CACHE_TTL", 6*time.Hour),
		CORSOrigins: getEnv("CORS_ORIGINS", ""),
		RateLimit:   getEnvInt("RATE_LIMIT", 100),
		APIToken:    getEnv("API_TOKEN", ""),

		LiveScraperEnabled: getEnvBool("LIVE_SCRAPER_ENABLED"),
		SERPBaseURL:        getEnv("SERP_BASE_URL", "https://www.google.com/search"),
		SERPUserAgent:      getEnv("SERP_USER_AGENT", ""),
		SERPTimeout:        getEnvDuration("SERP_TIMEOUT", 30*time.Second),
		SERPMaxRetries:     getEnvInt("SERP_MAX_RETRIES", 3),
		SERPDelay:          getEnvDuration("SERP_DELAY", time.Second),

		OperatorDomain:    getEnv("OPERATOR_DOMAIN", ""),
		RankingWindowDays: getEnvInt("RANKING_WINDOW_DAYS", 60),
		TopCompetitors:    getEnvInt("TOP_COMPETITORS", 5),
		DiscoveryLimit:    getEnvInt("DISCOVERY_LIMIT", 12),
		ScheduleInterval:  getEnvDuration("SCHEDULE_INTERVAL", 0),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleTokenURL:     getEnv("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// SERPMode names the configured SERP source.
func (c *Config) SERPMode() string {
	if c.LiveScraperEnabled {
		return "live"
	}
	return "simulated"
}

// IsOAuthConfigured returns true if Google OAuth client credentials are set.
func (c *Config) IsOAuthConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
