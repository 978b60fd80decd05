package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Snapshot cache
	CacheTTL         time.Duration
	CacheWarmOnStart bool

	// Duplicate detection
	DuplicateLookback time.Duration

	// Import decision sessions
	DecisionSessionTTL time.Duration

	// Artifact storage root for uploaded source documents
	ArtifactRoot string

	// Rate limiting for import endpoints, ulule/limiter format (e.g. "60-M")
	ImportRateLimit string

	// Analytics
	PosthogAPIKey   string `mapstructure:"POSTHOG_API_KEY"`
	PosthogEndpoint string `mapstructure:"POSTHOG_ENDPOINT"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("CACHE_TTL", "30m")
	viper.SetDefault("CACHE_WARM_ON_START", true)
	viper.SetDefault("DUPLICATE_LOOKBACK", "17520h") // 2 years
	viper.SetDefault("DECISION_SESSION_TTL", "30m")
	viper.SetDefault("ARTIFACT_ROOT", "./artifacts")
	viper.SetDefault("IMPORT_RATE_LIMIT", "60-M")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.CacheTTL = parseDurationOrDefault("CACHE_TTL", 30*time.Minute)
	cfg.CacheWarmOnStart = viper.GetBool("CACHE_WARM_ON_START")
	cfg.DuplicateLookback = parseDurationOrDefault("DUPLICATE_LOOKBACK", 2*365*24*time.Hour)
	cfg.DecisionSessionTTL = parseDurationOrDefault("DECISION_SESSION_TTL", 30*time.Minute)

	cfg.ArtifactRoot = viper.GetString("ARTIFACT_ROOT")
	cfg.ImportRateLimit = viper.GetString("IMPORT_RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	return cfg, nil
}

func parseDurationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
