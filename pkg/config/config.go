package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Reference numbering policy.
	ReferencePrefix   string
	ReferencePadWidth int
	PostRetries       int

	MigrationsPath string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("REFERENCE_PREFIX", "JE")
	viper.SetDefault("REFERENCE_PAD_WIDTH", 4)
	viper.SetDefault("POST_RETRIES", 3)
	viper.SetDefault("MIGRATIONS_PATH", "migrations")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.ReferencePrefix = viper.GetString("REFERENCE_PREFIX")
	if cfg.ReferencePrefix == "" {
		cfg.ReferencePrefix = "JE"
		log.Printf("Warning: REFERENCE_PREFIX not set. Defaulting to %s.\n", cfg.ReferencePrefix)
	}

	cfg.ReferencePadWidth = viper.GetInt("REFERENCE_PAD_WIDTH")
	if cfg.ReferencePadWidth <= 0 {
		cfg.ReferencePadWidth = 4
		log.Printf("Warning: Invalid REFERENCE_PAD_WIDTH. Defaulting to %d.\n", cfg.ReferencePadWidth)
	}

	cfg.PostRetries = viper.GetInt("POST_RETRIES")
	if cfg.PostRetries <= 0 {
		cfg.PostRetries = 3
		log.Printf("Warning: Invalid POST_RETRIES. Defaulting to %d.\n", cfg.PostRetries)
	}

	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	return cfg, nil
}
