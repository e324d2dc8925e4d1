// Package config provides configuration management for mm-ledger.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Paths    PathsConfig
	Rules    RulesConfig
	Currency string
	Debug    bool
}

// PathsConfig represents input and output locations.
type PathsConfig struct {
	InputDir     string
	ExtractDir   string
	OutputDir    string
	DBPath       string
	BeancountDir string
}

// RulesConfig represents reconciliation rule settings.
type RulesConfig struct {
	// Path is an optional YAML rules file; empty means built-in defaults.
	Path string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	// Load .env file
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	currency := strings.ToUpper(getEnvOrDefault("MM_CURRENCY", "EUR"))
	if len(currency) != 3 {
		return nil, fmt.Errorf("invalid MM_CURRENCY: %q", currency)
	}

	config := &Config{
		Paths: PathsConfig{
			InputDir:     getEnvOrDefault("MM_INPUT_DIR", "./input"),
			ExtractDir:   getEnvOrDefault("MM_EXTRACT_DIR", "./estratto"),
			OutputDir:    getEnvOrDefault("MM_OUTPUT_DIR", "./output"),
			DBPath:       os.Getenv("MM_DB_PATH"),
			BeancountDir: os.Getenv("MM_BEANCOUNT_DIR"),
		},
		Rules: RulesConfig{
			Path: os.Getenv("MM_RULES_PATH"),
		},
		Currency: currency,
		Debug:    os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks if all required fields are set.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "paths":
			switch path[1] {
			case "input":
				value = c.Paths.InputDir
			case "extract":
				value = c.Paths.ExtractDir
			case "output":
				value = c.Paths.OutputDir
			case "db":
				value = c.Paths.DBPath
			case "beancount":
				value = c.Paths.BeancountDir
			}
		case "rules":
			if path[1] == "path" {
				value = c.Rules.Path
			}
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
