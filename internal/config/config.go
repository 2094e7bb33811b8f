// Package config loads application settings from environment variables and
// an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/testward/internal/logger"
)

// DBConfig holds Postgres connection settings, used only when the storage
// driver is "postgres".
type DBConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSLMode  string
}

// Config holds the application's configuration values.
type Config struct {
	ServerPort    string
	Log           logger.Config
	StorageDriver string // "file" or "postgres"
	ArtifactsDir  string // document root for the file driver
	DB            DBConfig
	MaxWorkers    int

	// Gate settings.
	PassThreshold    float64
	StrictMode       bool
	SandboxTimeout   time.Duration
	MaxExecutionTime time.Duration

	// Optional YAML file overriding the built-in policy rule set.
	PolicyRulesFile string
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("STORAGE_DRIVER", "file")
	viper.SetDefault("ARTIFACTS_DIR", "genai_artifacts")
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("PASS_THRESHOLD", 0.8)
	viper.SetDefault("STRICT_MODE", false)
	viper.SetDefault("SANDBOX_TIMEOUT_SECONDS", 30)
	viper.SetDefault("MAX_EXECUTION_SECONDS", 5)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSLMODE", "disable")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", "error", err)
		}
	}
	viper.AutomaticEnv()

	cfg := &Config{
		ServerPort: viper.GetString("SERVER_PORT"),
		Log: logger.Config{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
		StorageDriver: viper.GetString("STORAGE_DRIVER"),
		ArtifactsDir:  viper.GetString("ARTIFACTS_DIR"),
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			Username: viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		MaxWorkers:       viper.GetInt("MAX_WORKERS"),
		PassThreshold:    viper.GetFloat64("PASS_THRESHOLD"),
		StrictMode:       viper.GetBool("STRICT_MODE"),
		SandboxTimeout:   time.Duration(viper.GetInt("SANDBOX_TIMEOUT_SECONDS")) * time.Second,
		MaxExecutionTime: time.Duration(viper.GetInt("MAX_EXECUTION_SECONDS")) * time.Second,
		PolicyRulesFile:  viper.GetString("POLICY_RULES_FILE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case "file":
		if c.ArtifactsDir == "" {
			return fmt.Errorf("ARTIFACTS_DIR must be set for the file storage driver")
		}
	case "postgres":
		if c.DB.Username == "" {
			return fmt.Errorf("DB_USER must be set for the postgres storage driver")
		}
		if c.DB.Database == "" {
			return fmt.Errorf("DB_NAME must be set for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q (supported: file, postgres)", c.StorageDriver)
	}

	if c.PassThreshold < 0 || c.PassThreshold > 1 {
		return fmt.Errorf("PASS_THRESHOLD must be in [0,1], got %v", c.PassThreshold)
	}
	if c.SandboxTimeout <= 0 {
		return fmt.Errorf("SANDBOX_TIMEOUT_SECONDS must be positive")
	}
	return nil
}
