package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"kickpredict/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Store backends
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig   `validate:"required"`
	Store     StoreConfig    `validate:"required"`
	Data      DataConfig
	Training  TrainingConfig `validate:"required"`
	Log       LogConfig      `validate:"required"`
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	UIPort  string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
}

// StoreConfig selects where training artifacts live
type StoreConfig struct {
	Kind        string `validate:"oneof=file postgres"`
	ArtifactDir string `validate:"required_if=Kind file"`
	DatabaseURL string `validate:"required_if=Kind postgres"`
}

// DataConfig holds the historical dataset location used by training
type DataConfig struct {
	DatasetFile string
	Sheet       string
}

// TrainingConfig holds classifier hyperparameters
type TrainingConfig struct {
	LearningRate float64 `validate:"gt=0"`
	Epochs       int     `validate:"gt=0"`
	L2           float64 `validate:"gte=0"`
	Holdout      float64 `validate:"gte=0,lt=1"`
	Seed         int64
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `validate:"oneof=ERROR WARN WARNING INFO DEBUG TRACE"`
	Format string `validate:"oneof=json console"`
}

// ProfilingConfig holds pprof settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8000"),
			UIPort:  getEnvOrDefault("UI_PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Store: StoreConfig{
			Kind:        strings.ToLower(getEnvOrDefault("ARTIFACT_STORE", StoreFile)),
			ArtifactDir: getEnvOrDefault("ARTIFACT_DIR", "./artifacts"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		Data: DataConfig{
			DatasetFile: getEnvOrDefault("DATASET_FILE", ""),
			Sheet:       getEnvOrDefault("DATASET_SHEET", ""),
		},
		Training: TrainingConfig{
			LearningRate: getEnvFloatOrDefault("TRAIN_LEARNING_RATE", 0.1),
			Epochs:       getEnvIntOrDefault("TRAIN_EPOCHS", 300),
			L2:           getEnvFloatOrDefault("TRAIN_L2", 1e-4),
			Holdout:      getEnvFloatOrDefault("TRAIN_HOLDOUT", 0.2),
			Seed:         int64(getEnvIntOrDefault("TRAIN_SEED", 42)),
		},
		Log: LogConfig{
			Level:  strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
			Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
		},
		Profiling: ProfilingConfig{
			Port:    getEnvOrDefault("PPROF_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
		},
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks struct tags and reports the first offending fields
func Validate(config *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(config); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.ConfigInvalid(strings.Join(msgs, "; "))
		}
		return errors.ConfigInvalid(err.Error())
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
