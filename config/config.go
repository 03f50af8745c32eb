package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	WebPort                 int           `mapstructure:"WEB_PORT"`
	DatabaseURL             string        `mapstructure:"DATABASE_URL"`
	NERBackend              string        `mapstructure:"NER_BACKEND"`
	NERModelDir             string        `mapstructure:"NER_MODEL_DIR"`
	NERCacheSize            int           `mapstructure:"NER_CACHE_SIZE"`
	TextColumn              string        `mapstructure:"TEXT_COLUMN"`
	MetadataColumns         []string      `mapstructure:"METADATA_COLUMNS"`
	RowIDVariable           string        `mapstructure:"ROW_ID_VARIABLE"`
	MissingValue            string        `mapstructure:"MISSING_VALUE"`
	WordJoiner              string        `mapstructure:"WORD_JOINER"`
	ConvertNumbers          bool          `mapstructure:"CONVERT_NUMBERS"`
	ContractionMode         string        `mapstructure:"CONTRACTION_MODE"`
	Lowercase               bool          `mapstructure:"LOWERCASE"`
	AcronymDictionary       string        `mapstructure:"ACRONYM_DICTIONARY"`
	EntityDictionary        string        `mapstructure:"ENTITY_DICTIONARY"`
	Workers                 int           `mapstructure:"WORKERS"`
	MaxUploadMB             int64         `mapstructure:"MAX_UPLOAD_MB"`
	RateLimitRequestsPerMin int           `mapstructure:"RATE_LIMIT_REQUESTS_PER_MIN"`
	RateLimitBurstSize      int           `mapstructure:"RATE_LIMIT_BURST_SIZE"`
	ShutdownTimeoutSeconds  int           `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
	ShutdownTimeout         time.Duration `mapstructure:"-"`
	RunRetentionDays        int           `mapstructure:"RUN_RETENTION_DAYS"`
}

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // For running locally
	viper.AddConfigPath("../")      // For running from docker subdir
	viper.AddConfigPath("./config") // Common config folder
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("WEB_PORT", 8080)
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("NER_BACKEND", "prose")
	viper.SetDefault("NER_MODEL_DIR", "")
	viper.SetDefault("NER_CACHE_SIZE", 1024)
	viper.SetDefault("TEXT_COLUMN", "texto")
	viper.SetDefault("METADATA_COLUMNS", []string{})
	viper.SetDefault("ROW_ID_VARIABLE", "ind")
	viper.SetDefault("MISSING_VALUE", "na")
	viper.SetDefault("WORD_JOINER", "_")
	viper.SetDefault("CONVERT_NUMBERS", true)
	viper.SetDefault("CONTRACTION_MODE", "join")
	viper.SetDefault("LOWERCASE", false)
	viper.SetDefault("ACRONYM_DICTIONARY", "")
	viper.SetDefault("ENTITY_DICTIONARY", "")
	viper.SetDefault("WORKERS", 4)
	viper.SetDefault("MAX_UPLOAD_MB", 20)
	viper.SetDefault("RATE_LIMIT_REQUESTS_PER_MIN", 30)
	viper.SetDefault("RATE_LIMIT_BURST_SIZE", 10)
	viper.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)
	viper.SetDefault("RUN_RETENTION_DAYS", 90)

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Debug("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	config.normalize()

	if err := config.Validate(); err != nil {
		if logger != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Invalid configuration: %v\n", err)
			os.Exit(1)
		}
	}

	return &config
}

// normalize trims list values and converts second counts to durations.
func (c *Config) normalize() {
	c.NERBackend = strings.ToLower(strings.TrimSpace(c.NERBackend))
	c.ContractionMode = strings.ToLower(strings.TrimSpace(c.ContractionMode))
	c.TextColumn = strings.TrimSpace(c.TextColumn)

	cleaned := make([]string, 0, len(c.MetadataColumns))
	for _, col := range c.MetadataColumns {
		// env values arrive as a single comma separated string
		for _, part := range strings.Split(col, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				cleaned = append(cleaned, part)
			}
		}
	}
	c.MetadataColumns = cleaned

	if c.Workers < 1 {
		c.Workers = 1
	}

	// env values carry no unit
	c.ShutdownTimeout = time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.NERBackend {
	case "prose", "rules":
	default:
		return fmt.Errorf("NER_BACKEND must be \"prose\" or \"rules\", got %q", c.NERBackend)
	}
	switch c.ContractionMode {
	case "join", "split", "keep":
	default:
		return fmt.Errorf("CONTRACTION_MODE must be join, split or keep, got %q", c.ContractionMode)
	}
	if !validJoiner(c.WordJoiner) {
		return fmt.Errorf("WORD_JOINER must be underscores, letters or digits, got %q", c.WordJoiner)
	}
	if c.TextColumn == "" {
		return fmt.Errorf("TEXT_COLUMN must not be empty")
	}
	if c.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must not be negative, got %d", c.ShutdownTimeoutSeconds)
	}
	if c.RunRetentionDays < 0 {
		return fmt.Errorf("RUN_RETENTION_DAYS must be zero (keep forever) or positive, got %d", c.RunRetentionDays)
	}
	return nil
}

// validJoiner accepts only runes that survive special character stripping.
func validJoiner(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
