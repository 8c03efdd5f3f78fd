package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	WebPort                 int           `mapstructure:"WEB_PORT"`
	KnowledgeSource         string        `mapstructure:"KNOWLEDGE_SOURCE"`
	KnowledgeBasePath       string        `mapstructure:"KNOWLEDGE_BASE_PATH"`
	SymptomRegistryPath     string        `mapstructure:"SYMPTOM_REGISTRY_PATH"`
	DatabaseURL             string        `mapstructure:"DATABASE_URL"`
	MaxAnswers              int           `mapstructure:"MAX_ANSWERS"`
	MaxQuestionLength       int           `mapstructure:"MAX_QUESTION_LENGTH"`
	ParallelScanThreshold   int           `mapstructure:"PARALLEL_SCAN_THRESHOLD"`
	ScanWorkers             int           `mapstructure:"SCAN_WORKERS"`
	HistoryEnabled          bool          `mapstructure:"HISTORY_ENABLED"`
	HistorySize             int           `mapstructure:"HISTORY_SIZE"`
	HistoryRetentionAge     time.Duration `mapstructure:"HISTORY_RETENTION_AGE"`
	CleanupEnabled          bool          `mapstructure:"CLEANUP_ENABLED"`
	CleanupInterval         time.Duration `mapstructure:"CLEANUP_INTERVAL"`
	RateLimitRequestsPerMin int           `mapstructure:"RATE_LIMIT_REQUESTS_PER_MIN"`
	RateLimitBurstSize      int           `mapstructure:"RATE_LIMIT_BURST_SIZE"`
	MetricsEnabled          bool          `mapstructure:"METRICS_ENABLED"`
}

const (
	// SourceFile loads the knowledge base from KNOWLEDGE_BASE_PATH.
	SourceFile = "file"
	// SourcePostgres loads the knowledge base from DATABASE_URL.
	SourcePostgres = "postgres"
)

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // For running locally
	viper.AddConfigPath("../")      // For running from docker subdir
	viper.AddConfigPath("./config") // Common config folder
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
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
	return &config
}

// SetDefaults registers every default on the global viper instance.
func SetDefaults() {
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("WEB_PORT", 8080)
	viper.SetDefault("KNOWLEDGE_SOURCE", SourceFile)
	viper.SetDefault("KNOWLEDGE_BASE_PATH", "data/facts.json")
	viper.SetDefault("SYMPTOM_REGISTRY_PATH", "")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("MAX_ANSWERS", 4)
	viper.SetDefault("MAX_QUESTION_LENGTH", 2000)
	viper.SetDefault("PARALLEL_SCAN_THRESHOLD", 512)
	viper.SetDefault("SCAN_WORKERS", 4)
	viper.SetDefault("HISTORY_ENABLED", true)
	viper.SetDefault("HISTORY_SIZE", 50)
	viper.SetDefault("HISTORY_RETENTION_AGE", 720)
	viper.SetDefault("CLEANUP_ENABLED", true)
	viper.SetDefault("CLEANUP_INTERVAL", 24)
	viper.SetDefault("RATE_LIMIT_REQUESTS_PER_MIN", 30)
	viper.SetDefault("RATE_LIMIT_BURST_SIZE", 10)
	viper.SetDefault("METRICS_ENABLED", true)
}

func (c *Config) normalize() {
	c.KnowledgeSource = strings.ToLower(strings.TrimSpace(c.KnowledgeSource))
	if c.KnowledgeSource == "" {
		c.KnowledgeSource = SourceFile
	}
	if c.MaxAnswers <= 0 {
		c.MaxAnswers = 4
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 50
	}
	if c.ScanWorkers <= 0 {
		c.ScanWorkers = 1
	}

	// Convert hours to proper time.Duration
	c.HistoryRetentionAge = c.HistoryRetentionAge * time.Hour
	c.CleanupInterval = c.CleanupInterval * time.Hour
}
