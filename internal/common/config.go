package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Dataset  DatasetConfig
	Parser   ParserConfig
	LLM      LLMConfig
}

// DatabaseConfig holds MongoDB-related configuration
type DatabaseConfig struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
	PingTimeout    time.Duration
}

// DatasetConfig holds the authoritative CSV registry configuration
type DatasetConfig struct {
	CSVPath    string
	ReportPath string
}

// ParserConfig holds parsing-service configuration
type ParserConfig struct {
	APIKey       string
	BaseURL      string
	Language     string
	PollInterval time.Duration
	JobTimeout   time.Duration
	OutputDir    string
}

// LLMConfig holds extraction-model configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// LoadConfig loads configuration from a .env file (if present) and the environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DB", "UQ"),
			Collection:     getEnv("MONGO_COLLECTION", "internamentos"),
			ConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 5*time.Second),
			PingTimeout:    getEnvAsDuration("MONGO_PING_TIMEOUT", 5*time.Second),
		},
		Dataset: DatasetConfig{
			CSVPath:    getEnv("CSV_PATH", "./csv/BD_doentes_clean.csv"),
			ReportPath: getEnv("REPORT_PATH", "./reports/data_validation_report.csv"),
		},
		Parser: ParserConfig{
			APIKey:       getEnv("LLAMA_CLOUD_API_KEY", ""),
			BaseURL:      getEnv("LLAMA_CLOUD_BASE_URL", "https://api.cloud.eu.llamaindex.ai"),
			Language:     getEnv("PARSE_LANGUAGE", "pt"),
			PollInterval: getEnvAsDuration("PARSE_POLL_INTERVAL", 2*time.Second),
			JobTimeout:   getEnvAsDuration("PARSE_JOB_TIMEOUT", 5*time.Minute),
			OutputDir:    getEnv("OUTPUT_DIR", "./pdf/output"),
		},
		LLM: LLMConfig{
			Model:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			BaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", 90*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateDatabase checks the configuration needed by any binary that touches storage.
func (c *Config) ValidateDatabase() error {
	if c.Database.URI == "" {
		return NewAppError("CONFIG_ERROR", "MONGO_URI is required", ErrInvalidInput)
	}
	if c.Database.Database == "" {
		return NewAppError("CONFIG_ERROR", "MONGO_DB is required", ErrInvalidInput)
	}
	return nil
}

// ValidateExtraction checks the configuration needed by the extraction pipeline.
func (c *Config) ValidateExtraction() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
	}
	return nil
}

// ValidateParsing checks the configuration needed by the PDF parsing stage.
func (c *Config) ValidateParsing() error {
	if c.Parser.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "LLAMA_CLOUD_API_KEY is required", ErrInvalidInput)
	}
	return nil
}
