package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Xero configuration
	XeroClientID     string
	XeroClientSecret string
	XeroBaseURL      string
	XeroTokenURL     string
	XeroTimeout      time.Duration
	TokenFile        string
	TenantFile       string

	// Audit database configuration (optional)
	DatabaseURL string

	// PDF archive configuration (optional)
	S3Endpoint        string
	S3AccessKeyID     string
	S3AccessKeySecret string
	S3Bucket          string
	S3Region          string
}

// LoadConfig loads the application configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file. Using environment variables.")
	}

	config := &Config{
		// Server configuration
		Port:         getEnvInt("PORT", 8080),
		ReadTimeout:  time.Duration(getEnvInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvInt("WRITE_TIMEOUT", 60)) * time.Second,

		// Xero configuration
		XeroClientID:     os.Getenv("XERO_CLIENT_ID"),
		XeroClientSecret: os.Getenv("XERO_CLIENT_SECRET"),
		XeroBaseURL:      getEnvString("XERO_BASE_URL", "https://api.xero.com/api.xro/2.0"),
		XeroTokenURL:     getEnvString("XERO_TOKEN_URL", "https://identity.xero.com/connect/token"),
		XeroTimeout:      time.Duration(getEnvInt("XERO_TIMEOUT", 15)) * time.Second,
		TokenFile:        getEnvString("XERO_TOKEN_FILE", "xero_token.json"),
		TenantFile:       getEnvString("XERO_TENANT_FILE", "xero_tenant_id.txt"),

		// Audit database configuration
		DatabaseURL: os.Getenv("POSTGRES_DB_URL"),

		// PDF archive configuration
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3AccessKeySecret: os.Getenv("S3_ACCESS_KEY_SECRET"),
		S3Bucket:          getEnvString("S3_BUCKET", "invoices"),
		S3Region:          getEnvString("S3_REGION", "us-east-1"),
	}

	validateConfig(config)

	return config, nil
}

// validateConfig checks if critical configuration values are set and logs warnings if they're missing
func validateConfig(config *Config) {
	if config.XeroClientID == "" || config.XeroClientSecret == "" {
		log.Println("Warning: XERO_CLIENT_ID or XERO_CLIENT_SECRET not provided. Token refresh will fail.")
	}

	if config.DatabaseURL == "" {
		log.Println("Warning: No POSTGRES_DB_URL provided. Booking audit records will not be stored.")
	}

	if config.S3AccessKeyID == "" || config.S3AccessKeySecret == "" {
		log.Println("Warning: S3 credentials not provided. Source PDFs will not be archived.")
	}
}

// getEnvInt gets an integer from an environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvString gets a string from an environment variable with a default value
func getEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
