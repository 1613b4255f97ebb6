// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"custody-wallet/pkg/db" // Import db package for its Config struct

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Summary store backends.
const (
	SummaryStoreSQL      = "sql"
	SummaryStoreDynamoDB = "dynamodb"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort    string
	LogLevel      string
	DB            db.Config
	AutoMigrate   bool
	Threshold     decimal.Decimal // Transfers above this amount need admin approval
	JWTSecret     string
	CORSOrigins   []string
	SummaryStore  string
	SummaryTable  string // DynamoDB table, used when SummaryStore is "dynamodb"
	EventQueueURL string // SQS queue for domain events; empty means log only
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first if one exists. It returns an error if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	driver := getEnv("DB_DRIVER", db.DriverPostgres)
	if driver != db.DriverPostgres && driver != db.DriverSQLite {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: must be %q or %q", driver, db.DriverPostgres, db.DriverSQLite)
	}

	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", strconv.FormatBool(driver == db.DriverSQLite)))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	threshold, err := decimal.NewFromString(getEnv("SETTLEMENT_THRESHOLD", "1000000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SETTLEMENT_THRESHOLD: %w", err)
	}
	if threshold.IsNegative() {
		return nil, fmt.Errorf("invalid SETTLEMENT_THRESHOLD: must not be negative")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	summaryStore := getEnv("SUMMARY_STORE", SummaryStoreSQL)
	summaryTable := os.Getenv("DYNAMODB_SUMMARIES_TABLE_NAME")
	switch summaryStore {
	case SummaryStoreSQL:
	case SummaryStoreDynamoDB:
		if summaryTable == "" {
			return nil, fmt.Errorf("DYNAMODB_SUMMARIES_TABLE_NAME must be set when SUMMARY_STORE is %q", SummaryStoreDynamoDB)
		}
	default:
		return nil, fmt.Errorf("invalid SUMMARY_STORE %q", summaryStore)
	}

	var origins []string
	for _, origin := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return &AppConfig{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DB: db.Config{
			Driver:   driver,
			Host:     getEnv("DB_HOST", "localhost"), // Default to localhost for local development
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "walletdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "wallet.db"),
		},
		AutoMigrate:   autoMigrate,
		Threshold:     threshold,
		JWTSecret:     jwtSecret,
		CORSOrigins:   origins,
		SummaryStore:  summaryStore,
		SummaryTable:  summaryTable,
		EventQueueURL: os.Getenv("SQS_QUEUE_URL"),
	}, nil
}
