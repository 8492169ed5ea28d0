package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	defaultBrandName            = "Dubai Documents"
	defaultClientStorageSubPath = "client_files"
)

const (
	defaultPortfolioQueueSize  = 100
	defaultNumPortfolioWorkers = 2
)

type Config struct {
	// database path
	DatabasePath string

	// root directory for per-client document folders
	ClientStoragePath string

	// brand string stamped on every generated PDF
	BrandName string

	// portfolio worker settings
	PortfolioQueueSize  int
	NumPortfolioWorkers int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "documents.db")

	clientStorage := getEnvOrDefault("CLIENT_STORAGE_PATH", filepath.Join(".", defaultClientStorageSubPath))
	absClientStorage, err := filepath.Abs(clientStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for client storage '%s': %w", clientStorage, err)
	}

	brand := getEnvOrDefault("BRAND_NAME", defaultBrandName)

	queueSize := getEnvIntOrDefault("PORTFOLIO_QUEUE_SIZE", defaultPortfolioQueueSize)
	numWorkers := getEnvIntOrDefault("NUM_PORTFOLIO_WORKERS", defaultNumPortfolioWorkers)

	cfg := Config{
		DatabasePath:        dbPath,
		ClientStoragePath:   absClientStorage,
		BrandName:           brand,
		PortfolioQueueSize:  queueSize,
		NumPortfolioWorkers: numWorkers,
	}

	return cfg, nil
}
