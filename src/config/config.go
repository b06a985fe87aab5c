package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string

	// Screenshot import
	MaxScanSizeBytes int64

	// Live item catalog
	CatalogAPIBaseURL  string
	CatalogUserAgent   string
	CatalogCacheTTL    time.Duration
	CatalogRatePerSec  float64
	CatalogHTTPTimeout time.Duration

	// Derived report caching (trading profile etc.)
	ReportCacheTTL time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	maxScanSizeBytesStr := getEnv("MAX_SCAN_SIZE_BYTES", "262144")
	maxScanSizeBytes, err := strconv.ParseInt(maxScanSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_SCAN_SIZE_BYTES format '%s'. Using default 256KB. Error: %v", maxScanSizeBytesStr, err)
		maxScanSizeBytes = 256 * 1024
	}

	catalogRatePerSecStr := getEnv("CATALOG_RATE_PER_SEC", "5")
	catalogRatePerSec, err := strconv.ParseFloat(catalogRatePerSecStr, 64)
	if err != nil || catalogRatePerSec <= 0 {
		log.Printf("WARNING: Invalid CATALOG_RATE_PER_SEC '%s'. Using default 5. Error: %v", catalogRatePerSecStr, err)
		catalogRatePerSec = 5
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./flipfolio.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		MaxScanSizeBytes: maxScanSizeBytes,

		CatalogAPIBaseURL:  getEnv("CATALOG_API_BASE_URL", "https://prices.runescape.wiki/api/v1/osrs"),
		CatalogUserAgent:   getEnv("CATALOG_USER_AGENT", "flipfolio-backend"),
		CatalogCacheTTL:    getEnvAsDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		CatalogRatePerSec:  catalogRatePerSec,
		CatalogHTTPTimeout: getEnvAsDuration("CATALOG_HTTP_TIMEOUT", 10*time.Second),

		ReportCacheTTL: getEnvAsDuration("REPORT_CACHE_TTL", 15*time.Minute),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, CatalogAPI=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.CatalogAPIBaseURL)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
