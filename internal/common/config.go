package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	Catalog  CatalogConfig
	Export   ExportConfig
	Debug    bool
}

// DatabaseConfig holds extraction-store configuration
type DatabaseConfig struct {
	DSN string
}

// OCRConfig holds OCR engine and worker pool configuration
type OCRConfig struct {
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	MaxWorkers    int
	RetryAttempts int
	RetryBaseWait time.Duration
}

// CatalogConfig holds field-catalog configuration
type CatalogConfig struct {
	OverridePath string // optional JSON override for synonyms/weights
}

// ExportConfig holds XLSX export configuration. A Limit of zero exports
// every stored row.
type ExportConfig struct {
	Path  string
	Limit int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN: getEnv("DB_URL", ""),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "fra+eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			MaxWorkers:    getEnvAsInt("MAX_OCR_WORKERS", 3),
			RetryAttempts: getEnvAsInt("OCR_RETRY_ATTEMPTS", 2),
			RetryBaseWait: getEnvAsDuration("OCR_RETRY_BASE_DELAY", 500*time.Millisecond),
		},
		Catalog: CatalogConfig{
			OverridePath: getEnv("CATALOG_PATH", ""),
		},
		Export: ExportConfig{
			Path:  getEnv("EXPORT_PATH", ""),
			Limit: getEnvAsInt("EXPORT_LIMIT", 0),
		},
		Debug: getEnvAsBool("DEBUG_MODE", false),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
