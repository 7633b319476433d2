package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Store StoreConfig
	OCR   OCRConfig
	Batch BatchConfig
}

// StoreConfig holds persistent-store configuration
type StoreConfig struct {
	Backend string // "xlsx" | "sqlite"
	Path    string
	Backup  bool
}

// OCRConfig holds text-acquisition configuration
type OCRConfig struct {
	Pdftoppm      string
	Tesseract     string
	Antiword      string
	TesseractLang string
	DPI           int
	MinPageChars  int
}

// BatchConfig holds batch-orchestration configuration
type BatchConfig struct {
	Workers       int
	DocTimeout    time.Duration
	RuleFile      string // optional JSON rule file overriding built-in patterns
	ReportPath    string
	WatchRoots    []string
	WatchDebounce time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "xlsx"),
			Path:    getEnv("STORE_PATH", "kra_master_database.xlsx"),
			Backup:  getEnvAsBool("STORE_BACKUP", true),
		},
		OCR: OCRConfig{
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			Antiword:      getEnv("ANTIWORD_BIN", "antiword"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MinPageChars:  getEnvAsInt("MIN_PAGE_CHARS", 100),
		},
		Batch: BatchConfig{
			Workers:       getEnvAsInt("BATCH_WORKERS", 4),
			DocTimeout:    getEnvAsDuration("DOC_TIMEOUT", 3*time.Minute),
			RuleFile:      getEnv("RULE_FILE", ""),
			ReportPath:    getEnv("REPORT_PATH", ""),
			WatchDebounce: getEnvAsDuration("WATCH_DEBOUNCE", 2*time.Second),
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

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return NewAppError("CONFIG_ERROR", "STORE_PATH is required", ErrInvalidInput)
	}
	if c.Store.Backend != "xlsx" && c.Store.Backend != "sqlite" {
		return NewAppError("CONFIG_ERROR", "STORE_BACKEND must be xlsx or sqlite", ErrInvalidInput)
	}
	if c.OCR.DPI < 72 {
		return NewAppError("CONFIG_ERROR", "OCR_DPI must be at least 72", ErrInvalidInput)
	}
	if c.Batch.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "BATCH_WORKERS must be at least 1", ErrInvalidInput)
	}
	return nil
}
