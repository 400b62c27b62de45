package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all engine configuration
type Config struct {
	Decode    DecodeConfig
	Normalize NormalizeConfig
	Workers   WorkerConfig
}

// DecodeConfig holds document-decoding configuration
type DecodeConfig struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Soffice   string // binary name or absolute path; if empty -> "soffice"

	TesseractLang string // default "mkd+eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	MinTextChars int           // cascade promotion threshold, default 50
	OCREnabled   bool          // when false, scanned documents terminate as OCR_REQUIRED
	Timeout      time.Duration // per-document wall-clock budget, default 180s

	ScratchDir string
}

// NormalizeConfig holds value-normalizer bounds
type NormalizeConfig struct {
	MinYear       int    // plausible-date lower bound, default 2000
	MaxYear       int    // plausible-date upper bound, default 2050
	AmountCeiling string // sanity ceiling for monetary values, default "10000000000"
	Currency      string // default currency code, default "MKD"
}

// WorkerConfig sizes the two decode pools
type WorkerConfig struct {
	Standard int // fast-text/layout/spreadsheet pool, default 8
	OCR      int // OCR pool, default 2
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Decode: DecodeConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			Soffice:       getEnv("SOFFICE_BIN", "soffice"),
			TesseractLang: getEnv("TESSERACT_LANG", "mkd+eng"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
			MinTextChars:  getEnvAsInt("ENGINE_MIN_TEXT_CHARS", 50),
			OCREnabled:    getEnvAsBool("ENGINE_OCR_ENABLED", true),
			Timeout:       getEnvAsDuration("ENGINE_DECODE_TIMEOUT", 180*time.Second),
			ScratchDir:    getEnv("ENGINE_SCRATCH_DIR", ""),
		},
		Normalize: NormalizeConfig{
			MinYear:       getEnvAsInt("NORMALIZE_MIN_YEAR", 2000),
			MaxYear:       getEnvAsInt("NORMALIZE_MAX_YEAR", 2050),
			AmountCeiling: getEnv("NORMALIZE_AMOUNT_CEILING", "10000000000"),
			Currency:      getEnv("NORMALIZE_CURRENCY", "MKD"),
		},
		Workers: WorkerConfig{
			Standard: getEnvAsInt("ENGINE_STD_WORKERS", 8),
			OCR:      getEnvAsInt("ENGINE_OCR_WORKERS", 2),
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
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
	if c.Decode.MinTextChars <= 0 {
		return NewAppError("CONFIG_ERROR", "ENGINE_MIN_TEXT_CHARS must be positive", ErrInvalidInput)
	}
	if c.Normalize.MinYear >= c.Normalize.MaxYear {
		return NewAppError("CONFIG_ERROR", "NORMALIZE_MIN_YEAR must be below NORMALIZE_MAX_YEAR", ErrInvalidInput)
	}
	if c.Workers.Standard <= 0 || c.Workers.OCR <= 0 {
		return NewAppError("CONFIG_ERROR", "worker pool sizes must be positive", ErrInvalidInput)
	}
	return nil
}
