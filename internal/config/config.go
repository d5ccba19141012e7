package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Storage root; uploads/ and converted/ live under it.
	DataDir string

	// Upload limits
	MaxUploadBytes int64

	// Conversion
	MaxConcurrentConversions int
	ConvertTimeout           time.Duration

	// OCR
	OCRCommand  string
	OCRLanguage string

	// PDF
	PDFFallbackPdftotext bool
	PdftotextCommand     string

	LogLevel slog.Level
}

// Load reads configuration from the environment, after applying a .env
// file from the working directory if one exists.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "5000"),

		DataDir: envOr("DATA_DIR", "."),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		MaxConcurrentConversions: envInt("MAX_CONCURRENT_CONVERSIONS", 4),
		ConvertTimeout:           envDuration("CONVERT_TIMEOUT", 0),

		OCRCommand:  envOr("OCR_COMMAND", "tesseract"),
		OCRLanguage: envOr("OCR_LANGUAGE", "eng"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
		PdftotextCommand:     envOr("PDFTOTEXT_COMMAND", "pdftotext"),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MaxConcurrentConversions <= 0 {
		cfg.MaxConcurrentConversions = 4
	}
	if cfg.ConvertTimeout < 0 {
		cfg.ConvertTimeout = 0
	}

	return cfg
}

// Validate reports the first setting the server cannot start with.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Port)
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.OCRCommand == "" {
		return fmt.Errorf("OCR_COMMAND is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.TrimSpace(v))); err == nil {
			return l
		}
	}
	return fallback
}
