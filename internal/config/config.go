package config

import (
	"fmt"
	"os"
	"strconv"

	"billgen/internal/invoice"
	"billgen/internal/logger"
)

type Config struct {
	// Business profile (YAML); empty means the built-in profile
	ProfilePath string

	// Invoice computation
	SubtotalPolicy string

	// TrueType fonts for text outside cp1252; empty uses Helvetica
	FontFile     string
	BoldFontFile string

	// Output
	OutputDir  string
	VerifyPDF  bool
	ServerAddr string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	verify, err := strconv.ParseBool(getEnv("VERIFY_PDF", "true"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: VERIFY_PDF: %w", err)
	}

	config := &Config{
		ProfilePath:    getEnv("INVOICE_PROFILE", ""),
		SubtotalPolicy: getEnv("SUBTOTAL_POLICY", string(invoice.PolicyExact)),
		FontFile:       getEnv("PDF_FONT", ""),
		BoldFontFile:   getEnv("PDF_FONT_BOLD", ""),
		OutputDir:      getEnv("OUTPUT_DIR", "."),
		VerifyPDF:      verify,
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:  getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:      getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Default returns the configuration used when the environment cannot be read.
func Default() *Config {
	lc := logger.DefaultConfig()
	return &Config{
		SubtotalPolicy: string(invoice.PolicyExact),
		OutputDir:      ".",
		VerifyPDF:      true,
		ServerAddr:     ":8080",
		LogLevel:       lc.Level,
		LogFormat:      lc.Format,
		LogTimeFormat:  lc.TimeFormat,
		LogOutput:      lc.Output,
	}
}

func (c *Config) validate() error {
	if _, err := invoice.ParsePolicy(c.SubtotalPolicy); err != nil {
		return fmt.Errorf("SUBTOTAL_POLICY: %w", err)
	}
	if c.BoldFontFile != "" && c.FontFile == "" {
		return fmt.Errorf("PDF_FONT_BOLD requires PDF_FONT")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	if c.ServerAddr == "" {
		return fmt.Errorf("SERVER_ADDR must not be empty")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
