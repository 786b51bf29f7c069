package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Port string `validate:"required"`

	// Inputs
	DocumentPath     string `validate:"required"`
	FindingsPath     string `validate:"required"`
	AnalysisDocxPath string // optional analyst report to import analysis notes from

	// Auth (optional; API is open when unset)
	APIKey string

	// Rendering
	RenderWidth float64 `validate:"min=320,max=4096"`

	// Highlight probing
	ProbeAttempts  int           `validate:"min=1,max=64"`
	ProbeInterval  time.Duration `validate:"min=10ms,max=5s"`
	HighlightLines int           `validate:"min=1,max=12"`
}

func Load() Config {
	return Config{
		Port: envOr("PORT", "8091"),

		DocumentPath:     envOr("DOCUMENT_PATH", "document.pdf"),
		FindingsPath:     envOr("FINDINGS_PATH", "findings.json"),
		AnalysisDocxPath: os.Getenv("ANALYSIS_DOCX_PATH"),

		APIKey: os.Getenv("DOCVIEW_API_KEY"),

		RenderWidth: envFloat("RENDER_WIDTH", 1200),

		ProbeAttempts:  envInt("PROBE_ATTEMPTS", 8),
		ProbeInterval:  envDuration("PROBE_INTERVAL", 250*time.Millisecond),
		HighlightLines: envInt("HIGHLIGHT_LINES", 3),
	}
}

func (c Config) Validate() error {
	return validator.New().Struct(c)
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
