package config

import (
	"time"

	redisclient "github.com/taj0207/IngredientCheck/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server     ServerConfig       `yaml:"server"`
	Logging    LoggingConfig      `yaml:"logging"`
	OCR        OCRConfig          `yaml:"ocr"`
	Hazard     HazardConfig       `yaml:"hazard"`
	Resolver   ResolverConfig     `yaml:"resolver"`
	Cache      CacheConfig        `yaml:"cache"`
	Redis      redisclient.Config `yaml:"redis"`
	Regulatory RegulatoryConfig   `yaml:"regulatory"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	MaxImageSize int64         `yaml:"max_image_size"` // bytes
	ScanTimeout  time.Duration `yaml:"scan_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// OCRConfig holds text extraction settings shared by both providers.
type OCRConfig struct {
	Timeout      time.Duration   `yaml:"timeout"`
	MaxTokens    int             `yaml:"max_tokens"`
	MaxDimension int             `yaml:"max_dimension"`
	MaxPixels    int             `yaml:"max_pixels"` // decoded size limit for uploads
	JPEGQuality  int             `yaml:"jpeg_quality"`
	LanguageHint string          `yaml:"language_hint"`
	Primary      ProviderConfig  `yaml:"primary"`
	Fallback     *ProviderConfig `yaml:"fallback"` // nil = no failover
}

// ProviderConfig holds settings for one extraction provider. Zero values
// inherit from OCRConfig.
type ProviderConfig struct {
	Name      string        `yaml:"name"`
	Type      string        `yaml:"type"` // vision, tesseract
	URL       string        `yaml:"url"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`
}

// HazardConfig holds the hazard data provider settings.
type HazardConfig struct {
	Name      string        `yaml:"name"`
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// ResolverConfig bounds the lookup fan-out.
type ResolverConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// CacheConfig controls the in-memory safety cache.
type CacheConfig struct {
	Enabled *bool         `yaml:"enabled"` // nil = enabled
	TTL     time.Duration `yaml:"ttl"`
}

// IsEnabled reports whether local caching is on.
func (c CacheConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// RegulatoryConfig optionally replaces the embedded dataset.
type RegulatoryConfig struct {
	Path string `yaml:"path"`
}
