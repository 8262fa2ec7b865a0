package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxImageSize == 0 {
		cfg.Server.MaxImageSize = 10 << 20
	}
	if cfg.Server.ScanTimeout == 0 {
		cfg.Server.ScanTimeout = 90 * time.Second
	}

	if cfg.OCR.Timeout == 0 {
		cfg.OCR.Timeout = 30 * time.Second
	}
	if cfg.OCR.MaxTokens == 0 {
		cfg.OCR.MaxTokens = 1000
	}
	if cfg.OCR.MaxDimension == 0 {
		cfg.OCR.MaxDimension = 1536
	}
	if cfg.OCR.MaxPixels == 0 {
		cfg.OCR.MaxPixels = 40_000_000
	}
	if cfg.OCR.JPEGQuality == 0 {
		cfg.OCR.JPEGQuality = 85
	}
	providerDefaults(&cfg.OCR.Primary, cfg.OCR, "primary")
	if cfg.OCR.Fallback != nil {
		providerDefaults(cfg.OCR.Fallback, cfg.OCR, "fallback")
	}

	if cfg.Hazard.Name == "" {
		cfg.Hazard.Name = "pubchem"
	}
	if cfg.Hazard.URL == "" {
		cfg.Hazard.URL = "https://pubchem.ncbi.nlm.nih.gov"
	}
	if cfg.Hazard.Timeout == 0 {
		cfg.Hazard.Timeout = 15 * time.Second
	}

	if cfg.Resolver.MaxConcurrent == 0 {
		cfg.Resolver.MaxConcurrent = 5
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
}

func providerDefaults(p *ProviderConfig, ocr OCRConfig, name string) {
	if p.Name == "" {
		p.Name = name
	}
	if p.Type == "" {
		p.Type = "vision"
	}
	if p.Timeout == 0 {
		p.Timeout = ocr.Timeout
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = ocr.MaxTokens
	}
}
