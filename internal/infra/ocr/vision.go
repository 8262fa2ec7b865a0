package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/infra/provider"
	"github.com/taj0207/IngredientCheck/internal/safety/metrics"
)

const (
	DefaultVisionTimeout   = 30 * time.Second
	DefaultVisionMaxTokens = 1000
)

const instructionPrompt = `You read product labels. Extract every ingredient listed on the label in the image, in the order printed.
Reply with JSON only, no prose, in the form {"ingredients": ["name", ...], "language": "<ISO 639-1 code of the label>"}.
Keep each ingredient as printed, without percentages or footnote markers.
If the image has no readable ingredient list, reply {"ingredients": [], "language": ""}.`

// VisionClient extracts ingredients with an OpenAI-compatible vision model.
type VisionClient struct {
	cfg    EngineConfig
	http   *provider.HTTPProvider
	logger *slog.Logger
}

// NewVisionClient creates a client for one provider.
func NewVisionClient(cfg EngineConfig) (*VisionClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("vision engine %q: url is required", cfg.Name)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("vision engine %q: model is required", cfg.Name)
	}
	if cfg.Name == "" {
		cfg.Name = "vision"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultVisionTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultVisionMaxTokens
	}

	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}

	// A scan makes one call per engine, so back off and let failover try
	// the next engine instead of waiting on a throttled one.
	transport := provider.NewHTTPProvider(cfg.Name, cfg.URL, cfg.Timeout, headers)
	transport.FailFast = true

	return &VisionClient{
		cfg:    cfg,
		http:   transport,
		logger: slog.Default().With("component", "ocr", "provider", cfg.Name),
	}, nil
}

func (c *VisionClient) Name() string { return c.cfg.Name }

// Provider exposes the underlying transport for health reporting.
func (c *VisionClient) Provider() provider.Provider { return c.http }

type chatRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Extract implements Extractor.
func (c *VisionClient) Extract(ctx context.Context, image []byte, languageHint string) ([]string, domain.ExtractionMetadata, error) {
	start := time.Now()
	meta := domain.ExtractionMetadata{Provider: c.cfg.Name, Model: c.cfg.Model}

	names, err := c.extract(ctx, image, languageHint, &meta)
	meta.Latency = time.Since(start)

	metrics.OCRExtractions.WithLabelValues(c.cfg.Name, provider.Kind(err)).Inc()
	metrics.OCRLatency.WithLabelValues(c.cfg.Name).Observe(meta.Latency.Seconds())

	if err != nil {
		c.logger.Warn("Extraction failed", "error", err, "latency", meta.Latency)
		return nil, meta, err
	}
	c.logger.Debug("Extraction complete",
		"ingredients", len(names),
		"language", meta.Language,
		"fallback_parsing", meta.UsedFallbackParsing,
		"latency", meta.Latency,
	)
	return names, meta, nil
}

func (c *VisionClient) extract(ctx context.Context, image []byte, languageHint string, meta *domain.ExtractionMetadata) ([]string, error) {
	jpegData, err := Preprocess(image, c.cfg.MaxDimension, c.cfg.MaxPixels, c.cfg.JPEGQuality)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	prompt := "Extract the ingredient list from this label."
	if hint := strings.TrimSpace(languageHint); hint != "" {
		prompt += " The label is probably written in " + hint + "."
	}

	req := chatRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: instructionPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{
					URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData),
					Detail: "high",
				}},
			}},
		},
	}

	var resp chatResponse
	err = c.http.ExecuteJSON(ctx, provider.Operation{
		Name: "chat.completions",
		Path: "/chat/completions",
		Body: req,
	}, &resp)
	if err != nil {
		// Our own per-provider deadline is a timeout, not a caller cancel.
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", c.cfg.Name, domain.ErrTimeout)
		}
		return nil, err
	}

	if resp.Model != "" {
		meta.Model = resp.Model
	}
	meta.PromptTokens = resp.Usage.PromptTokens
	meta.CompletionTokens = resp.Usage.CompletionTokens

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w: response has no choices", c.cfg.Name, domain.ErrParseFailure)
	}

	parsed, err := ParseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.cfg.Name, err)
	}
	meta.Language = parsed.Language
	if meta.Language == "" {
		meta.Language = languageHint
	}
	meta.UsedFallbackParsing = parsed.UsedFallback

	if len(parsed.Names) == 0 {
		return nil, fmt.Errorf("%s: %w", c.cfg.Name, domain.ErrNoTextDetected)
	}
	return parsed.Names, nil
}
