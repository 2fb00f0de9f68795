package backends

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/finsight/analysis-router/config"
	"go.uber.org/zap"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiBackend implements Backend for the Google Gemini generateContent API.
// Authentication rides in the query string rather than a header.
type geminiBackend struct {
	base
	logger *zap.Logger
}

// NewGemini creates a Gemini backend.
func NewGemini(cfg config.BackendConfig, logger *zap.Logger) (Backend, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	return &geminiBackend{base: newBase(cfg), logger: logger}, nil
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate    `json:"candidates"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiUsageMetadata struct {
	TotalTokenCount int `json:"totalTokenCount"`
}

func (b *geminiBackend) Submit(ctx context.Context, prompt string) (*Completion, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", b.cfg.BaseURL, b.cfg.Model, b.cfg.APIKey)

	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     b.cfg.TemperatureValue(),
			MaxOutputTokens: b.cfg.MaxTokens,
			TopP:            0.8,
			TopK:            10,
		},
	}

	respBody, err := b.postJSON(ctx, url, nil, payload)
	if err != nil {
		return nil, err
	}

	var resp geminiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, NewError(b.cfg.ID, CodeMalformed, "decode response", 0, err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, NewError(b.cfg.ID, CodeMalformed, "response has no candidates", 0, nil)
	}

	completion := &Completion{Text: resp.Candidates[0].Content.Parts[0].Text}
	if resp.UsageMetadata != nil {
		completion.TotalTokens = resp.UsageMetadata.TotalTokenCount
	}
	return completion, nil
}

func (b *geminiBackend) CheckHealth(ctx context.Context) bool {
	ok := b.probe(ctx, 15*time.Second, b.Submit, "What is 2+2? Reply with just the number.", "4")
	if !ok {
		b.logger.Warn("health probe failed", zap.String("backend", b.cfg.ID))
	}
	return ok
}
