package backends

import (
	"context"
	"time"

	"github.com/finsight/analysis-router/config"
	"go.uber.org/zap"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// openRouterBackend implements Backend for the OpenRouter aggregation
// service. The wire format is OpenAI-compatible; OpenRouter additionally
// wants attribution headers on every request.
type openRouterBackend struct {
	base
	logger *zap.Logger
}

// NewOpenRouter creates an OpenRouter backend.
func NewOpenRouter(cfg config.BackendConfig, logger *zap.Logger) (Backend, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}
	return &openRouterBackend{base: newBase(cfg), logger: logger}, nil
}

func (b *openRouterBackend) Submit(ctx context.Context, prompt string) (*Completion, error) {
	topP := 0.9
	zero := 0.0
	payload := chatRequest{
		Model: b.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:      b.cfg.TemperatureValue(),
		TopP:             &topP,
		FrequencyPenalty: &zero,
		PresencePenalty:  &zero,
	}
	if b.cfg.MaxTokens > 0 {
		payload.MaxTokens = &b.cfg.MaxTokens
	}

	headers := map[string]string{
		"Authorization": "Bearer " + b.cfg.APIKey,
		"HTTP-Referer":  "https://github.com/finsight/analysis-router",
		"X-Title":       "Finsight Analysis Router",
	}

	return b.submitChat(ctx, b.cfg.BaseURL+"/chat/completions", headers, payload)
}

func (b *openRouterBackend) CheckHealth(ctx context.Context) bool {
	ok := b.probe(ctx, 15*time.Second, b.Submit, "What is 3+3? Reply with just the number.", "6")
	if !ok {
		b.logger.Warn("health probe failed", zap.String("backend", b.cfg.ID))
	}
	return ok
}
