package backends

import (
	"context"
	"time"

	"github.com/finsight/analysis-router/config"
	"go.uber.org/zap"
)

const defaultGrokBaseURL = "https://api.x.ai/v1"

// grokSystemPrompt differs from the shared one: Grok models have live data
// access, and the prompt should say so.
const grokSystemPrompt = "You are a professional financial analyst with access to real-time information. Assess how news affects markets. Answer concisely."

// grokBackend implements Backend for the xAI Grok API (OpenAI-compatible
// wire format, streaming explicitly disabled).
type grokBackend struct {
	base
	logger *zap.Logger
}

// NewGrok creates a Grok backend.
func NewGrok(cfg config.BackendConfig, logger *zap.Logger) (Backend, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGrokBaseURL
	}
	return &grokBackend{base: newBase(cfg), logger: logger}, nil
}

func (b *grokBackend) Submit(ctx context.Context, prompt string) (*Completion, error) {
	stream := false
	payload := chatRequest{
		Model: b.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: grokSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: b.cfg.TemperatureValue(),
		Stream:      &stream,
	}
	if b.cfg.MaxTokens > 0 {
		payload.MaxTokens = &b.cfg.MaxTokens
	}

	headers := map[string]string{
		"Authorization": "Bearer " + b.cfg.APIKey,
	}

	return b.submitChat(ctx, b.cfg.BaseURL+"/chat/completions", headers, payload)
}

// Grok tends to answer slowly, so its probe gets a longer bound.
func (b *grokBackend) CheckHealth(ctx context.Context) bool {
	ok := b.probe(ctx, 20*time.Second, b.Submit, "What is 5+5? Reply with just the number.", "10")
	if !ok {
		b.logger.Warn("health probe failed", zap.String("backend", b.cfg.ID))
	}
	return ok
}
