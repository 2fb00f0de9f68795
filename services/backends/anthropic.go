package backends

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/finsight/analysis-router/config"
	"go.uber.org/zap"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

// anthropicBackend implements Backend for the Anthropic Messages API.
type anthropicBackend struct {
	base
	logger *zap.Logger
}

// NewAnthropic creates an Anthropic backend.
func NewAnthropic(cfg config.BackendConfig, logger *zap.Logger) (Backend, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAnthropicBaseURL
	}
	return &anthropicBackend{base: newBase(cfg), logger: logger}, nil
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Usage   anthropicUsage          `json:"usage"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func (b *anthropicBackend) Submit(ctx context.Context, prompt string) (*Completion, error) {
	payload := anthropicRequest{
		Model:       b.cfg.Model,
		MaxTokens:   b.cfg.MaxTokens,
		Temperature: b.cfg.TemperatureValue(),
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	headers := map[string]string{
		"x-api-key":         b.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}

	respBody, err := b.postJSON(ctx, b.cfg.BaseURL+"/v1/messages", headers, payload)
	if err != nil {
		return nil, err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, NewError(b.cfg.ID, CodeMalformed, "decode response", 0, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, NewError(b.cfg.ID, CodeMalformed, "response has no text content", 0, nil)
	}

	return &Completion{
		Text:        sb.String(),
		TotalTokens: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}

// CheckHealth only requires a non-empty answer; the Messages API rejects
// malformed requests loudly enough that a semantic check adds nothing.
func (b *anthropicBackend) CheckHealth(ctx context.Context) bool {
	ok := b.probe(ctx, 15*time.Second, b.Submit, "Briefly: how is the weather today?", "")
	if !ok {
		b.logger.Warn("health probe failed", zap.String("backend", b.cfg.ID))
	}
	return ok
}
