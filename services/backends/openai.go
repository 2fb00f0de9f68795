package backends

import (
	"context"
	"encoding/json"
	"time"

	"github.com/finsight/analysis-router/config"
	"go.uber.org/zap"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// systemPrompt frames the analysis role for chat-based backends
const systemPrompt = "You are a professional financial analyst who assesses how news affects markets. Answer concisely."

// Wire types for the OpenAI chat-completions format, shared by every
// OpenAI-compatible backend (openai, openrouter, grok).

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	MaxTokens        *int          `json:"max_tokens,omitempty"`
	Temperature      float64       `json:"temperature"`
	TopP             *float64      `json:"top_p,omitempty"`
	FrequencyPenalty *float64      `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64      `json:"presence_penalty,omitempty"`
	Stream           *bool         `json:"stream,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// openAIBackend implements Backend for the official OpenAI API and any
// service exposing the same wire format under a different base URL.
type openAIBackend struct {
	base
	logger *zap.Logger
}

// NewOpenAI creates an OpenAI backend.
func NewOpenAI(cfg config.BackendConfig, logger *zap.Logger) (Backend, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	return &openAIBackend{base: newBase(cfg), logger: logger}, nil
}

func (b *openAIBackend) Submit(ctx context.Context, prompt string) (*Completion, error) {
	payload := chatRequest{
		Model: b.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: b.cfg.TemperatureValue(),
	}
	if b.cfg.MaxTokens > 0 {
		payload.MaxTokens = &b.cfg.MaxTokens
	}

	headers := map[string]string{
		"Authorization": "Bearer " + b.cfg.APIKey,
	}

	return b.submitChat(ctx, b.cfg.BaseURL+"/chat/completions", headers, payload)
}

// submitChat posts an OpenAI-format request and decodes the first choice.
func (b base) submitChat(ctx context.Context, url string, headers map[string]string, payload chatRequest) (*Completion, error) {
	respBody, err := b.postJSON(ctx, url, headers, payload)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, NewError(b.cfg.ID, CodeMalformed, "decode response", 0, err)
	}
	if len(resp.Choices) == 0 {
		return nil, NewError(b.cfg.ID, CodeMalformed, "response has no choices", 0, nil)
	}

	return &Completion{
		Text:        resp.Choices[0].Message.Content,
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}

func (b *openAIBackend) CheckHealth(ctx context.Context) bool {
	ok := b.probe(ctx, 10*time.Second, b.Submit, "What is 1+1? Reply with just the number.", "2")
	if !ok {
		b.logger.Warn("health probe failed", zap.String("backend", b.cfg.ID))
	}
	return ok
}
