package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/finsight/analysis-router/config"
)

// maxResponseBytes bounds how much of a backend response body is read
const maxResponseBytes = 4 << 20

// Completion is the raw outcome of a successful Submit call. Text is
// free-form prose; TotalTokens is zero when the service reports no usage.
type Completion struct {
	Text        string
	TotalTokens int
}

// Backend is the contract every concrete remote service implements once.
// The wire protocol behind Submit and CheckHealth is fully encapsulated;
// callers see only text in, text out.
type Backend interface {
	// ID returns the configured identifier for this backend instance
	ID() string

	// Kind returns the wire-format family (e.g. "openai", "anthropic")
	Kind() string

	// Submit sends a prompt and returns the raw completion text. It fails
	// with *Error when the remote call does not complete within the
	// configured timeout or returns an error status.
	Submit(ctx context.Context, prompt string) (*Completion, error)

	// CheckHealth issues a minimal deterministic probe and judges liveness
	// by a non-empty (and, for most kinds, semantically expected) answer
	// within a short bound.
	CheckHealth(ctx context.Context) bool
}

// base carries the configuration shared by every adapter.
type base struct {
	cfg    config.BackendConfig
	client *http.Client
}

func newBase(cfg config.BackendConfig) base {
	return base{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

func (b base) ID() string   { return b.cfg.ID }
func (b base) Kind() string { return b.cfg.Kind }

// postJSON executes one JSON POST against the backend and returns the raw
// response body. Error statuses and transport failures come back classified.
func (b base) postJSON(ctx context.Context, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewError(b.cfg.ID, CodeMalformed, "marshal request", 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewError(b.cfg.ID, CodeMalformed, "build request", 0, err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		code := classifyTransport(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			code = CodeTimeout
		}
		return nil, NewError(b.cfg.ID, code, "http request failed", 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewError(b.cfg.ID, CodeUnreachable, "read response", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		// Rune-bounded so a multi-byte character is never split
		if runes := []rune(msg); len(runes) > 200 {
			msg = string(runes[:200])
		}
		return nil, NewError(b.cfg.ID, classifyStatus(resp.StatusCode), msg, resp.StatusCode, nil)
	}

	return respBody, nil
}

// probe runs one Submit-shaped request under the probe bound and checks the
// answer. expect is empty for kinds that only require a non-empty response.
func (b base) probe(ctx context.Context, bound time.Duration, submit func(context.Context, string) (*Completion, error), question, expect string) bool {
	ctx, cancel := context.WithTimeout(ctx, bound)
	defer cancel()

	completion, err := submit(ctx, question)
	if err != nil {
		return false
	}

	answer := strings.TrimSpace(completion.Text)
	if answer == "" {
		return false
	}
	if expect == "" {
		return true
	}
	return strings.Contains(answer, expect)
}
