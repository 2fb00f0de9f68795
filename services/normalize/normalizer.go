// Package normalize converts free-form backend text into an AnalysisResult.
// Normalize is total: whatever the backend returned, the caller gets a
// result, with the path tag saying whether it came from structured output
// or the keyword heuristic. Schema validation stays with the caller: a
// structured result can still carry an off-schema sentiment label.
package normalize

import (
	"encoding/json"
	"strings"

	"github.com/finsight/analysis-router/models"
)

// Path identifies which branch of the normalizer produced a result.
type Path string

const (
	// PathStructured means the backend returned a decodable JSON span
	PathStructured Path = "structured"

	// PathHeuristic means the text had no usable JSON and the result was
	// reconstructed from keyword markers
	PathHeuristic Path = "heuristic"
)

// Outcome pairs a result with the branch that produced it, so callers and
// tests can assert which path fired independent of the string content.
type Outcome struct {
	Result models.AnalysisResult
	Path   Path
}

// previewLimit bounds how much raw text the heuristic copies into the
// market prediction field.
const previewLimit = 300

// heuristicSuggestion is the fixed advice attached to heuristic results.
const heuristicSuggestion = "Treat this analysis with caution and apply strict risk controls before acting on it."

// heuristicKeyPoint flags that structured parsing failed.
const heuristicKeyPoint = "Automated parsing of the AI response failed; manual review recommended."

// payload mirrors the six-field schema backends are asked to emit.
// Pointers distinguish absent numerics from explicit zeros.
type payload struct {
	ImpactScore       *float64 `json:"impact_score"`
	MarketPrediction  string   `json:"market_prediction"`
	TradingSuggestion string   `json:"trading_suggestion"`
	Sentiment         string   `json:"sentiment"`
	Confidence        *float64 `json:"confidence"`
	KeyPoints         []string `json:"key_points"`
}

// Normalize converts raw backend text into a structured result. It first
// tries to decode the first balanced top-level JSON object; failing that it
// falls back to keyword heuristics. It never returns an error.
func Normalize(raw string) Outcome {
	if span, ok := extractObject(raw); ok {
		var p payload
		if err := json.Unmarshal([]byte(span), &p); err == nil {
			return Outcome{Result: fromPayload(p), Path: PathStructured}
		}
	}
	return Outcome{Result: heuristic(raw), Path: PathHeuristic}
}

// fromPayload coerces a decoded payload into a result, filling defaults and
// clamping numerics. A present but unrecognized sentiment label is carried
// through verbatim; result validation rejects it downstream, where the
// rejection counts against the backend that emitted it.
func fromPayload(p payload) models.AnalysisResult {
	sentiment := models.SentimentNeutral
	if s := strings.ToLower(strings.TrimSpace(p.Sentiment)); s != "" {
		sentiment = models.Sentiment(s)
	}

	impact := 0.5
	if p.ImpactScore != nil {
		impact = models.Clamp01(*p.ImpactScore)
	}
	confidence := 0.5
	if p.Confidence != nil {
		confidence = models.Clamp01(*p.Confidence)
	}

	keyPoints := p.KeyPoints
	if len(keyPoints) > models.MaxKeyPoints {
		keyPoints = keyPoints[:models.MaxKeyPoints]
	}

	return models.AnalysisResult{
		ImpactScore:       impact,
		MarketPrediction:  p.MarketPrediction,
		TradingSuggestion: p.TradingSuggestion,
		Sentiment:         sentiment,
		Confidence:        confidence,
		KeyPoints:         keyPoints,
	}
}

// heuristic rebuilds a result from keyword markers in the raw text.
func heuristic(raw string) models.AnalysisResult {
	lower := strings.ToLower(raw)

	impact := 0.5
	switch {
	case containsAny(lower, "significant", "major", "critical"):
		impact = 0.8
	case containsAny(lower, "minor", "limited", "small"):
		impact = 0.3
	}

	sentiment := models.SentimentNeutral
	switch {
	case containsAny(lower, "positive", "bullish"):
		sentiment = models.SentimentPositive
	case containsAny(lower, "negative", "bearish"):
		sentiment = models.SentimentNegative
	}

	return models.AnalysisResult{
		ImpactScore:       impact,
		MarketPrediction:  preview(raw),
		TradingSuggestion: heuristicSuggestion,
		Sentiment:         sentiment,
		Confidence:        0.4,
		KeyPoints:         []string{heuristicKeyPoint},
	}
}

func containsAny(s string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// preview returns a bounded copy of the raw text, ellipsis-suffixed when
// truncated. Empty input still yields a non-empty prediction so the result
// passes validation.
func preview(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "AI response was empty."
	}
	// Truncation counts runes, never splitting a multi-byte character
	if runes := []rune(trimmed); len(runes) > previewLimit {
		return string(runes[:previewLimit]) + "..."
	}
	return trimmed
}

// extractObject locates the first balanced top-level {...} span in raw,
// skipping braces inside JSON string literals.
func extractObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}
