package routing

import (
	"fmt"
	"time"

	"github.com/finsight/analysis-router/models"
)

// promptTemplate asks for the six-field schema every backend must emit.
// The normalizer depends on these field names.
const promptTemplate = `You are a professional financial analyst. Analyze the impact of the following news on equity and cryptocurrency markets.

News source: %s
News content: %s

Assess the following dimensions and respond with a single JSON object:

1. impact_score: number between 0 and 1 measuring the magnitude of market impact
2. market_prediction: detailed analysis of the expected effect on equities and crypto
3. trading_suggestion: an actionable trading recommendation based on the analysis
4. sentiment: one of "positive", "negative" or "neutral"
5. confidence: number between 0 and 1 measuring how reliable this analysis is
6. key_points: list of 3-5 key takeaways

Keep the analysis objective and include risk caveats. Response format:
{
    "impact_score": 0.7,
    "market_prediction": "...",
    "trading_suggestion": "...",
    "sentiment": "negative",
    "confidence": 0.8,
    "key_points": ["point 1", "point 2", "point 3"]
}

Current time: %s`

// buildPrompt renders the analysis prompt for one request.
func buildPrompt(req models.AnalysisRequest, now time.Time) string {
	return fmt.Sprintf(promptTemplate, req.Source, req.Content, now.Format("2006-01-02 15:04:05"))
}
