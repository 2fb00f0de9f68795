package routing

import "github.com/finsight/analysis-router/models"

// fallbackResult is the fixed, always-available result returned when no
// candidate succeeds. Confidence is deliberately near zero so downstream
// consumers discount it.
func fallbackResult(reason string) models.AnalysisResult {
	return models.AnalysisResult{
		ImpactScore:       0.3,
		MarketPrediction:  "AI analysis is temporarily unavailable: " + reason,
		TradingSuggestion: "Suspend automated trading until the analysis service recovers, then re-evaluate before acting.",
		Sentiment:         models.SentimentNeutral,
		Confidence:        0.1,
		KeyPoints: []string{
			"AI analysis service failure",
			"Manual analysis recommended",
			"Trade with caution",
			"Await service recovery",
		},
	}
}
