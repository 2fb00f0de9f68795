package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentimentIsValid(t *testing.T) {
	assert.True(t, SentimentPositive.IsValid())
	assert.True(t, SentimentNegative.IsValid())
	assert.True(t, SentimentNeutral.IsValid())
	assert.False(t, Sentiment("bullish").IsValid())
	assert.False(t, Sentiment("").IsValid())
}

func TestAnalysisResultValidate(t *testing.T) {
	valid := AnalysisResult{
		ImpactScore:       0.7,
		MarketPrediction:  "equities likely to dip",
		TradingSuggestion: "reduce exposure",
		Sentiment:         SentimentNegative,
		Confidence:        0.8,
		KeyPoints:         []string{"rate hike", "guidance cut"},
	}

	tests := []struct {
		name    string
		mutate  func(*AnalysisResult)
		wantErr bool
	}{
		{
			name:   "valid result",
			mutate: func(*AnalysisResult) {},
		},
		{
			name:   "no key points is fine",
			mutate: func(r *AnalysisResult) { r.KeyPoints = nil },
		},
		{
			name:    "impact score above range",
			mutate:  func(r *AnalysisResult) { r.ImpactScore = 1.2 },
			wantErr: true,
		},
		{
			name:    "confidence below range",
			mutate:  func(r *AnalysisResult) { r.Confidence = -0.1 },
			wantErr: true,
		},
		{
			name:    "free-text sentiment",
			mutate:  func(r *AnalysisResult) { r.Sentiment = "very bullish" },
			wantErr: true,
		},
		{
			name:    "empty prediction",
			mutate:  func(r *AnalysisResult) { r.MarketPrediction = "" },
			wantErr: true,
		},
		{
			name:    "empty suggestion",
			mutate:  func(r *AnalysisResult) { r.TradingSuggestion = "" },
			wantErr: true,
		},
		{
			name: "too many key points",
			mutate: func(r *AnalysisResult) {
				r.KeyPoints = []string{"a", "b", "c", "d", "e", "f"}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(AnalysisRequest{Content: "c", Source: "s"}))
	assert.Error(t, ValidateRequest(AnalysisRequest{Source: "s"}))
	assert.Error(t, ValidateRequest(AnalysisRequest{Content: "c"}))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-3))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.5, Clamp01(0.5))
}

func TestStatsSuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, RouterStats{}.SuccessRate())
	assert.InDelta(t, 75.0, RouterStats{TotalRequests: 4, SuccessfulRequests: 3}.SuccessRate(), 1e-9)
	assert.InDelta(t, 50.0, BackendStats{TotalRequests: 2, SuccessRequests: 1}.SuccessRate(), 1e-9)
}
