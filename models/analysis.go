package models

import (
	"github.com/go-playground/validator/v10"
)

// Sentiment is the closed set of sentiment labels a result may carry
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// IsValid reports whether s is one of the three recognized labels.
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// MaxKeyPoints bounds the key-point list on any result
const MaxKeyPoints = 5

// AnalysisRequest represents one inbound item to analyze
type AnalysisRequest struct {
	Content string `json:"content" validate:"required"`
	Source  string `json:"source" validate:"required"`
}

// AnalysisResult is the structured assessment produced for a request.
// Numeric fields are always clamped to [0,1] at construction; Sentiment is
// always one of the three labels, never free text.
type AnalysisResult struct {
	ImpactScore       float64   `json:"impact_score" validate:"gte=0,lte=1"`
	MarketPrediction  string    `json:"market_prediction" validate:"required"`
	TradingSuggestion string    `json:"trading_suggestion" validate:"required"`
	Sentiment         Sentiment `json:"sentiment" validate:"sentiment"`
	Confidence        float64   `json:"confidence" validate:"gte=0,lte=1"`
	KeyPoints         []string  `json:"key_points" validate:"max=5"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// registration only fails for an empty tag name
	_ = v.RegisterValidation("sentiment", func(fl validator.FieldLevel) bool {
		return Sentiment(fl.Field().String()).IsValid()
	})
	return v
}

// Validate checks the result against the schema invariants: numeric fields in
// [0,1], sentiment in the closed set, prediction and suggestion non-empty.
func (r AnalysisResult) Validate() error {
	return validate.Struct(r)
}

// ValidateRequest checks that an inbound request carries both content and an
// attributed source label.
func ValidateRequest(req AnalysisRequest) error {
	return validate.Struct(req)
}

// Clamp01 clamps v into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
