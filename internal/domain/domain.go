package domain

import (
	"math"
	"time"
)

// NewsItem is a single headline fetched from the news feed. Items are
// immutable once fetched and live for the duration of one request.
type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"created_at"`
}

// Sentiment label bands. The boundaries are exclusive: a score of exactly
// 0.3 or -0.3 is neutral.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Default scores used when the scorer is unavailable. These are deliberate
// fallback constants, not error markers: the chat/news path assumes a
// slightly positive market, the predict path assumes neutral.
const (
	DefaultSentimentNews    = 0.2
	DefaultSentimentPredict = 0.0
)

// SentimentLabel maps a score in [-1,1] to its band.
func SentimentLabel(score float64) string {
	switch {
	case score > 0.3:
		return SentimentPositive
	case score < -0.3:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ClampSentiment bounds a raw score to [-1,1].
func ClampSentiment(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

// Prediction horizon bounds in days.
const (
	MinHorizonDays     = 1
	MaxHorizonDays     = 30
	DefaultHorizonDays = 7
)

// ClampHorizon bounds a requested horizon to the supported range,
// substituting the default for non-positive values.
func ClampHorizon(days int) int {
	if days <= 0 {
		return DefaultHorizonDays
	}
	if days < MinHorizonDays {
		return MinHorizonDays
	}
	if days > MaxHorizonDays {
		return MaxHorizonDays
	}
	return days
}

// PredictionRequest is the self-contained parameter blob passed to the
// external prediction model.
type PredictionRequest struct {
	Days           int       `json:"days"`
	SentimentScore *float64  `json:"sentiment_score,omitempty"`
	PriceData      []float64 `json:"price_data,omitempty"`
}

// PredictionSource records where a result came from.
type PredictionSource string

const (
	SourceModel    PredictionSource = "model"
	SourceSnapshot PredictionSource = "snapshot"
)

// PredictionResult is one forecast: parallel date/price sequences of equal
// length plus the price the forecast is anchored on.
type PredictionResult struct {
	Dates        []string         `json:"dates"`
	Prices       []float64        `json:"prices"`
	CurrentPrice float64          `json:"current_price"`
	Source       PredictionSource `json:"source"`
}

// Validate enforces the result invariants: equal-length sequences, strictly
// increasing dates, and finite prices.
func (r *PredictionResult) Validate() error {
	if len(r.Dates) == 0 {
		return &ParseError{Stage: "predictor", Detail: "empty prediction"}
	}
	if len(r.Dates) != len(r.Prices) {
		return &ParseError{Stage: "predictor", Detail: "dates and prices length mismatch"}
	}
	prev := ""
	for i, d := range r.Dates {
		if d <= prev {
			return &ParseError{Stage: "predictor", Detail: "dates not strictly increasing"}
		}
		prev = d
		if math.IsNaN(r.Prices[i]) || math.IsInf(r.Prices[i], 0) {
			return &ParseError{Stage: "predictor", Detail: "non-finite predicted price"}
		}
	}
	if math.IsNaN(r.CurrentPrice) || math.IsInf(r.CurrentPrice, 0) {
		return &ParseError{Stage: "predictor", Detail: "non-finite current price"}
	}
	return nil
}

// Snapshot is the last-known-good prediction dataset persisted by the model
// training pipeline. Read-only to this service; used only as a fallback.
type Snapshot struct {
	TestDates       []string  `json:"test_dates"`
	PredictedPrices []float64 `json:"predicted_prices"`
	ActualPrices    []float64 `json:"actual_prices"`
}

// Truncate derives a PredictionResult covering the first days entries.
// The anchor price is the most recent actual close.
func (s *Snapshot) Truncate(days int) *PredictionResult {
	if days > len(s.TestDates) {
		days = len(s.TestDates)
	}
	if days > len(s.PredictedPrices) {
		days = len(s.PredictedPrices)
	}
	current := 0.0
	if len(s.ActualPrices) > 0 {
		current = s.ActualPrices[0]
	}
	return &PredictionResult{
		Dates:        append([]string(nil), s.TestDates[:days]...),
		Prices:       append([]float64(nil), s.PredictedPrices[:days]...),
		CurrentPrice: current,
		Source:       SourceSnapshot,
	}
}

// Intent classifies an inbound chat message.
type Intent string

const (
	IntentNewsQuery       Intent = "news"
	IntentPredictionQuery Intent = "prediction"
	IntentGeneralChat     Intent = "chat"
)

// ConversationMessage is one persisted chat turn.
type ConversationMessage struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

// PricePoint is one row of the historical close-price dataset.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// SentimentPoint is one row of the historical sentiment dataset.
type SentimentPoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}
