package service

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"coinsage/internal/domain"
)

// Synthesizer renders pipeline results into the single reply string the
// chat contract promises. Synthesis never fails: missing inputs produce a
// shorter reply, not an error.
type Synthesizer struct {
	// confidence returns a display-only percentage in [65,85]. This is a
	// placeholder heuristic carried over from the product, not a derived
	// confidence interval; it is injected so tests can pin it.
	confidence func() int
}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		confidence: func() int { return 65 + rand.IntN(21) },
	}
}

// NewsReply renders a sentiment label line followed by one block per item.
func (s *Synthesizer) NewsReply(items []domain.NewsItem, score float64) string {
	if len(items) == 0 {
		return "No recent Bitcoin news found. Please try again later."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Latest Bitcoin news (market sentiment: %s, score: %.2f):\n\n",
		domain.SentimentLabel(score), score)
	for _, item := range items {
		sb.WriteString("Title: ")
		sb.WriteString(item.Title)
		sb.WriteString("\nSource: ")
		sb.WriteString(item.Source)
		sb.WriteString("\nURL: ")
		sb.WriteString(item.URL)
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// PredictionReply renders one date/price line per forecast day with the
// change against the anchor price, then trend, sentiment, and confidence.
func (s *Synthesizer) PredictionReply(result *domain.PredictionResult, score float64) string {
	var sb strings.Builder
	sb.WriteString("Based on historical prices, market sentiment, and our prediction model, the Bitcoin forecast is:\n\n")

	for i, date := range result.Dates {
		price := result.Prices[i]
		line := fmt.Sprintf("%s: %.2f USD", date, price)
		if result.CurrentPrice > 0 {
			change := (price - result.CurrentPrice) / result.CurrentPrice * 100
			line += fmt.Sprintf(" (%+.2f%%)", change)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	trend := "down"
	if len(result.Prices) > 0 && result.Prices[len(result.Prices)-1] > result.Prices[0] {
		trend = "up"
	}

	fmt.Fprintf(&sb, "\nMarket sentiment: %s (%.2f)\n", domain.SentimentLabel(score), score)
	fmt.Fprintf(&sb, "\nTrend: %s\nConfidence: %d%%\n", trend, s.confidence())
	if result.Source == domain.SourceSnapshot {
		sb.WriteString("\nThe live model was unavailable, so this forecast is based on the most recent saved prediction run.\n")
	}
	sb.WriteString("\nNote: this is a projection from historical data; actual market moves may differ.")
	return sb.String()
}
