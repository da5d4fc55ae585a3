package sentiment

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"coinsage/internal/domain"
	"coinsage/internal/llm"
	"coinsage/internal/retry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const systemPrompt = "You are a professional sentiment analysis tool. " +
	"Analyze the sentiment of the given text and respond with a single number " +
	"between -1 and 1, where -1 is extremely negative, 0 is neutral, and 1 is " +
	"extremely positive. Return only the number, no explanation or extra text."

// maxPromptItems bounds the batch: one scoring call per request covering the
// top headlines, not one call per item.
const maxPromptItems = 5

// Scorer turns a batch of news items into a single sentiment score via the
// completion service. Scoring exhaustion never fails the request; the
// caller-supplied default is returned instead.
type Scorer struct {
	llm     llm.Client
	gateway *retry.Gateway
	policy  retry.Policy
	tracer  trace.Tracer
}

func NewScorer(tracer trace.Tracer, client llm.Client, gateway *retry.Gateway) *Scorer {
	return &Scorer{
		llm:     client,
		gateway: gateway,
		policy:  retry.Policy{MaxAttempts: 3, BaseDelay: 5 * time.Second},
		tracer:  tracer,
	}
}

// Score returns the aggregate sentiment of items in [-1,1]. Transport
// failures and non-numeric replies both consume retry attempts; when the
// budget is spent (or the scorer is unconfigured) fallback is returned.
func (s *Scorer) Score(ctx context.Context, items []domain.NewsItem, fallback float64) float64 {
	ctx, span := s.tracer.Start(ctx, "sentiment.score")
	defer span.End()
	span.SetAttributes(attribute.Int("items", len(items)))

	if s.llm == nil {
		log.Println("sentiment scorer disabled (no completion credentials), using default score")
		span.SetAttributes(attribute.Float64("score", fallback), attribute.Bool("fallback", true))
		return fallback
	}
	if len(items) == 0 {
		span.SetAttributes(attribute.Float64("score", fallback), attribute.Bool("fallback", true))
		return fallback
	}

	prompt := buildPrompt(items)

	score, err := retry.Do(ctx, s.gateway, "sentiment-score", s.policy,
		func(ctx context.Context) (float64, error) {
			raw, err := s.llm.Complete(ctx, llm.CompletionRequest{
				System:      systemPrompt,
				User:        prompt,
				Temperature: 0.1,
				MaxTokens:   10,
			})
			if err != nil {
				return 0, err
			}
			return parseScore(raw)
		}, nil)
	if err != nil {
		log.Printf("sentiment scoring exhausted retries, using default score %.2f: %v", fallback, err)
		span.SetAttributes(attribute.Float64("score", fallback), attribute.Bool("fallback", true))
		return fallback
	}

	span.SetAttributes(attribute.Float64("score", score))
	return score
}

func buildPrompt(items []domain.NewsItem) string {
	n := len(items)
	if n > maxPromptItems {
		n = maxPromptItems
	}

	var sb strings.Builder
	sb.WriteString("Analyze the sentiment of the following Bitcoin news and give a single score from -1 to 1:\n\n")
	for _, item := range items[:n] {
		sb.WriteString("Title: ")
		sb.WriteString(strings.TrimSpace(item.Title))
		sb.WriteString("\nSource: ")
		sb.WriteString(strings.TrimSpace(item.Source))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Return only one number representing the overall sentiment score.")
	return sb.String()
}

// parseScore extracts a bare number from the completion reply. A reply that
// is not a number is a ParseError, which the retry layer treats as a failed
// attempt rather than a neutral score.
func parseScore(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimSpace(cleaned)

	score, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &domain.ParseError{Stage: "sentiment", Detail: fmt.Sprintf("non-numeric reply %q", truncate(raw, 40))}
	}
	return domain.ClampSentiment(score), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
