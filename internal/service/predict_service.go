package service

import (
	"context"
	"log"

	"coinsage/internal/dataset"
	"coinsage/internal/domain"
	"coinsage/internal/intent"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const predictUnavailableReply = "Price prediction is temporarily unavailable. Please try again later."

// How many news items feed the prediction's sentiment reading, and how much
// price history the model receives.
const (
	predictNewsLimit    = 5
	predictPriceHistory = 30
)

// Predictor runs the forecast pipeline stage.
type Predictor interface {
	Predict(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error)
}

// PredictService answers POST /api/predict: it parses the horizon out of the
// message, gathers current sentiment and price history, and renders the
// forecast.
type PredictService struct {
	news    *NewsService
	scorer  SentimentScorer
	invoker Predictor
	prices  *dataset.Store
	synth   *Synthesizer
	tracer  trace.Tracer
}

func NewPredictService(tracer trace.Tracer, news *NewsService, scorer SentimentScorer, invoker Predictor, prices *dataset.Store, synth *Synthesizer) *PredictService {
	return &PredictService{
		news:    news,
		scorer:  scorer,
		invoker: invoker,
		prices:  prices,
		synth:   synth,
		tracer:  tracer,
	}
}

// Reply produces the prediction response for a message. Like chat, it always
// returns user-facing text; pipeline failures degrade to an unavailable
// notice.
func (s *PredictService) Reply(ctx context.Context, message string) string {
	ctx, span := s.tracer.Start(ctx, "predict.reply")
	defer span.End()

	days := intent.Classify(message).HorizonDays
	span.SetAttributes(attribute.Int("days", days))

	score := s.currentSentiment(ctx)
	req := domain.PredictionRequest{
		Days:           days,
		SentimentScore: &score,
		PriceData:      s.priceHistory(ctx),
	}

	result, err := s.invoker.Predict(ctx, req)
	if err != nil {
		log.Printf("prediction pipeline failed: %v", err)
		return predictUnavailableReply
	}
	span.SetAttributes(attribute.String("source", string(result.Source)))
	return s.synth.PredictionReply(result, score)
}

func (s *PredictService) currentSentiment(ctx context.Context) float64 {
	if s.scorer == nil {
		return domain.DefaultSentimentPredict
	}
	items, err := s.news.TopNews(ctx, "BTC", "news", predictNewsLimit)
	if err != nil {
		log.Printf("prediction news fetch failed, using neutral sentiment: %v", err)
		return domain.DefaultSentimentPredict
	}
	return s.scorer.Score(ctx, items, domain.DefaultSentimentPredict)
}

func (s *PredictService) priceHistory(ctx context.Context) []float64 {
	if s.prices == nil {
		return nil
	}
	points, err := s.prices.RecentPrices(ctx, predictPriceHistory)
	if err != nil {
		log.Printf("price history unavailable, model will run without it: %v", err)
		return nil
	}
	out := make([]float64, 0, len(points))
	for _, p := range points {
		out = append(out, p.Price)
	}
	return out
}
