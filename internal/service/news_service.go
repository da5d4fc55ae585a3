package service

import (
	"context"
	"time"

	"coinsage/internal/cache"
	"coinsage/internal/domain"
	"coinsage/internal/retry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// NewsFetcher is the upstream news provider surface.
type NewsFetcher interface {
	FetchNews(ctx context.Context, topic, kind string, limit int) ([]domain.NewsItem, error)
}

// SentimentScorer scores a batch of news items, returning fallback when the
// stage is disabled or every attempt fails.
type SentimentScorer interface {
	Score(ctx context.Context, items []domain.NewsItem, fallback float64) float64
}

const defaultNewsLimit = 10

// NewsService serves Bitcoin news, cache-first with a retried upstream fetch
// behind it.
type NewsService struct {
	fetcher NewsFetcher
	cache   *cache.NewsCache
	scorer  SentimentScorer
	gateway *retry.Gateway
	policy  retry.Policy
	limit   int
	tracer  trace.Tracer
}

func NewNewsService(tracer trace.Tracer, fetcher NewsFetcher, newsCache *cache.NewsCache, scorer SentimentScorer, gateway *retry.Gateway, limit int) *NewsService {
	if limit <= 0 {
		limit = defaultNewsLimit
	}
	return &NewsService{
		fetcher: fetcher,
		cache:   newsCache,
		scorer:  scorer,
		gateway: gateway,
		policy:  retry.Policy{MaxAttempts: 3, BaseDelay: time.Second},
		limit:   limit,
		tracer:  tracer,
	}
}

// TopNews returns up to limit items for the topic, newest first in upstream
// order. Cache hits skip the provider entirely.
func (s *NewsService) TopNews(ctx context.Context, topic, kind string, limit int) ([]domain.NewsItem, error) {
	ctx, span := s.tracer.Start(ctx, "news.top")
	defer span.End()
	if limit <= 0 {
		limit = s.limit
	}
	span.SetAttributes(attribute.String("topic", topic), attribute.Int("limit", limit))

	if items, ok := s.cache.Get(ctx, topic, kind, limit); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return items, nil
	}

	items, err := retry.Do(ctx, s.gateway, "news-fetch", s.policy,
		func(ctx context.Context) ([]domain.NewsItem, error) {
			return s.fetcher.FetchNews(ctx, topic, kind, limit)
		}, nil)
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, topic, kind, limit, items)
	return items, nil
}

// NewsDigest is the /api/news payload: the latest items plus an aggregate
// sentiment reading over them.
type NewsDigest struct {
	News           []domain.NewsItem `json:"news"`
	SentimentScore float64           `json:"sentiment_score"`
	SentimentLabel string            `json:"sentiment_label"`
}

// LatestDigest fetches the current BTC news batch and scores it. The score
// degrades to the news-path default when scoring is disabled or exhausted.
func (s *NewsService) LatestDigest(ctx context.Context) (*NewsDigest, error) {
	items, err := s.TopNews(ctx, "BTC", "news", s.limit)
	if err != nil {
		return nil, err
	}

	score := domain.DefaultSentimentNews
	if s.scorer != nil {
		score = s.scorer.Score(ctx, items, domain.DefaultSentimentNews)
	}
	return &NewsDigest{
		News:           items,
		SentimentScore: score,
		SentimentLabel: domain.SentimentLabel(score),
	}, nil
}
