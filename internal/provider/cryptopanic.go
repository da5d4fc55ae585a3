package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coinsage/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const cryptoPanicBaseURL = "https://cryptopanic.com"

// CryptoPanicProvider fetches recent topic-filtered news from the
// CryptoPanic posts feed. It performs a single HTTP call per invocation;
// retries are the caller's concern.
type CryptoPanicProvider struct {
	client    *http.Client
	baseURL   string
	authToken string
	limiter   *RateLimiter
	tracer    trace.Tracer
}

func NewCryptoPanicProvider(tracer trace.Tracer, authToken, baseURL string) *CryptoPanicProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = cryptoPanicBaseURL
	}
	return &CryptoPanicProvider{
		client:    &http.Client{Timeout: 10 * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: strings.TrimSpace(authToken),
		limiter:   NewRateLimiter(30, time.Minute),
		tracer:    tracer,
	}
}

// FetchNews returns up to limit news items for the given currency topic,
// in upstream order (assumed recency-ordered; not re-sorted here).
func (p *CryptoPanicProvider) FetchNews(ctx context.Context, topic, kind string, limit int) ([]domain.NewsItem, error) {
	ctx, span := p.tracer.Start(ctx, "cryptopanic.fetch-news")
	defer span.End()
	span.SetAttributes(attribute.String("topic", topic), attribute.Int("limit", limit))

	if p.authToken == "" {
		return nil, &domain.ConfigurationError{Stage: "news", Key: "CRYPTOPANIC_API_TOKEN"}
	}
	if topic == "" {
		topic = "BTC"
	}
	if kind == "" {
		kind = "news"
	}
	if limit <= 0 {
		limit = 10
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("auth_token", p.authToken)
	q.Set("currencies", topic)
	q.Set("kind", kind)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := p.baseURL + "/api/v1/posts/?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Stage: "news", Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.UpstreamError{Stage: "news", Status: resp.StatusCode, Detail: string(body)}
	}

	var payload struct {
		Results []struct {
			Title  string `json:"title"`
			URL    string `json:"url"`
			Source struct {
				Title string `json:"title"`
			} `json:"source"`
			CreatedAt string `json:"created_at"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &domain.UpstreamError{Stage: "news", Detail: fmt.Sprintf("decode payload: %v", err)}
	}
	if payload.Results == nil {
		return nil, &domain.UpstreamError{Stage: "news", Detail: "response missing results field"}
	}

	items := make([]domain.NewsItem, 0, len(payload.Results))
	for _, row := range payload.Results {
		publishedAt, _ := time.Parse(time.RFC3339, row.CreatedAt)
		items = append(items, domain.NewsItem{
			Title:       row.Title,
			URL:         row.URL,
			Source:      row.Source.Title,
			PublishedAt: publishedAt,
		})
	}

	span.SetAttributes(attribute.Int("items", len(items)))
	return items, nil
}
