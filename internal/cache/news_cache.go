package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"coinsage/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// KV is the slice of the Redis API the news cache needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// NewsCache keeps recent feed responses in Redis so repeated chat requests
// inside the TTL window do not burn the feed's rate budget. All cache
// errors are logged and swallowed: a broken cache degrades to a miss.
type NewsCache struct {
	kv     KV
	ttl    time.Duration
	tracer trace.Tracer
}

func NewNewsCache(tracer trace.Tracer, kv KV, ttl time.Duration) *NewsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &NewsCache{kv: kv, ttl: ttl, tracer: tracer}
}

func newsKey(topic, kind string, limit int) string {
	return fmt.Sprintf("news:%s:%s:%d", topic, kind, limit)
}

func (c *NewsCache) Get(ctx context.Context, topic, kind string, limit int) ([]domain.NewsItem, bool) {
	_, span := c.tracer.Start(ctx, "news-cache.get")
	defer span.End()

	if c.kv == nil {
		return nil, false
	}

	raw, err := c.kv.Get(ctx, newsKey(topic, kind, limit)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("news cache read error: %v", err)
		}
		span.SetAttributes(attribute.Bool("hit", false))
		return nil, false
	}

	var items []domain.NewsItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("news cache decode error: %v", err)
		return nil, false
	}
	span.SetAttributes(attribute.Bool("hit", true), attribute.Int("items", len(items)))
	return items, true
}

func (c *NewsCache) Put(ctx context.Context, topic, kind string, limit int, items []domain.NewsItem) {
	_, span := c.tracer.Start(ctx, "news-cache.put")
	defer span.End()

	if c.kv == nil || len(items) == 0 {
		return
	}

	raw, err := json.Marshal(items)
	if err != nil {
		log.Printf("news cache encode error: %v", err)
		return
	}
	if err := c.kv.Set(ctx, newsKey(topic, kind, limit), raw, c.ttl).Err(); err != nil {
		log.Printf("news cache write error: %v", err)
	}
}
