package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"coinsage/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Store serves the read-only historical datasets maintained by the model
// training pipeline: a semicolon-delimited OHLCV price file and a
// date,score sentiment file. This service never writes either.
type Store struct {
	pricePath     string
	sentimentPath string
	tracer        trace.Tracer
}

func NewStore(tracer trace.Tracer, pricePath, sentimentPath string) *Store {
	return &Store{pricePath: pricePath, sentimentPath: sentimentPath, tracer: tracer}
}

// priceCloseColumn is the close price's position in the OHLCV export:
// timeOpen;timeClose;timeHigh;timeLow;name;open;high;low;close;volume;marketCap;timestamp
const (
	priceCloseColumn = 8
	priceColumnCount = 12
)

// RecentPrices returns up to limit rows from the price dataset, which is
// stored most-recent-first.
func (s *Store) RecentPrices(ctx context.Context, limit int) ([]domain.PricePoint, error) {
	_, span := s.tracer.Start(ctx, "dataset.recent-prices")
	defer span.End()

	if limit <= 0 {
		limit = 30
	}

	f, err := os.Open(s.pricePath)
	if err != nil {
		return nil, fmt.Errorf("open price dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	var points []domain.PricePoint
	for len(points) < limit {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if len(record) < priceColumnCount {
			continue
		}

		date, _, _ := strings.Cut(strings.Trim(record[0], `"`), "T")
		closePrice, err := strconv.ParseFloat(strings.Trim(record[priceCloseColumn], `"`), 64)
		if err != nil || date == "" {
			continue
		}
		points = append(points, domain.PricePoint{Date: date, Price: closePrice})
	}

	span.SetAttributes(attribute.Int("rows", len(points)))
	return points, nil
}

// SentimentHistory returns all rows of the historical sentiment dataset.
// A leading header row is tolerated and skipped.
func (s *Store) SentimentHistory(ctx context.Context) ([]domain.SentimentPoint, error) {
	_, span := s.tracer.Start(ctx, "dataset.sentiment-history")
	defer span.End()

	f, err := os.Open(s.sentimentPath)
	if err != nil {
		return nil, fmt.Errorf("open sentiment dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var points []domain.SentimentPoint
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if len(record) < 2 {
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			continue // header or malformed row
		}
		points = append(points, domain.SentimentPoint{
			Date:  strings.TrimSpace(record[0]),
			Score: score,
		})
	}

	span.SetAttributes(attribute.Int("rows", len(points)))
	return points, nil
}
