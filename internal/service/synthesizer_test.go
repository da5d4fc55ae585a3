package service

import (
	"strings"
	"testing"

	"coinsage/internal/domain"
)

func fixedSynthesizer(confidence int) *Synthesizer {
	return &Synthesizer{confidence: func() int { return confidence }}
}

func TestNewsReplyLabelLineAndBlocks(t *testing.T) {
	items := []domain.NewsItem{
		{Title: "BTC up", Source: "CoinDesk", URL: "https://x/1"},
		{Title: "ETF inflows", Source: "The Block", URL: "https://x/2"},
		{Title: "Hashrate record", Source: "Decrypt", URL: "https://x/3"},
	}
	reply := fixedSynthesizer(70).NewsReply(items, 0.4)

	firstLine, _, _ := strings.Cut(reply, "\n")
	if !strings.Contains(firstLine, "positive") {
		t.Fatalf("expected positive label in first line, got %q", firstLine)
	}
	if got := strings.Count(reply, "Title: "); got != 3 {
		t.Fatalf("expected 3 news blocks, got %d", got)
	}
	if !strings.Contains(reply, "URL: https://x/2") {
		t.Fatal("expected item URLs in reply")
	}
}

func TestNewsReplyEmptyItemsDegrades(t *testing.T) {
	reply := fixedSynthesizer(70).NewsReply(nil, 0.2)
	if reply == "" {
		t.Fatal("synthesis must never return empty output")
	}
}

func TestPredictionReplyPercentageFormatting(t *testing.T) {
	result := &domain.PredictionResult{
		Dates:        []string{"2026-09-02"},
		Prices:       []float64{59160},
		CurrentPrice: 58000,
		Source:       domain.SourceModel,
	}
	reply := fixedSynthesizer(72).PredictionReply(result, 0.0)

	if !strings.Contains(reply, "2026-09-02: 59160.00 USD (+2.00%)") {
		t.Fatalf("expected formatted price line, got:\n%s", reply)
	}
	if !strings.Contains(reply, "Confidence: 72%") {
		t.Fatal("expected pinned confidence value")
	}
	if !strings.Contains(reply, "Market sentiment: neutral (0.00)") {
		t.Fatal("expected neutral sentiment line")
	}
}

func TestPredictionReplyNegativeChangeKeepsSign(t *testing.T) {
	result := &domain.PredictionResult{
		Dates:        []string{"2026-09-02"},
		Prices:       []float64{56840},
		CurrentPrice: 58000,
	}
	reply := fixedSynthesizer(70).PredictionReply(result, -0.5)

	if !strings.Contains(reply, "(-2.00%)") {
		t.Fatalf("expected explicit negative change, got:\n%s", reply)
	}
	if !strings.Contains(reply, "Market sentiment: negative (-0.50)") {
		t.Fatal("expected negative sentiment line")
	}
}

func TestPredictionReplyTrend(t *testing.T) {
	up := &domain.PredictionResult{
		Dates:        []string{"2026-09-02", "2026-09-03"},
		Prices:       []float64{59000, 60000},
		CurrentPrice: 58000,
	}
	if reply := fixedSynthesizer(70).PredictionReply(up, 0); !strings.Contains(reply, "Trend: up") {
		t.Fatal("expected upward trend")
	}

	down := &domain.PredictionResult{
		Dates:        []string{"2026-09-02", "2026-09-03"},
		Prices:       []float64{60000, 59000},
		CurrentPrice: 58000,
	}
	if reply := fixedSynthesizer(70).PredictionReply(down, 0); !strings.Contains(reply, "Trend: down") {
		t.Fatal("expected downward trend")
	}
}

func TestPredictionReplySnapshotNotice(t *testing.T) {
	result := &domain.PredictionResult{
		Dates:        []string{"2026-09-02"},
		Prices:       []float64{59000},
		CurrentPrice: 58000,
		Source:       domain.SourceSnapshot,
	}
	reply := fixedSynthesizer(70).PredictionReply(result, 0)
	if !strings.Contains(reply, "saved prediction run") {
		t.Fatal("expected snapshot fallback notice")
	}
}

func TestDefaultConfidenceStaysInBounds(t *testing.T) {
	s := NewSynthesizer()
	for i := 0; i < 200; i++ {
		c := s.confidence()
		if c < 65 || c > 85 {
			t.Fatalf("confidence %d outside [65,85]", c)
		}
	}
}
