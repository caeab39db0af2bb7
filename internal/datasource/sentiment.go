package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seenimoa/marketbrief/internal/config"
	"github.com/seenimoa/marketbrief/pkg/models"
)

// fearGreedURL is CNN's fear & greed index data endpoint.
const fearGreedURL = "https://production.dataviz.cnn.io/index/fearandgreed/graphdata"

// SentimentProvider supplies the market sentiment gauge for the report.
type SentimentProvider interface {
	GetGauge(ctx context.Context) (*models.SentimentGauge, error)
}

// FearGreed fetches CNN's fear & greed index. The raw 0-100 score is
// interpreted against the configured threshold bands rather than CNN's
// own rating string, so the report and its summary agree.
type FearGreed struct {
	thresholds config.SentimentConfig
	cache      *Cache
	baseURL    string
}

// NewFearGreed creates a fear & greed gauge provider.
func NewFearGreed(thresholds config.SentimentConfig) *FearGreed {
	return &FearGreed{
		thresholds: thresholds,
		cache:      NewCache(30 * time.Minute),
		baseURL:    fearGreedURL,
	}
}

// NewFearGreedWithBaseURL points the provider at a custom endpoint for tests.
func NewFearGreedWithBaseURL(thresholds config.SentimentConfig, base string) *FearGreed {
	f := NewFearGreed(thresholds)
	f.baseURL = base
	return f
}

type fearGreedResponse struct {
	FearAndGreed struct {
		Score     float64 `json:"score"`
		Rating    string  `json:"rating"`
		Timestamp string  `json:"timestamp"`
	} `json:"fear_and_greed"`
}

// GetGauge returns the current gauge reading.
func (f *FearGreed) GetGauge(ctx context.Context) (*models.SentimentGauge, error) {
	const cacheKey = "sentiment:feargreed"
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached.(*models.SentimentGauge), nil
	}

	body, _, err := doGet(ctx, f.baseURL, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch fear/greed index: %w", err)
	}
	defer body.Close()

	var resp fearGreedResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode fear/greed index: %w", err)
	}

	score := resp.FearAndGreed.Score
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("fear/greed score out of range: %.1f", score)
	}

	gauge := &models.SentimentGauge{
		Score:     score,
		Level:     f.thresholds.Level(score),
		FetchedAt: time.Now(),
	}
	if ts, err := time.Parse(time.RFC3339, resp.FearAndGreed.Timestamp); err == nil {
		gauge.FetchedAt = ts
	}

	f.cache.Set(cacheKey, gauge)
	return gauge, nil
}
