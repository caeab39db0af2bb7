package datasource

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	"github.com/seenimoa/marketbrief/internal/config"
	"github.com/seenimoa/marketbrief/pkg/models"
)

// Mock is an offline provider producing deterministic quotes, series,
// news, and a fixed gauge reading. The same symbol always yields the
// same series for a given anchor date, so report output is repeatable
// without network access.
type Mock struct {
	thresholds config.SentimentConfig
	anchor     time.Time
}

// NewMock creates a mock provider anchored at the current day.
func NewMock(thresholds config.SentimentConfig) *Mock {
	return &Mock{
		thresholds: thresholds,
		anchor:     time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// NewMockAt creates a mock provider with a fixed anchor date, for tests
// that need byte-identical output across runs.
func NewMockAt(thresholds config.SentimentConfig, anchor time.Time) *Mock {
	return &Mock{
		thresholds: thresholds,
		anchor:     anchor.UTC().Truncate(24 * time.Hour),
	}
}

// Name returns the provider name.
func (m *Mock) Name() string { return "Mock" }

// GetSeries generates a deterministic daily series for the symbol. The
// base price and day-to-day movement are derived from a hash of the
// symbol, so distinct symbols get distinct but stable shapes.
func (m *Mock) GetSeries(_ context.Context, symbol string, days int) ([]models.PricePoint, error) {
	if days <= 0 {
		days = 60
	}

	seed := symbolSeed(symbol)
	base := 50 + float64(seed%950) // 50..999
	drift := (float64(seed%21) - 10) / 100.0
	amp := base * 0.02

	series := make([]models.PricePoint, 0, days)
	price := base
	for i := 0; i < days; i++ {
		ts := m.anchor.AddDate(0, 0, i-days+1)
		// Weekends carry no bar, same as a real exchange calendar.
		if ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday {
			continue
		}

		wave := amp * math.Sin(float64(seed%7+1)*float64(i)/9.0)
		open := price
		close := base + drift*float64(i) + wave
		if close < 1 {
			close = 1
		}
		series = append(series, models.PricePoint{
			Timestamp: ts,
			Open:      open,
			High:      math.Max(open, close) * 1.01,
			Low:       math.Min(open, close) * 0.99,
			Close:     close,
			Volume:    int64(1_000_000 + seed%9_000_000),
		})
		price = close
	}

	return series, nil
}

// GetQuote derives a quote from the tail of the mock series.
func (m *Mock) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	series, err := m.GetSeries(ctx, symbol, 7)
	if err != nil {
		return nil, err
	}
	if len(series) < 2 {
		return nil, ErrNoData
	}

	last := series[len(series)-1]
	prev := series[len(series)-2]
	return &models.Quote{
		Symbol:    symbol,
		Name:      symbol,
		Price:     last.Close,
		Change:    last.Close - prev.Close,
		ChangePct: (last.Close - prev.Close) / prev.Close * 100,
		Volume:    last.Volume,
		Timestamp: last.Timestamp,
	}, nil
}

// FetchAll returns a fixed set of headlines spanning every default
// category, timestamped relative to the anchor date.
func (m *Mock) FetchAll(_ context.Context) ([]models.NewsItem, error) {
	at := func(h int) time.Time { return m.anchor.Add(time.Duration(h) * time.Hour) }

	return []models.NewsItem{
		{
			Title:       "NVIDIA reports record data center revenue as AI demand accelerates",
			Summary:     "The chipmaker beat estimates again on surging GPU orders from cloud providers.",
			URL:         "https://example.com/mock/nvda-earnings",
			Source:      "Mock Wire",
			PublishedAt: at(9),
		},
		{
			Title:       "Microsoft expands AI infrastructure spending plans",
			Summary:     "Capital expenditure guidance raised as data center buildout continues.",
			URL:         "https://example.com/mock/msft-capex",
			Source:      "Mock Wire",
			PublishedAt: at(8),
		},
		{
			Title:       "Constellation Energy signs nuclear power deal with hyperscaler",
			Summary:     "Long-term agreement to supply carbon-free electricity to AI data centers.",
			URL:         "https://example.com/mock/ceg-deal",
			Source:      "Mock Wire",
			PublishedAt: at(7),
		},
		{
			Title:       "Vistra rallies on strong electricity demand outlook",
			Summary:     "The utility raised guidance citing grid demand growth.",
			URL:         "https://example.com/mock/vst-outlook",
			Source:      "Mock Wire",
			PublishedAt: at(6),
		},
		{
			Title:       "S&P 500 closes at record high as Fed signals rate path",
			Summary:     "Stocks rose broadly after the Federal Reserve's latest comments on inflation.",
			URL:         "https://example.com/mock/spx-record",
			Source:      "Mock Wire",
			PublishedAt: at(10),
		},
		{
			Title:       "Earnings season beats expectations across tech sector",
			Summary:     "A majority of reporting companies topped profit estimates.",
			URL:         "https://example.com/mock/earnings",
			Source:      "Mock Wire",
			PublishedAt: at(5),
		},
	}, nil
}

// GetGauge returns a fixed mid-greed reading.
func (m *Mock) GetGauge(_ context.Context) (*models.SentimentGauge, error) {
	const score = 72.0
	return &models.SentimentGauge{
		Score:     score,
		Level:     m.thresholds.Level(score),
		FetchedAt: m.anchor,
	}, nil
}

// symbolSeed hashes a symbol to a stable small seed.
func symbolSeed(symbol string) int64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return int64(h.Sum32() % 100_000)
}
