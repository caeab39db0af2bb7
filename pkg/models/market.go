// Package models defines the core data structures used throughout marketbrief.
package models

import "time"

// Instrument pairs a ticker symbol with its display name.
// Watchlists and index lists are ordered slices of Instrument; the
// order comes from configuration and drives report section order.
type Instrument struct {
	Symbol string `json:"symbol" mapstructure:"symbol"` // e.g., "NVDA", "^GSPC"
	Name   string `json:"name"   mapstructure:"name"`   // e.g., "NVIDIA", "S&P 500"
}

// PricePoint represents a single daily bar of price data.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Quote is the per-run snapshot for a symbol: latest price, day change
// and any indicator values derived from the price series. Quotes are
// rebuilt on every report run and never persisted.
type Quote struct {
	Symbol     string             `json:"symbol"`
	Name       string             `json:"name"`
	Price      float64            `json:"price"`
	Change     float64            `json:"change"`
	ChangePct  float64            `json:"change_pct"`
	Volume     int64              `json:"volume"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// SentimentGauge holds a market sentiment reading such as the CNN
// Fear & Greed index, with its interpreted level.
type SentimentGauge struct {
	Score     float64   `json:"score"` // 0–100
	Level     string    `json:"level"` // e.g., "Greed"
	FetchedAt time.Time `json:"fetched_at"`
}
