package models

import "time"

// Report is the fully assembled daily market analysis document, ready
// for rendering. Section order and membership mirror the configuration
// that produced it; the assembler never reorders sections based on
// computed values.
type Report struct {
	Title       string        `json:"title"`
	Author      string        `json:"author"`
	GeneratedAt time.Time     `json:"generated_at"`
	MarketOpen  bool          `json:"market_open"`
	Indices     []QuoteRow    `json:"indices"`
	Gauge       *SentimentGauge `json:"gauge,omitempty"`
	Groups      []GroupSection  `json:"groups"`
	News        []NewsSection   `json:"news"`
	Summary     []string        `json:"summary"`
}

// QuoteRow pairs a configured instrument with its fetched quote.
// Quote is nil when the fetch failed; the renderer shows "no data".
type QuoteRow struct {
	Instrument Instrument `json:"instrument"`
	Quote      *Quote     `json:"quote,omitempty"`
}

// GroupSection holds quote rows for one configured watchlist group.
type GroupSection struct {
	Name string     `json:"name"`
	Rows []QuoteRow `json:"rows"`
}

// NewsSection holds the selected items for one category.
type NewsSection struct {
	Category string     `json:"category"`
	Items    []NewsItem `json:"items"`
}
