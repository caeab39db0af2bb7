// Package datasource provides data fetching for the report pipeline:
// quotes and price history from Yahoo Finance, headlines from RSS feeds
// and scraped pages, and the CNN fear/greed gauge. A deterministic mock
// provider backs offline runs and tests.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/marketbrief/pkg/models"
)

// QuoteProvider is the interface the report pipeline consumes for
// market data. Implementations must be safe for concurrent use.
type QuoteProvider interface {
	// Name returns the human-readable name of this provider.
	Name() string

	// GetQuote returns the latest quote for a symbol, with indicators
	// left empty for the analysis stage to fill.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetSeries returns daily bars covering the last days calendar days.
	GetSeries(ctx context.Context, symbol string, days int) ([]models.PricePoint, error)
}

// --- Sentinel errors ---

// ErrNotSupported is returned when a provider does not support a method.
var ErrNotSupported = fmt.Errorf("operation not supported by this provider")

// ErrSymbolNotFound is returned when a symbol cannot be resolved.
var ErrSymbolNotFound = fmt.Errorf("symbol not found")

// ErrNoData is returned when a provider responds but carries no usable bars.
var ErrNoData = fmt.Errorf("no data returned for symbol")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Batch fetching ---

// BatchResult holds the outcome of a concurrent multi-symbol fetch.
// Every requested symbol appears in exactly one of the two maps, so a
// single bad symbol never hides the rest of the batch.
type BatchResult struct {
	Quotes map[string]*models.Quote
	Errors map[string]error
}

// FetchQuotes retrieves quotes for all symbols concurrently, computing
// nothing beyond what the provider returns. concurrency <= 0 falls back
// to 4 workers. The call itself only fails when the context is done.
func FetchQuotes(ctx context.Context, p QuoteProvider, symbols []string, concurrency int) (*BatchResult, error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	res := &BatchResult{
		Quotes: make(map[string]*models.Quote, len(symbols)),
		Errors: make(map[string]error),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			q, err := p.GetQuote(gctx, symbol)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Errors[symbol] = err
			} else {
				res.Quotes[symbol] = q
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The errgroup context is cancelled once Wait returns; only the
	// caller's context says whether the run was cut short.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// HTTPClient is a pre-configured HTTP client with reasonable timeouts.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// doGet performs a GET request with the given URL and headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	// Set default headers.
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	// Override/add custom headers.
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, resp.StatusCode, nil
}

// --- Simple in-memory cache ---

// CacheEntry holds a cached value with expiration.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// Cache is a simple thread-safe in-memory cache with TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	ttl     time.Duration
}

// NewCache creates a new cache with the given default TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]CacheEntry),
		ttl:     ttl,
	}
}

// Get retrieves a value from the cache. Returns nil, false if not found or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = CacheEntry{
		Value:     value,
		ExpiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Invalidate removes a key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Flush removes all entries from the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mu.Unlock()
}

// --- Rate limiter ---

// RateLimiter provides simple token-bucket rate limiting.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter that allows maxTokens requests
// per refillRate duration.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refill()
		if rl.tokens > 0 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		rl.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			// Check again after a short sleep.
		}
	}
}

// refill adds tokens based on elapsed time. Must be called with mu held.
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed >= rl.refillRate {
		periods := int(elapsed / rl.refillRate)
		rl.tokens += periods
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
}
