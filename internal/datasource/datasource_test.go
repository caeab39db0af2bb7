package datasource

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/seenimoa/marketbrief/pkg/models"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("key", 42)

	v, ok := c.Get("key")
	if !ok {
		t.Fatal("cached value not found")
	}
	if v.(int) != 42 {
		t.Errorf("expected 42, got %v", v)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("missing key should not be found")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Millisecond)
	c.Set("key", "value")
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("key"); ok {
		t.Error("expired entry should not be returned")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("key", 1)
	c.Invalidate("key")
	if _, ok := c.Get("key"); ok {
		t.Error("invalidated key should be gone")
	}
}

func TestCacheFlush(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Flush()
	if _, ok := c.Get("a"); ok {
		t.Error("flushed entries should be gone")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("flushed entries should be gone")
	}
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("token %d: %v", i, err)
		}
	}
}

func TestRateLimiterRespectsContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	ctx := context.Background()
	if err := rl.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Error("expected context error when tokens exhausted")
	}
}

// flakyProvider fails for configured symbols and succeeds otherwise.
type flakyProvider struct {
	fail map[string]bool
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) GetQuote(_ context.Context, symbol string) (*models.Quote, error) {
	if f.fail[symbol] {
		return nil, fmt.Errorf("%s: %w", symbol, ErrSymbolNotFound)
	}
	return &models.Quote{Symbol: symbol, Price: 100}, nil
}

func (f *flakyProvider) GetSeries(_ context.Context, symbol string, _ int) ([]models.PricePoint, error) {
	return nil, ErrNotSupported
}

func TestFetchQuotesAllHealthy(t *testing.T) {
	p := &flakyProvider{}
	symbols := []string{"AAA", "BBB", "CCC"}

	res, err := FetchQuotes(context.Background(), p, symbols, 2)
	if err != nil {
		t.Fatalf("healthy batch should not error: %v", err)
	}
	if len(res.Quotes) != len(symbols) {
		t.Errorf("expected %d quotes, got %d", len(symbols), len(res.Quotes))
	}
	if len(res.Errors) != 0 {
		t.Errorf("expected no per-symbol errors, got %v", res.Errors)
	}
}

func TestFetchQuotesBatchIsolation(t *testing.T) {
	p := &flakyProvider{fail: map[string]bool{"BAD": true}}
	symbols := []string{"AAA", "BAD", "CCC"}

	res, err := FetchQuotes(context.Background(), p, symbols, 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Quotes) != 2 {
		t.Errorf("expected 2 quotes, got %d", len(res.Quotes))
	}
	if len(res.Errors) != 1 {
		t.Errorf("expected 1 error, got %d", len(res.Errors))
	}
	if _, ok := res.Errors["BAD"]; !ok {
		t.Error("BAD should appear in the error map")
	}
	if res.Quotes["AAA"] == nil || res.Quotes["CCC"] == nil {
		t.Error("good symbols should still be fetched despite a bad one")
	}

	// Every symbol lands in exactly one map.
	for _, s := range symbols {
		_, inQuotes := res.Quotes[s]
		_, inErrors := res.Errors[s]
		if inQuotes == inErrors {
			t.Errorf("symbol %s should be in exactly one result map", s)
		}
	}
}

func TestFetchQuotesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &flakyProvider{}
	if _, err := FetchQuotes(ctx, p, []string{"AAA"}, 1); err == nil {
		t.Error("expected error from cancelled context")
	}
}
