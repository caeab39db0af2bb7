package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/seenimoa/marketbrief/pkg/models"
)

// yahooChartURL is the Yahoo Finance v8 chart endpoint.
const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// Yahoo implements QuoteProvider against the Yahoo Finance chart API.
type Yahoo struct {
	cache   *Cache
	limiter *RateLimiter
	baseURL string
}

// NewYahoo creates a new Yahoo Finance quote provider.
func NewYahoo() *Yahoo {
	return &Yahoo{
		cache:   NewCache(5 * time.Minute),
		limiter: NewRateLimiter(5, time.Second), // 5 req/s
		baseURL: yahooChartURL,
	}
}

// NewYahooWithBaseURL creates a provider pointed at a custom endpoint.
// Used by tests to stand in a local server.
func NewYahooWithBaseURL(base string) *Yahoo {
	y := NewYahoo()
	y.baseURL = base
	return y
}

// Name returns the provider name.
func (y *Yahoo) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 chart API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	ShortName          string  `json:"shortName"`
	LongName           string  `json:"longName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketTime  int64   `json:"regularMarketTime"`
	PreviousClose      float64 `json:"chartPreviousClose"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetSeries fetches daily bars for the last days calendar days.
func (y *Yahoo) GetSeries(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	if days <= 0 {
		days = 60
	}

	cacheKey := fmt.Sprintf("series:%s:%d", symbol, days)
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.([]models.PricePoint), nil
	}

	result, err := y.fetchChart(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	series := parseBars(result)
	if len(series) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	y.cache.Set(cacheKey, series)
	return series, nil
}

// GetQuote fetches the latest quote for a symbol. The quote is derived
// from the chart meta and the tail of the daily series, so a single
// request serves both the quote and the history it was computed from.
func (y *Yahoo) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	cacheKey := "quote:" + symbol
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(*models.Quote), nil
	}

	result, err := y.fetchChart(ctx, symbol, 7)
	if err != nil {
		return nil, err
	}

	series := parseBars(result)
	meta := result.Meta

	price := meta.RegularMarketPrice
	if price == 0 && len(series) > 0 {
		price = series[len(series)-1].Close
	}
	if price == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	q := &models.Quote{
		Symbol:    symbol,
		Name:      metaName(meta),
		Price:     price,
		Timestamp: time.Now(),
	}
	if meta.RegularMarketTime > 0 {
		q.Timestamp = time.Unix(meta.RegularMarketTime, 0)
	}
	if len(series) > 0 {
		q.Volume = series[len(series)-1].Volume
	}

	prev := meta.PreviousClose
	if prev == 0 && len(series) >= 2 {
		prev = series[len(series)-2].Close
	}
	if prev != 0 {
		q.Change = price - prev
		q.ChangePct = q.Change / prev * 100
	}

	y.cache.Set(cacheKey, q)
	return q, nil
}

// fetchChart performs the chart API request and unwraps the result envelope.
func (y *Yahoo) fetchChart(ctx context.Context, symbol string, days int) (*yfChartResult, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)
	u := fmt.Sprintf("%s%s?period1=%d&period2=%d&interval=1d",
		y.baseURL, url.PathEscape(symbol), from.Unix(), to.Unix())

	body, status, err := doGet(ctx, u, nil)
	if err != nil {
		if httpErr, ok := err.(*ErrHTTP); ok && httpErr.StatusCode == 404 {
			return nil, fmt.Errorf("%s: %w", symbol, ErrSymbolNotFound)
		}
		return nil, fmt.Errorf("chart %s (status %d): %w", symbol, status, err)
	}
	defer body.Close()

	var resp yfChartResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode chart %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s (%s)", symbol, resp.Chart.Error.Description, resp.Chart.Error.Code)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	return &resp.Chart.Result[0], nil
}

// parseBars converts a chart result into price points, skipping bars
// with missing fields. Yahoo uses null for holidays and partial days.
func parseBars(result *yfChartResult) []models.PricePoint {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	ohlcv := result.Indicators.Quote[0]

	series := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(ohlcv.Close) || ohlcv.Close[i] == nil {
			continue
		}
		p := models.PricePoint{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *ohlcv.Close[i],
		}
		if i < len(ohlcv.Open) && ohlcv.Open[i] != nil {
			p.Open = *ohlcv.Open[i]
		}
		if i < len(ohlcv.High) && ohlcv.High[i] != nil {
			p.High = *ohlcv.High[i]
		}
		if i < len(ohlcv.Low) && ohlcv.Low[i] != nil {
			p.Low = *ohlcv.Low[i]
		}
		if i < len(ohlcv.Volume) && ohlcv.Volume[i] != nil {
			p.Volume = *ohlcv.Volume[i]
		}
		series = append(series, p)
	}
	return series
}

func metaName(meta yfChartMeta) string {
	if meta.LongName != "" {
		return meta.LongName
	}
	if meta.ShortName != "" {
		return meta.ShortName
	}
	return meta.Symbol
}
