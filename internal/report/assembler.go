package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/marketbrief/internal/analysis/technical"
	"github.com/seenimoa/marketbrief/internal/classify"
	"github.com/seenimoa/marketbrief/internal/common"
	"github.com/seenimoa/marketbrief/internal/config"
	"github.com/seenimoa/marketbrief/internal/datasource"
	"github.com/seenimoa/marketbrief/pkg/models"
	"github.com/seenimoa/marketbrief/pkg/utils"
)

// Assembler runs the report pipeline: fetch quotes and history, compute
// indicators, collect and classify news, read the sentiment gauge, and
// build the report model. Stages run in a fixed order; a failed symbol,
// source, or gauge degrades its own section without aborting the run.
type Assembler struct {
	cfg       *config.Config
	quotes    datasource.QuoteProvider
	news      datasource.NewsFetcher
	sentiment datasource.SentimentProvider
	log       *common.Logger

	now func() time.Time // injectable clock for tests
}

// NewAssembler creates an assembler over the given providers.
func NewAssembler(cfg *config.Config, quotes datasource.QuoteProvider, news datasource.NewsFetcher, sentiment datasource.SentimentProvider, log *common.Logger) *Assembler {
	if log == nil {
		log = common.NewSilentLogger()
	}
	return &Assembler{
		cfg:       cfg,
		quotes:    quotes,
		news:      news,
		sentiment: sentiment,
		log:       log,
		now:       time.Now,
	}
}

// WithClock overrides the assembler's clock. Used by tests.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// Generate builds a complete report. It returns an error only for an
// invalid configuration; fetch failures — up to and including every
// symbol and source — are recorded as gaps in the report and logged.
func (a *Assembler) Generate(ctx context.Context) (*models.Report, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	generatedAt := a.now()
	a.log.Info().Str("provider", a.quotes.Name()).Msg("generating report")

	benchmark := a.fetchBenchmark(ctx)

	indices := a.fetchRows(ctx, a.cfg.Indices, benchmark)

	groups := make([]models.GroupSection, 0, len(a.cfg.Groups))
	for _, g := range a.cfg.Groups {
		groups = append(groups, models.GroupSection{
			Name: g.Name,
			Rows: a.fetchRows(ctx, g.Stocks, benchmark),
		})
	}

	if countQuotes(indices)+countGroupQuotes(groups) == 0 {
		a.log.Warn().Str("provider", a.quotes.Name()).Msg("no market data fetched; report will carry only no-data rows")
	}

	gauge := a.fetchGauge(ctx)
	news := a.fetchNews(ctx)

	r := &models.Report{
		Title:       a.cfg.Report.Title,
		Author:      a.cfg.Report.Author,
		GeneratedAt: generatedAt,
		MarketOpen:  utils.IsMarketOpenAt(generatedAt),
		Indices:     indices,
		Gauge:       gauge,
		Groups:      groups,
		News:        news,
	}
	r.Summary = a.buildSummary(r)

	a.log.Info().
		Int("indices", len(indices)).
		Int("groups", len(groups)).
		Int("news_sections", len(news)).
		Msg("report assembled")
	return r, nil
}

// fetchBenchmark loads the benchmark series used for beta. A missing
// benchmark only costs the beta column.
func (a *Assembler) fetchBenchmark(ctx context.Context) []models.PricePoint {
	symbol := a.cfg.Fetch.Benchmark
	if symbol == "" {
		return nil
	}
	series, err := a.quotes.GetSeries(ctx, symbol, a.cfg.Fetch.HistoryDays)
	if err != nil {
		a.log.Warn().Err(err).Str("symbol", symbol).Msg("benchmark series unavailable")
		return nil
	}
	return series
}

// fetchRows fetches quotes and indicators for a list of instruments
// concurrently, preserving configuration order in the result. A failed
// symbol yields a row with a nil quote.
func (a *Assembler) fetchRows(ctx context.Context, instruments []models.Instrument, benchmark []models.PricePoint) []models.QuoteRow {
	rows := make([]models.QuoteRow, len(instruments))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	concurrency := a.cfg.Fetch.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	g.SetLimit(concurrency)

	for i, inst := range instruments {
		i, inst := i, inst
		g.Go(func() error {
			q, err := a.fetchOne(ctx, inst, benchmark)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.log.Warn().Err(err).Str("symbol", inst.Symbol).Msg("symbol fetch failed")
				rows[i] = models.QuoteRow{Instrument: inst}
				return nil
			}
			rows[i] = models.QuoteRow{Instrument: inst, Quote: q}
			return nil
		})
	}
	g.Wait()

	return rows
}

// fetchOne loads a symbol's history, derives its quote, and attaches
// computed indicators.
func (a *Assembler) fetchOne(ctx context.Context, inst models.Instrument, benchmark []models.PricePoint) (*models.Quote, error) {
	series, err := a.quotes.GetSeries(ctx, inst.Symbol, a.cfg.Fetch.HistoryDays)
	if err != nil {
		return nil, err
	}

	q, err := a.quotes.GetQuote(ctx, inst.Symbol)
	if err != nil {
		// History arrived but the quote call failed; derive the quote
		// from the series tail so the row still renders.
		a.log.Debug().Err(err).Str("symbol", inst.Symbol).Msg("quote call failed, deriving from series")
		q = quoteFromSeries(inst.Symbol, series)
		if q == nil {
			return nil, err
		}
	}
	if q.Name == "" || q.Name == q.Symbol {
		q.Name = inst.Name
	}

	q.Indicators = technical.Compute(series, benchmark)
	// Prefer the indicator engine's change numbers when present: they
	// come from the same series the rest of the row is computed from.
	if pct, ok := q.Indicators[technical.KeyChangePct]; ok && q.ChangePct == 0 {
		q.ChangePct = pct
		q.Change = q.Indicators[technical.KeyChange]
	}
	return q, nil
}

// fetchGauge reads the sentiment gauge; a failure drops the section.
func (a *Assembler) fetchGauge(ctx context.Context) *models.SentimentGauge {
	if a.sentiment == nil {
		return nil
	}
	gauge, err := a.sentiment.GetGauge(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("sentiment gauge unavailable")
		return nil
	}
	return gauge
}

// fetchNews collects, classifies, and sections headlines; a failure
// leaves the news sections empty.
func (a *Assembler) fetchNews(ctx context.Context) []models.NewsSection {
	if a.news == nil {
		return nil
	}
	items, err := a.news.FetchAll(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("news collection failed")
		return classify.Sections(nil, a.cfg.Categories)
	}
	items = classify.Classify(items, a.cfg.Categories)
	return classify.Sections(items, a.cfg.Categories)
}

// buildSummary derives the closing bullet points from the assembled
// sections. It reads only the report model, so the summary always
// agrees with the tables above it.
func (a *Assembler) buildSummary(r *models.Report) []string {
	var lines []string

	if q := firstQuote(r.Indices); q != nil {
		direction := "was little changed"
		if q.ChangePct >= 0.1 {
			direction = "rose " + utils.FormatPct(q.ChangePct)
		} else if q.ChangePct <= -0.1 {
			direction = "fell " + utils.FormatPct(q.ChangePct)
		}
		lines = append(lines, fmt.Sprintf("%s %s on the day.", q.Name, direction))
	}

	if g := r.Gauge; g != nil {
		line := fmt.Sprintf("Sentiment reads %s (%.0f/100).", g.Level, g.Score)
		s := a.cfg.Sentiment
		switch {
		case g.Score > s.GreedMax:
			line += " Stretched optimism often precedes pullbacks."
		case g.Score <= s.ExtremeFearMax:
			line += " Extreme fear has historically marked washout lows."
		}
		lines = append(lines, line)
	}

	for _, g := range r.Groups {
		if avg, ok := groupAvgChange(g); ok {
			lines = append(lines, fmt.Sprintf("%s group averaged %s.", g.Name, utils.FormatPct(avg)))
		}
	}

	if n := countRSIAbove(r.Groups, 70); n > 0 {
		lines = append(lines, fmt.Sprintf("%d watchlist name(s) are overbought (RSI ≥ 70).", n))
	}
	if n := countRSIBelow(r.Groups, 30); n > 0 {
		lines = append(lines, fmt.Sprintf("%d watchlist name(s) are oversold (RSI ≤ 30).", n))
	}

	return lines
}

// --- report model helpers ---

func quoteFromSeries(symbol string, series []models.PricePoint) *models.Quote {
	if len(series) == 0 {
		return nil
	}
	last := series[len(series)-1]
	q := &models.Quote{
		Symbol:    symbol,
		Price:     last.Close,
		Volume:    last.Volume,
		Timestamp: last.Timestamp,
	}
	if len(series) >= 2 && series[len(series)-2].Close != 0 {
		prev := series[len(series)-2].Close
		q.Change = last.Close - prev
		q.ChangePct = q.Change / prev * 100
	}
	return q
}

func firstQuote(rows []models.QuoteRow) *models.Quote {
	for _, row := range rows {
		if row.Quote != nil {
			return row.Quote
		}
	}
	return nil
}

func countQuotes(rows []models.QuoteRow) int {
	n := 0
	for _, row := range rows {
		if row.Quote != nil {
			n++
		}
	}
	return n
}

func countGroupQuotes(groups []models.GroupSection) int {
	n := 0
	for _, g := range groups {
		n += countQuotes(g.Rows)
	}
	return n
}

func groupAvgChange(g models.GroupSection) (float64, bool) {
	var sum float64
	var n int
	for _, row := range g.Rows {
		if row.Quote != nil {
			sum += row.Quote.ChangePct
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func countRSIAbove(groups []models.GroupSection, bound float64) int {
	n := 0
	for _, g := range groups {
		for _, row := range g.Rows {
			if row.Quote == nil {
				continue
			}
			if rsi, ok := row.Quote.Indicators[technical.KeyRSI14]; ok && rsi >= bound {
				n++
			}
		}
	}
	return n
}

func countRSIBelow(groups []models.GroupSection, bound float64) int {
	n := 0
	for _, g := range groups {
		for _, row := range g.Rows {
			if row.Quote == nil {
				continue
			}
			if rsi, ok := row.Quote.Indicators[technical.KeyRSI14]; ok && rsi <= bound {
				n++
			}
		}
	}
	return n
}
