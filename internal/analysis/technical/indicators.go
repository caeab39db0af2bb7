// Package technical implements the technical indicators derived from a
// daily price series. All functions are pure: they operate on
// []models.PricePoint slices already fetched by a provider and perform
// no I/O of their own.
package technical

import (
	"math"

	"github.com/seenimoa/marketbrief/pkg/models"
)

// Indicator keys used in Quote.Indicators and the Compute result map.
const (
	KeyMA20      = "ma20"
	KeyMA50      = "ma50"
	KeyRSI14     = "rsi14"
	KeyBeta      = "beta"
	KeyChange    = "change"
	KeyChangePct = "change_pct"
)

// Default windows.
const (
	RSIPeriod = 14
	ShortMA   = 20
	LongMA    = 50
)

// Compute derives all indicators whose window requirements the series
// satisfies. Indicators that cannot be computed are absent from the
// result map; a short series never produces a truncated-window value.
// benchmark may be nil, in which case beta is omitted.
func Compute(series, benchmark []models.PricePoint) map[string]float64 {
	out := make(map[string]float64)

	closes := extractCloses(series)

	if v, ok := SMA(closes, ShortMA); ok {
		out[KeyMA20] = v
	}
	if v, ok := SMA(closes, LongMA); ok {
		out[KeyMA50] = v
	}
	if v, ok := RSI(closes, RSIPeriod); ok {
		out[KeyRSI14] = v
	}
	if v, ok := Beta(series, benchmark); ok {
		out[KeyBeta] = v
	}
	if change, pct, ok := DayChange(closes); ok {
		out[KeyChange] = change
		out[KeyChangePct] = pct
	}

	return out
}

// SMA returns the arithmetic mean of the last period closes.
// ok is false when the series is shorter than the window.
func SMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}
	sum := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(period), true
}

// RSI computes the Relative Strength Index over the given lookback
// using Wilder's smoothing, the standard 14-period formulation. The
// result is clamped to [0, 100]. ok is false when the series has fewer
// than period+1 closes.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	// Seed averages from the first window.
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder's smoothing over the remainder of the series.
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))
	return clamp(rsi, 0, 100), true
}

// Beta computes the covariance of the symbol's daily returns with the
// benchmark's returns divided by the benchmark return variance. Returns
// are aligned by calendar day; ok is false with fewer than two
// overlapping return points or zero benchmark variance.
func Beta(series, benchmark []models.PricePoint) (float64, bool) {
	sr := alignedReturns(series, benchmark)
	if len(sr) < 2 {
		return 0, false
	}

	var meanS, meanB float64
	for _, p := range sr {
		meanS += p.symbol
		meanB += p.bench
	}
	meanS /= float64(len(sr))
	meanB /= float64(len(sr))

	var cov, varB float64
	for _, p := range sr {
		cov += (p.symbol - meanS) * (p.bench - meanB)
		varB += (p.bench - meanB) * (p.bench - meanB)
	}

	if varB == 0 {
		return 0, false
	}
	return cov / varB, true
}

// DayChange returns the absolute and percent change between the last
// two closes. ok is false with fewer than two points or a zero
// previous close.
func DayChange(closes []float64) (change, pct float64, ok bool) {
	n := len(closes)
	if n < 2 || closes[n-2] == 0 {
		return 0, 0, false
	}
	change = closes[n-1] - closes[n-2]
	pct = change / closes[n-2] * 100
	return change, pct, true
}

// --- helpers ---

type returnPair struct {
	symbol float64
	bench  float64
}

// alignedReturns builds daily returns for the days present in both
// series. Dates are matched on the calendar day of the bar timestamp.
func alignedReturns(series, benchmark []models.PricePoint) []returnPair {
	if len(series) < 2 || len(benchmark) < 2 {
		return nil
	}

	benchByDay := make(map[string]int, len(benchmark))
	for i, p := range benchmark {
		benchByDay[dayKey(p)] = i
	}

	var pairs []returnPair
	for i := 1; i < len(series); i++ {
		bi, ok := benchByDay[dayKey(series[i])]
		bp, okPrev := benchByDay[dayKey(series[i-1])]
		if !ok || !okPrev || bi == bp {
			continue
		}
		prevS := series[i-1].Close
		prevB := benchmark[bp].Close
		if prevS == 0 || prevB == 0 {
			continue
		}
		pairs = append(pairs, returnPair{
			symbol: series[i].Close/prevS - 1,
			bench:  benchmark[bi].Close/prevB - 1,
		})
	}
	return pairs
}

func dayKey(p models.PricePoint) string {
	return p.Timestamp.UTC().Format("2006-01-02")
}

func extractCloses(series []models.PricePoint) []float64 {
	closes := make([]float64, len(series))
	for i, p := range series {
		closes[i] = p.Close
	}
	return closes
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
