package report

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/marketbrief/internal/analysis/technical"
	"github.com/seenimoa/marketbrief/pkg/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		Title:       "Daily Market Brief",
		Author:      "marketbrief",
		GeneratedAt: time.Date(2025, 8, 22, 11, 30, 0, 0, time.UTC),
		MarketOpen:  false,
		Indices: []models.QuoteRow{
			{
				Instrument: models.Instrument{Symbol: "^GSPC", Name: "S&P 500"},
				Quote:      &models.Quote{Symbol: "^GSPC", Price: 5600.12, Change: 12.34, ChangePct: 0.22},
			},
			{
				Instrument: models.Instrument{Symbol: "^VIX", Name: "VIX"},
			},
		},
		Gauge: &models.SentimentGauge{Score: 72, Level: "Greed"},
		Groups: []models.GroupSection{
			{
				Name: "AI",
				Rows: []models.QuoteRow{
					{
						Instrument: models.Instrument{Symbol: "NVDA", Name: "NVIDIA"},
						Quote: &models.Quote{
							Symbol: "NVDA", Price: 180.5, ChangePct: 2.1,
							Indicators: map[string]float64{
								technical.KeyRSI14: 74.2,
								technical.KeyMA20:  175.0,
							},
						},
					},
					{
						Instrument: models.Instrument{Symbol: "TSLA", Name: "Tesla"},
						Quote: &models.Quote{
							Symbol: "TSLA", Price: 240.0, ChangePct: -0.4,
							Indicators: map[string]float64{technical.KeyRSI14: 48.0},
						},
					},
				},
			},
		},
		News: []models.NewsSection{
			{
				Category: "AI sector",
				Items: []models.NewsItem{
					{
						Title:       "NVIDIA | record quarter",
						URL:         "https://example.com/nvda",
						Source:      "Wire",
						Summary:     "Data center revenue surged.",
						PublishedAt: time.Date(2025, 8, 22, 9, 0, 0, 0, time.UTC),
					},
				},
			},
			{Category: "Macro"},
		},
		Summary: []string{"S&P 500 rose +0.22% on the day."},
	}
}

func TestRenderStructure(t *testing.T) {
	out := Render(sampleReport())

	for _, want := range []string{
		"# Daily Market Brief — August 22, 2025",
		"## Market Overview",
		"| S&P 500 | 5,600.12 |",
		"**Fear & Greed Index:** 72 / 100 — Greed",
		"## AI",
		"| NVDA | NVIDIA | $180.50 |",
		"Overbought",
		"## News",
		"### AI sector",
		"### Macro",
		"No notable headlines today.",
		"## Summary",
		"- S&P 500 rose +0.22% on the day.",
		"not investment advice",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
}

func TestRenderFailedQuoteRow(t *testing.T) {
	out := Render(sampleReport())
	if !strings.Contains(out, "| VIX | — | no data | — |") {
		t.Error("nil quote should render a no data row")
	}
}

func TestRenderOmittedIndicators(t *testing.T) {
	out := Render(sampleReport())
	// TSLA has RSI but no MA columns; placeholders, never zeros.
	if !strings.Contains(out, "| 48.0 | — | — |") {
		t.Error("missing indicators should render as dashes")
	}
}

func TestRenderGroupStats(t *testing.T) {
	out := Render(sampleReport())
	if !strings.Contains(out, "- Average change: +0.85%") {
		t.Error("group average line missing or wrong")
	}
	if !strings.Contains(out, "- Strongest: NVDA (+2.10%) · Weakest: TSLA (-0.40%)") {
		t.Error("strongest/weakest line missing or wrong")
	}
}

func TestRenderEscapesPipes(t *testing.T) {
	out := Render(sampleReport())
	if !strings.Contains(out, `NVIDIA \| record quarter`) {
		t.Error("pipes in titles should be escaped")
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := sampleReport()
	if Render(r) != Render(r) {
		t.Error("rendering the same report twice should be byte-identical")
	}
}

func TestRenderMarketStatus(t *testing.T) {
	r := sampleReport()
	r.MarketOpen = true
	if !strings.Contains(Render(r), "Market open") {
		t.Error("open market not reflected in header")
	}
	r.MarketOpen = false
	if !strings.Contains(Render(r), "Market closed") {
		t.Error("closed market not reflected in header")
	}
}

func TestFilename(t *testing.T) {
	r := sampleReport()
	// 11:30 UTC on Aug 22 is still Aug 22 in ET.
	if got := Filename(r); got != "daily_report_20250822.md" {
		t.Errorf("unexpected filename %q", got)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport()

	path, err := Save(r, dir)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != Render(r) {
		t.Error("saved file should match rendered output")
	}

	// Same date saves again to the same path.
	path2, err := Save(r, dir)
	if err != nil {
		t.Fatal(err)
	}
	if path2 != path {
		t.Errorf("same-date report should overwrite: %q vs %q", path2, path)
	}
}
