// Package report assembles and renders the daily market analysis
// document. The assembler drives fetching and classification; the
// renderer is a pure function from the report model to Markdown.
package report

import (
	"fmt"
	"strings"

	"github.com/seenimoa/marketbrief/internal/analysis/technical"
	"github.com/seenimoa/marketbrief/pkg/models"
	"github.com/seenimoa/marketbrief/pkg/utils"
)

const disclaimer = "This report is generated automatically from public data and is not investment advice."

// Render produces the Markdown document for a report. It performs no
// I/O and no clock reads: the same report value always renders to the
// same bytes.
func Render(r *models.Report) string {
	var b strings.Builder

	renderHeader(&b, r)
	renderIndices(&b, r)
	renderGauge(&b, r.Gauge)
	for _, g := range r.Groups {
		renderGroup(&b, g)
	}
	renderNews(&b, r.News)
	renderSummary(&b, r.Summary)

	b.WriteString("---\n\n")
	b.WriteString("*" + disclaimer + "*\n")
	return b.String()
}

func renderHeader(b *strings.Builder, r *models.Report) {
	fmt.Fprintf(b, "# %s — %s\n\n", r.Title, r.GeneratedAt.Format("January 2, 2006"))

	status := "Market closed"
	if r.MarketOpen {
		status = "Market open"
	}
	fmt.Fprintf(b, "*Generated %s ET · %s*",
		r.GeneratedAt.In(utils.ET).Format("2006-01-02 15:04"), status)
	if r.Author != "" {
		fmt.Fprintf(b, " · *%s*", r.Author)
	}
	b.WriteString("\n\n")
}

func renderIndices(b *strings.Builder, r *models.Report) {
	if len(r.Indices) == 0 {
		return
	}
	b.WriteString("## Market Overview\n\n")
	b.WriteString("| Index | Price | Change | % |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	for _, row := range r.Indices {
		if row.Quote == nil {
			fmt.Fprintf(b, "| %s | — | no data | — |\n", row.Instrument.Name)
			continue
		}
		q := row.Quote
		fmt.Fprintf(b, "| %s | %s | %s %s | %s |\n",
			row.Instrument.Name,
			utils.FormatPrice(q.Price),
			utils.ChangeMarker(q.Change),
			utils.FormatChange(q.Change),
			utils.FormatPct(q.ChangePct))
	}
	b.WriteString("\n")
}

func renderGauge(b *strings.Builder, g *models.SentimentGauge) {
	if g == nil {
		return
	}
	fmt.Fprintf(b, "**Fear & Greed Index:** %.0f / 100 — %s\n\n", g.Score, g.Level)
}

func renderGroup(b *strings.Builder, g models.GroupSection) {
	fmt.Fprintf(b, "## %s\n\n", g.Name)
	b.WriteString("| Symbol | Name | Price | Change % | RSI(14) | MA20 | MA50 | Trend |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|---|\n")

	var sumPct float64
	var counted int
	var best, worst *models.QuoteRow
	for i := range g.Rows {
		row := &g.Rows[i]
		if row.Quote == nil {
			fmt.Fprintf(b, "| %s | %s | — | no data | — | — | — | — |\n",
				row.Instrument.Symbol, row.Instrument.Name)
			continue
		}
		q := row.Quote
		fmt.Fprintf(b, "| %s | %s | %s | %s %s | %s | %s | %s | %s |\n",
			q.Symbol,
			row.Instrument.Name,
			utils.FormatUSD(q.Price),
			utils.ChangeMarker(q.ChangePct),
			utils.FormatPct(q.ChangePct),
			indicatorCell(q, technical.KeyRSI14),
			indicatorCell(q, technical.KeyMA20),
			indicatorCell(q, technical.KeyMA50),
			trendLabel(q))

		sumPct += q.ChangePct
		counted++
		if best == nil || q.ChangePct > best.Quote.ChangePct {
			best = row
		}
		if worst == nil || q.ChangePct < worst.Quote.ChangePct {
			worst = row
		}
	}
	b.WriteString("\n")

	if counted > 0 {
		fmt.Fprintf(b, "- Average change: %s\n", utils.FormatPct(sumPct/float64(counted)))
		if best != nil && worst != nil && best != worst {
			fmt.Fprintf(b, "- Strongest: %s (%s) · Weakest: %s (%s)\n",
				best.Quote.Symbol, utils.FormatPct(best.Quote.ChangePct),
				worst.Quote.Symbol, utils.FormatPct(worst.Quote.ChangePct))
		}
		b.WriteString("\n")
	}
}

func renderNews(b *strings.Builder, sections []models.NewsSection) {
	if len(sections) == 0 {
		return
	}
	b.WriteString("## News\n\n")
	for _, sec := range sections {
		fmt.Fprintf(b, "### %s\n\n", sec.Category)
		if len(sec.Items) == 0 {
			b.WriteString("No notable headlines today.\n\n")
			continue
		}
		for _, item := range sec.Items {
			if item.URL != "" {
				fmt.Fprintf(b, "- **[%s](%s)** — %s", escapePipes(item.Title), item.URL, item.Source)
			} else {
				fmt.Fprintf(b, "- **%s** — %s", escapePipes(item.Title), item.Source)
			}
			if !item.PublishedAt.IsZero() {
				fmt.Fprintf(b, " (%s)", item.PublishedAt.Format("Jan 2"))
			}
			b.WriteString("\n")
			if item.Summary != "" {
				fmt.Fprintf(b, "  > %s\n", utils.Truncate(item.Summary, 200))
			}
		}
		b.WriteString("\n")
	}
}

func renderSummary(b *strings.Builder, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString("## Summary\n\n")
	for _, line := range lines {
		fmt.Fprintf(b, "- %s\n", line)
	}
	b.WriteString("\n")
}

// indicatorCell formats one indicator value, or a dash placeholder
// when the series was too short to compute it.
func indicatorCell(q *models.Quote, key string) string {
	v, ok := q.Indicators[key]
	if !ok {
		return "—"
	}
	return fmt.Sprintf("%.1f", v)
}

// trendLabel reads the RSI into the overbought/oversold/neutral label
// shown in the trend column.
func trendLabel(q *models.Quote) string {
	rsi, ok := q.Indicators[technical.KeyRSI14]
	if !ok {
		return "—"
	}
	switch {
	case rsi >= 70:
		return "Overbought"
	case rsi <= 30:
		return "Oversold"
	default:
		return "Neutral"
	}
}

// escapePipes keeps table and bullet text from breaking Markdown.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
