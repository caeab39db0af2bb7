package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/marketbrief/internal/common"
	"github.com/seenimoa/marketbrief/internal/config"
	"github.com/seenimoa/marketbrief/pkg/models"
)

// NewsFetcher is the interface the report pipeline consumes for
// headlines.
type NewsFetcher interface {
	FetchAll(ctx context.Context) ([]models.NewsItem, error)
}

// Collector fetches headlines from the configured news sources. RSS
// sources are parsed with gofeed; scrape sources are fetched and walked
// with the CSS selectors from their config.
type Collector struct {
	sources []config.SourceConfig
	cache   *Cache
	limiter *RateLimiter
	parser  *gofeed.Parser
	log     *common.Logger
}

// NewCollector creates a collector over the given sources.
func NewCollector(sources []config.SourceConfig, log *common.Logger) *Collector {
	if log == nil {
		log = common.NewSilentLogger()
	}
	return &Collector{
		sources: sources,
		cache:   NewCache(10 * time.Minute),
		limiter: NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:  gofeed.NewParser(),
		log:     log,
	}
}

// FetchAll retrieves items from every configured source concurrently.
// A failing source is logged and skipped; FetchAll only errors when the
// context ends before any work completes. Results keep configured
// source order regardless of completion order, and duplicate stories
// carried by several feeds are collapsed on normalized title, first
// occurrence wins.
func (c *Collector) FetchAll(ctx context.Context) ([]models.NewsItem, error) {
	const cacheKey = "news:all"
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]models.NewsItem), nil
	}

	perSource := make([][]models.NewsItem, len(c.sources))
	g, gctx := errgroup.WithContext(ctx)

	for i, src := range c.sources {
		i, src := i, src
		g.Go(func() error {
			items, err := c.fetchSource(gctx, src)
			if err != nil {
				c.log.Warn().Err(err).Str("source", src.Name).Msg("news source failed, skipping")
				return nil
			}
			c.log.Debug().Str("source", src.Name).Int("items", len(items)).Msg("fetched news source")
			perSource[i] = items
			return nil
		})
	}
	g.Wait()

	// The errgroup context is cancelled once Wait returns; only the
	// caller's context says whether the run was cut short.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []models.NewsItem
	for _, items := range perSource {
		all = append(all, items...)
	}
	all = dedupeByTitle(all)

	c.cache.Set(cacheKey, all)
	return all, nil
}

// fetchSource dispatches on the source kind.
func (c *Collector) fetchSource(ctx context.Context, src config.SourceConfig) ([]models.NewsItem, error) {
	switch src.Kind {
	case config.SourceRSS:
		return c.fetchRSS(ctx, src)
	case config.SourceScrape:
		return c.fetchScrape(ctx, src)
	default:
		return nil, fmt.Errorf("source %q: unknown kind %q", src.Name, src.Kind)
	}
}

// fetchRSS parses an RSS feed and returns its items.
func (c *Collector) fetchRSS(ctx context.Context, src config.SourceConfig) ([]models.NewsItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := c.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry.Title == "" {
			continue
		}
		item := models.NewsItem{
			Title:   strings.TrimSpace(entry.Title),
			URL:     entry.Link,
			Source:  src.Name,
			Summary: cleanHTML(entry.Description),
		}
		if entry.PublishedParsed != nil {
			item.PublishedAt = *entry.PublishedParsed
		}
		items = append(items, item)
	}

	return items, nil
}

// fetchScrape loads an HTML page and extracts items with the source's
// CSS selectors. Scraped items have no publish timestamp; they rank
// after dated feed items downstream.
func (c *Collector) fetchScrape(ctx context.Context, src config.SourceConfig) ([]models.NewsItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, _, err := doGet(ctx, src.URL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML %s: %w", src.Name, err)
	}

	sel := src.Selectors
	var items []models.NewsItem
	doc.Find(sel.Item).Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(sel.Title).First().Text())
		if title == "" {
			return
		}
		item := models.NewsItem{
			Title:  title,
			Source: src.Name,
		}
		if sel.Link != "" {
			if href, ok := s.Find(sel.Link).First().Attr("href"); ok {
				item.URL = resolveLink(src.URL, href)
			}
		}
		if sel.Summary != "" {
			item.Summary = strings.TrimSpace(s.Find(sel.Summary).First().Text())
		}
		items = append(items, item)
	})

	return items, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// resolveLink makes a scraped href absolute against the page URL.
func resolveLink(page, href string) string {
	base, err := url.Parse(page)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// dedupeByTitle drops items whose normalized title was already seen.
func dedupeByTitle(items []models.NewsItem) []models.NewsItem {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Title))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
