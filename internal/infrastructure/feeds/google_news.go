package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"MarketDigest/internal/collector"
	"MarketDigest/internal/domain"
)

const (
	defaultEndpoint = "https://news.google.com/rss/search"
	defaultLimit    = 25
	defaultWindow   = "1d"
)

// GoogleNewsCollector pulls the Google News RSS search feed for each
// configured keyword and turns entries into raw items.
type GoogleNewsCollector struct {
	client *http.Client
	logger *slog.Logger
}

var _ collector.Collector = (*GoogleNewsCollector)(nil)

// NewGoogleNewsCollector wires an HTTP client; a nil client gets a default
// with a 20 second timeout.
func NewGoogleNewsCollector(client *http.Client, log *slog.Logger) *GoogleNewsCollector {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &GoogleNewsCollector{client: client, logger: log}
}

// Name identifies the strategy inside the registry.
func (g *GoogleNewsCollector) Name() string {
	return "google-news"
}

// Collect fetches one feed per keyword. Failed keywords are skipped so the
// rest of the run can proceed; only zero items overall is an error.
func (g *GoogleNewsCollector) Collect(ctx context.Context, req collector.Request) ([]domain.RawItem, error) {
	if len(req.Sources) == 0 {
		return nil, fmt.Errorf("no keywords provided for workflow %s", req.Workflow)
	}

	limit := optionInt(req.Options, "limit", defaultLimit)

	parser := gofeed.NewParser()
	parser.Client = g.client
	parser.UserAgent = "MarketDigest/1.0"

	var (
		items   []domain.RawItem
		lastErr error
	)

	for _, src := range req.Sources {
		feedURL, err := g.feedURL(src, req.Options)
		if err != nil {
			g.warn("bad feed source", "source", src.Name, "error", err)
			lastErr = err
			continue
		}

		feed, err := parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			g.warn("feed fetch failed", "source", src.Name, "error", err)
			lastErr = err
			continue
		}

		count := 0
		for _, entry := range feed.Items {
			if count >= limit {
				break
			}
			items = append(items, toRawItem(src.Name, entry, req.Now))
			count++
		}
		g.debug("feed fetched", "source", src.Name, "entries", count)
	}

	if len(items) == 0 {
		if lastErr != nil {
			return nil, &domain.FetchError{Source: req.Workflow, Err: lastErr}
		}
		return nil, &domain.FetchError{Source: req.Workflow, Err: fmt.Errorf("feeds returned no entries")}
	}

	return items, nil
}

// feedURL builds the search feed for one keyword, covering the last day.
// An explicit source URL bypasses query construction.
func (g *GoogleNewsCollector) feedURL(src collector.Source, options map[string]string) (string, error) {
	if src.URL != "" {
		return src.URL, nil
	}

	endpoint := optionString(options, "endpoint", defaultEndpoint)
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid feed endpoint %s: %w", endpoint, err)
	}

	language := optionString(options, "language", "en-US")
	country := optionString(options, "country", "US")
	window := optionString(options, "window", defaultWindow)

	query := parsed.Query()
	query.Set("q", src.Name+" when:"+window)
	query.Set("hl", language)
	query.Set("gl", country)
	query.Set("ceid", country+":"+languageCode(language))
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// toRawItem stamps the retrieval time; the entry's own publish date travels
// in the text so the summarizer can weigh recency.
func toRawItem(source string, entry *gofeed.Item, now time.Time) domain.RawItem {
	text := strings.TrimSpace(entry.Title)
	if desc := strings.TrimSpace(entry.Description); desc != "" {
		text = text + " - " + desc
	}
	if entry.PublishedParsed != nil {
		text = text + " [" + entry.PublishedParsed.UTC().Format("2006-01-02 15:04") + "]"
	}
	if entry.Link != "" {
		text = text + " (" + entry.Link + ")"
	}

	return domain.RawItem{
		Source:    source,
		FetchedAt: now,
		Text:      text,
		MIME:      "text/html",
	}
}

func languageCode(language string) string {
	if idx := strings.Index(language, "-"); idx > 0 {
		return language[:idx]
	}
	return language
}

func optionString(options map[string]string, key, fallback string) string {
	if v, ok := options[key]; ok && v != "" {
		return v
	}
	return fallback
}

func optionInt(options map[string]string, key string, fallback int) int {
	if v, ok := options[key]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func (g *GoogleNewsCollector) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}

func (g *GoogleNewsCollector) warn(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Warn(msg, args...)
	}
}
