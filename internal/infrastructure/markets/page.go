package markets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"MarketDigest/internal/collector"
	"MarketDigest/internal/domain"
)

const maxPageBytes = 2 << 20

// PageCollector fetches configured web pages (news aggregators) and hands
// their raw HTML to the transformer for markup stripping.
type PageCollector struct {
	client *http.Client
	logger *slog.Logger
}

var _ collector.Collector = (*PageCollector)(nil)

// NewPageCollector wires an HTTP client; a nil client gets a default with a
// 10 second timeout matching the original job.
func NewPageCollector(client *http.Client, log *slog.Logger) *PageCollector {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &PageCollector{client: client, logger: log}
}

// Name identifies the strategy inside the registry.
func (p *PageCollector) Name() string {
	return "page"
}

// Collect fetches every configured page. Unreachable pages are skipped;
// zero pages fetched is an error.
func (p *PageCollector) Collect(ctx context.Context, req collector.Request) ([]domain.RawItem, error) {
	if len(req.Sources) == 0 {
		return nil, fmt.Errorf("no pages provided for workflow %s", req.Workflow)
	}

	var (
		items   []domain.RawItem
		lastErr error
	)

	for _, src := range req.Sources {
		body, err := p.fetchPage(ctx, src.URL, req.Options["userAgent"])
		if err != nil {
			p.warn("page fetch failed", "source", src.Name, "url", src.URL, "error", err)
			lastErr = err
			continue
		}

		items = append(items, domain.RawItem{
			Source:    src.Name,
			FetchedAt: req.Now,
			Text:      body,
			MIME:      "text/html",
		})
	}

	if len(items) == 0 {
		return nil, &domain.FetchError{Source: req.Workflow, Err: lastErr}
	}

	return items, nil
}

func (p *PageCollector) fetchPage(ctx context.Context, pageURL, userAgent string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("page url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0"
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}

	return string(raw), nil
}

func (p *PageCollector) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
