package markets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"MarketDigest/internal/collector"
	"MarketDigest/internal/domain"
)

// DigestAPICollector fetches a CMS daily-digest endpoint returning a JSON
// array and keeps the most recent entry as one raw item.
type DigestAPICollector struct {
	client *http.Client
	logger *slog.Logger
}

var _ collector.Collector = (*DigestAPICollector)(nil)

// NewDigestAPICollector wires an HTTP client; a nil client gets a default
// with a 20 second timeout.
func NewDigestAPICollector(client *http.Client, log *slog.Logger) *DigestAPICollector {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &DigestAPICollector{client: client, logger: log}
}

// Name identifies the strategy inside the registry.
func (d *DigestAPICollector) Name() string {
	return "digest-api"
}

// Collect queries each configured endpoint; an empty array counts as a
// failed source. The first array element is re-marshalled so the summarizer
// receives one well-formed JSON document per source.
func (d *DigestAPICollector) Collect(ctx context.Context, req collector.Request) ([]domain.RawItem, error) {
	if len(req.Sources) == 0 {
		return nil, fmt.Errorf("no endpoints provided for workflow %s", req.Workflow)
	}

	var (
		items   []domain.RawItem
		lastErr error
	)

	for _, src := range req.Sources {
		payload, err := d.fetchLatest(ctx, src.URL, req.Options)
		if err != nil {
			d.warn("digest fetch failed", "source", src.Name, "error", err)
			lastErr = err
			continue
		}

		items = append(items, domain.RawItem{
			Source:    src.Name,
			FetchedAt: req.Now,
			Text:      string(payload),
			MIME:      "application/json",
		})
	}

	if len(items) == 0 {
		return nil, &domain.FetchError{Source: req.Workflow, Err: lastErr}
	}

	return items, nil
}

func (d *DigestAPICollector) fetchLatest(ctx context.Context, endpoint string, options map[string]string) ([]byte, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	// The CMS rejects non-browser clients, so mimic one.
	userAgent := options["userAgent"]
	if userAgent == "" {
		userAgent = "Mozilla/5.0"
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if origin := options["origin"]; origin != "" {
		req.Header.Set("Origin", origin)
		req.Header.Set("Referer", origin+"/")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request digest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("digest api returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read digest: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse digest: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("digest api returned no entries")
	}

	return entries[0], nil
}

func (d *DigestAPICollector) warn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
