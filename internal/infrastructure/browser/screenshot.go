package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"MarketDigest/internal/collector"
	"MarketDigest/internal/domain"
)

const (
	defaultSelector    = "div.timeline-item"
	defaultWindowHours = 24
	defaultNavTimeout  = 60 * time.Second
	scrollRounds       = 6
	scrollPause        = 500 * time.Millisecond
)

var defaultInstances = []string{
	"https://nitter.net",
	"https://nitter.cz",
	"https://nitter.it",
}

// ScreenshotCollector renders the recent-posts search page of each configured
// account in headless Chrome and captures a full-page PNG. Mirror instances
// are tried in order until one serves the timeline.
type ScreenshotCollector struct {
	logger *slog.Logger
}

var _ collector.Collector = (*ScreenshotCollector)(nil)

// NewScreenshotCollector builds the browser-backed strategy.
func NewScreenshotCollector(log *slog.Logger) *ScreenshotCollector {
	return &ScreenshotCollector{logger: log}
}

// Name identifies the strategy inside the registry.
func (s *ScreenshotCollector) Name() string {
	return "screenshots"
}

// Collect captures one screenshot per account. Accounts whose every mirror
// fails are skipped; zero captures overall is an error.
func (s *ScreenshotCollector) Collect(ctx context.Context, req collector.Request) ([]domain.RawItem, error) {
	if len(req.Sources) == 0 {
		return nil, fmt.Errorf("no accounts provided for workflow %s", req.Workflow)
	}

	instances := splitList(req.Options["instances"])
	if len(instances) == 0 {
		instances = defaultInstances
	}
	selector := optionOr(req.Options, "selector", defaultSelector)
	window := time.Duration(optionIntOr(req.Options, "windowHours", defaultWindowHours)) * time.Hour
	since := req.Now.UTC().Add(-window)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.NoSandbox,
			chromedp.DisableGPU,
		)...,
	)
	defer cancelAlloc()

	var (
		items   []domain.RawItem
		lastErr error
	)

	for _, src := range req.Sources {
		shot, err := s.captureAccount(allocCtx, instances, src.Name, since, selector)
		if err != nil {
			s.warn("screenshot failed", "account", src.Name, "error", err)
			lastErr = err
			continue
		}

		items = append(items, domain.RawItem{
			Source:    src.Name,
			FetchedAt: req.Now,
			Binary:    shot,
			MIME:      "image/png",
		})
	}

	if len(items) == 0 {
		return nil, &domain.FetchError{Source: req.Workflow, Err: lastErr}
	}

	return items, nil
}

// captureAccount walks the mirror list and returns the first successful capture.
func (s *ScreenshotCollector) captureAccount(parent context.Context, instances []string, account string, since time.Time, selector string) ([]byte, error) {
	var lastErr error
	for _, instance := range instances {
		target := searchURL(instance, account, since)

		shot, err := s.capture(parent, target, selector)
		if err != nil {
			s.warn("mirror failed", "account", account, "url", target, "error", err)
			lastErr = err
			continue
		}
		return shot, nil
	}
	return nil, fmt.Errorf("all mirrors failed for %s: %w", account, lastErr)
}

func (s *ScreenshotCollector) capture(parent context.Context, target, selector string) ([]byte, error) {
	tabCtx, cancelTab := chromedp.NewContext(parent)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, defaultNavTimeout)
	defer cancelRun()

	tasks := []chromedp.Action{
		chromedp.Navigate(target),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
	}
	// Scroll in steps so lazily loaded posts end up in the capture.
	for i := 0; i < scrollRounds; i++ {
		tasks = append(tasks,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(scrollPause),
		)
	}

	var shot []byte
	tasks = append(tasks, chromedp.FullScreenshot(&shot, 90))

	if err := chromedp.Run(runCtx, tasks...); err != nil {
		return nil, fmt.Errorf("render %s: %w", target, err)
	}

	return shot, nil
}

// searchURL builds the recent-posts search page for one account,
// e.g. https://nitter.net/search?f=tweets&q=from:NSEIndia+since:2025-05-13_00:00:00_UTC.
func searchURL(instance, account string, since time.Time) string {
	query := fmt.Sprintf("from:%s since:%s", account, since.Format("2006-01-02_15:04:05_UTC"))
	return strings.TrimSuffix(instance, "/") + "/search?f=tweets&q=" + url.QueryEscape(query)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func optionOr(options map[string]string, key, fallback string) string {
	if v, ok := options[key]; ok && v != "" {
		return v
	}
	return fallback
}

func optionIntOr(options map[string]string, key string, fallback int) int {
	if v, ok := options[key]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func (s *ScreenshotCollector) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
