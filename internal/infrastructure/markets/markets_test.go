package markets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"MarketDigest/internal/collector"
	"MarketDigest/internal/domain"
)

func TestPageCollectFetchesRawHTML(t *testing.T) {
	t.Parallel()

	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><body><h1>Pulse</h1></body></html>`))
	}))
	defer server.Close()

	c := NewPageCollector(server.Client(), nil)

	req := collector.Request{
		Now:      time.Now(),
		Workflow: "market-pulse",
		Sources:  []collector.Source{{Name: "pulse", URL: server.URL}},
		Options:  map[string]string{"userAgent": "Mozilla/5.0 (test)"},
	}

	items, err := c.Collect(context.Background(), req)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].MIME != "text/html" {
		t.Fatalf("unexpected mime: %s", items[0].MIME)
	}
	if !strings.Contains(items[0].Text, "<h1>Pulse</h1>") {
		t.Fatalf("markup stripped too early: %q", items[0].Text)
	}
	if gotAgent != "Mozilla/5.0 (test)" {
		t.Fatalf("user agent not applied: %q", gotAgent)
	}
}

func TestPageCollectSkipsUnreachablePages(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/down") {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`<p>up</p>`))
	}))
	defer server.Close()

	c := NewPageCollector(server.Client(), nil)

	req := collector.Request{
		Now:      time.Now(),
		Workflow: "market-pulse",
		Sources: []collector.Source{
			{Name: "down", URL: server.URL + "/down"},
			{Name: "up", URL: server.URL + "/up"},
		},
	}

	items, err := c.Collect(context.Background(), req)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(items) != 1 || items[0].Source != "up" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestPageCollectFailsWhenAllPagesFail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewPageCollector(server.Client(), nil)

	req := collector.Request{
		Now:      time.Now(),
		Workflow: "market-pulse",
		Sources:  []collector.Source{{Name: "gone", URL: server.URL}},
	}

	_, err := c.Collect(context.Background(), req)

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestDigestAPICollectKeepsLatestEntry(t *testing.T) {
	t.Parallel()

	var gotOrigin string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrigin = r.Header.Get("Origin")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"about_market":"bullish"},{"id":2,"about_market":"older"}]`))
	}))
	defer server.Close()

	c := NewDigestAPICollector(server.Client(), nil)

	req := collector.Request{
		Now:      time.Now(),
		Workflow: "daily-digest",
		Sources:  []collector.Source{{Name: "cms", URL: server.URL}},
		Options:  map[string]string{"origin": "https://example.org"},
	}

	items, err := c.Collect(context.Background(), req)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].MIME != "application/json" {
		t.Fatalf("unexpected mime: %s", items[0].MIME)
	}
	if !strings.Contains(items[0].Text, `"about_market":"bullish"`) {
		t.Fatalf("latest entry not kept: %q", items[0].Text)
	}
	if strings.Contains(items[0].Text, "older") {
		t.Fatalf("older entries leaked: %q", items[0].Text)
	}
	if gotOrigin != "https://example.org" {
		t.Fatalf("origin header not applied: %q", gotOrigin)
	}
}

func TestDigestAPICollectFailsOnEmptyArray(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewDigestAPICollector(server.Client(), nil)

	req := collector.Request{
		Now:      time.Now(),
		Workflow: "daily-digest",
		Sources:  []collector.Source{{Name: "cms", URL: server.URL}},
	}

	_, err := c.Collect(context.Background(), req)

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestDigestAPICollectFailsOnMalformedJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	c := NewDigestAPICollector(server.Client(), nil)

	req := collector.Request{
		Now:      time.Now(),
		Workflow: "daily-digest",
		Sources:  []collector.Source{{Name: "cms", URL: server.URL}},
	}

	_, err := c.Collect(context.Background(), req)

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}
