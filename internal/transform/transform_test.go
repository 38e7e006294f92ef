package transform

import (
	"errors"
	"strings"
	"testing"
	"time"

	"MarketDigest/internal/domain"
)

func TestTransformStripsMarkupAndNormalizesWhitespace(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(0)
	items := []domain.RawItem{
		{
			Source: "pulse",
			MIME:   "text/html",
			Text: `<html><head><style>body{color:red}</style></head>
			<body><script>alert(1)</script><h1>Markets   rally</h1>
			<p>Nifty	closed higher.</p></body></html>`,
		},
	}

	got, err := n.Transform(items)
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}

	if got.Body != "Markets rally Nifty closed higher." {
		t.Fatalf("unexpected body: %q", got.Body)
	}
	if strings.Contains(got.Body, "alert") || strings.Contains(got.Body, "color:red") {
		t.Fatalf("script/style content leaked: %q", got.Body)
	}
}

func TestTransformConcatenatesInCollectionOrder(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(0)
	items := []domain.RawItem{
		{Source: "a", Text: "first"},
		{Source: "b", Text: "second"},
		{Source: "a", Text: "third"},
	}

	got, err := n.Transform(items)
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}

	if got.Body != "first\nsecond\nthird" {
		t.Fatalf("order not preserved: %q", got.Body)
	}
	if len(got.Sources) != 2 || got.Sources[0] != "a" || got.Sources[1] != "b" {
		t.Fatalf("unexpected sources: %v", got.Sources)
	}
}

func TestTransformIsDeterministic(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(0)
	items := []domain.RawItem{
		{Source: "a", FetchedAt: time.Now(), Text: "  spaced   out  "},
		{Source: "b", MIME: "text/html", Text: "<p>markup</p>"},
	}

	first, err := n.Transform(items)
	if err != nil {
		t.Fatalf("first Transform: %v", err)
	}
	second, err := n.Transform(items)
	if err != nil {
		t.Fatalf("second Transform: %v", err)
	}

	if first.Body != second.Body {
		t.Fatalf("non-deterministic body: %q vs %q", first.Body, second.Body)
	}
}

func TestTransformTruncatesToBudget(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(10)
	items := []domain.RawItem{
		{Source: "a", Text: strings.Repeat("x", 100)},
	}

	got, err := n.Transform(items)
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if len(got.Body) != 10 {
		t.Fatalf("expected 10 bytes, got %d", len(got.Body))
	}
}

func TestTransformTruncateKeepsValidUTF8(t *testing.T) {
	t.Parallel()

	// 9 ASCII bytes then a 3-byte rune straddling the 10 byte cut.
	n := NewNormalizer(10)
	items := []domain.RawItem{
		{Source: "a", Text: "abcdefghi€"},
	}

	got, err := n.Transform(items)
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if got.Body != "abcdefghi" {
		t.Fatalf("rune split at boundary: %q", got.Body)
	}
}

func TestTransformTruncateToleratesInvalidBytes(t *testing.T) {
	t.Parallel()

	// Scraped pages are not guaranteed UTF-8. A stray invalid byte early in
	// an oversized body must not wipe out the extractable text behind it.
	n := NewNormalizer(10)
	items := []domain.RawItem{
		{Source: "a", Text: "\xff" + strings.Repeat("x", 98)},
	}

	got, err := n.Transform(items)
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if len(got.Body) != 10 {
		t.Fatalf("expected 10 bytes, got %d: %q", len(got.Body), got.Body)
	}
	if !strings.Contains(got.Body, "xxx") {
		t.Fatalf("text after the invalid byte was lost: %q", got.Body)
	}
}

func TestTransformFailsOnEmptyInput(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(0)

	_, err := n.Transform(nil)
	var formatErr *domain.FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestTransformFailsWhenNothingExtractable(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(0)
	items := []domain.RawItem{
		{Source: "a", MIME: "text/html", Text: "<script>only()</script>"},
		{Source: "b", Text: "   \n\t  "},
	}

	_, err := n.Transform(items)
	var formatErr *domain.FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestTransformPassesScreenshotsThrough(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(0)
	items := []domain.RawItem{
		{Source: "NSEIndia", MIME: "image/png", Binary: []byte{0x89, 0x50}},
		{Source: "moneycontrolcom", MIME: "image/png", Binary: []byte{0x89, 0x50}},
	}

	got, err := n.Transform(items)
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}

	if len(got.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(got.Images))
	}
	if got.Images[0].Source != "NSEIndia" || got.Images[0].MIME != "image/png" {
		t.Fatalf("unexpected image metadata: %+v", got.Images[0])
	}
	if got.Body == "" {
		t.Fatalf("expected a caption body for image-only input")
	}
}
