package transform

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"MarketDigest/internal/domain"
	"MarketDigest/internal/ports"
)

// DefaultMaxBytes caps the text handed to the summarization service.
const DefaultMaxBytes = 15000

// Normalizer converts the raw items of one run into a single ProcessedText:
// markup stripped, whitespace collapsed, entries concatenated in collection
// order, truncated to the service input limit. Binary items (screenshots)
// pass through as image attachments.
type Normalizer struct {
	maxBytes int
}

var _ ports.Transformer = (*Normalizer)(nil)

// NewNormalizer builds a transformer; maxBytes <= 0 selects DefaultMaxBytes.
func NewNormalizer(maxBytes int) *Normalizer {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Normalizer{maxBytes: maxBytes}
}

// Transform is deterministic for a fixed input slice.
func (n *Normalizer) Transform(items []domain.RawItem) (domain.ProcessedText, error) {
	if len(items) == 0 {
		return domain.ProcessedText{}, &domain.FormatError{Reason: "no items collected"}
	}

	var (
		parts   []string
		sources []string
		images  []domain.Image
		seen    = map[string]struct{}{}
	)

	for _, item := range items {
		if _, ok := seen[item.Source]; !ok {
			seen[item.Source] = struct{}{}
			sources = append(sources, item.Source)
		}

		if item.IsBinary() {
			images = append(images, domain.Image{
				Source: item.Source,
				MIME:   item.MIME,
				Data:   item.Binary,
			})
			continue
		}

		text := item.Text
		if isHTML(item.MIME) {
			stripped, err := stripHTML(text)
			if err != nil {
				return domain.ProcessedText{}, &domain.FormatError{
					Reason: fmt.Sprintf("strip markup from %s: %v", item.Source, err),
				}
			}
			text = stripped
		}

		text = collapseWhitespace(text)
		if text != "" {
			parts = append(parts, text)
		}
	}

	body := strings.Join(parts, "\n")
	body = truncate(body, n.maxBytes)

	if body == "" && len(images) == 0 {
		return domain.ProcessedText{}, &domain.FormatError{Reason: "no usable text extracted"}
	}

	if body == "" {
		body = captionImages(images)
	}

	return domain.ProcessedText{Sources: sources, Body: body, Images: images}, nil
}

func isHTML(mime string) bool {
	return strings.HasPrefix(mime, "text/html")
}

func stripHTML(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()
	return doc.Text(), nil
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncate(body string, maxBytes int) string {
	if len(body) <= maxBytes {
		return body
	}

	// Back up only past a rune split by the cut itself. Invalid bytes that
	// were already in the body stay where they are.
	cut := maxBytes
	for steps := 0; steps < utf8.UTFMax && cut > 0 && !utf8.RuneStart(body[cut]); steps++ {
		cut--
	}
	return body[:cut]
}

func captionImages(images []domain.Image) string {
	names := make([]string, 0, len(images))
	for _, img := range images {
		names = append(names, img.Source)
	}
	return "Screenshots captured for accounts: " + strings.Join(names, ", ")
}
