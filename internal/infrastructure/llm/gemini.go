package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"MarketDigest/internal/config"
	"MarketDigest/internal/domain"
	"MarketDigest/internal/ports"
)

// GeminiClient implements ports.Summarizer against the Gemini
// generateContent REST API. Transient failures (429, 5xx, network) are
// retried with a fixed delay; the pipeline itself never retries.
type GeminiClient struct {
	endpoint   string
	model      string
	apiKey     string
	prompt     string
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.Summarizer = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration with the workflow prompt.
func NewGeminiClient(cfg config.GeminiConfig, prompt string, log *slog.Logger) *GeminiClient {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}

	return &GeminiClient{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		prompt:     prompt,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     log,
	}
}

type generatePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *inlineDataPart `json:"inline_data,omitempty"`
}

type inlineDataPart struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Summarize sends the processed text (and image attachments, if any) and
// returns the cleaned digest body. Errors are domain.ServiceError.
func (c *GeminiClient) Summarize(ctx context.Context, text domain.ProcessedText) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", &domain.ServiceError{Err: fmt.Errorf("gemini client misconfigured")}
	}

	parts := []generatePart{{Text: c.prompt}}
	if text.Body != "" {
		parts = append(parts, generatePart{Text: text.Body})
	}
	for _, img := range text.Images {
		parts = append(parts, generatePart{InlineData: &inlineDataPart{
			MIMEType: img.MIME,
			Data:     base64.StdEncoding.EncodeToString(img.Data),
		}})
	}

	body, err := json.Marshal(generateRequest{Contents: []generateContent{{Parts: parts}}})
	if err != nil {
		return "", &domain.ServiceError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		summary, err := c.generate(ctx, body)
		if err == nil {
			return summary, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == c.maxRetries {
			break
		}

		c.warn("gemini attempt failed", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return "", &domain.ServiceError{Err: ctx.Err()}
		case <-time.After(c.retryDelay):
		}
	}

	return "", &domain.ServiceError{Err: lastErr}
}

func (c *GeminiClient) generate(ctx context.Context, body []byte) (string, error) {
	target := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &transientError{err: fmt.Errorf("generate content: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		statusErr := fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return "", &transientError{err: statusErr}
		}
		return "", statusErr
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	var sb strings.Builder
	for _, candidate := range parsed.Candidates {
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}

	summary := CleanResponse(sb.String())
	if summary == "" {
		return "", fmt.Errorf("gemini returned no text")
	}

	return summary, nil
}

// CleanResponse strips markdown code fences the model sometimes wraps its
// output in despite the prompt instructions.
func CleanResponse(text string) string {
	text = strings.ReplaceAll(text, "```json\n", "")
	text = strings.ReplaceAll(text, "```text\n", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

func (c *GeminiClient) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
