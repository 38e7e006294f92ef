package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"MarketDigest/internal/domain"
	"MarketDigest/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source      ports.ItemSource
	Transformer ports.Transformer
	Summarizer  ports.Summarizer
	Notifier    ports.Notifier
	Artifacts   ports.ArtifactStore
	Logger      *slog.Logger
}

// Pipeline executes one workflow as a strict collect -> transform ->
// summarize -> deliver sequence. A failed stage aborts the run; later stages
// never execute. No state survives between runs.
type Pipeline struct {
	workflow    string
	subject     string
	recipient   string
	source      ports.ItemSource
	transformer ports.Transformer
	summarizer  ports.Summarizer
	notifier    ports.Notifier
	artifacts   ports.ArtifactStore
	logger      *slog.Logger
}

// NewPipeline constructs the orchestration component for one workflow.
func NewPipeline(workflow, subject, recipient string, deps PipelineDeps) *Pipeline {
	return &Pipeline{
		workflow:    workflow,
		subject:     subject,
		recipient:   recipient,
		source:      deps.Source,
		transformer: deps.Transformer,
		summarizer:  deps.Summarizer,
		notifier:    deps.Notifier,
		artifacts:   deps.Artifacts,
		logger:      deps.Logger,
	}
}

// Run performs one end-to-end execution triggered at the given time.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	runID := uuid.NewString()
	log := p.logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("workflow", p.workflow, "run_id", runID)

	log.Info("run started")

	items, err := p.source.Fetch(ctx, now)
	if err != nil {
		return fmt.Errorf("workflow %s: %w", p.workflow, err)
	}
	if len(items) == 0 {
		return fmt.Errorf("workflow %s: %w", p.workflow,
			&domain.FetchError{Source: p.workflow, Err: fmt.Errorf("no items collected")})
	}
	log.Info("collected", "items", len(items))

	p.saveScreenshots(runID, items, log)

	text, err := p.transformer.Transform(items)
	if err != nil {
		return fmt.Errorf("workflow %s: %w", p.workflow, err)
	}
	log.Debug("transformed", "sources", len(text.Sources), "bytes", len(text.Body), "images", len(text.Images))

	summary, err := p.summarizer.Summarize(ctx, text)
	if err != nil {
		return fmt.Errorf("workflow %s: %w", p.workflow, err)
	}

	digest := domain.Digest{
		RunID:       runID,
		Subject:     buildSubject(p.subject, now),
		Body:        formatBody(summary),
		Recipient:   p.recipient,
		GeneratedAt: now,
	}

	if p.artifacts != nil {
		if path, aErr := p.artifacts.SaveText(runID, "digest.txt", digest.Body); aErr != nil {
			log.Warn("digest artifact not saved", "error", aErr)
		} else {
			log.Debug("digest artifact saved", "path", path)
		}
	}

	if err := p.notifier.Deliver(ctx, digest); err != nil {
		return fmt.Errorf("workflow %s: %w", p.workflow, err)
	}

	log.Info("run finished", "subject", digest.Subject)
	return nil
}

// saveScreenshots stores binary items when an artifact store is configured.
// Artifact failures never abort the run.
func (p *Pipeline) saveScreenshots(runID string, items []domain.RawItem, log *slog.Logger) {
	if p.artifacts == nil {
		return
	}
	for _, item := range items {
		if !item.IsBinary() {
			continue
		}
		name := item.Source + "_screenshot.png"
		if path, err := p.artifacts.SaveBinary(runID, name, item.Binary); err != nil {
			log.Warn("screenshot artifact not saved", "source", item.Source, "error", err)
		} else {
			log.Debug("screenshot artifact saved", "path", path)
		}
	}
}

func buildSubject(subject string, now time.Time) string {
	if subject == "" {
		subject = "Market Digest"
	}
	return subject + " - " + now.Format("2006-01-02")
}

// formatBody reshapes the model output for a plain-text email: markdown
// headers become "=== Section ===" banners and emphasis markers are dropped.
func formatBody(summary string) string {
	summary = strings.TrimSpace(summary)
	if !strings.Contains(summary, "## ") {
		return summary
	}

	var sb strings.Builder
	for _, section := range strings.Split(summary, "## ") {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		lines := strings.SplitN(section, "\n", 2)
		title := strings.TrimSpace(lines[0])
		body := ""
		if len(lines) > 1 {
			body = strings.TrimSpace(lines[1])
		}

		body = strings.ReplaceAll(body, "**", "")
		body = strings.ReplaceAll(body, "* ", "- ")

		sb.WriteString("=== " + title + " ===\n\n")
		if body != "" {
			sb.WriteString(body + "\n\n")
		}
	}

	return strings.TrimSpace(sb.String())
}
