package ports

import (
	"context"
	"time"

	"MarketDigest/internal/domain"
)

// ItemSource pulls raw items from the sources configured for one workflow.
type ItemSource interface {
	Fetch(ctx context.Context, now time.Time) ([]domain.RawItem, error)
}

// Transformer normalizes all raw items of one run into a single ProcessedText.
type Transformer interface {
	Transform(items []domain.RawItem) (domain.ProcessedText, error)
}

// Summarizer sends processed text (and any image attachments) to an external
// generative model and returns the digest body.
type Summarizer interface {
	Summarize(ctx context.Context, text domain.ProcessedText) (string, error)
}

// Notifier delivers the finished digest to an outbound channel (email).
type Notifier interface {
	Deliver(ctx context.Context, digest domain.Digest) error
}

// ArtifactStore persists optional per-run files (screenshots, digest bodies).
type ArtifactStore interface {
	SaveBinary(runID, name string, data []byte) (string, error)
	SaveText(runID, name, body string) (string, error)
}

// Scheduler registers jobs by cron expression and controls their lifecycle.
type Scheduler interface {
	Add(spec string, job func(time.Time)) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
