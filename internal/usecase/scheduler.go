package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"MarketDigest/internal/ports"
)

// ScheduledPipeline pairs a pipeline with its cron expression.
type ScheduledPipeline struct {
	Spec     string
	Pipeline *Pipeline
}

// Scheduler wires the cron driver with the workflow pipelines. Workflow
// families run on independent schedules and share no state, so registration
// order carries no meaning.
type Scheduler struct {
	driver    ports.Scheduler
	pipelines []ScheduledPipeline
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipelines []ScheduledPipeline, log *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipelines: pipelines, logger: log}
}

// Start registers every pipeline with the provided scheduler and starts it.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	for _, sp := range s.pipelines {
		pipeline := sp.Pipeline
		if pipeline == nil || sp.Spec == "" {
			continue
		}

		job := func(trigger time.Time) {
			if err := pipeline.Run(ctx, trigger); err != nil && s.logger != nil {
				s.logger.Error("scheduled run failed", "error", err)
			}
		}

		if err := s.driver.Add(sp.Spec, job); err != nil {
			return fmt.Errorf("register schedule %q: %w", sp.Spec, err)
		}
	}

	return s.driver.Start(ctx)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
