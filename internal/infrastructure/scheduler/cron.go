package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"MarketDigest/internal/ports"
)

// CronScheduler drives workflow runs from standard 5-field cron expressions.
type CronScheduler struct {
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler resolving expressions in the given zone.
func NewCronScheduler(loc *time.Location) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{cron: cron.New(cron.WithLocation(loc))}
}

// Add registers a job under a cron expression.
func (c *CronScheduler) Add(spec string, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	_, err := c.cron.AddFunc(spec, func() {
		job(time.Now())
	})
	return err
}

// Start begins running registered jobs in their own goroutine.
func (c *CronScheduler) Start(ctx context.Context) error {
	c.cron.Start()
	return nil
}

// Stop waits for in-flight jobs to finish or the context to expire.
func (c *CronScheduler) Stop(ctx context.Context) error {
	done := c.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
