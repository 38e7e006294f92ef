package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestCronSchedulerRejectsBadSpec(t *testing.T) {
	t.Parallel()

	c := NewCronScheduler(time.UTC)
	if err := c.Add("not a cron spec", func(time.Time) {}); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestCronSchedulerIgnoresNilJob(t *testing.T) {
	t.Parallel()

	c := NewCronScheduler(nil)
	if err := c.Add("* * * * *", nil); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
}

func TestCronSchedulerRunsJobs(t *testing.T) {
	t.Parallel()

	c := NewCronScheduler(time.UTC)

	var runs atomic.Int32
	// @every keeps the test fast without waiting for a minute boundary.
	if err := c.Add("@every 10ms", func(time.Time) { runs.Add(1) }); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := c.Stop(stopCtx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	if runs.Load() == 0 {
		t.Fatalf("scheduled job never ran")
	}
}
