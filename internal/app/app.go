package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"MarketDigest/internal/collector"
	"MarketDigest/internal/config"
	"MarketDigest/internal/infrastructure/artifact"
	"MarketDigest/internal/infrastructure/browser"
	"MarketDigest/internal/infrastructure/email"
	"MarketDigest/internal/infrastructure/feeds"
	"MarketDigest/internal/infrastructure/llm"
	"MarketDigest/internal/infrastructure/markets"
	"MarketDigest/internal/infrastructure/scheduler"
	"MarketDigest/internal/logging"
	"MarketDigest/internal/ports"
	"MarketDigest/internal/transform"
	"MarketDigest/internal/usecase"
)

const stopTimeout = 30 * time.Second

// Application wires configs to workflow pipelines and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipelines map[string]*usecase.Pipeline
	scheduled []usecase.ScheduledPipeline
}

// New builds a runnable application instance from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := collector.NewRegistry()
	registry.Register(feeds.NewGoogleNewsCollector(nil, baseLogger.With("component", "collector.google-news")))
	registry.Register(markets.NewPageCollector(nil, baseLogger.With("component", "collector.page")))
	registry.Register(markets.NewDigestAPICollector(nil, baseLogger.With("component", "collector.digest-api")))
	registry.Register(browser.NewScreenshotCollector(baseLogger.With("component", "collector.screenshots")))

	var artifacts ports.ArtifactStore
	if cfg.Artifacts.Dir != "" {
		store, err := artifact.NewFileStore(cfg.Artifacts.Dir)
		if err != nil {
			return nil, fmt.Errorf("artifact store: %w", err)
		}
		artifacts = store
	}

	mailer := email.NewMailer(cfg.Email, baseLogger.With("component", "mailer"))

	app := &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipelines: map[string]*usecase.Pipeline{},
	}

	for _, wf := range cfg.Workflows {
		prompt := wf.Prompt
		if prompt == "" && wf.Collector == "screenshots" {
			prompt = config.DefaultScreenshotPrompt
		}

		pipeline := usecase.NewPipeline(wf.Name, wf.Subject, cfg.Email.To, usecase.PipelineDeps{
			Source:      collector.NewWorkflowSource(registry, wf, baseLogger.With("component", "source")),
			Transformer: transform.NewNormalizer(0),
			Summarizer:  llm.NewGeminiClient(cfg.Gemini, prompt, baseLogger.With("component", "gemini")),
			Notifier:    mailer,
			Artifacts:   artifacts,
			Logger:      baseLogger.With("component", "pipeline"),
		})

		app.pipelines[wf.Name] = pipeline
		app.scheduled = append(app.scheduled, usecase.ScheduledPipeline{
			Spec:     wf.Schedule,
			Pipeline: pipeline,
		})
	}

	return app, nil
}

// RunOnce executes the named workflows (all when none are named) once,
// sequentially, and returns the first error with the rest still attempted.
func (a *Application) RunOnce(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		for _, wf := range a.cfg.Workflows {
			names = append(names, wf.Name)
		}
	}

	var firstErr error
	for _, name := range names {
		pipeline, ok := a.pipelines[name]
		if !ok {
			err := fmt.Errorf("unknown workflow %q", name)
			a.logger.Error("dispatch failed", "workflow", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		trigger := time.Now().In(a.cfg.Scheduler.Location())
		if err := pipeline.Run(ctx, trigger); err != nil {
			a.logger.Error("run failed", "workflow", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// Serve registers all workflow schedules and blocks until the context ends.
func (a *Application) Serve(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.scheduled, a.logger.With("component", "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "workflows", len(a.scheduled), "timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return sched.Stop(stopCtx)
}
