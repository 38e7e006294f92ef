package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"MarketDigest/internal/config"
	"MarketDigest/internal/domain"
	"MarketDigest/internal/ports"
)

// WorkflowSource implements ItemSource for one configured workflow by
// resolving its collector strategy from the registry.
type WorkflowSource struct {
	registry *Registry
	workflow config.WorkflowConfig
	logger   *slog.Logger
}

var _ ports.ItemSource = (*WorkflowSource)(nil)

// NewWorkflowSource binds a workflow definition to the strategy registry.
func NewWorkflowSource(reg *Registry, wf config.WorkflowConfig, log *slog.Logger) *WorkflowSource {
	return &WorkflowSource{
		registry: reg,
		workflow: wf,
		logger:   log,
	}
}

// Fetch executes the workflow's collector over its configured sources.
// Partial per-source failures are the collector's concern; here a missing
// strategy or a collector-level failure is fatal for the run.
func (s *WorkflowSource) Fetch(ctx context.Context, now time.Time) ([]domain.RawItem, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("collector registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.workflow.Collector)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", s.workflow.Name, err)
	}

	req := Request{
		Now:      now,
		Workflow: s.workflow.Name,
		Options:  s.workflow.Options,
		Sources:  toSources(s.workflow.Sources),
	}

	s.debug("collect", "workflow", s.workflow.Name, "collector", s.workflow.Collector, "sources", len(req.Sources))

	items, err := strategy.Collect(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("collect workflow %s: %w", s.workflow.Name, err)
	}

	s.debug("collect done", "workflow", s.workflow.Name, "items", len(items))
	return items, nil
}

func toSources(cfg []config.SourceConfig) []Source {
	sources := make([]Source, 0, len(cfg))
	for _, src := range cfg {
		sources = append(sources, Source{Name: src.Name, URL: src.URL})
	}
	return sources
}

func (s *WorkflowSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
