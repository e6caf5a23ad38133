package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Aman-CERP/ccindex/internal/ui"
)

// Target selects which indexes a Runner builds.
type Target int

const (
	// TargetAll builds the descriptor and the search index.
	TargetAll Target = iota
	// TargetDescriptor builds only the descriptor index.
	TargetDescriptor
	// TargetSearch builds only the search index.
	TargetSearch
)

// ParseTarget maps "all", "descriptor", or "search" to a Target.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "", "all":
		return TargetAll, nil
	case "descriptor":
		return TargetDescriptor, nil
	case "search":
		return TargetSearch, nil
	default:
		return 0, fmt.Errorf("unknown index target %q (want all, descriptor, or search)", s)
	}
}

// RunnerResult contains the outcome of a build run.
type RunnerResult struct {
	Descriptor *DescriptorIndex
	Search     *SearchIndex

	// Sufficient is false when a requested index ended up empty.
	Sufficient bool
	// Interrupted is true when a build stopped early and was not exported.
	Interrupted bool

	Duration time.Duration
}

// Runner builds indexes with progress reporting.
type Runner struct {
	opts Options
	deps Deps
}

// NewRunner creates a Runner. The renderer defaults to a no-op.
func NewRunner(opts Options, deps Deps) (*Runner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Runner{opts: opts, deps: deps}, nil
}

// Run builds the selected indexes and reports completion to the renderer.
func (r *Runner) Run(ctx context.Context, target Target) (*RunnerResult, error) {
	start := time.Now()
	renderer := r.deps.renderer()
	result := &RunnerResult{Sufficient: true}

	var stats ui.CompletionStats
	var err error

	if target == TargetAll || target == TargetDescriptor {
		result.Descriptor, err = NewDescriptorIndex(ctx, r.opts, r.deps)
		if err != nil {
			return nil, err
		}
		rep := result.Descriptor.Report()
		stats.Components = result.Descriptor.Len()
		addReport(&stats, rep)
		stats.Stages.Extract = rep.Build
		result.Interrupted = result.Interrupted || rep.Interrupted
		if !result.Descriptor.TestCache(0, false) {
			result.Sufficient = false
		}
	}

	if target == TargetAll || target == TargetSearch {
		result.Search, err = NewSearchIndex(ctx, r.opts, r.deps)
		if err != nil {
			return nil, err
		}
		rep := result.Search.Report()
		stats.Forms = result.Search.Len()
		addReport(&stats, rep)
		stats.Stages.Perceive = rep.Build
		result.Interrupted = result.Interrupted || rep.Interrupted
		if !result.Search.TestCache(0, false) {
			result.Sufficient = false
		}
	}

	result.Duration = time.Since(start)
	stats.Duration = result.Duration
	renderer.Complete(stats)

	slog.Info("build run finished",
		slog.Int("components", stats.Components),
		slog.Int("forms", stats.Forms),
		slog.Int("failed", stats.Failed),
		slog.Bool("sufficient", result.Sufficient),
		slog.Bool("interrupted", result.Interrupted),
		slog.Duration("duration", result.Duration))

	return result, nil
}

func addReport(stats *ui.CompletionStats, rep *BuildReport) {
	stats.Failed += len(rep.Failed) + len(rep.Unattempted)
	stats.Errors += len(rep.Failed)
	stats.Warnings += rep.Warnings
	stats.Stages.Load += rep.Load
	stats.Stages.Export += rep.Export
}
