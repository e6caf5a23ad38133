package index

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
	"github.com/Aman-CERP/ccindex/internal/marshal"
	"github.com/Aman-CERP/ccindex/internal/ui"
)

// BuildReport describes how an index was obtained.
type BuildReport struct {
	FromCache   bool
	Built       bool
	Exported    bool
	Interrupted bool // cancelled or left ids unattempted; never exported
	Failed      []string // ids whose extraction or perception failed
	Unattempted []string // ids never processed because their chunk aborted
	Warnings    int
	Load        time.Duration
	Build       time.Duration
	Export      time.Duration
}

// reporter collects failures from concurrent workers.
type reporter struct {
	mu       sync.Mutex
	report   *BuildReport
	renderer ui.Renderer
}

func (r *reporter) fail(id string, err *ccerrors.CCError) {
	slog.Error("component failed", ccerrors.LogAttrs(err)...)
	r.renderer.AddError(ui.ErrorEvent{Item: id, Err: err})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Failed = append(r.report.Failed, id)
}

func (r *reporter) warn(id string, err *ccerrors.CCError) {
	slog.Warn("component warning", ccerrors.LogAttrs(err)...)
	r.renderer.AddError(ui.ErrorEvent{Item: id, Err: err, IsWarn: true})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Warnings++
}

func (r *reporter) unattempted(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Unattempted = append(r.report.Unattempted, ids...)
}

// buildFunc produces an index from the full definition set.
type buildFunc[V any] func(ctx context.Context, defs *chemcomp.DefinitionSet, rep *reporter) map[string]V

// reload returns the index stored at path, or builds and exports it.
// No failure here is fatal: an unreadable cache or an insufficient source
// yields an empty index, and a failed export keeps the built result. An
// interrupted build is returned but never written.
func reload[V any](ctx context.Context, name, path string, opts Options, deps Deps, build buildFunc[V]) (map[string]V, *BuildReport) {
	renderer := deps.renderer()
	report := &BuildReport{}
	start := time.Now()

	if opts.UseCache && marshal.Exists(path) {
		renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageLoading, Message: "reading " + name + " index"})

		var idx map[string]V
		if err := marshal.Import(path, &idx); err != nil {
			ce := ccerrors.New(ccerrors.ErrCodeCorruptIndex, "failed to import cached "+name+" index", err).
				WithDetail("path", path).
				WithSuggestion("Rebuild with --no-cache")
			slog.Error("index import failed", ccerrors.LogAttrs(ce)...)
			renderer.AddError(ui.ErrorEvent{Item: path, Err: ce})
			return map[string]V{}, report
		}
		report.FromCache = true
		idx = truncateSorted(idx, opts.MolLimit)
		report.Load = time.Since(start)

		slog.Info("index loaded from cache",
			slog.String("index", name),
			slog.String("path", path),
			slog.Int("entries", len(idx)))
		return idx, report
	}

	renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageLoading, Message: "opening definition store"})
	if deps.Source == nil {
		logInsufficient(name, path, nil)
		return map[string]V{}, report
	}
	provider, err := deps.Source(ctx, opts.MolLimit)
	if err != nil {
		logInsufficient(name, path, err)
		return map[string]V{}, report
	}
	if !provider.TestCache(opts.MolLimit, true) {
		logInsufficient(name, path, nil)
		return map[string]V{}, report
	}
	report.Load = time.Since(start)

	buildStart := time.Now()
	rep := &reporter{report: report, renderer: renderer}
	idx := build(ctx, provider.Definitions(), rep)
	report.Built = true
	report.Build = time.Since(buildStart)

	if ctx.Err() != nil || len(report.Unattempted) > 0 {
		report.Interrupted = true
		ce := ccerrors.InterruptedError(name, len(report.Unattempted), ctx.Err()).
			WithDetail("path", path)
		slog.Error("index build interrupted", ccerrors.LogAttrs(ce)...)
		renderer.AddError(ui.ErrorEvent{Item: path, Err: ce})
		return idx, report
	}

	exportStart := time.Now()
	renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageExporting, Message: "writing " + name + " index"})
	if err := marshal.Export(path, idx); err != nil {
		ce := ccerrors.New(ccerrors.ErrCodeExportFailed, "failed to export "+name+" index", err).
			WithDetail("path", path)
		slog.Error("index export failed", ccerrors.LogAttrs(ce)...)
		renderer.AddError(ui.ErrorEvent{Item: path, Err: ce})
	} else {
		report.Exported = true
	}
	report.Export = time.Since(exportStart)

	slog.Info("index built",
		slog.String("index", name),
		slog.String("path", path),
		slog.Int("entries", len(idx)),
		slog.Int("failed", len(report.Failed)),
		slog.Int("unattempted", len(report.Unattempted)),
		slog.Duration("duration", report.Build))

	return idx, report
}

func logInsufficient(name, path string, cause error) {
	ce := ccerrors.New(ccerrors.ErrCodeSourceInsufficient, "definition store insufficient for "+name+" index", cause).
		WithDetail("path", path)
	slog.Warn("index source insufficient", ccerrors.LogAttrs(ce)...)
}

// truncateSorted keeps the limit smallest keys. limit <= 0 keeps everything.
func truncateSorted[V any](idx map[string]V, limit int) map[string]V {
	if idx == nil {
		return map[string]V{}
	}
	if limit <= 0 || len(idx) <= limit {
		return idx
	}

	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make(map[string]V, limit)
	for _, k := range keys[:limit] {
		out[k] = idx[k]
	}
	return out
}

// testCount implements the shared liveness check.
func testCount(name string, idx any, n, minCount int, logSizes bool) bool {
	if logSizes {
		size, err := marshal.EncodedSize(idx)
		if err != nil {
			slog.Warn("index size measurement failed", slog.String("index", name), slog.String("error", err.Error()))
		}
		slog.Info("index size",
			slog.String("index", name),
			slog.Int("entries", n),
			slog.Int("encoded_bytes", size))
	}
	if n == 0 {
		return false
	}
	return minCount <= 0 || n >= minCount
}
