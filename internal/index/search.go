package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
	"github.com/Aman-CERP/ccindex/internal/perceive"
	"github.com/Aman-CERP/ccindex/internal/ui"
)

var errNoResult = errors.New("engine returned no result")

// SearchIndex maps related-form name to the form. It is read-only after
// construction; iteration order carries no meaning.
type SearchIndex struct {
	path   string
	index  map[string]*chemcomp.RelatedForm
	report *BuildReport
}

// SearchBuildOptions control the related-form build.
type SearchBuildOptions struct {
	NumProc          int
	MaxChunkSize     int
	MolLimit         int
	LimitPerceptions bool
}

// NewSearchIndex loads the search index from cache or builds it.
// Only invalid options produce an error.
func NewSearchIndex(ctx context.Context, opts Options, deps Deps) (*SearchIndex, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	path := opts.SearchPath()
	engine := deps.engine()

	bopts := SearchBuildOptions{
		NumProc:          opts.NumProc,
		MaxChunkSize:     opts.MaxChunkSize,
		MolLimit:         opts.MolLimit,
		LimitPerceptions: opts.LimitPerceptions,
	}

	idx, report := reload(ctx, "search", path, opts, deps,
		func(ctx context.Context, defs *chemcomp.DefinitionSet, rep *reporter) map[string]*chemcomp.RelatedForm {
			return buildSearchIndex(ctx, defs, engine, bopts, rep)
		})

	return &SearchIndex{path: path, index: idx, report: report}, nil
}

// NewSearchIndexFrom wraps an in-memory mapping.
func NewSearchIndexFrom(idx map[string]*chemcomp.RelatedForm) *SearchIndex {
	if idx == nil {
		idx = map[string]*chemcomp.RelatedForm{}
	}
	return &SearchIndex{index: idx, report: &BuildReport{}}
}

// BuildSearchIndex perceives related forms for defs and merges them by name.
// With NumProc <= 1 ids are visited in insertion order; otherwise sorted ids
// are split into chunks and fanned out to NumProc workers.
func BuildSearchIndex(ctx context.Context, defs *chemcomp.DefinitionSet, engine perceive.Engine, opts SearchBuildOptions, renderer ui.Renderer) (map[string]*chemcomp.RelatedForm, *BuildReport) {
	if renderer == nil {
		renderer = ui.NopRenderer{}
	}
	report := &BuildReport{}
	idx := buildSearchIndex(ctx, defs, engine, opts, &reporter{report: report, renderer: renderer})
	report.Built = true
	return idx, report
}

func buildSearchIndex(ctx context.Context, defs *chemcomp.DefinitionSet, engine perceive.Engine, opts SearchBuildOptions, rep *reporter) map[string]*chemcomp.RelatedForm {
	eng := engine.Configure(perceive.Options{LimitPerceptions: opts.LimitPerceptions, Quiet: true})
	if opts.NumProc <= 1 {
		return buildSearchSingle(ctx, defs, eng, opts.MolLimit, rep)
	}
	return buildSearchMulti(ctx, defs, eng, opts, rep)
}

// buildSearchSingle visits ids in insertion order. An id mismatch is logged
// but the produced forms are still merged; later names overwrite earlier.
func buildSearchSingle(ctx context.Context, defs *chemcomp.DefinitionSet, eng perceive.Engine, molLimit int, rep *reporter) map[string]*chemcomp.RelatedForm {
	ids := defs.IDs()
	if molLimit > 0 && len(ids) > molLimit {
		ids = ids[:molLimit]
	}
	out := make(map[string]*chemcomp.RelatedForm)

	for i, id := range ids {
		if ctx.Err() != nil {
			rep.unattempted(ids[i:])
			break
		}
		if i%progressEvery == 0 {
			rep.renderer.UpdateProgress(ui.ProgressEvent{
				Stage:   ui.StagePerceiving,
				Current: i,
				Total:   len(ids),
				Item:    id,
			})
		}

		def, _ := defs.Get(id)
		res, err := perceiveOne(eng, def)
		if err != nil {
			rep.fail(id, ccerrors.ComponentError(ccerrors.ErrCodePerceptionFailed, id, err))
			continue
		}
		if res.ID != id {
			rep.warn(id, ccerrors.ComponentError(ccerrors.ErrCodeIdentityMismatch, id,
				fmt.Errorf("definition reports id %q", res.ID)))
		}
		for _, form := range sortedForms(res.Forms) {
			out[form.Name] = form
		}
	}

	rep.renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StagePerceiving, Current: len(ids), Total: len(ids)})
	return out
}

// perceiveOne runs the engine on one definition. A panic or a nil result
// becomes an error for that id alone.
func perceiveOne(eng perceive.Engine, def *chemcomp.Definition) (res *perceive.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("engine panic: %v", r)
		}
	}()
	res, err = eng.Perceive(def)
	if err == nil && res == nil {
		err = errNoResult
	}
	return res, err
}

// buildSearchMulti assigns chunk i to worker i % workers up front, runs the
// workers concurrently, and merges only after all of them return.
func buildSearchMulti(ctx context.Context, defs *chemcomp.DefinitionSet, eng perceive.Engine, opts SearchBuildOptions, rep *reporter) map[string]*chemcomp.RelatedForm {
	ids := defs.SortedIDs()
	if opts.MolLimit > 0 && len(ids) > opts.MolLimit {
		ids = ids[:opts.MolLimit]
	}
	chunks := chunkIDs(ids, opts.MaxChunkSize)
	workers := min(opts.NumProc, len(chunks))

	slog.Info("search index build started",
		slog.Int("ids", len(ids)),
		slog.Int("chunks", len(chunks)),
		slog.Int("workers", workers))

	results := make([][]ChunkResult, workers)
	progress := newChunkProgress(rep.renderer, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		worker := NewSearchWorker(w, defs, eng)
		g.Go(func() error {
			for c := w; c < len(chunks); c += workers {
				res := worker.BuildRelatedList(gctx, c, chunks[c])
				results[w] = append(results[w], res)
				progress.done(c)
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]*chemcomp.RelatedForm)
	var success int
	for w := range results {
		for _, res := range results[w] {
			for _, d := range res.Diagnostics {
				rep.fail(d.ID, ccerrors.ComponentError(d.Code, d.ID, errors.New(d.Message)).
					WithDetail("worker", fmt.Sprint(w)).
					WithDetail("chunk", fmt.Sprint(res.Chunk)))
			}
			if len(res.Unattempted) > 0 {
				for _, id := range res.Unattempted {
					ce := ccerrors.ComponentError(ccerrors.ErrCodeChunkFailed, id, nil).
						WithDetail("chunk", fmt.Sprint(res.Chunk))
					slog.Error("component unattempted", ccerrors.LogAttrs(ce)...)
				}
				rep.unattempted(res.Unattempted)
			}
			success += len(res.SuccessIDs)
			for _, form := range res.Records {
				out[form.Name] = form
			}
		}
	}

	slog.Info("search index build finished",
		slog.Int("succeeded", success),
		slog.Int("records", len(out)))
	return out
}

// Index returns the underlying mapping. Callers must not modify it.
func (s *SearchIndex) Index() map[string]*chemcomp.RelatedForm {
	return s.index
}

// Entry returns the form named name.
func (s *SearchIndex) Entry(name string) (*chemcomp.RelatedForm, bool) {
	f, ok := s.index[name]
	return f, ok
}

// Len returns the number of entries.
func (s *SearchIndex) Len() int {
	return len(s.index)
}

// Path returns the on-disk location.
func (s *SearchIndex) Path() string {
	return s.path
}

// Report describes how the index was obtained.
func (s *SearchIndex) Report() *BuildReport {
	return s.report
}

// TestCache reports whether the index is non-empty and holds at least
// minCount entries.
func (s *SearchIndex) TestCache(minCount int, logSizes bool) bool {
	return testCount("search", s.index, len(s.index), minCount, logSizes)
}
