package index

import (
	"context"
	"sync"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
	"github.com/Aman-CERP/ccindex/internal/formula"
	"github.com/Aman-CERP/ccindex/internal/ui"
)

// progressEvery throttles renderer updates in per-id loops.
const progressEvery = 100

// DescriptorIndex maps component id to its descriptor record.
// It is read-only after construction.
type DescriptorIndex struct {
	path      string
	index     map[string]*chemcomp.DescriptorRecord
	report    *BuildReport
	cacheSize int

	matcherOnce sync.Once
	matcher     *formula.Matcher
}

// NewDescriptorIndex loads the descriptor index from cache or builds it.
// Only invalid options produce an error.
func NewDescriptorIndex(ctx context.Context, opts Options, deps Deps) (*DescriptorIndex, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	path := opts.DescriptorPath()

	idx, report := reload(ctx, "descriptor", path, opts, deps,
		func(ctx context.Context, defs *chemcomp.DefinitionSet, rep *reporter) map[string]*chemcomp.DescriptorRecord {
			return buildDescriptorIndex(ctx, defs, rep)
		})

	return &DescriptorIndex{
		path:      path,
		index:     idx,
		report:    report,
		cacheSize: opts.QueryCacheSize,
	}, nil
}

// NewDescriptorIndexFrom wraps an in-memory mapping.
func NewDescriptorIndexFrom(idx map[string]*chemcomp.DescriptorRecord, cacheSize int) *DescriptorIndex {
	if idx == nil {
		idx = map[string]*chemcomp.DescriptorRecord{}
	}
	return &DescriptorIndex{index: idx, report: &BuildReport{}, cacheSize: cacheSize}
}

// BuildDescriptorIndex extracts one record per definition. Failing
// definitions are logged and left out.
func BuildDescriptorIndex(ctx context.Context, defs *chemcomp.DefinitionSet, renderer ui.Renderer) (map[string]*chemcomp.DescriptorRecord, *BuildReport) {
	if renderer == nil {
		renderer = ui.NopRenderer{}
	}
	report := &BuildReport{}
	idx := buildDescriptorIndex(ctx, defs, &reporter{report: report, renderer: renderer})
	report.Built = true
	return idx, report
}

func buildDescriptorIndex(ctx context.Context, defs *chemcomp.DefinitionSet, rep *reporter) map[string]*chemcomp.DescriptorRecord {
	ids := defs.IDs()
	out := make(map[string]*chemcomp.DescriptorRecord, len(ids))

	for i, key := range ids {
		if err := ctx.Err(); err != nil {
			rep.unattempted(ids[i:])
			break
		}
		if i%progressEvery == 0 {
			rep.renderer.UpdateProgress(ui.ProgressEvent{
				Stage:   ui.StageExtracting,
				Current: i,
				Total:   len(ids),
				Item:    key,
			})
		}

		def, _ := defs.Get(key)
		id, rec, err := chemcomp.Extract(def)
		if err != nil {
			rep.fail(key, ccerrors.ComponentError(ccerrors.ErrCodeExtractionFailed, key, err))
			continue
		}
		out[id] = rec
	}

	rep.renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageExtracting, Current: len(ids), Total: len(ids)})
	return out
}

// Index returns the underlying mapping. Callers must not modify it.
func (d *DescriptorIndex) Index() map[string]*chemcomp.DescriptorRecord {
	return d.index
}

// Mol returns the record for id.
func (d *DescriptorIndex) Mol(id string) (*chemcomp.DescriptorRecord, bool) {
	rec, ok := d.index[id]
	return rec, ok
}

// Len returns the number of entries.
func (d *DescriptorIndex) Len() int {
	return len(d.index)
}

// Path returns the on-disk location.
func (d *DescriptorIndex) Path() string {
	return d.path
}

// Report describes how the index was obtained.
func (d *DescriptorIndex) Report() *BuildReport {
	return d.report
}

// TestCache reports whether the index is non-empty and holds at least
// minCount entries. logSizes only logs the encoded footprint.
func (d *DescriptorIndex) TestCache(minCount int, logSizes bool) bool {
	return testCount("descriptor", d.index, len(d.index), minCount, logSizes)
}

// MatchMolecularFormula returns ids whose element counts fall in every range
// of q. The result is sorted; an empty query matches nothing.
func (d *DescriptorIndex) MatchMolecularFormula(q chemcomp.FormulaQuery) []string {
	d.matcherOnce.Do(func() {
		d.matcher = formula.NewMatcher(d.index, d.cacheSize)
	})
	return d.matcher.Match(q)
}
