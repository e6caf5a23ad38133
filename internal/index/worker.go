package index

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
	"github.com/Aman-CERP/ccindex/internal/perceive"
)

// Diagnostic records why one id produced no records.
type Diagnostic struct {
	ID      string
	Code    string
	Message string
}

// ChunkResult is what a worker returns for one chunk of ids.
type ChunkResult struct {
	Chunk       int
	SuccessIDs  []string
	Records     []*chemcomp.RelatedForm
	Diagnostics []Diagnostic
	// Unattempted lists ids skipped after a panic or cancellation.
	Unattempted []string
}

// SearchWorker perceives related forms for chunks of ids. It reads the
// shared definition set and never mutates it.
type SearchWorker struct {
	ID     int
	defs   *chemcomp.DefinitionSet
	engine perceive.Engine
}

// NewSearchWorker creates a worker over defs with a configured engine.
func NewSearchWorker(id int, defs *chemcomp.DefinitionSet, engine perceive.Engine) *SearchWorker {
	return &SearchWorker{ID: id, defs: defs, engine: engine}
}

// BuildRelatedList perceives every id in ids. Per-id failures are recorded
// and skipped. A panic inside the chunk is recovered: records gathered so
// far are kept, the id being processed is a failure, and the rest are
// reported as unattempted.
func (w *SearchWorker) BuildRelatedList(ctx context.Context, chunk int, ids []string) (res ChunkResult) {
	res.Chunk = chunk
	pos := 0

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			slog.Error("search worker chunk aborted",
				slog.Int("worker", w.ID),
				slog.Int("chunk", chunk),
				slog.String("id", ids[pos]),
				slog.String("panic", msg))
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				ID:      ids[pos],
				Code:    ccerrors.ErrCodeChunkFailed,
				Message: msg,
			})
			res.Unattempted = append(res.Unattempted, ids[pos+1:]...)
		}
	}()

	for pos = 0; pos < len(ids); pos++ {
		id := ids[pos]
		if ctx.Err() != nil {
			res.Unattempted = append(res.Unattempted, ids[pos:]...)
			return res
		}

		def, ok := w.defs.Get(id)
		if !ok {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				ID:      id,
				Code:    ccerrors.ErrCodeNotFound,
				Message: "id not in definition store",
			})
			continue
		}

		out, err := w.engine.Perceive(def)
		if err == nil && out == nil {
			err = errNoResult
		}
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				ID:      id,
				Code:    ccerrors.ErrCodePerceptionFailed,
				Message: err.Error(),
			})
			continue
		}
		if out.ID != id {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				ID:      id,
				Code:    ccerrors.ErrCodeIdentityMismatch,
				Message: fmt.Sprintf("definition reports id %q", out.ID),
			})
			continue
		}
		if len(out.Forms) == 0 {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				ID:      id,
				Code:    ccerrors.ErrCodePerceptionFailed,
				Message: "no related forms",
			})
			continue
		}

		res.Records = append(res.Records, sortedForms(out.Forms)...)
		res.SuccessIDs = append(res.SuccessIDs, id)
	}

	return res
}

func sortedForms(forms map[string]*chemcomp.RelatedForm) []*chemcomp.RelatedForm {
	names := make([]string, 0, len(forms))
	for name := range forms {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]*chemcomp.RelatedForm, 0, len(names))
	for _, name := range names {
		if f := forms[name]; f != nil {
			out = append(out, f)
		}
	}
	return out
}

// chunkIDs splits ids into consecutive chunks of at most size.
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = DefaultMaxChunkSize
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
