package index

import (
	"fmt"
	"sync"

	"github.com/Aman-CERP/ccindex/internal/ui"
)

// chunkProgress reports completed chunks from concurrent workers.
type chunkProgress struct {
	mu        sync.Mutex
	renderer  ui.Renderer
	total     int
	completed int
}

func newChunkProgress(r ui.Renderer, total int) *chunkProgress {
	p := &chunkProgress{renderer: r, total: total}
	r.UpdateProgress(ui.ProgressEvent{Stage: ui.StagePerceiving, Current: 0, Total: total})
	return p
}

func (p *chunkProgress) done(chunk int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	p.renderer.UpdateProgress(ui.ProgressEvent{
		Stage:   ui.StagePerceiving,
		Current: p.completed,
		Total:   p.total,
		Item:    fmt.Sprintf("chunk %d", chunk),
	})
}
