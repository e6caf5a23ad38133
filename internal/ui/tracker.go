package ui

import (
	"sync"
	"time"
)

// ProgressTracker holds progress state for the current stage.
// It is safe for concurrent use.
type ProgressTracker struct {
	mu         sync.RWMutex
	stage      Stage
	current    int
	total      int
	item       string
	stageStart time.Time
	errors     int
	warnings   int

	// exponential smoothing of items/sec
	lastCurrent int
	lastSample  time.Time
	rate        float64
}

// ProgressStats is a snapshot of current progress.
type ProgressStats struct {
	Stage      Stage
	Current    int
	Total      int
	Progress   float64
	Rate       float64 // items/sec
	ETA        time.Duration
	Item       string
	ErrorCount int
	WarnCount  int
}

// NewProgressTracker creates a tracker positioned at StageLoading.
func NewProgressTracker() *ProgressTracker {
	now := time.Now()
	return &ProgressTracker{
		stage:      StageLoading,
		stageStart: now,
		lastSample: now,
	}
}

// SetStage transitions to a new stage and resets per-stage counters.
func (p *ProgressTracker) SetStage(stage Stage, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.stage = stage
	p.total = total
	p.current = 0
	p.item = ""
	p.stageStart = now
	p.lastCurrent = 0
	p.lastSample = now
	p.rate = 0
}

// Update records progress within the current stage.
func (p *ProgressTracker) Update(current int, item string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	if item != "" {
		p.item = item
	}

	now := time.Now()
	elapsed := now.Sub(p.lastSample)
	if elapsed < 250*time.Millisecond {
		return
	}
	if delta := current - p.lastCurrent; delta > 0 {
		speed := float64(delta) / elapsed.Seconds()
		if p.rate == 0 {
			p.rate = speed
		} else {
			p.rate = 0.3*speed + 0.7*p.rate
		}
	}
	p.lastCurrent = current
	p.lastSample = now
}

// AddError counts an error or warning.
func (p *ProgressTracker) AddError(event ErrorEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.IsWarn {
		p.warnings++
	} else {
		p.errors++
	}
}

// Stats returns a snapshot.
func (p *ProgressTracker) Stats() ProgressStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := ProgressStats{
		Stage:      p.stage,
		Current:    p.current,
		Total:      p.total,
		Rate:       p.rate,
		Item:       p.item,
		ErrorCount: p.errors,
		WarnCount:  p.warnings,
	}
	if p.total > 0 {
		s.Progress = float64(p.current) / float64(p.total)
		if s.Progress > 1 {
			s.Progress = 1
		}
		if p.rate > 0 && p.current < p.total {
			s.ETA = time.Duration(float64(p.total-p.current) / p.rate * float64(time.Second))
		}
	}
	return s
}

// StageElapsed returns time spent in the current stage.
func (p *ProgressTracker) StageElapsed() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return time.Since(p.stageStart)
}
