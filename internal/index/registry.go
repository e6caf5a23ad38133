package index

import (
	"context"
	"path/filepath"
	"sync"
)

// Registry holds at most one provider per resolved index file path. It is
// owned by the caller; there is no process-wide instance. Interrupted builds
// are returned to the caller but not kept.
type Registry struct {
	mu          sync.Mutex
	descriptors map[string]*DescriptorIndex
	searches    map[string]*SearchIndex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[string]*DescriptorIndex),
		searches:    make(map[string]*SearchIndex),
	}
}

// Descriptor returns the descriptor index for opts, loading or building it
// on first use. A provider built with UseCache false replaces any cached one.
func (r *Registry) Descriptor(ctx context.Context, opts Options, deps Deps) (*DescriptorIndex, error) {
	key := registryKey(opts.DescriptorPath())

	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.descriptors[key]; ok && opts.UseCache {
		return d, nil
	}
	d, err := NewDescriptorIndex(ctx, opts, deps)
	if err != nil {
		return nil, err
	}
	if !d.Report().Interrupted {
		r.descriptors[key] = d
	}
	return d, nil
}

// Search returns the search index for opts, loading or building it on
// first use.
func (r *Registry) Search(ctx context.Context, opts Options, deps Deps) (*SearchIndex, error) {
	key := registryKey(opts.SearchPath())

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.searches[key]; ok && opts.UseCache {
		return s, nil
	}
	s, err := NewSearchIndex(ctx, opts, deps)
	if err != nil {
		return nil, err
	}
	if !s.Report().Interrupted {
		r.searches[key] = s
	}
	return s, nil
}

// Invalidate drops both providers for opts.
func (r *Registry) Invalidate(opts Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.descriptors, registryKey(opts.DescriptorPath()))
	delete(r.searches, registryKey(opts.SearchPath()))
}

// Len returns the number of cached providers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.descriptors) + len(r.searches)
}

func registryKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
