// Package defstore provides the raw chemical-component definition store.
package defstore

import (
	"log/slog"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
	"github.com/Aman-CERP/ccindex/internal/marshal"
)

// Provider supplies raw definitions to the index builders.
type Provider interface {
	// TestCache reports whether the store holds at least minCount definitions
	// (or any, when minCount <= 0). logSizes only adds a footprint log line.
	TestCache(minCount int, logSizes bool) bool

	// Definitions returns the id → definition mapping in insertion order.
	// Callers must treat it as read-only.
	Definitions() *chemcomp.DefinitionSet
}

// MemoryStore is an in-memory Provider.
type MemoryStore struct {
	defs *chemcomp.DefinitionSet
}

// NewMemoryStore creates a store holding defs keyed by Definition.ID.
func NewMemoryStore(defs ...*chemcomp.Definition) *MemoryStore {
	return &MemoryStore{defs: chemcomp.NewDefinitionSetFrom(defs...)}
}

// NewMemoryStoreFromSet wraps an existing set.
func NewMemoryStoreFromSet(set *chemcomp.DefinitionSet) *MemoryStore {
	if set == nil {
		set = chemcomp.NewDefinitionSet()
	}
	return &MemoryStore{defs: set}
}

// TestCache implements Provider.
func (m *MemoryStore) TestCache(minCount int, logSizes bool) bool {
	return checkCount("memory", m.defs, minCount, logSizes)
}

// Definitions implements Provider.
func (m *MemoryStore) Definitions() *chemcomp.DefinitionSet {
	return m.defs
}

func checkCount(name string, defs *chemcomp.DefinitionSet, minCount int, logSizes bool) bool {
	n := defs.Len()
	if logSizes {
		var size int
		if n > 0 {
			all := make([]*chemcomp.Definition, 0, n)
			for _, id := range defs.IDs() {
				d, _ := defs.Get(id)
				all = append(all, d)
			}
			size, _ = marshal.EncodedSize(all)
		}
		slog.Info("definition store size",
			slog.String("store", name),
			slog.Int("count", n),
			slog.Int("encoded_bytes", size))
	}
	if n == 0 {
		return false
	}
	return minCount <= 0 || n >= minCount
}
