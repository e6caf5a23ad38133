package chemcomp

import (
	"slices"
)

// DefinitionSet is an id → definition mapping that remembers insertion order.
// It is not safe for concurrent mutation; builders share it read-only.
type DefinitionSet struct {
	ids  []string
	defs map[string]*Definition
}

// NewDefinitionSet creates an empty set.
func NewDefinitionSet() *DefinitionSet {
	return &DefinitionSet{defs: make(map[string]*Definition)}
}

// NewDefinitionSetFrom builds a set from defs keyed by Definition.ID, in order.
func NewDefinitionSetFrom(defs ...*Definition) *DefinitionSet {
	s := NewDefinitionSet()
	for _, d := range defs {
		s.Add(d.ID, d)
	}
	return s
}

// Add stores def under id. Re-adding an id replaces the value but keeps its
// original position.
func (s *DefinitionSet) Add(id string, def *Definition) {
	if _, ok := s.defs[id]; !ok {
		s.ids = append(s.ids, id)
	}
	s.defs[id] = def
}

// Get returns the definition for id.
func (s *DefinitionSet) Get(id string) (*Definition, bool) {
	if s == nil {
		return nil, false
	}
	d, ok := s.defs[id]
	return d, ok
}

// Len returns the number of definitions.
func (s *DefinitionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns ids in insertion order.
func (s *DefinitionSet) IDs() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.ids)
}

// SortedIDs returns ids in ascending order.
func (s *DefinitionSet) SortedIDs() []string {
	ids := s.IDs()
	slices.Sort(ids)
	return ids
}
