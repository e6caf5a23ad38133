package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
)

func testIndex() map[string]*chemcomp.DescriptorRecord {
	return map[string]*chemcomp.DescriptorRecord{
		"GLC": {Formula: "C6H12O6", TypeCounts: map[string]int{"C": 6, "H": 12, "O": 6}},
		"GAL": {Formula: "C6H12O6", TypeCounts: map[string]int{"C": 6, "H": 12, "O": 6}},
		"EOH": {Formula: "C2H6O", TypeCounts: map[string]int{"C": 2, "H": 6, "O": 1}},
		"ZN":  {Formula: "Zn+2", TypeCounts: map[string]int{"ZN": 1}},
		"HEM": {Formula: "C34H32FeN4O4", TypeCounts: map[string]int{"C": 34, "H": 32, "FE": 1, "N": 4, "O": 4}},
	}
}

func exact(n int) chemcomp.Range { return chemcomp.Range{Min: n, Max: n} }

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher(testIndex(), DefaultCacheSize)

	tests := []struct {
		name     string
		query    chemcomp.FormulaQuery
		expected []string
	}{
		{
			name:     "exact glucose",
			query:    chemcomp.FormulaQuery{"C": exact(6), "H": exact(12), "O": exact(6)},
			expected: []string{"GAL", "GLC"},
		},
		{
			name:     "no match",
			query:    chemcomp.FormulaQuery{"C": exact(7)},
			expected: []string{},
		},
		{
			name:     "empty query",
			query:    chemcomp.FormulaQuery{},
			expected: []string{},
		},
		{
			name:     "range",
			query:    chemcomp.FormulaQuery{"C": {Min: 2, Max: 6}},
			expected: []string{"EOH", "GAL", "GLC"},
		},
		{
			name:     "absent element counts as zero",
			query:    chemcomp.FormulaQuery{"FE": {Min: 0, Max: 0}},
			expected: []string{"EOH", "GAL", "GLC", "ZN"},
		},
		{
			name:     "zero lower bound includes both",
			query:    chemcomp.FormulaQuery{"N": {Min: 0, Max: 4}, "C": {Min: 30, Max: math.MaxInt}},
			expected: []string{"HEM"},
		},
		{
			name:     "lowercase element symbol",
			query:    chemcomp.FormulaQuery{"Zn": exact(1)},
			expected: []string{"ZN"},
		},
		{
			name:     "inverted range",
			query:    chemcomp.FormulaQuery{"C": {Min: 6, Max: 2}},
			expected: []string{},
		},
		{
			name:     "unknown element at least one",
			query:    chemcomp.FormulaQuery{"U": {Min: 1, Max: 10}},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.Match(tt.query))
		})
	}
}

func TestMatcher_SingleEntryExample(t *testing.T) {
	m := NewMatcher(map[string]*chemcomp.DescriptorRecord{
		"GLC": {TypeCounts: map[string]int{"C": 6, "H": 12, "O": 6}},
	}, 0)

	assert.Equal(t, []string{"GLC"}, m.Match(chemcomp.FormulaQuery{"C": exact(6), "H": exact(12), "O": exact(6)}))
	assert.Equal(t, []string{}, m.Match(chemcomp.FormulaQuery{"C": exact(7)}))
	assert.Equal(t, []string{}, m.Match(nil))
}

func TestMatcher_CachedResultIsNotShared(t *testing.T) {
	m := NewMatcher(testIndex(), 4)
	q := chemcomp.FormulaQuery{"C": exact(6)}

	first := m.Match(q)
	first[0] = "MUTATED"

	assert.Equal(t, []string{"GAL", "GLC"}, m.Match(q))
}

func TestMatcher_EmptyIndex(t *testing.T) {
	m := NewMatcher(nil, 0)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, []string{}, m.Match(chemcomp.FormulaQuery{"C": {Min: 0, Max: 10}}))
}

func TestQueryKey_IsCanonical(t *testing.T) {
	a := QueryKey(chemcomp.FormulaQuery{"O": exact(6), "c": exact(6)})
	b := QueryKey(chemcomp.FormulaQuery{"c": exact(6), "O": exact(6)})
	assert.Equal(t, a, b)
	assert.Equal(t, "C=6:6;O=6:6", a)
}

func TestQueryKey_MixedCaseOrdering(t *testing.T) {
	tests := []struct {
		name  string
		query chemcomp.FormulaQuery
		want  string
	}{
		{name: "lower sorts with upper", query: chemcomp.FormulaQuery{"n": exact(1), "H": exact(2), "c": exact(3)}, want: "C=3:3;H=2:2;N=1:1"},
		{name: "two letter symbols", query: chemcomp.FormulaQuery{"cl": exact(1), "C": exact(2)}, want: "C=2:2;CL=1:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QueryKey(tt.query))
		})
	}
}

func TestMatcher_MixedCaseQueriesShareCacheEntry(t *testing.T) {
	// Given: a cached matcher over glucose
	m := NewMatcher(map[string]*chemcomp.DescriptorRecord{
		"GLC": {TypeCounts: map[string]int{"C": 6, "H": 12, "O": 6}},
	}, 4)

	// When: the same query is issued with different key casing
	first := m.Match(chemcomp.FormulaQuery{"O": exact(6), "c": exact(6)})
	second := m.Match(chemcomp.FormulaQuery{"C": exact(6), "o": exact(6)})

	// Then: both match and resolve to one cache entry
	assert.Equal(t, []string{"GLC"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, m.cache.Len())
}
