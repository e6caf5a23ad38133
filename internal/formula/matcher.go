// Package formula matches components by per-element atom count ranges.
package formula

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
)

// DefaultCacheSize is the number of distinct query results kept.
const DefaultCacheSize = 256

// Matcher answers formula range queries over a descriptor index. Component
// ids are assigned ordinals in sorted order; for each element there is a
// posting bitmap per observed count. Matcher is safe for concurrent use
// once built.
type Matcher struct {
	ids      []string
	universe *roaring.Bitmap
	postings map[string]map[int]*roaring.Bitmap // element -> count -> ids
	present  map[string]*roaring.Bitmap         // element -> ids with count > 0
	cache    *lru.Cache[string, []string]
}

// NewMatcher indexes records. cacheSize <= 0 disables the result cache.
func NewMatcher(records map[string]*chemcomp.DescriptorRecord, cacheSize int) *Matcher {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	m := &Matcher{
		ids:      ids,
		universe: roaring.New(),
		postings: make(map[string]map[int]*roaring.Bitmap),
		present:  make(map[string]*roaring.Bitmap),
	}
	if cacheSize > 0 {
		m.cache, _ = lru.New[string, []string](cacheSize)
	}

	for ord, id := range ids {
		m.universe.Add(uint32(ord))
		rec := records[id]
		if rec == nil {
			continue
		}
		for el, count := range rec.TypeCounts {
			if count <= 0 {
				continue
			}
			el = strings.ToUpper(el)
			byCount, ok := m.postings[el]
			if !ok {
				byCount = make(map[int]*roaring.Bitmap)
				m.postings[el] = byCount
				m.present[el] = roaring.New()
			}
			bm, ok := byCount[count]
			if !ok {
				bm = roaring.New()
				byCount[count] = bm
			}
			bm.Add(uint32(ord))
			m.present[el].Add(uint32(ord))
		}
	}

	return m
}

// Len returns the number of indexed components.
func (m *Matcher) Len() int {
	return len(m.ids)
}

// Match returns the sorted ids whose counts fall within every range of q.
// Elements missing from a component count as 0. An empty query matches
// nothing.
func (m *Matcher) Match(q chemcomp.FormulaQuery) []string {
	if len(q) == 0 {
		return []string{}
	}

	key := QueryKey(q)
	if m.cache != nil {
		if hit, ok := m.cache.Get(key); ok {
			return slices.Clone(hit)
		}
	}

	var result *roaring.Bitmap
	for el, r := range q {
		bm := m.matchElement(strings.ToUpper(el), r)
		if result == nil {
			result = bm
		} else {
			result = roaring.And(result, bm)
		}
		if result.IsEmpty() {
			break
		}
	}

	out := make([]string, 0, result.GetCardinality())
	it := result.Iterator()
	for it.HasNext() {
		out = append(out, m.ids[it.Next()])
	}

	slog.Debug("formula match",
		slog.String("query", key),
		slog.Int("matches", len(out)))

	if m.cache != nil {
		m.cache.Add(key, slices.Clone(out))
	}
	return out
}

func (m *Matcher) matchElement(el string, r chemcomp.Range) *roaring.Bitmap {
	bm := roaring.New()
	if r.Min > r.Max {
		return bm
	}
	for count, ids := range m.postings[el] {
		if r.Contains(count) {
			bm.Or(ids)
		}
	}
	if r.Contains(0) {
		absent := m.universe.Clone()
		if has, ok := m.present[el]; ok {
			absent.AndNot(has)
		}
		bm.Or(absent)
	}
	return bm
}

// QueryKey renders q canonically, e.g. "C=6:6;H=12:12". Element symbols are
// upper-cased before ordering.
func QueryKey(q chemcomp.FormulaQuery) string {
	parts := make([]string, 0, len(q))
	for el, r := range q {
		parts = append(parts, fmt.Sprintf("%s=%d:%d", strings.ToUpper(el), r.Min, r.Max))
	}
	slices.Sort(parts)
	return strings.Join(parts, ";")
}
