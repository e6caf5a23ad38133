package mcp

import (
	"github.com/Aman-CERP/ccindex/internal/chemcomp"
)

// GetComponentInput is the input of get_component.
type GetComponentInput struct {
	ID string `json:"id" jsonschema:"chemical component identifier, e.g. ATP or GLC"`
}

// ComponentOutput is one descriptor index record.
type ComponentOutput struct {
	ID          string            `json:"id"`
	Formula     string            `json:"formula"`
	TypeCounts  map[string]int    `json:"type_counts"`
	AtomCount   int               `json:"atom_count"`
	Ambiguous   bool              `json:"ambiguous"`
	Descriptors map[string]string `json:"descriptors,omitempty"`
}

// GetSearchEntryInput is the input of get_search_entry.
type GetSearchEntryInput struct {
	Name string `json:"name" jsonschema:"related-form name, the search index key"`
}

// SearchEntryOutput is one search index record.
type SearchEntryOutput struct {
	Form *chemcomp.RelatedForm `json:"form"`
}

// MatchFormulaInput is the input of match_formula. Formula and Elements
// are combined; an element named in both uses the Elements range.
type MatchFormulaInput struct {
	Formula  string   `json:"formula,omitempty" jsonschema:"exact molecular formula, e.g. C6H12O6"`
	Elements []string `json:"elements,omitempty" jsonschema:"per-element count ranges as EL=MIN:MAX, e.g. C=5:7 or N=:2"`
	Limit    int      `json:"limit,omitempty" jsonschema:"maximum ids returned, default 100, 0 uses the default"`
}

// MatchFormulaOutput lists matching component ids in sorted order.
type MatchFormulaOutput struct {
	IDs       []string `json:"ids"`
	Total     int      `json:"total"`
	Truncated bool     `json:"truncated"`
}

// IndexStatusInput is the input of index_status (no parameters).
type IndexStatusInput struct{}

// FileStatus describes one index file under the cache.
type FileStatus struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Format  string `json:"format"`
	Exists  bool   `json:"exists"`
	Entries int    `json:"entries"`
	Size    int64  `json:"size"`
	ModTime string `json:"mod_time,omitempty" jsonschema:"RFC3339 modification time"`
}

// IndexStatusOutput describes the cache and loaded indexes.
type IndexStatusOutput struct {
	CachePath string       `json:"cache_path"`
	Prefix    string       `json:"file_name_prefix"`
	Files     []FileStatus `json:"files"`
	// Loaded lists index names held in memory by this server.
	Loaded []string `json:"loaded"`
}

const defaultMatchLimit = 100
