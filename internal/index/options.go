// Package index builds, caches, and serves the descriptor and search indexes
// over the chemical-component definition store.
package index

import (
	"fmt"
	"path/filepath"

	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
	"github.com/Aman-CERP/ccindex/internal/formula"
)

// Defaults for Options.
const (
	DefaultFileNamePrefix = "cc"
	DefaultDescriptorExt  = ".pic"
	DefaultSearchExt      = ".json"
	DefaultMaxChunkSize   = 20
	DefaultNumProc        = 1
)

// File name suffixes, joined with the prefix and extension.
const (
	descriptorSuffix = "-idx-components"
	searchSuffix     = "-search-idx-components"
)

// Options control index location, cache use, and the build strategy.
type Options struct {
	CachePath        string
	UseCache         bool
	MolLimit         int // 0 means unlimited
	NumProc          int // workers for the search index build
	MaxChunkSize     int
	LimitPerceptions bool
	FileNamePrefix   string
	DescriptorExt    string // selects the on-disk format
	SearchExt        string
	QueryCacheSize   int // formula match result cache
}

// DefaultOptions returns the standard settings.
func DefaultOptions() Options {
	return Options{
		CachePath:        ".",
		UseCache:         true,
		NumProc:          DefaultNumProc,
		MaxChunkSize:     DefaultMaxChunkSize,
		LimitPerceptions: true,
		FileNamePrefix:   DefaultFileNamePrefix,
		DescriptorExt:    DefaultDescriptorExt,
		SearchExt:        DefaultSearchExt,
		QueryCacheSize:   formula.DefaultCacheSize,
	}
}

// Validate rejects negative limits.
func (o Options) Validate() error {
	if o.MolLimit < 0 {
		return ccerrors.ValidationError(fmt.Sprintf("mol limit must be >= 0, got %d", o.MolLimit), nil)
	}
	if o.NumProc < 0 {
		return ccerrors.ValidationError(fmt.Sprintf("num proc must be >= 0, got %d", o.NumProc), nil)
	}
	if o.MaxChunkSize < 0 {
		return ccerrors.ValidationError(fmt.Sprintf("max chunk size must be >= 0, got %d", o.MaxChunkSize), nil)
	}
	return nil
}

// withDefaults fills zero values.
func (o Options) withDefaults() Options {
	if o.CachePath == "" {
		o.CachePath = "."
	}
	if o.NumProc == 0 {
		o.NumProc = DefaultNumProc
	}
	if o.MaxChunkSize == 0 {
		o.MaxChunkSize = DefaultMaxChunkSize
	}
	if o.FileNamePrefix == "" {
		o.FileNamePrefix = DefaultFileNamePrefix
	}
	if o.DescriptorExt == "" {
		o.DescriptorExt = DefaultDescriptorExt
	}
	if o.SearchExt == "" {
		o.SearchExt = DefaultSearchExt
	}
	return o
}

// DescriptorPath returns <cache>/chem_comp/<prefix>-idx-components<ext>.
func (o Options) DescriptorPath() string {
	o = o.withDefaults()
	return filepath.Join(o.CachePath, "chem_comp", o.FileNamePrefix+descriptorSuffix+o.DescriptorExt)
}

// SearchPath returns <cache>/chem_comp/<prefix>-search-idx-components<ext>.
func (o Options) SearchPath() string {
	o = o.withDefaults()
	return filepath.Join(o.CachePath, "chem_comp", o.FileNamePrefix+searchSuffix+o.SearchExt)
}
