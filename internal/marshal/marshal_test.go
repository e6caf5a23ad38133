package marshal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Formula    string         `json:"formula"`
	TypeCounts map[string]int `json:"type_counts"`
	Ambiguous  bool           `json:"ambiguous"`
}

func sample() map[string]*entry {
	return map[string]*entry{
		"GLC": {Formula: "C6H12O6", TypeCounts: map[string]int{"C": 6, "H": 12, "O": 6}},
		"ZN":  {Formula: "Zn+2", TypeCounts: map[string]int{"ZN": 1}},
		"UNL": {Formula: "C", TypeCounts: map[string]int{"C": 1}, Ambiguous: true},
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
	}{
		{"cc-idx-components.json", FormatJSON},
		{"cc-idx-components.JSON", FormatJSON},
		{"cc-idx-components.pic", FormatGob},
		{"cc-idx-components", FormatGob},
		{"cc-idx-components.zst", FormatZstd},
		{"cc-idx-components.lz4", FormatLZ4},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatForPath(tt.path))
		})
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".pic", ".zst", ".lz4"} {
		t.Run(ext, func(t *testing.T) {
			// Given: a mapping exported to disk
			path := filepath.Join(t.TempDir(), "chem_comp", "cc-idx-components"+ext)
			require.NoError(t, Export(path, sample()))
			assert.True(t, Exists(path))

			// When: importing it back
			var got map[string]*entry
			require.NoError(t, Import(path, &got))

			// Then: keys and values match
			assert.Equal(t, sample(), got)
		})
	}
}

func TestExport_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.json")
	require.NoError(t, Export(path, map[string]int{"a": 1}))
	require.NoError(t, Export(path, map[string]int{"b": 2}))

	var got map[string]int
	require.NoError(t, Import(path, &got))
	assert.Equal(t, map[string]int{"b": 2}, got)
}

func TestExport_FailureKeepsPreviousFile(t *testing.T) {
	// Given: an existing exported file
	dir := t.TempDir()
	path := filepath.Join(dir, "idx.pic")
	require.NoError(t, Export(path, map[string]int{"a": 1}))

	// When: exporting a value gob cannot encode
	err := Export(path, map[string]chan int{"x": make(chan int)})

	// Then: export fails and the old content survives
	require.Error(t, err)
	var got map[string]int
	require.NoError(t, Import(path, &got))
	assert.Equal(t, map[string]int{"a": 1}, got)

	// And: no temp files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestImport_MissingFile(t *testing.T) {
	var got map[string]int
	err := Import(filepath.Join(t.TempDir(), "missing.json"), &got)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImport_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.zst")
	require.NoError(t, os.WriteFile(path, []byte("not zstd"), 0644))

	var got map[string]int
	assert.Error(t, Import(path, &got))
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(filepath.Join(dir, "nope")))
	assert.False(t, Exists(dir))
}

func TestEncodedSize(t *testing.T) {
	small, err := EncodedSize(map[string]int{"a": 1})
	require.NoError(t, err)
	large, err := EncodedSize(sample())
	require.NoError(t, err)

	assert.Positive(t, small)
	assert.Greater(t, large, small)
}

func TestFileLock_TryLockWhileHeld(t *testing.T) {
	target := filepath.Join(t.TempDir(), "idx.json")
	first := NewFileLock(target)
	require.NoError(t, first.Lock())
	defer first.Unlock()

	assert.Equal(t, target+".lock", first.Path())

	second := NewFileLock(target)
	ok, err := second.TryLock()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Unlock())
	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, second.Unlock())
}
