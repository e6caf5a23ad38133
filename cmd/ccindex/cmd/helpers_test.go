package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
)

// isolate gives the test its own HOME, user config dir, and working
// directory, and clears CCINDEX_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NO_COLOR", "1")
	for _, k := range []string{
		"CCINDEX_CACHE_PATH", "CCINDEX_USE_CACHE", "CCINDEX_PREFIX", "CCINDEX_MOL_LIMIT",
		"CCINDEX_NUM_PROC", "CCINDEX_MAX_CHUNK_SIZE", "CCINDEX_LIMIT_PERCEPTIONS",
		"CCINDEX_SOURCE", "CCINDEX_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func sourceDef(id string, counts map[string]int, smiles string) *chemcomp.Definition {
	d := &chemcomp.Definition{
		ID:       id,
		ChemComp: &chemcomp.ChemComp{ID: id, Name: id},
	}
	f := ""
	for _, el := range []string{"C", "H", "N", "O"} {
		n := counts[el]
		if n == 0 {
			continue
		}
		f += fmt.Sprintf("%s%d", el, n)
		for i := 0; i < n; i++ {
			d.Atoms = append(d.Atoms, chemcomp.Atom{AtomID: fmt.Sprintf("%s%d", el, i+1), TypeSymbol: el})
		}
	}
	d.ChemComp.Formula = f
	if smiles != "" {
		d.Descriptors = []chemcomp.Descriptor{{
			Type:       "SMILES_CANONICAL",
			Program:    "CACTVS",
			Version:    "3.385",
			Descriptor: smiles,
		}}
	}
	return d
}

// writeSource writes GLC, GAL, and ALA as JSON Lines into dir.
func writeSource(t *testing.T, dir string) string {
	t.Helper()
	var lines []string
	for _, d := range []*chemcomp.Definition{
		sourceDef("GLC", map[string]int{"C": 6, "H": 12, "O": 6}, "OC[C@H]1OC(O)[C@H](O)[C@@H](O)[C@@H]1O"),
		sourceDef("GAL", map[string]int{"C": 6, "H": 12, "O": 6}, ""),
		sourceDef("ALA", map[string]int{"C": 3, "H": 7, "N": 1, "O": 2}, "C[C@H](N)C(O)=O"),
	} {
		b, err := json.Marshal(d)
		require.NoError(t, err)
		lines = append(lines, string(b))
	}
	path := filepath.Join(dir, "components.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

// buildCache builds both indexes into <dir>/cache and returns that path.
func buildCache(t *testing.T, dir string) string {
	t.Helper()
	cache := filepath.Join(dir, "cache")
	_, err := execute(t, "build", "--source", writeSource(t, dir), "--cache-path", cache, "--no-tui")
	require.NoError(t, err)
	return cache
}
