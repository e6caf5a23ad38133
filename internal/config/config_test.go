package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
)

// isolate points the user config at an empty temp dir and clears CCINDEX_*.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{
		"CCINDEX_CACHE_PATH", "CCINDEX_USE_CACHE", "CCINDEX_PREFIX", "CCINDEX_MOL_LIMIT",
		"CCINDEX_NUM_PROC", "CCINDEX_MAX_CHUNK_SIZE", "CCINDEX_LIMIT_PERCEPTIONS",
		"CCINDEX_SOURCE", "CCINDEX_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ".", cfg.Cache.Path)
	assert.True(t, cfg.Cache.UseCache)
	assert.Equal(t, "cc", cfg.Cache.FileNamePrefix)
	assert.Equal(t, ".pic", cfg.Cache.DescriptorExt)
	assert.Equal(t, ".json", cfg.Cache.SearchExt)
	assert.Equal(t, 0, cfg.Build.MolLimit)
	assert.Equal(t, 1, cfg.Build.NumProc)
	assert.Equal(t, 20, cfg.Build.MaxChunkSize)
	assert.True(t, cfg.Build.LimitPerceptions)
	assert.Equal(t, 256, cfg.Query.CacheSize)
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_ProjectConfigOverrides(t *testing.T) {
	// Given: a project config that turns booleans off
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".ccindex.yaml"), `
cache:
  path: /var/cache/cc
  use_cache: false
build:
  num_proc: 4
  max_chunk_size: 5
  limit_perceptions: false
source:
  path: components.jsonl
`)

	// When: loading
	cfg, err := Load(dir)
	require.NoError(t, err)

	// Then: set keys override, unset keys keep defaults
	assert.Equal(t, "/var/cache/cc", cfg.Cache.Path)
	assert.False(t, cfg.Cache.UseCache)
	assert.False(t, cfg.Build.LimitPerceptions)
	assert.Equal(t, 4, cfg.Build.NumProc)
	assert.Equal(t, 5, cfg.Build.MaxChunkSize)
	assert.Equal(t, "components.jsonl", cfg.Source.Path)
	assert.Equal(t, "cc", cfg.Cache.FileNamePrefix)
}

func TestLoad_YmlFallback(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".ccindex.yml"), "cache:\n  file_name_prefix: prd\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "prd", cfg.Cache.FileNamePrefix)
}

func TestLoad_Precedence(t *testing.T) {
	// Given: user, project, and env all set num_proc
	isolate(t)
	writeFile(t, GetUserConfigPath(), "build:\n  num_proc: 2\n  mol_limit: 50\n")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".ccindex.yaml"), "build:\n  num_proc: 3\n")
	t.Setenv("CCINDEX_NUM_PROC", "8")

	// When: loading
	cfg, err := Load(dir)
	require.NoError(t, err)

	// Then: env wins, project beats user, user beats defaults
	assert.Equal(t, 8, cfg.Build.NumProc)
	assert.Equal(t, 50, cfg.Build.MolLimit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CCINDEX_CACHE_PATH", "/tmp/cc")
	t.Setenv("CCINDEX_USE_CACHE", "false")
	t.Setenv("CCINDEX_PREFIX", "test")
	t.Setenv("CCINDEX_MOL_LIMIT", "10")
	t.Setenv("CCINDEX_MAX_CHUNK_SIZE", "7")
	t.Setenv("CCINDEX_LIMIT_PERCEPTIONS", "0")
	t.Setenv("CCINDEX_SOURCE", "/data/cc.jsonl")
	t.Setenv("CCINDEX_LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cc", cfg.Cache.Path)
	assert.False(t, cfg.Cache.UseCache)
	assert.Equal(t, "test", cfg.Cache.FileNamePrefix)
	assert.Equal(t, 10, cfg.Build.MolLimit)
	assert.Equal(t, 7, cfg.Build.MaxChunkSize)
	assert.False(t, cfg.Build.LimitPerceptions)
	assert.Equal(t, "/data/cc.jsonl", cfg.Source.Path)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoad_InvalidEnvValuesIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("CCINDEX_NUM_PROC", "lots")
	t.Setenv("CCINDEX_USE_CACHE", "maybe")
	t.Setenv("CCINDEX_MOL_LIMIT", "-3")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Build.NumProc)
	assert.True(t, cfg.Cache.UseCache)
	assert.Equal(t, 0, cfg.Build.MolLimit)
}

func TestLoad_MalformedYAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".ccindex.yaml"), "build: [unclosed\n")

	_, err := Load(dir)

	require.Error(t, err)
	assert.Equal(t, ccerrors.ErrCodeConfigInvalid, ccerrors.GetCode(err))
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".ccindex.yaml"), "build:\n  max_chunk_size: 0\n")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty cache path", func(c *Config) { c.Cache.Path = "" }},
		{"prefix with separator", func(c *Config) { c.Cache.FileNamePrefix = "a/b" }},
		{"empty prefix", func(c *Config) { c.Cache.FileNamePrefix = "" }},
		{"descriptor ext without dot", func(c *Config) { c.Cache.DescriptorExt = "pic" }},
		{"search ext only dot", func(c *Config) { c.Cache.SearchExt = "." }},
		{"negative mol limit", func(c *Config) { c.Build.MolLimit = -1 }},
		{"zero workers", func(c *Config) { c.Build.NumProc = 0 }},
		{"zero chunk size", func(c *Config) { c.Build.MaxChunkSize = 0 }},
		{"negative query cache", func(c *Config) { c.Query.CacheSize = -1 }},
		{"sse transport", func(c *Config) { c.Server.Transport = "sse" }},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Equal(t, ccerrors.CategoryConfig, ccerrors.GetCategory(err))
		})
	}
}

func TestIndexOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.Cache.Path = "/cache"
	cfg.Build.NumProc = 3
	cfg.Build.MolLimit = 9

	opts := cfg.IndexOptions()

	assert.Equal(t, "/cache", opts.CachePath)
	assert.Equal(t, 3, opts.NumProc)
	assert.Equal(t, 9, opts.MolLimit)
	assert.Equal(t, 20, opts.MaxChunkSize)
	assert.True(t, opts.UseCache)
	assert.True(t, opts.LimitPerceptions)
	assert.Equal(t, filepath.Join("/cache", "chem_comp", "cc-idx-components.pic"), opts.DescriptorPath())
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Build.LimitPerceptions = false
	cfg.Source.Path = "defs.jsonl"

	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, ".ccindex.yaml")))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetUserConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	assert.Equal(t, filepath.Join("/xdg", "ccindex", "config.yaml"), GetUserConfigPath())
	assert.Equal(t, filepath.Join("/xdg", "ccindex"), GetUserConfigDir())
}

func TestFindProjectRoot(t *testing.T) {
	// Given: a project config two levels up
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".ccindex.yaml"), "version: 1\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	// When: searching from the nested dir
	got, err := FindProjectRoot(nested)
	require.NoError(t, err)

	// Then: the config dir is found
	want, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, want, gotResolved)
}

func TestLoadFile_IgnoresEnvironment(t *testing.T) {
	// Given: a file that sets one value and an env override for another
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "build:\n  num_proc: 6\n")
	t.Setenv("CCINDEX_PREFIX", "env")

	// When: loading the file alone
	cfg, err := LoadFile(path)

	// Then: file values sit over defaults and the env is not applied
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Build.NumProc)
	assert.Equal(t, "cc", cfg.Cache.FileNamePrefix)
	assert.Equal(t, 20, cfg.Build.MaxChunkSize)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Equal(t, ccerrors.ErrCodeConfigNotFound, ccerrors.GetCode(err))
}
