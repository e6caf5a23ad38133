// Package config loads ccindex configuration from defaults, YAML files, and
// the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
	"github.com/Aman-CERP/ccindex/internal/formula"
	"github.com/Aman-CERP/ccindex/internal/index"
)

// Project configuration file names, in lookup order.
const (
	ProjectConfigYAML = ".ccindex.yaml"
	ProjectConfigYML  = ".ccindex.yml"
)

// Config represents the complete ccindex configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	Cache   CacheConfig  `yaml:"cache" json:"cache"`
	Build   BuildConfig  `yaml:"build" json:"build"`
	Source  SourceConfig `yaml:"source" json:"source"`
	Query   QueryConfig  `yaml:"query" json:"query"`
	Server  ServerConfig `yaml:"server" json:"server"`
}

// CacheConfig locates the on-disk index files.
type CacheConfig struct {
	Path           string `yaml:"path" json:"path"`
	UseCache       bool   `yaml:"use_cache" json:"use_cache"`
	FileNamePrefix string `yaml:"file_name_prefix" json:"file_name_prefix"`

	// DescriptorExt and SearchExt select the on-disk format: .json, .zst,
	// .lz4, or anything else for gob.
	DescriptorExt string `yaml:"descriptor_ext" json:"descriptor_ext"`
	SearchExt     string `yaml:"search_ext" json:"search_ext"`
}

// BuildConfig controls index builds.
type BuildConfig struct {
	MolLimit         int  `yaml:"mol_limit" json:"mol_limit"` // 0 = unlimited
	NumProc          int  `yaml:"num_proc" json:"num_proc"`
	MaxChunkSize     int  `yaml:"max_chunk_size" json:"max_chunk_size"`
	LimitPerceptions bool `yaml:"limit_perceptions" json:"limit_perceptions"`
}

// SourceConfig points at the JSON Lines definition file.
type SourceConfig struct {
	Path string `yaml:"path" json:"path"`
}

// QueryConfig tunes formula matching.
type QueryConfig struct {
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Cache: CacheConfig{
			Path:           ".",
			UseCache:       true,
			FileNamePrefix: index.DefaultFileNamePrefix,
			DescriptorExt:  index.DefaultDescriptorExt,
			SearchExt:      index.DefaultSearchExt,
		},
		Build: BuildConfig{
			MolLimit:         0,
			NumProc:          index.DefaultNumProc,
			MaxChunkSize:     index.DefaultMaxChunkSize,
			LimitPerceptions: true,
		},
		Query: QueryConfig{
			CacheSize: formula.DefaultCacheSize,
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/ccindex/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/ccindex/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ccindex", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "ccindex", "config.yaml")
	}
	return filepath.Join(home, ".config", "ccindex", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for the project in dir. Precedence, lowest first:
//  1. Defaults
//  2. User config (~/.config/ccindex/config.yaml)
//  3. Project config (.ccindex.yaml in dir)
//  4. Environment variables (CCINDEX_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a single config file over the defaults, without the user
// config or environment. Used to upgrade a file in place.
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "" if none.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigYAML, ProjectConfigYML} {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

func (c *Config) loadFromFile(dir string) error {
	if path := ProjectConfigPath(dir); path != "" {
		return c.loadYAML(path)
	}
	return nil
}

// loadYAML decodes path over c. Keys absent from the file keep their
// current values, so an explicit false or 0 in the file is honored.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ccerrors.New(ccerrors.ErrCodeConfigNotFound, "failed to read config file", err).
			WithDetail("path", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return ccerrors.ConfigError("failed to parse config file", err).
			WithDetail("path", path).
			WithSuggestion("Check the YAML syntax or regenerate it with 'ccindex config init --force'")
	}
	return nil
}

// applyEnvOverrides applies CCINDEX_* environment variables. Unparseable
// values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CCINDEX_CACHE_PATH"); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv("CCINDEX_USE_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Cache.UseCache = b
		}
	}
	if v := os.Getenv("CCINDEX_PREFIX"); v != "" {
		c.Cache.FileNamePrefix = v
	}
	if v := os.Getenv("CCINDEX_MOL_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Build.MolLimit = n
		}
	}
	if v := os.Getenv("CCINDEX_NUM_PROC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Build.NumProc = n
		}
	}
	if v := os.Getenv("CCINDEX_MAX_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Build.MaxChunkSize = n
		}
	}
	if v := os.Getenv("CCINDEX_LIMIT_PERCEPTIONS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Build.LimitPerceptions = b
		}
	}
	if v := os.Getenv("CCINDEX_SOURCE"); v != "" {
		c.Source.Path = v
	}
	if v := os.Getenv("CCINDEX_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Cache.Path == "" {
		return ccerrors.ConfigError("cache.path must not be empty", nil)
	}
	if c.Cache.FileNamePrefix == "" || strings.ContainsAny(c.Cache.FileNamePrefix, `/\`) {
		return ccerrors.ConfigError(fmt.Sprintf("cache.file_name_prefix must be a plain name, got %q", c.Cache.FileNamePrefix), nil)
	}
	for key, ext := range map[string]string{"cache.descriptor_ext": c.Cache.DescriptorExt, "cache.search_ext": c.Cache.SearchExt} {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return ccerrors.ConfigError(fmt.Sprintf("%s must start with '.', got %q", key, ext), nil)
		}
	}

	if c.Build.MolLimit < 0 {
		return ccerrors.ConfigError(fmt.Sprintf("build.mol_limit must be non-negative, got %d", c.Build.MolLimit), nil)
	}
	if c.Build.NumProc < 1 {
		return ccerrors.ConfigError(fmt.Sprintf("build.num_proc must be at least 1, got %d", c.Build.NumProc), nil)
	}
	if c.Build.MaxChunkSize < 1 {
		return ccerrors.ConfigError(fmt.Sprintf("build.max_chunk_size must be at least 1, got %d", c.Build.MaxChunkSize), nil)
	}
	if c.Query.CacheSize < 0 {
		return ccerrors.ConfigError(fmt.Sprintf("query.cache_size must be non-negative, got %d", c.Query.CacheSize), nil)
	}

	if strings.ToLower(c.Server.Transport) != "stdio" {
		return ccerrors.ConfigError(fmt.Sprintf("server.transport must be 'stdio', got %s", c.Server.Transport), nil)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return ccerrors.ConfigError(fmt.Sprintf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel), nil)
	}

	return nil
}

// IndexOptions converts the configuration to index build options.
func (c *Config) IndexOptions() index.Options {
	return index.Options{
		CachePath:        c.Cache.Path,
		UseCache:         c.Cache.UseCache,
		MolLimit:         c.Build.MolLimit,
		NumProc:          c.Build.NumProc,
		MaxChunkSize:     c.Build.MaxChunkSize,
		LimitPerceptions: c.Build.LimitPerceptions,
		FileNamePrefix:   c.Cache.FileNamePrefix,
		DescriptorExt:    c.Cache.DescriptorExt,
		SearchExt:        c.Cache.SearchExt,
		QueryCacheSize:   c.Query.CacheSize,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FindProjectRoot walks up from startDir to the first directory holding a
// project config file or a .git directory. Falls back to startDir.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	for cur := dir; ; {
		if ProjectConfigPath(cur) != "" || dirExists(filepath.Join(cur, ".git")) {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir, nil
		}
		cur = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
