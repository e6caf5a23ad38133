// Package cmd provides the CLI commands for ccindex.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ccindex/internal/config"
	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
	"github.com/Aman-CERP/ccindex/internal/index"
	"github.com/Aman-CERP/ccindex/internal/logging"
	"github.com/Aman-CERP/ccindex/internal/profiling"
	"github.com/Aman-CERP/ccindex/pkg/version"
)

// Debug logging and profiling flags
var (
	debugMode      bool
	loggingCleanup func()
	profileOpts    profiling.Options
	profileSession *profiling.Session
)

// NewRootCmd creates the root command for the ccindex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ccindex",
		Short: "Build and query chemical-component indexes",
		Long: `ccindex builds two derived indexes over a collection of chemical-component
definitions and serves them from an on-disk cache:

  descriptor  formula, atom-type counts, and canonical descriptors per component
  search      perceived related forms (parents, tautomers, protomers) by name

Indexes are rebuilt from the definition source only when no usable cache
file exists, or when --no-cache is given.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("ccindex version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.ccindex/logs/")
	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Mem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startLoggingAndProfiling
	cmd.PersistentPostRunE = stopLoggingAndProfiling

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newMatchCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLoggingAndProfiling installs the debug file logger when --debug is
// set and starts any requested profiles. serve installs its own file-only
// logger.
func startLoggingAndProfiling(cmd *cobra.Command, _ []string) error {
	if profileOpts.Enabled() {
		s, err := profiling.Start(profileOpts)
		if err != nil {
			return err
		}
		profileSession = s
	}

	if !debugMode || cmd.Name() == "serve" {
		return nil
	}
	cleanup, err := logging.Install(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.Info("Debug logging enabled",
		slog.String("log_file", logging.DefaultLogPath()),
		slog.String("version", version.Version))
	return nil
}

func stopLoggingAndProfiling(_ *cobra.Command, _ []string) error {
	var err error
	if profileSession != nil {
		err = profileSession.Stop()
		profileSession = nil
	}
	if loggingCleanup != nil {
		slog.Info("Debug logging stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	return err
}

// Execute runs the root command and prints failures in CLI form.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		_, _ = fmt.Fprint(root.ErrOrStderr(), ccerrors.FormatForCLI(err))
	}
	return err
}

// loadConfig reads the effective configuration for the current project.
func loadConfig() (*config.Config, error) {
	root, err := config.FindProjectRoot(".")
	if err != nil {
		root = "."
	}
	return config.Load(root)
}

// cacheFlags are the flags every index-reading command accepts.
type cacheFlags struct {
	cachePath string
	prefix    string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.cachePath, "cache-path", "", "Index cache directory (default from config)")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Index file name prefix (default from config)")
}

func (f *cacheFlags) apply(opts *index.Options) {
	if f.cachePath != "" {
		opts.CachePath = f.cachePath
	}
	if f.prefix != "" {
		opts.FileNamePrefix = f.prefix
	}
}

// indexOptions loads the config and applies cache flag overrides.
func indexOptions(f *cacheFlags) (*config.Config, index.Options, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, index.Options{}, err
	}
	opts := cfg.IndexOptions()
	f.apply(&opts)
	return cfg, opts, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
