package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/ccindex/internal/config"
	"github.com/Aman-CERP/ccindex/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage ccindex configuration files.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/ccindex/config.yaml)
  3. Project config (.ccindex.yaml)
  4. Environment variables (CCINDEX_*)
  5. Command-line flags`,
		Example: `  # Write a project config with the defaults
  ccindex config init

  # Show the effective configuration
  ccindex config show --json`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigRestoreCmd())

	return cmd
}

// configTarget returns the user config path, or the project config in the
// current directory.
func configTarget(user bool) string {
	if user {
		return config.GetUserConfigPath()
	}
	if p := config.ProjectConfigPath("."); p != "" {
		return p
	}
	return config.ProjectConfigYAML
}

func newConfigInitCmd() *cobra.Command {
	var force, user bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with the defaults",
		Long: `Create .ccindex.yaml in the current directory, or the user config with
--user. An existing file is left alone unless --force is given; --force
backs it up, keeps its settings, and fills in any missing defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, configTarget(user), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Upgrade an existing file (a backup is kept)")
	cmd.Flags().BoolVar(&user, "user", false, "Write the user config instead of the project config")

	return cmd
}

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	out := output.New(cmd.OutOrStdout())

	if fileExists(path) && !force {
		out.Warning("Configuration already exists")
		out.Statusf("📁", "Location: %s", path)
		out.Status("💡", "Use --force to upgrade it with new defaults (a backup is kept)")
		return nil
	}

	cfg := config.NewConfig()
	var backupPath string
	if fileExists(path) {
		var err error
		if backupPath, err = config.BackupFile(path); err != nil {
			return err
		}
		existing, err := config.LoadFile(path)
		if err != nil {
			slog.Warn("existing config unreadable, writing defaults",
				slog.String("path", path),
				slog.String("error", err.Error()))
		} else {
			cfg = existing
		}
	}

	if err := cfg.WriteYAML(path); err != nil {
		return err
	}

	out.Success("Configuration written")
	out.Statusf("📁", "Location: %s", path)
	if backupPath != "" {
		out.Statusf("💾", "Backup: %s", backupPath)
	}
	return nil
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	var user bool

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configTarget(user)
			if abs, err := filepath.Abs(path); err == nil && !user {
				path = abs
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.Flags().BoolVar(&user, "user", false, "Print the user config path")

	return cmd
}

func newConfigRestoreCmd() *cobra.Command {
	var user bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore the newest configuration backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configTarget(user)
			backups, err := config.ListBackups(path)
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				return fmt.Errorf("no backups found for %s", path)
			}
			if err := config.RestoreFile(path, backups[0]); err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())
			out.Successf("Restored %s", path)
			out.Statusf("💾", "From: %s", backups[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&user, "user", false, "Restore the user config")

	return cmd
}
