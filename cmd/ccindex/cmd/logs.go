package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ccindex/internal/logging"
)

type logsFlags struct {
	follow  bool
	lines   int
	level   string
	filter  string
	noColor bool
	logFile string
}

func newLogsCmd() *cobra.Command {
	var f logsFlags

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View ccindex logs",
		Long: `Show the last lines of the ccindex log (~/.ccindex/logs/ccindex.log).
The file is written by 'serve' and by any command run with --debug.`,
		Example: `  ccindex logs -n 100
  ccindex logs --level error
  ccindex logs -f --filter perception`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runLogs(ctx, cmd, &f)
		},
	}

	cmd.Flags().BoolVarP(&f.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&f.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&f.level, "level", "", "Minimum log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&f.filter, "filter", "", "Only lines matching this pattern (regex)")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&f.logFile, "file", "", "Path to log file")

	return cmd
}

func runLogs(ctx context.Context, cmd *cobra.Command, f *logsFlags) error {
	path, err := logging.FindLogFile(f.logFile)
	if err != nil {
		return err
	}

	var pattern *regexp.Regexp
	if f.filter != "" {
		if pattern, err = regexp.Compile(f.filter); err != nil {
			return fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   f.level,
		Pattern: pattern,
		NoColor: f.noColor,
	}, cmd.OutOrStdout())

	entries, err := viewer.Tail(path, f.lines)
	if err != nil {
		return err
	}
	viewer.Print(entries)

	if !f.follow {
		return nil
	}

	ch := make(chan logging.LogEntry, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- viewer.Follow(ctx, path, ch)
	}()
	for {
		select {
		case e := <-ch:
			viewer.Print([]logging.LogEntry{e})
		case err := <-errCh:
			return err
		}
	}
}
