package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
	"github.com/Aman-CERP/ccindex/internal/index"
	"github.com/Aman-CERP/ccindex/internal/ui"
)

type buildFlags struct {
	cacheFlags
	noCache          bool
	molLimit         int
	numProc          int
	maxChunkSize     int
	limitPerceptions bool
	source           string
	noTUI            bool
	noColor          bool
}

func newBuildCmd() *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build [descriptor|search|all]",
		Short: "Build or reload the component indexes",
		Long: `Build the descriptor index, the search index, or both (default).

A cached index file is reused when present. --no-cache rebuilds from the
definition source and overwrites the cache. The search index is computed
by --num-proc workers over chunks of at most --max-chunk-size components.`,
		Example: `  # Build both indexes from a JSON Lines source
  ccindex build --source components.jsonl

  # Rebuild only the search index with 8 workers
  ccindex build search --no-cache --num-proc 8`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"descriptor", "search", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			target := ""
			if len(args) > 0 {
				target = args[0]
			}
			return runBuild(ctx, cmd, target, &f)
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Ignore cached index files and rebuild")
	cmd.Flags().IntVar(&f.molLimit, "mol-limit", 0, "Limit the number of components (0 = all)")
	cmd.Flags().IntVar(&f.numProc, "num-proc", 0, "Workers for the search index build")
	cmd.Flags().IntVar(&f.maxChunkSize, "max-chunk-size", 0, "Components per worker chunk")
	cmd.Flags().BoolVar(&f.limitPerceptions, "limit-perceptions", true, "Skip expensive perception steps")
	cmd.Flags().StringVar(&f.source, "source", "", "JSON Lines definition source (default from config)")
	cmd.Flags().BoolVar(&f.noTUI, "no-tui", false, "Disable TUI mode, use plain text output")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, target string, f *buildFlags) error {
	tgt, err := index.ParseTarget(target)
	if err != nil {
		return err
	}

	cfg, opts, err := indexOptions(&f.cacheFlags)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if f.noCache {
		opts.UseCache = false
	}
	if flags.Changed("mol-limit") {
		opts.MolLimit = f.molLimit
	}
	if flags.Changed("num-proc") {
		opts.NumProc = f.numProc
	}
	if flags.Changed("max-chunk-size") {
		opts.MaxChunkSize = f.maxChunkSize
	}
	if flags.Changed("limit-perceptions") {
		opts.LimitPerceptions = f.limitPerceptions
	}
	sourcePath := cfg.Source.Path
	if f.source != "" {
		sourcePath = f.source
	}

	renderer := ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(f.noTUI),
		ui.WithNoColor(f.noColor || ui.DetectNoColor()),
	))
	runner, err := index.NewRunner(opts, index.Deps{
		Source:   index.SQLiteSource(opts, sourcePath),
		Renderer: renderer,
	})
	if err != nil {
		return err
	}

	if err := renderer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start progress display: %w", err)
	}
	res, err := runner.Run(ctx, tgt)
	_ = renderer.Stop()
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if res.Interrupted {
		return ccerrors.New(ccerrors.ErrCodeChunkFailed, "index build stopped before completion and was not saved", nil).
			WithDetail("cache_path", opts.CachePath).
			WithSuggestion("Check the log with 'ccindex logs --level error' and rebuild")
	}
	if !res.Sufficient {
		return ccerrors.New(ccerrors.ErrCodeSourceInsufficient, "index build produced an empty index", nil).
			WithDetail("cache_path", opts.CachePath).
			WithSuggestion("Provide definitions with --source or CCINDEX_SOURCE, or rebuild with --no-cache")
	}
	return nil
}
