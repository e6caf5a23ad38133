package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ccindex/internal/index"
	"github.com/Aman-CERP/ccindex/internal/ui"
)

type infoFlags struct {
	cacheFlags
	jsonOut bool
	noColor bool
	entries bool
}

func newInfoCmd() *cobra.Command {
	var f infoFlags

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show index cache status",
		Long: `Show the cache directory and the descriptor, search, and definition
files: whether they exist, their format, size, and modification time.

--entries loads the cached indexes to report entry counts. It never
rebuilds a missing index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInfo(cmd, &f)
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Output status as JSON")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&f.entries, "entries", false, "Load cached indexes to count entries")

	return cmd
}

func runInfo(cmd *cobra.Command, f *infoFlags) error {
	_, opts, err := indexOptions(&f.cacheFlags)
	if err != nil {
		return err
	}

	entries := map[string]int{}
	if f.entries {
		// No Source: a missing file yields an empty index instead of a build.
		opts.UseCache = true
		if d, err := index.NewDescriptorIndex(cmd.Context(), opts, index.Deps{}); err == nil {
			entries[index.StatusDescriptor] = d.Len()
		}
		if s, err := index.NewSearchIndex(cmd.Context(), opts, index.Deps{}); err == nil {
			entries[index.StatusSearch] = s.Len()
		}
	}

	info := index.Status(opts, entries)
	r := ui.NewStatusRenderer(cmd.OutOrStdout(), f.noColor || ui.DetectNoColor())
	if f.jsonOut {
		return r.RenderJSON(info)
	}
	return r.Render(info)
}
