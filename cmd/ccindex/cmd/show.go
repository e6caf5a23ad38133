package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
	"github.com/Aman-CERP/ccindex/internal/index"
	"github.com/Aman-CERP/ccindex/internal/output"
)

type showFlags struct {
	cacheFlags
	search  bool
	jsonOut bool
}

func newShowCmd() *cobra.Command {
	var f showFlags

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one indexed component or related form",
		Long: `Show the descriptor index record for a component id.

With --search, the argument is a related-form name and the search index
record is shown instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], &f)
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&f.search, "search", false, "Look up a related-form name in the search index")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Output the record as JSON")

	return cmd
}

func runShow(cmd *cobra.Command, key string, f *showFlags) error {
	_, opts, err := indexOptions(&f.cacheFlags)
	if err != nil {
		return err
	}
	opts.UseCache = true
	out := output.New(cmd.OutOrStdout())

	if f.search {
		s, err := index.NewSearchIndex(cmd.Context(), opts, index.Deps{})
		if err != nil {
			return err
		}
		form, ok := s.Entry(key)
		if !ok {
			return notIndexed("form", key, opts.SearchPath())
		}
		if f.jsonOut {
			return out.JSON(form)
		}
		out.KeyValues(formRows(form))
		return nil
	}

	d, err := index.NewDescriptorIndex(cmd.Context(), opts, index.Deps{})
	if err != nil {
		return err
	}
	rec, ok := d.Mol(key)
	if !ok {
		return notIndexed("component", key, opts.DescriptorPath())
	}
	if f.jsonOut {
		return out.JSON(rec)
	}
	out.KeyValues(recordRows(key, rec))
	return nil
}

func notIndexed(kind, key, path string) error {
	return ccerrors.New(ccerrors.ErrCodeNotFound, fmt.Sprintf("%s %q is not indexed", kind, key), nil).
		WithDetail("path", path).
		WithSuggestion("Check the id, or run 'ccindex build' to create the index")
}

func recordRows(id string, rec *chemcomp.DescriptorRecord) []output.KV {
	rows := []output.KV{
		{Key: "ID", Value: id},
		{Key: "Formula", Value: rec.Formula},
		{Key: "Atoms", Value: fmt.Sprintf("%d", rec.AtomCount())},
		{Key: "Ambiguous", Value: fmt.Sprintf("%t", rec.Ambiguous)},
	}
	els := make([]string, 0, len(rec.TypeCounts))
	for el := range rec.TypeCounts {
		els = append(els, el)
	}
	slices.Sort(els)
	for _, el := range els {
		rows = append(rows, output.KV{Key: "  " + el, Value: fmt.Sprintf("%d", rec.TypeCounts[el])})
	}
	for _, k := range chemcomp.AllDescriptorKinds {
		if v, ok := rec.Descriptors[k]; ok {
			rows = append(rows, output.KV{Key: string(k), Value: v})
		}
	}
	return rows
}

func formRows(form *chemcomp.RelatedForm) []output.KV {
	rows := []output.KV{
		{Key: "Name", Value: form.Name},
		{Key: "Parent", Value: form.ParentID},
		{Key: "Type", Value: form.FormType},
	}
	if form.Formula != "" {
		rows = append(rows, output.KV{Key: "Formula", Value: form.Formula})
	}
	if form.SMILES != "" {
		rows = append(rows, output.KV{Key: "SMILES", Value: form.SMILES})
	}
	return rows
}
