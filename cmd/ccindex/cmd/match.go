package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
	"github.com/Aman-CERP/ccindex/internal/formula"
	"github.com/Aman-CERP/ccindex/internal/index"
	"github.com/Aman-CERP/ccindex/internal/output"
)

type matchFlags struct {
	cacheFlags
	formula  string
	elements []string
	jsonOut  bool
}

func newMatchCmd() *cobra.Command {
	var f matchFlags

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find components by molecular formula",
		Long: `Find component ids whose atom-type counts match a formula.

--formula gives exact counts for every element it names. --element gives an
inclusive range for one element and may be repeated; it overrides the
formula's count for that element. Elements not named are unconstrained.`,
		Example: `  ccindex match --formula C6H12O6
  ccindex match --element C=5:7 --element N=:0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMatch(cmd, &f)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&f.formula, "formula", "", "Exact molecular formula, e.g. C6H12O6")
	cmd.Flags().StringArrayVar(&f.elements, "element", nil, "Element range EL=MIN:MAX (repeatable)")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Output ids as JSON")

	return cmd
}

func runMatch(cmd *cobra.Command, f *matchFlags) error {
	q, err := parseQuery(f.formula, f.elements)
	if err != nil {
		return err
	}

	_, opts, err := indexOptions(&f.cacheFlags)
	if err != nil {
		return err
	}
	opts.UseCache = true
	d, err := index.NewDescriptorIndex(cmd.Context(), opts, index.Deps{})
	if err != nil {
		return err
	}
	ids := d.MatchMolecularFormula(q)

	out := output.New(cmd.OutOrStdout())
	if f.jsonOut {
		return out.JSON(ids)
	}
	if len(ids) == 0 {
		out.Statusf("🔍", "No components match %s", formula.QueryKey(q))
		return nil
	}
	out.Statusf("🔍", "%d components match %s", len(ids), formula.QueryKey(q))
	out.List(ids, 10)
	return nil
}

// parseQuery combines --formula and --element into one query.
func parseQuery(formulaStr string, elements []string) (chemcomp.FormulaQuery, error) {
	if formulaStr == "" && len(elements) == 0 {
		return nil, ccerrors.New(ccerrors.ErrCodeInvalidQuery, "no query given", nil).
			WithSuggestion("Use --formula C6H12O6 or --element C=6:6")
	}

	q := make(chemcomp.FormulaQuery)
	if formulaStr != "" {
		fq, err := formula.ParseFormula(formulaStr)
		if err != nil {
			return nil, ccerrors.New(ccerrors.ErrCodeInvalidQuery, err.Error(), err)
		}
		for el, r := range fq {
			q[el] = r
		}
	}
	rq, err := formula.ParseRanges(elements)
	if err != nil {
		return nil, ccerrors.New(ccerrors.ErrCodeInvalidQuery, err.Error(), err)
	}
	for el, r := range rq {
		q[el] = r
	}
	return q, nil
}
