package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OBrink/citation-normalisation/internal/citation"
	"github.com/OBrink/citation-normalisation/internal/resolver"
)

var resolveOpts resolverFlags

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveOpts.register(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <citation>...",
	Short: "Resolve a citation, DOI or PMID into a normalized reference",
	Long: `Resolve a citation into a canonical reference record and a normalized
citation string.

Sources are tried in order: a DOI found in the input (PubMed, then
Crossref), a PMID (PubMed), a Crossref bibliographic search and finally
Google Scholar. Keyword results are only accepted when the input contains
their year and first author's surname.

Multiple arguments are joined with spaces.

Examples:
  citenorm resolve 10.1248/cpb.37.819
  citenorm resolve 2671398
  citenorm resolve "Ito,Chem. Pharm. Bull.,37,(1989),819" --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	query := strings.Join(args, " ")
	r := newResolver(mustLoadConfig(), resolveOpts, nil)

	res, err := r.ResolveDetailed(ctx, query)
	if err != nil {
		if errors.Is(err, resolver.ErrExhausted) {
			exitWithError(ExitNoResult, "%v", err)
		}
		exitWithError(ExitError, "resolving citation: %v", err)
	}

	resp := ResolveResponse{
		Query:     query,
		Citation:  citation.Assemble(res.Accepted),
		Reference: res.Accepted,
		Rejected:  len(res.Rejected),
	}
	if humanOutput {
		printReferenceHuman(resp)
		return nil
	}
	if err := outputJSON(resp); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
