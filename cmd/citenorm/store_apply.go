package main

import (
	"github.com/spf13/cobra"

	"github.com/OBrink/citation-normalisation/internal/refmap"
)

func init() {
	storeCmd.AddCommand(storeApplyCmd)
}

var storeApplyCmd = &cobra.Command{
	Use:   "apply <reference_map.json>",
	Short: "Replace stored reference strings using a reference map",
	Long: `Rewrite the reference list of every stored natural product. Strings
found in the map are replaced by the normalized citation followed by
"; DOI: <doi>" and "; PMID: <pmid>" when known. Other strings are kept.

Example:
  citenorm store apply reference_map.json --human`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreApply,
}

func runStoreApply(cmd *cobra.Command, args []string) error {
	m, err := refmap.Load(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	db := mustOpenStore()
	defer db.Close()

	stats, err := db.Apply(m)
	if err != nil {
		exitWithError(ExitError, "applying reference map: %v", err)
	}

	if humanOutput {
		outputHuman("Updated %d of %d products: %d references replaced, %d unmapped\n",
			stats.Updated, stats.Products, stats.Replaced, stats.Unreplaced)
		return nil
	}
	return outputJSON(stats)
}
