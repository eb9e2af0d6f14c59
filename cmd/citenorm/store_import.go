package main

import (
	"github.com/spf13/cobra"

	"github.com/OBrink/citation-normalisation/internal/coconut"
)

func init() {
	storeCmd.AddCommand(storeImportCmd)
}

var storeImportCmd = &cobra.Command{
	Use:   "import <coconut.csv>",
	Short: "Import natural products from a COCONUT CSV export",
	Long: `Import natural products and their reference lists from a COCONUT CSV
export. Products already in the store are replaced.

Example:
  citenorm store import coconut.csv --db coconut.db`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreImport,
}

// ImportResponse is the response for store import.
type ImportResponse struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

func runStoreImport(cmd *cobra.Command, args []string) error {
	records, err := coconut.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", args[0], err)
	}

	db := mustOpenStore()
	defer db.Close()

	n, err := db.Import(records)
	if err != nil {
		exitWithError(ExitError, "importing products: %v", err)
	}
	total, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "counting products: %v", err)
	}

	if humanOutput {
		outputHuman("Imported %d products (%d in store)\n", n, total)
		return nil
	}
	return outputJSON(ImportResponse{Imported: n, Total: total})
}
