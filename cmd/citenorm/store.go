package main

import (
	"github.com/spf13/cobra"

	"github.com/OBrink/citation-normalisation/internal/store"
)

// DefaultDBFile is the natural product store file name.
const DefaultDBFile = "coconut.db"

var storeDB string

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Natural product reference store commands",
	Long: `Manage a local SQLite copy of the natural products and their reference
lists.

Import a COCONUT CSV export, apply a reference map to replace the original
reference strings with normalized citations, and list the result.`,
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.PersistentFlags().StringVar(&storeDB, "db", "", "Store database (default from config, else "+DefaultDBFile+")")
}

// mustOpenStore opens the store database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenStore() *store.DB {
	path := firstNonEmpty(storeDB, mustLoadConfig().DBPath, DefaultDBFile)
	db, err := store.Open(path)
	if err != nil {
		exitWithError(ExitError, "opening store: %v", err)
	}
	return db
}
