package main

import (
	"github.com/spf13/cobra"

	"github.com/OBrink/citation-normalisation/internal/store"
)

var storeListLimit int

func init() {
	storeCmd.AddCommand(storeListCmd)
	storeListCmd.Flags().IntVarP(&storeListLimit, "limit", "n", 50, "Maximum products to list (0 for all)")
}

var storeListCmd = &cobra.Command{
	Use:   "list [coconut_id]",
	Short: "List stored natural products and their references",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStoreList,
}

func runStoreList(cmd *cobra.Command, args []string) error {
	db := mustOpenStore()
	defer db.Close()

	var products []store.Product
	if len(args) == 1 {
		p, err := db.Get(args[0])
		if err != nil {
			exitWithError(ExitError, "getting product: %v", err)
		}
		if p == nil {
			exitWithError(ExitNoResult, "product %s not found", args[0])
		}
		products = []store.Product{*p}
	} else {
		var err error
		products, err = db.List(storeListLimit)
		if err != nil {
			exitWithError(ExitError, "listing products: %v", err)
		}
	}

	if humanOutput {
		for _, p := range products {
			outputHuman("%s\n", p.CoconutID)
			for _, ref := range p.References {
				outputHuman("  - %s\n", truncateString(ref, ListTitleMaxLen))
			}
		}
		return nil
	}
	return outputJSON(products)
}
