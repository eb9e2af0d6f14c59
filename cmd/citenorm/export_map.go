package main

import (
	"github.com/spf13/cobra"

	"github.com/OBrink/citation-normalisation/internal/checkpoint"
	"github.com/OBrink/citation-normalisation/internal/refmap"
)

// DefaultMapFile is the reference map file name.
const DefaultMapFile = "reference_map.json"

var exportMapOut string

func init() {
	rootCmd.AddCommand(exportMapCmd)
	exportMapCmd.Flags().StringVarP(&exportMapOut, "out", "o", DefaultMapFile, "Reference map output file")
}

var exportMapCmd = &cobra.Command{
	Use:   "export-map <checkpoint>...",
	Short: "Build a reference map from checkpoint files",
	Long: `Build the JSON reference map from one or more checkpoint files.

Each resolved reference string is mapped to its normalized citation and
its DOI and PMID. Later checkpoints override earlier ones, so pass the
first-pass checkpoint before the recheck checkpoint. Failed references
are left out.

Example:
  citenorm export-map retrieved_references.tsv rechecked_references.tsv -o map.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExportMap,
}

// ExportMapResponse is the response for export-map.
type ExportMapResponse struct {
	Path    string `json:"path"`
	Entries int    `json:"entries"`
}

func runExportMap(cmd *cobra.Command, args []string) error {
	passes := make([][]checkpoint.Entry, 0, len(args))
	for _, path := range args {
		entries, err := checkpoint.ReadAll(path)
		if err != nil {
			exitWithError(ExitDataError, "reading checkpoint: %v", err)
		}
		passes = append(passes, entries)
	}

	m := refmap.Build(passes...)
	if err := m.Save(exportMapOut); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Wrote %d references to %s\n", len(m), exportMapOut)
		return nil
	}
	return outputJSON(ExportMapResponse{Path: exportMapOut, Entries: len(m)})
}
