package main

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/OBrink/citation-normalisation/internal/batch"
	"github.com/OBrink/citation-normalisation/internal/checkpoint"
	"github.com/OBrink/citation-normalisation/internal/metrics"
	"github.com/OBrink/citation-normalisation/internal/recheck"
)

// DefaultRecheckCheckpoint is the second-pass checkpoint file name.
const DefaultRecheckCheckpoint = "rechecked_references.tsv"

var (
	recheckFirst      string
	recheckRejected   string
	recheckCheckpoint string
	recheckRows       int
	recheckWorkers    int
	recheckBooks      []string
	recheckMetrics    string
	recheckDryRun     bool
)

func init() {
	rootCmd.AddCommand(recheckCmd)
	recheckCmd.Flags().StringVar(&recheckFirst, "first", "", "First-pass checkpoint (default from config, else "+DefaultCheckpoint+")")
	recheckCmd.Flags().StringVar(&recheckRejected, "rejected", "", "First-pass log of QA-rejected records (default <first>.rejected)")
	recheckCmd.Flags().StringVar(&recheckCheckpoint, "checkpoint", DefaultRecheckCheckpoint, "Second-pass checkpoint file")
	recheckCmd.Flags().IntVar(&recheckRows, "rows", recheck.DefaultRows, "Crossref results inspected per reference")
	recheckCmd.Flags().IntVar(&recheckWorkers, "workers", 0, "Concurrent resolutions (default from config, else 35)")
	recheckCmd.Flags().StringSliceVar(&recheckBooks, "known-book", recheck.DefaultKnownBooks, "Skip references mentioning this book (repeatable)")
	recheckCmd.Flags().StringVar(&recheckMetrics, "metrics", "", "Write Prometheus metrics to this textfile when done")
	recheckCmd.Flags().BoolVar(&recheckDryRun, "dry-run", false, "List the selected references without querying Crossref")
}

var recheckCmd = &cobra.Command{
	Use:   "recheck",
	Short: "Re-resolve unconfirmed references with a strict Crossref search",
	Long: `Run the second retrieval pass over a first-pass checkpoint.

References that failed, or whose keyword result does not match the parsed
reference string (year, volume, first page, first author), are checked
again. Records the first pass rejected are tried first; otherwise Crossref
is searched and the first of the top results that matches is accepted.
Results go to a separate checkpoint in the same format.

Examples:
  citenorm recheck
  citenorm recheck --first refs.tsv --checkpoint refs2.tsv --rows 100
  citenorm recheck --dry-run --human`,
	Args: cobra.NoArgs,
	RunE: runRecheck,
}

// RecheckSelection is the response for recheck --dry-run.
type RecheckSelection struct {
	Selected int      `json:"selected"`
	Queries  []string `json:"queries"`
}

func runRecheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg := mustLoadConfig()
	first := firstNonEmpty(recheckFirst, cfg.CheckpointPath, DefaultCheckpoint)

	entries, err := checkpoint.ReadAll(first)
	if err != nil {
		exitWithError(ExitDataError, "reading checkpoint: %v", err)
	}
	rejectedLog := firstNonEmpty(recheckRejected, rejectedPath(first))
	rejected, err := checkpoint.ReadEvery(rejectedLog)
	if err != nil {
		exitWithError(ExitDataError, "reading rejected log: %v", err)
	}

	candidates := recheck.Select(entries, recheck.GroupRejected(rejected), recheckBooks)
	queries := recheck.Queries(candidates)
	slog.Info("selected references for recheck", "checkpoint", first, "entries", len(entries), "rejected", len(rejected), "selected", len(queries))

	if recheckDryRun {
		if humanOutput {
			for _, q := range queries {
				outputHuman("%s\n", q)
			}
			outputHuman("\n%d of %d references selected\n", len(queries), len(entries))
			return nil
		}
		return outputJSON(RecheckSelection{Selected: len(queries), Queries: queries})
	}

	checker := recheck.NewChecker(newCrossrefClient(cfg), recheck.Options{
		Rows:     recheckRows,
		Retries:  cfg.Retries,
		Rejected: recheck.RejectedOf(candidates),
	})

	runID := uuid.NewString()
	m := metrics.New(runID)
	summary, err := runCheckpointed(ctx, recheckCheckpoint, "", queries, batch.Detailed(checker.Resolve), batch.Options{
		Workers:  firstPositive(recheckWorkers, cfg.Workers),
		RunID:    runID,
		Logger:   slog.Default(),
		Recorder: m,
	})
	return finishRun(summary, err, m, recheckMetrics, recheckCheckpoint)
}
