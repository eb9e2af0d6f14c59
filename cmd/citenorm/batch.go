package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/OBrink/citation-normalisation/internal/batch"
	"github.com/OBrink/citation-normalisation/internal/checkpoint"
	"github.com/OBrink/citation-normalisation/internal/coconut"
	"github.com/OBrink/citation-normalisation/internal/metrics"
)

// DefaultCheckpoint is the first-pass checkpoint file name.
const DefaultCheckpoint = "retrieved_references.tsv"

var (
	batchCheckpoint string
	batchRejected   string
	batchWorkers    int
	batchMetrics    string
	batchOpts       resolverFlags
)

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVar(&batchCheckpoint, "checkpoint", "", "Checkpoint file (default from config, else "+DefaultCheckpoint+")")
	batchCmd.Flags().StringVar(&batchRejected, "rejected", "", "Log of QA-rejected records (default <checkpoint>.rejected)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Concurrent resolutions (default from config, else 35)")
	batchCmd.Flags().StringVar(&batchMetrics, "metrics", "", "Write Prometheus metrics to this textfile when done")
	batchOpts.register(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch <coconut.csv>",
	Short: "Resolve every reference of a COCONUT CSV export",
	Long: `Resolve the unique references of a COCONUT CSV export concurrently.

The CSV needs a coconut_id column and a citationDOI column holding a list
literal of reference strings. Every result is appended to the checkpoint
file as "<reference>\t<JSON record or NONE>"; references already in the
checkpoint are skipped, so an interrupted run can simply be restarted.
Keyword results rejected by the QA check go to a second log in the same
format, where recheck picks them up.

Examples:
  citenorm batch coconut.csv
  citenorm batch coconut.csv --workers 10 --checkpoint refs.tsv --metrics citenorm.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg := mustLoadConfig()

	records, err := coconut.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", args[0], err)
	}
	queries := coconut.UniqueReferences(records)
	slog.Info("loaded references", "products", len(records), "unique", len(queries))

	path := firstNonEmpty(batchCheckpoint, cfg.CheckpointPath, DefaultCheckpoint)
	workers := firstPositive(batchWorkers, cfg.Workers)

	runID := uuid.NewString()
	m := metrics.New(runID)
	r := newResolver(cfg, batchOpts, m)

	resolve := func(ctx context.Context, q string) (*batch.Outcome, error) {
		res, err := r.ResolveDetailed(ctx, q)
		if res == nil {
			return nil, err
		}
		return &batch.Outcome{Accepted: res.Accepted, Rejected: res.Rejected}, err
	}
	summary, err := runCheckpointed(ctx, path, firstNonEmpty(batchRejected, rejectedPath(path)), queries, resolve, batch.Options{
		Workers:  workers,
		RunID:    runID,
		Logger:   slog.Default(),
		Recorder: m,
	})
	return finishRun(summary, err, m, batchMetrics, path)
}

// runCheckpointed opens the checkpoint at path, and the rejected-record log
// when rejected is set, and runs the batch into them. Both logs are closed
// before it returns.
func runCheckpointed(ctx context.Context, path, rejected string, queries []string, resolve batch.DetailedResolveFunc, opts batch.Options) (*batch.Summary, error) {
	log, err := checkpoint.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint: %w", err)
	}
	defer log.Close()

	if rejected != "" {
		rlog, err := checkpoint.Open(rejected)
		if err != nil {
			return nil, fmt.Errorf("opening rejected log: %w", err)
		}
		defer rlog.Close()
		opts.Rejected = rlog
	}

	return batch.RunDetailed(ctx, queries, resolve, log, opts)
}

// finishRun writes metrics for whatever ran, then reports the summary or
// exits with the run's error.
func finishRun(summary *batch.Summary, err error, m *metrics.Metrics, metricsPath, checkpointPath string) error {
	writeMetrics(m, metricsPath)
	if err != nil {
		if summary == nil {
			exitWithError(ExitDataError, "%v", err)
		}
		slog.Warn("batch stopped early", "resolved", summary.Resolved, "failed", summary.Failed, "skipped", summary.Skipped)
		exitWithError(ExitError, "batch stopped: %v", err)
	}
	return outputSummary(summary, checkpointPath)
}

// rejectedPath derives the rejected-record log path from a checkpoint path.
func rejectedPath(checkpointPath string) string {
	if base, ok := strings.CutSuffix(checkpointPath, ".tsv"); ok {
		return base + ".rejected.tsv"
	}
	return checkpointPath + ".rejected"
}

func writeMetrics(m *metrics.Metrics, path string) {
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		slog.Warn("writing metrics", "path", path, "error", err)
	}
}

// BatchResponse is the response for batch and recheck.
type BatchResponse struct {
	*batch.Summary
	Checkpoint string `json:"checkpoint"`
}

func outputSummary(s *batch.Summary, path string) error {
	if humanOutput {
		outputHuman("Run %s: %d references, %d already done, %d resolved, %d failed, %d rejected records kept\n",
			s.RunID, s.Total, s.Skipped, s.Resolved, s.Failed, s.Rejected)
		outputHuman("Checkpoint: %s\n", path)
		return nil
	}
	return outputJSON(BatchResponse{Summary: s, Checkpoint: path})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
