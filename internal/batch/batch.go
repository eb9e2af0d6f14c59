// Package batch resolves many citations concurrently, recording every
// result in a checkpoint log so interrupted runs can be resumed.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/OBrink/citation-normalisation/internal/checkpoint"
	"github.com/OBrink/citation-normalisation/internal/reference"
)

// DefaultWorkers is the default worker pool width.
const DefaultWorkers = 35

// Result statuses reported to a Recorder.
const (
	StatusResolved = "resolved"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
)

// ResolveFunc resolves one query. A nil reference or an error marks a failed
// resolution; it is recorded and never stops the run.
type ResolveFunc func(ctx context.Context, query string) (*reference.Reference, error)

// Outcome is one query's full result: the accepted record, if any, and the
// complete keyword records that failed the QA check.
type Outcome struct {
	Accepted *reference.Reference
	Rejected []*reference.Reference
}

// DetailedResolveFunc resolves one query and reports rejected records even
// when resolution fails.
type DetailedResolveFunc func(ctx context.Context, query string) (*Outcome, error)

// Recorder observes per-query results.
type Recorder interface {
	ObserveResult(status string, elapsed time.Duration)
}

// Options configures a batch run.
type Options struct {
	Workers  int
	RunID    string
	Logger   *slog.Logger
	Recorder Recorder

	// Rejected, if set, receives every QA-rejected record in checkpoint
	// line format, one line per record, for the second pass.
	Rejected *checkpoint.Log
}

// Summary reports what a run did.
type Summary struct {
	RunID    string `json:"run_id"`
	Total    int    `json:"total"`
	Skipped  int    `json:"skipped"`
	Resolved int    `json:"resolved"`
	Failed   int    `json:"failed"`
	Rejected int    `json:"rejected"`
}

// Run resolves every query not yet in log, with at most opts.Workers
// resolutions in flight. Results complete in no particular order. Only
// checkpoint write errors and context cancellation end a run early.
func Run(ctx context.Context, queries []string, resolve ResolveFunc, log *checkpoint.Log, opts Options) (*Summary, error) {
	return RunDetailed(ctx, queries, Detailed(resolve), log, opts)
}

// Detailed adapts a ResolveFunc that never reports rejected records.
func Detailed(resolve ResolveFunc) DetailedResolveFunc {
	return func(ctx context.Context, q string) (*Outcome, error) {
		ref, err := resolve(ctx, q)
		return &Outcome{Accepted: ref}, err
	}
}

// RunDetailed is Run for resolvers that also report rejected records. They
// are appended to opts.Rejected before the query's checkpoint line, so a
// checkpointed query never loses its rejects.
func RunDetailed(ctx context.Context, queries []string, resolve DetailedResolveFunc, log *checkpoint.Log, opts Options) (*Summary, error) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("run_id", opts.RunID)

	var skipped, resolved, failed, rejected atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	logger.Info("starting batch", "queries", len(queries), "workers", opts.Workers, "checkpoint", log.Path())
	for _, query := range queries {
		if gctx.Err() != nil {
			break
		}
		if log.Done(query) {
			skipped.Add(1)
			observe(opts.Recorder, StatusSkipped, 0)
			continue
		}

		query := query
		g.Go(func() error {
			logger.Info(fmt.Sprintf("Retrieving ref N° %d: %s", log.Len(), query))
			start := time.Now()

			out, err := resolve(gctx, query)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if out == nil {
				out = &Outcome{}
			}
			rejected.Add(int64(len(out.Rejected)))
			if opts.Rejected != nil {
				for _, r := range out.Rejected {
					if err := opts.Rejected.Append(query, r); err != nil {
						return fmt.Errorf("recording rejected record for %q: %w", query, err)
					}
				}
			}

			ref := out.Accepted
			if err != nil || ref == nil {
				logger.Warn("unable to retrieve information", "query", query, "error", err)
				ref = nil
			}

			if err := log.Append(query, ref); err != nil {
				return fmt.Errorf("recording result for %q: %w", query, err)
			}

			status := StatusResolved
			if ref == nil {
				status = StatusFailed
				failed.Add(1)
			} else {
				resolved.Add(1)
			}
			observe(opts.Recorder, status, time.Since(start))
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	summary := &Summary{
		RunID:    opts.RunID,
		Total:    len(queries),
		Skipped:  int(skipped.Load()),
		Resolved: int(resolved.Load()),
		Failed:   int(failed.Load()),
		Rejected: int(rejected.Load()),
	}
	logger.Info("finished information retrieval", "resolved", summary.Resolved, "failed", summary.Failed, "skipped", summary.Skipped, "rejected", summary.Rejected)
	return summary, err
}

func observe(r Recorder, status string, elapsed time.Duration) {
	if r != nil {
		r.ObserveResult(status, elapsed)
	}
}
