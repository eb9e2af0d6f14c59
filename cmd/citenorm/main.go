// Package main provides the citenorm CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/OBrink/citation-normalisation/internal/config"
	"github.com/OBrink/citation-normalisation/internal/crossref"
	"github.com/OBrink/citation-normalisation/internal/pubmed"
	"github.com/OBrink/citation-normalisation/internal/resolver"
	"github.com/OBrink/citation-normalisation/internal/scholar"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "citenorm",
	Short: "Normalize literature citations against PubMed, Crossref and Google Scholar",
	Long: `citenorm resolves free-text citations, DOIs and PMIDs into canonical
reference records and normalized citation strings.

It is built to clean up the literature references of the COCONUT natural
product database: references are read from a CSV export, resolved in a
resumable batch, optionally re-checked with a stricter Crossref search,
exported as a reference map and written back to a local store.

All commands output JSON by default. Use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	// Load .env file if present (for NCBI_API_KEY, CROSSREF_MAILTO)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every resolution step")
	rootCmd.Version = Version
}

// setupLogger installs the default slog logger on stderr. --verbose wins over
// LOG_LEVEL.
func setupLogger() {
	level := slog.LevelInfo
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// mustLoadConfig loads the global configuration, exits on error.
func mustLoadConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

func newPubMedClient(cfg *config.GlobalConfig) *pubmed.Client {
	return pubmed.NewClient(pubmed.WithAPIKey(cfg.NCBIAPIKey), pubmed.WithEmail(cfg.NCBIEmail))
}

func newCrossrefClient(cfg *config.GlobalConfig) *crossref.Client {
	return crossref.NewClient(crossref.WithMailto(cfg.CrossrefMailto))
}

// resolverFlags are the resolution options shared by resolve and batch.
type resolverFlags struct {
	onlyIdentifiers bool
	noScholar       bool
	retries         int
}

func (f *resolverFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.onlyIdentifiers, "only-identifiers", false, "Only resolve DOIs and PMIDs, skip keyword searches")
	cmd.Flags().BoolVar(&f.noScholar, "no-scholar", false, "Disable the Google Scholar fallback")
	cmd.Flags().IntVar(&f.retries, "retries", 0, "Attempts for transient Crossref errors (default from config, else 5)")
}

// newResolver builds the resolution chain from config and flags. observer
// may be nil.
func newResolver(cfg *config.GlobalConfig, f resolverFlags, observer resolver.Observer) *resolver.Resolver {
	retries := f.retries
	if retries <= 0 {
		retries = cfg.Retries
	}

	var sch resolver.ScholarSource
	if cfg.Scholar() && !f.noScholar {
		sch = scholar.NewClient()
	}

	return resolver.New(newPubMedClient(cfg), newCrossrefClient(cfg), sch, resolver.Options{
		Retries:         retries,
		OnlyIdentifiers: f.onlyIdentifiers,
		Logger:          slog.Default(),
		Observer:        observer,
	})
}
