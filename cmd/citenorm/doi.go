package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OBrink/citation-normalisation/internal/citation"
	"github.com/OBrink/citation-normalisation/internal/doi"
	"github.com/OBrink/citation-normalisation/internal/pdf"
	"github.com/OBrink/citation-normalisation/internal/resolver"
)

var (
	doiPDF     string
	doiResolve bool
	doiOpts    resolverFlags
)

func init() {
	rootCmd.AddCommand(doiCmd)
	doiCmd.Flags().StringVar(&doiPDF, "pdf", "", "Extract the DOI from the first pages of a PDF (- for stdin)")
	doiCmd.Flags().BoolVar(&doiResolve, "resolve", false, "Resolve the extracted DOI")
	doiOpts.register(doiCmd)
}

var doiCmd = &cobra.Command{
	Use:   "doi [text]",
	Short: "Extract a DOI from text or a PDF",
	Long: `Extract the first DOI from free text or from the first pages of a PDF.

Examples:
  citenorm doi "see https://doi.org/10.1248/cpb.37.819."
  citenorm doi --pdf paper.pdf --resolve
  curl -sL https://example.org/paper.pdf | citenorm doi --pdf -`,
	Args: func(cmd *cobra.Command, args []string) error {
		if doiPDF == "" && len(args) == 0 {
			return errors.New("requires text or --pdf")
		}
		return nil
	},
	RunE: runDOI,
}

// DOIResponse is the response for the doi command.
type DOIResponse struct {
	DOI      string           `json:"doi"`
	Source   string           `json:"source"`
	Resolved *ResolveResponse `json:"resolved,omitempty"`
}

func runDOI(cmd *cobra.Command, args []string) error {
	resp := DOIResponse{Source: "text"}
	if doiPDF != "" {
		resp.Source = doiPDF
		d, err := extractPDFDOI(doiPDF)
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", doiPDF, err)
		}
		resp.DOI = d
	} else {
		resp.DOI, _ = doi.Extract(strings.Join(args, " "))
	}

	if resp.DOI == "" {
		exitWithError(ExitNoResult, "no DOI found in %s", resp.Source)
	}

	if doiResolve {
		ctx, cancel := signalContext()
		defer cancel()

		ref, err := newResolver(mustLoadConfig(), doiOpts, nil).Resolve(ctx, resp.DOI)
		if err != nil {
			if errors.Is(err, resolver.ErrExhausted) {
				exitWithError(ExitNoResult, "%v", err)
			}
			exitWithError(ExitError, "resolving %s: %v", resp.DOI, err)
		}
		resp.Resolved = &ResolveResponse{Query: resp.DOI, Citation: citation.Assemble(ref), Reference: ref}
	}

	if humanOutput {
		if resp.Resolved != nil {
			printReferenceHuman(*resp.Resolved)
		} else {
			outputHuman("%s\n", resp.DOI)
		}
		return nil
	}
	return outputJSON(resp)
}

// extractPDFDOI reads the PDF at path, or from stdin when path is "-".
func extractPDFDOI(path string) (string, error) {
	if path != "-" {
		return pdf.ExtractDOI(path)
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return pdf.ExtractDOIReader(bytes.NewReader(data), int64(len(data)))
}
