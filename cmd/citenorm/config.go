package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OBrink/citation-normalisation/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set values in ~/.config/citenorm/config.yml.

Usage:
  citenorm config                            # Show all config
  citenorm config workers                    # Get specific value
  citenorm config crossref-mailto me@lab.org # Set value

Keys:
  ncbi-api-key     NCBI E-utilities API key (or NCBI_API_KEY)
  ncbi-email       Contact address sent to NCBI
  crossref-mailto  Contact address for Crossref's polite pool (or CROSSREF_MAILTO)
  workers          Concurrent resolutions in batch and recheck
  retries          Attempts for transient Crossref errors
  scholar-enabled  Use the Google Scholar fallback (true/false)
  checkpoint-path  Default first-pass checkpoint file
  db-path          Default store database`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	// No args: show all config
	if len(args) == 0 {
		values := make(map[string]string)
		for _, key := range config.Keys() {
			v, _ := cfg.Get(key)
			values[key] = v
		}
		if humanOutput {
			for _, key := range config.Keys() {
				outputHuman("%-16s %s\n", strings.ReplaceAll(key, "_", "-")+":", values[key])
			}
			return nil
		}
		return outputJSON(values)
	}

	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		v, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		if humanOutput {
			fmt.Println(v)
			return nil
		}
		return outputJSON(map[string]string{key: v})
	}

	// Two args: set value. Reload the file alone so that environment
	// overrides are not written back.
	config.ResetGlobalConfigCache()
	fileCfg, err := config.LoadFileConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := fileCfg.Set(key, args[1]); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := config.SaveGlobalConfig(fileCfg); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	value, _ := fileCfg.Get(key)
	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	}
	return outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
}

// normalizeKey accepts both dashed and underscored key spellings.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}
