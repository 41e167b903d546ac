package cmd

import (
	"github.com/huangsam/foilact/core"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/spf13/cobra"
)

// parseCmd parses reports without computing activities.
var parseCmd = &cobra.Command{
	Use:   "parse [report...]",
	Short: "Show the metadata and peaks of spectrometry reports.",
	Long: `Parse reports and print their acquisition metadata and peak lists.

Without arguments every regular file of the report directory is parsed. Parsed
reports go through the report cache like a full run.

Examples:
  foilact parse reports/A12_01.txt
  foilact parse --reports-dir reports --output csv --output-file peaks.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteParse(rootCtx, cfg, storeManager, args); err != nil {
			contract.LogFatal("Cannot parse reports", err)
		}
	},
}
