package cmd

import (
	"github.com/huangsam/foilact/core"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/spf13/cobra"
)

// predictCmd predicts EoB activities from the reference data alone.
var predictCmd = &cobra.Command{
	Use:   "predict [target...]",
	Short: "Predict EoB activities from monitor cross-sections.",
	Long: `Predict the end-of-bombardment activity of every radionuclide in the given
targets, or in every target of the irradiation log, from the monitor cross-section
tables. No reports are needed.

Examples:
  foilact predict
  foilact predict A12 B07 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecutePredict(rootCtx, cfg, args); err != nil {
			contract.LogFatal("Cannot predict activities", err)
		}
	},
}
