package cmd

import (
	"github.com/huangsam/foilact/core"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/spf13/cobra"
)

// runCmd runs the full activity pipeline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute EoB activities for every irradiated target.",
	Long: `Run the complete pipeline over the report directory.

For every target in the irradiation log:
- Match the peaks of each report to the tabulated gamma lines
- Correct net areas for dead time, decay and detector efficiency
- Extrapolate every line to end of bombardment and average per nuclide
- Compute thin-target yields and compare with cross-section predictions

Reports that cannot be parsed or belong to no listed target are skipped with a
warning. Missing reference data is fatal.

Examples:
  # Text table with defaults from .foilact.yaml
  foilact run

  # Genie2K reports to a results workbook, one sheet per material
  foilact run --software genie2k --output xlsx --output-file results.xlsx

  # Record the run in a SQLite result store
  foilact run --store-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRun(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run pipeline", err)
		}
	},
}
