package cmd

import (
	"github.com/huangsam/foilact/core"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/spf13/cobra"
)

// calibrateCmd fits the efficiency curves.
var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Fit and summarize detector efficiency curves.",
	Long: `Fit one efficiency curve per detector and level from the configured workbooks
and print the number of usable lines, the energy range, the MSE and the adjusted R².

Examples:
  foilact calibrate --degree 4
  foilact calibrate --energies 511,909.15,1332.5 --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		energies, err := cmd.Flags().GetFloat64Slice("energies")
		if err != nil {
			contract.LogFatal("Invalid energies", err)
		}
		if err := core.ExecuteCalibrate(rootCtx, cfg, energies); err != nil {
			contract.LogFatal("Cannot fit efficiencies", err)
		}
	},
}
