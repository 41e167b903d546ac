package cmd

import (
	"github.com/huangsam/foilact/core"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// transportCmd fits the energy distribution of protons leaving a target stack.
var transportCmd = &cobra.Command{
	Use:   "transport",
	Short: "Fit the transmitted beam energy from an ion transport simulation.",
	Long: `Run the configured ion transport executable on a YAML input deck, or read an
existing TRANSMIT.txt, and fit a normal distribution to the transmitted energies.

The mean and sigma are the beam energy and its uncertainty to enter in the beam
characteristics workbook for the simulated degrader.

Examples:
  # Simulate a deck with the configured executable
  foilact transport --deck stack.yaml --simulator /opt/srim/TRIM.exe

  # Fit an existing simulation output
  foilact transport --transport-output ./srim-run`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTransport(rootCtx, cfg, viper.GetString("deck"), viper.GetString("transport-output")); err != nil {
			contract.LogFatal("Cannot fit transmitted energies", err)
		}
	},
}
