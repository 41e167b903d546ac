package cmd

import (
	"os"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd prints the resolved configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration as YAML.",
	Long: `Resolve defaults, the config file, FOILACT_* environment variables and flags, validate
the result, and print it in the .foilact.yaml format. Connection strings are omitted.

Examples:
  foilact config > .foilact.yaml
  FOILACT_DEGREE=5 foilact config`,
	Args: cobra.NoArgs,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return resolveConfig()
	},
	Run: func(_ *cobra.Command, _ []string) {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		if err := enc.Encode(input); err != nil {
			contract.LogFatal("Cannot encode configuration", err)
		}
	},
}
