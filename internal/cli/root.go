// Package cli provides the gridloader command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "gridloader",
	Short: "Ingest ENTSO-E electricity data into BigQuery",
	Long: `Gridloader pulls generation, forecast and installed-capacity data from
the ENTSO-E transparency platform and loads it into BigQuery bronze
tables, one table per document type, with provenance on every row.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(provisionCmd)
}
