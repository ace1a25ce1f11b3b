package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/enerflux/gridloader"
)

var (
	provisionProject  string
	provisionLocation string
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the bronze, silver and gold datasets",
	Long: `Provision creates the three warehouse datasets the pipeline loads into.
It is a one-time setup step: running it against an already provisioned
project fails with the backend's conflict error.`,
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().StringVar(&provisionProject, "project", os.Getenv("BIGQUERY_PROJECT"), "GCP project id")
	provisionCmd.Flags().StringVar(&provisionLocation, "location", "EU", "dataset location")
}

func runProvision(cmd *cobra.Command, args []string) error {
	if provisionProject == "" {
		return xerrors.New("--project or BIGQUERY_PROJECT is required")
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	return gridloader.Provision(ctx, provisionProject, provisionLocation)
}
