package gridloader

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

// layers are the medallion datasets the warehouse is organized into.
var layers = []struct {
	name        string
	description string
}{
	{"bronze", "Raw ENTSO-E data as ingested, one table per document type"},
	{"silver", "Cleaned and conformed electricity-system data"},
	{"gold", "Analytics-ready aggregates for energy transition analysis"},
}

// Provision creates the bronze, silver and gold datasets in the given
// project and location. Creating a dataset that already exists surfaces
// the backend's conflict error; the operator decides what to do with a
// partially provisioned project.
func Provision(ctx context.Context, project, location string) error {
	bq, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return xerrors.Errorf("failed to build bigquery client: %w", err)
	}
	defer bq.Close()

	l := log.Ctx(ctx)

	for _, layer := range layers {
		md := &bigquery.DatasetMetadata{
			Location:    location,
			Description: layer.description,
		}

		if err := bq.Dataset(layer.name).Create(ctx, md); err != nil {
			return xerrors.Errorf("failed to create dataset %s: %w", layer.name, err)
		}

		l.Info().Str("dataset", layer.name).Str("location", location).Msg("dataset created")
	}

	return nil
}
