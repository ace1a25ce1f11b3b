package gridloader

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
)

// loader appends enriched records to a destination table.
type loader interface {
	load(ctx context.Context, table string, records []Record) error
}

type bigqueryLoader struct {
	dataset *bigquery.Dataset
}

func newBigQueryLoader(ctx context.Context, project, dataset string) (loader, error) {
	bq, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, err
	}

	return &bigqueryLoader{dataset: bq.Dataset(dataset)}, nil
}

func (l *bigqueryLoader) load(ctx context.Context, table string, records []Record) error {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	for _, r := range records {
		if err := enc.Encode(encodable(r)); err != nil {
			return &LoadError{Table: table, Err: err}
		}
	}

	rs := bigquery.NewReaderSource(buf)
	rs.SourceFormat = bigquery.JSON
	rs.AutoDetect = true

	ld := l.dataset.Table(table).LoaderFrom(rs)
	ld.WriteDisposition = bigquery.WriteAppend
	ld.CreateDisposition = bigquery.CreateIfNeeded

	// Schema evolution is additive only: new countries may introduce new
	// columns, existing columns are never dropped or retyped. The policy is
	// requested explicitly on every load rather than assumed of the table.
	ld.SchemaUpdateOptions = []string{"ALLOW_FIELD_ADDITION"}

	job, err := ld.Run(ctx)
	if err != nil {
		return &LoadError{Table: table, Err: err}
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return &LoadError{Table: table, Err: err}
	}

	if err := status.Err(); err != nil {
		log.Ctx(ctx).Error().Str("table", table).Msgf("load job errors: %v", status.Errors)
		return &LoadError{Table: table, Err: err}
	}

	return nil
}

// encodable rewrites time values as RFC 3339 strings so schema autodetect
// types them as TIMESTAMP.
func encodable(r Record) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		if t, ok := v.(time.Time); ok {
			out[k] = t.UTC().Format(time.RFC3339)
			continue
		}
		out[k] = v
	}
	return out
}
