/*

Package gridloader ingests European electricity-system data from the
ENTSO-E transparency platform into BigQuery bronze tables.

For each configured country and document type the pipeline fetches the
window, rewrites source column labels into warehouse-safe identifiers,
stamps provenance (country_code, document_type, ingestion_timestamp) and
appends the rows to the document type's table under an additive
schema-evolution policy. Tasks are independent: a failing combination is
recorded in the run report and the batch continues.

	cfg, err := gridloader.LoadConfig("config.yaml")
	if err != nil {
		log.Fatal(err) // configuration errors are fatal before any task runs
	}

	ctx := context.Background()

	p, err := gridloader.New(ctx, cfg,
		gridloader.WithConcurrency(4),
		gridloader.WithRateLimit(2),
	)
	if err != nil {
		log.Fatal(err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -cfg.WindowDays)

	report, err := p.Run(ctx, start, end)
	if err != nil {
		log.Fatal(err) // only total source unreachability lands here
	}

	fmt.Print(report.Summary())

The corresponding config.yaml:

	countries:
	  - FR
	  - DE
	documents:
	  - type: A75
	    name: Actual generation per type
	  - type: A68
	    name: Installed capacity per type
	window_days: 30

Secrets come from the environment: ENTSOE_API_TOKEN, BIGQUERY_PROJECT and
BIGQUERY_DATASET are required; ARCHIVE_BUCKET enables raw payload archival
to Cloud Storage, SLACK_TOKEN and SLACK_CHANNEL enable run notifications.

*/
package gridloader
