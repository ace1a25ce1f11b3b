package gridloader

import "time"

// Provenance columns attached to every loaded record.
const (
	ColCountryCode        = "country_code"
	ColDocumentType       = "document_type"
	ColIngestionTimestamp = "ingestion_timestamp"
)

// Enrich stamps provenance onto every record in the batch: the originating
// country, the document type and the capture instant. Business fields are
// never touched; provenance from an earlier run of the same task is
// overwritten, so replays stay idempotent.
func Enrich(records []Record, country string, doc DocumentType, capturedAt time.Time) {
	for _, r := range records {
		r[ColCountryCode] = country
		r[ColDocumentType] = string(doc)
		r[ColIngestionTimestamp] = capturedAt
	}
}
