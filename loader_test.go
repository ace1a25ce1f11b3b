package gridloader

import (
	"testing"
	"time"
)

func TestEncodable_timestamps(t *testing.T) {
	at := time.Date(2024, 3, 1, 13, 30, 0, 0, time.FixedZone("CET", 3600))

	out := encodable(Record{
		"ingestion_timestamp": at,
		"fossil_gas":          812.0,
		"country_code":        "FR",
	})

	if out["ingestion_timestamp"] != "2024-03-01T12:30:00Z" {
		t.Errorf("timestamp = %v, want RFC 3339 UTC string", out["ingestion_timestamp"])
	}
	if out["fossil_gas"] != 812.0 {
		t.Errorf("fossil_gas = %v, want untouched 812", out["fossil_gas"])
	}
	if out["country_code"] != "FR" {
		t.Errorf("country_code = %v, want untouched FR", out["country_code"])
	}
}
