package gridloader

import "golang.org/x/xerrors"

// DocumentType identifies an ENTSO-E document category.
type DocumentType string

// Document types the pipeline understands.
const (
	DocActualGeneration  DocumentType = "A75"
	DocGenerationPerUnit DocumentType = "A73"
	DocInstalledCapacity DocumentType = "A68"
)

// destinationTables is the single place a document type is bound to a
// table. Every document type lands in exactly one table and no two share
// one, regardless of country or window, so each table's schema accumulates
// consistently across loads.
var destinationTables = map[DocumentType]string{
	DocActualGeneration:  "generation_actual",
	DocGenerationPerUnit: "generation_per_unit",
	DocInstalledCapacity: "installed_capacity",
}

// TableFor returns the destination table for a document type. An unknown
// code is a configuration mismatch, not a transient fault.
func TableFor(doc DocumentType) (string, error) {
	table, ok := destinationTables[doc]
	if !ok {
		return "", &ConfigError{Err: xerrors.Errorf("unknown document type %q", doc)}
	}
	return table, nil
}
