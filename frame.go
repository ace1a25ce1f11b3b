package gridloader

import "cloud.google.com/go/bigquery"

// Value is a single cell value: string, numeric, time.Time or nil.
type Value = bigquery.Value

// Record is one row keyed by canonical column name.
type Record map[string]Value

// Frame is one tabular fetch result for a task. Columns carry the
// source-provided labels until normalization rewrites them.
type Frame struct {
	Columns []string
	Rows    [][]Value
}

// Empty reports whether the frame holds no rows.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Rows) == 0
}

// Records converts the frame into keyed records using the current column
// names. Cells beyond a row's length and nil cells are omitted, so absent
// values stay absent in the destination rather than loading as empty
// strings.
func (f *Frame) Records() []Record {
	records := make([]Record, len(f.Rows))

	for i, row := range f.Rows {
		r := make(Record, len(f.Columns))
		for j, col := range f.Columns {
			if j >= len(row) || row[j] == nil {
				continue
			}
			r[col] = row[j]
		}
		records[i] = r
	}

	return records
}
