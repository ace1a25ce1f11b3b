package gridloader

import (
	"errors"
	"fmt"
)

// ErrNoData reports that the transparency platform published nothing for a
// task's country, document type and window. This is an expected outcome, not
// a fault.
var ErrNoData = errors.New("no matching data published")

// ErrEmptyColumn reports a source label that normalizes to an empty
// identifier.
var ErrEmptyColumn = errors.New("label normalizes to empty identifier")

// ConfigError reports a configuration or code mismatch. It is fatal: the
// pipeline refuses to run any task.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config: %v", e.Err) }

func (e *ConfigError) Unwrap() error { return e.Err }

// SourceError reports a transient failure talking to the transparency
// platform. The failing task is recorded and the batch continues.
type SourceError struct {
	Reason string
	Err    error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("source: %s", e.Reason)
}

func (e *SourceError) Unwrap() error { return e.Err }

// LoadError reports that the warehouse rejected a batch.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load into %s: %v", e.Table, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }
