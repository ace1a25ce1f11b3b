package gridloader

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the outcome of a single task.
type TaskStatus int

// Task outcomes.
const (
	StatusLoaded TaskStatus = iota
	StatusEmpty
	StatusFailed
)

func (s TaskStatus) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("TaskStatus(%d)", int(s))
	}
}

// TaskResult is the typed outcome of one task: loaded with a row count,
// empty, or failed with the cause.
type TaskResult struct {
	Task   Task
	Status TaskStatus
	Rows   int
	Err    error
}

// Report aggregates the outcomes of a whole run. A run always produces a
// report; per-task failures live here instead of aborting the batch.
type Report struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Results   []TaskResult
}

// Loaded returns the number of tasks that loaded rows.
func (r *Report) Loaded() int { return r.count(StatusLoaded) }

// Empty returns the number of tasks with no published data.
func (r *Report) Empty() int { return r.count(StatusEmpty) }

// Failed returns the number of failed tasks.
func (r *Report) Failed() int { return r.count(StatusFailed) }

// AllFailed reports whether every task failed, which indicates the source
// was unreachable for the whole run.
func (r *Report) AllFailed() bool {
	return len(r.Results) > 0 && r.Failed() == len(r.Results)
}

func (r *Report) count(s TaskStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Summary renders the per-task outcomes for operator triage.
func (r *Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "run %s: %d loaded, %d empty, %d failed (%s)\n",
		r.RunID, r.Loaded(), r.Empty(), r.Failed(), r.Duration.Round(time.Millisecond))

	for _, res := range r.Results {
		switch res.Status {
		case StatusLoaded:
			fmt.Fprintf(&b, "  %s: loaded %d rows\n", res.Task, res.Rows)
		case StatusEmpty:
			fmt.Fprintf(&b, "  %s: empty\n", res.Task)
		case StatusFailed:
			fmt.Fprintf(&b, "  %s: failed: %v\n", res.Task, res.Err)
		}
	}

	return b.String()
}
