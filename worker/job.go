package worker

import (
	"time"

	cqm "github.com/gofhir/cqm"
	"github.com/gofhir/cqm/timeframe"
)

// Job asks for one subject to be evaluated over one measurement period.
type Job struct {
	// SubjectID identifies the subject to evaluate.
	SubjectID string

	// Period is the measurement period to evaluate over.
	Period timeframe.Timeframe
}

// JobResult is the outcome of one job.
type JobResult struct {
	// SubjectID matches the Job.SubjectID that produced this result.
	SubjectID string

	// Result is the evaluation outcome, nil when Err is set.
	Result *cqm.Result

	// Err is the evaluation failure, nil on success.
	Err error

	// Duration is the time the evaluation took.
	Duration time.Duration
}

// SubjectError records one subject that could not be evaluated.
type SubjectError struct {
	SubjectID string
	Err       error
}

// Error implements error.
func (e SubjectError) Error() string {
	return "subject " + e.SubjectID + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e SubjectError) Unwrap() error {
	return e.Err
}

// BatchResult aggregates a batch run. Every submitted subject appears in
// exactly one of Results or Errors.
type BatchResult struct {
	// Results holds the successful evaluations.
	Results []*cqm.Result

	// Errors holds one entry per subject that failed.
	Errors []SubjectError

	// Total is the number of jobs submitted.
	Total int

	// Completed is the number of jobs finished, including failures.
	Completed int

	// Failed is the number of jobs that ended in error.
	Failed int

	// TotalDuration is the summed evaluation time across all jobs.
	TotalDuration time.Duration
}

// HasErrors reports whether any subject failed.
func (br *BatchResult) HasErrors() bool {
	return len(br.Errors) > 0
}

// CountByStatus returns how many successful results carry the status.
func (br *BatchResult) CountByStatus(status cqm.Status) int {
	n := 0
	for _, r := range br.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}
