package worker

import (
	"time"

	cdaengine "github.com/gocda/engine"
)

// Job represents one document to parse and validate.
type Job struct {
	// ID is a unique identifier for this job. Batch helpers mint one when
	// it is empty.
	ID string

	// Document is the raw CDA document bytes.
	Document []byte
}

// JobResult represents the outcome of one job.
type JobResult struct {
	// ID matches the Job.ID that produced this result.
	ID string

	// Result contains the validation result. It is nil when the document
	// failed to parse.
	Result *cdaengine.ValidationResult

	// Err contains the parse or processing error, if any.
	Err error

	// Duration is the time taken to process the job.
	Duration time.Duration
}

// BatchResult aggregates results from multiple jobs.
type BatchResult struct {
	// Results contains all job results in completion order.
	Results []*JobResult

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs is the number of jobs completed (including errors).
	CompletedJobs int

	// FailedJobs is the number of jobs that failed with an error.
	FailedJobs int

	// TotalDuration is the summed processing time across all jobs.
	TotalDuration time.Duration
}

// HasErrors returns true if any job failed or any result has validation
// errors.
func (br *BatchResult) HasErrors() bool {
	for _, r := range br.Results {
		if r == nil {
			continue
		}
		if r.Err != nil {
			return true
		}
		if r.Result != nil && r.Result.HasErrors() {
			return true
		}
	}
	return false
}

// ErrorCount returns the total number of validation errors across all
// results.
func (br *BatchResult) ErrorCount() int {
	count := 0
	for _, r := range br.Results {
		if r != nil && r.Result != nil {
			count += r.Result.ErrorCount()
		}
	}
	return count
}
