// Package worker provides a worker pool for parallel batch processing.
//
// The worker pool enables efficient parsing and validation of multiple
// CDA documents in parallel, taking advantage of multi-core processors.
//
// Example usage:
//
//	// Create a worker pool with 4 workers
//	pool := worker.NewPool(processor, 4)
//	defer pool.Close()
//
//	// Submit jobs
//	for _, doc := range documents {
//	    pool.Submit(worker.Job{
//	        ID:       "job-1",
//	        Document: doc,
//	    })
//	}
//
//	// Collect results
//	for result := range pool.Results() {
//	    if result.Err != nil {
//	        // Handle error
//	    }
//	    // Process result.Result
//	}
package worker
