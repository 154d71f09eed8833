package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// sequentialThreshold is the batch size below which documents are
// processed inline rather than through the pool.
const sequentialThreshold = 2

// BatchProcessor processes batches of documents using a worker pool.
type BatchProcessor struct {
	processor Processor
	workers   int
}

// NewBatchProcessor creates a batch processor backed by the given
// Processor with the specified worker count.
func NewBatchProcessor(processor Processor, workers int) *BatchProcessor {
	return &BatchProcessor{
		processor: processor,
		workers:   workers,
	}
}

// ProcessBatch processes a batch of documents and returns aggregated results.
// Small batches run sequentially; larger batches fan out across the pool.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, documents [][]byte) *BatchResult {
	if len(documents) == 0 {
		return &BatchResult{}
	}

	if len(documents) <= sequentialThreshold {
		return bp.processSequential(ctx, documents)
	}

	pool := NewPool(bp.processor, bp.workers)

	for _, doc := range documents {
		job := Job{
			ID:       uuid.New().String(),
			Document: doc,
		}
		if !pool.Submit(job) {
			break
		}
	}

	return pool.CloseAndWait()
}

func (bp *BatchProcessor) processSequential(ctx context.Context, documents [][]byte) *BatchResult {
	start := time.Now()
	results := make([]*JobResult, 0, len(documents))
	failed := 0

	for _, doc := range documents {
		if ctx.Err() != nil {
			break
		}

		jobStart := time.Now()
		result := &JobResult{ID: uuid.New().String()}

		validation, err := bp.processor.Process(ctx, doc)
		if err != nil {
			result.Err = err
			failed++
		}
		result.Result = validation
		result.Duration = time.Since(jobStart)
		results = append(results, result)
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     len(documents),
		CompletedJobs: len(results),
		FailedJobs:    failed,
		TotalDuration: time.Since(start),
	}
}
