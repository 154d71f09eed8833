package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdaengine "github.com/gocda/engine"
	"github.com/gocda/engine/parser"
	"github.com/gocda/engine/validator"
)

// newTestProcessor parses and validates with conformance rules only, so a
// bare well-formed element counts as valid.
func newTestProcessor() Processor {
	p := parser.New(parser.DefaultConfig())
	v := validator.New(validator.WithCDASchema(false))

	return ProcessorFunc(func(ctx context.Context, doc []byte) (*cdaengine.ValidationResult, error) {
		parsed, err := p.Parse(doc)
		if err != nil {
			return nil, err
		}
		return v.ValidateDocument(parsed), nil
	})
}

func TestPoolProcessesJobs(t *testing.T) {
	pool := NewPool(newTestProcessor(), 2)

	for i := 0; i < 5; i++ {
		ok := pool.Submit(Job{ID: "job", Document: []byte("<section><title>t</title></section>")})
		require.True(t, ok)
	}

	batch := pool.CloseAndWait()
	assert.Equal(t, 5, batch.TotalJobs)
	assert.Equal(t, 5, batch.CompletedJobs)
	assert.Zero(t, batch.FailedJobs)
	assert.False(t, batch.HasErrors())
	require.Len(t, batch.Results, 5)
	for _, r := range batch.Results {
		assert.Equal(t, "job", r.ID)
		require.NotNil(t, r.Result)
		assert.True(t, r.Result.Valid)
	}
}

func TestPoolReportsParseFailures(t *testing.T) {
	pool := NewPool(newTestProcessor(), 2)

	require.True(t, pool.Submit(Job{ID: "good", Document: []byte("<a/>")}))
	require.True(t, pool.Submit(Job{ID: "bad", Document: []byte("<a><b></a>")}))

	batch := pool.CloseAndWait()
	assert.Equal(t, 1, batch.FailedJobs)
	assert.True(t, batch.HasErrors())

	var badResult *JobResult
	for _, r := range batch.Results {
		if r.ID == "bad" {
			badResult = r
		}
	}
	require.NotNil(t, badResult)
	assert.Error(t, badResult.Err)
	assert.Nil(t, badResult.Result)
}

func TestPoolRejectsAfterClose(t *testing.T) {
	pool := NewPool(newTestProcessor(), 1)
	pool.Close()

	assert.False(t, pool.Submit(Job{Document: []byte("<a/>")}))
	assert.False(t, pool.SubmitAsync(Job{Document: []byte("<a/>")}))
}

func TestPoolCloseIsIdempotent(t *testing.T) {
	pool := NewPool(newTestProcessor(), 1)
	pool.Close()
	pool.Close()

	batch := pool.CloseAndWait()
	assert.Zero(t, batch.TotalJobs)
}

func TestPoolStats(t *testing.T) {
	pool := NewPool(newTestProcessor(), 3)

	require.True(t, pool.Submit(Job{Document: []byte("<a/>")}))
	batch := pool.CloseAndWait()
	require.Equal(t, 1, batch.CompletedJobs)

	stats := pool.Stats()
	assert.Equal(t, 3, stats.Workers)
	assert.Equal(t, uint64(1), stats.JobsSubmitted)
	assert.Equal(t, uint64(1), stats.JobsCompleted)
}

func TestPoolWithoutProcessor(t *testing.T) {
	pool := NewPool(nil, 1)
	require.True(t, pool.Submit(Job{ID: "x", Document: []byte("<a/>")}))

	batch := pool.CloseAndWait()
	require.Len(t, batch.Results, 1)
	assert.ErrorIs(t, batch.Results[0].Err, ErrNoProcessor)
}

func TestBatchProcessorSequential(t *testing.T) {
	bp := NewBatchProcessor(newTestProcessor(), 4)

	docs := [][]byte{
		[]byte("<a/>"),
		[]byte("<b/>"),
	}

	batch := bp.ProcessBatch(context.Background(), docs)
	assert.Equal(t, 2, batch.TotalJobs)
	assert.Equal(t, 2, batch.CompletedJobs)
	require.Len(t, batch.Results, 2)
	for _, r := range batch.Results {
		assert.NotEmpty(t, r.ID)
		assert.NoError(t, r.Err)
	}
}

func TestBatchProcessorParallel(t *testing.T) {
	bp := NewBatchProcessor(newTestProcessor(), 4)

	docs := make([][]byte, 20)
	for i := range docs {
		docs[i] = []byte("<section><title>t</title></section>")
	}

	batch := bp.ProcessBatch(context.Background(), docs)
	assert.Equal(t, 20, batch.TotalJobs)
	assert.Equal(t, 20, batch.CompletedJobs)
	assert.Zero(t, batch.FailedJobs)
	assert.False(t, batch.HasErrors())

	// Every job got a distinct minted ID.
	seen := make(map[string]bool, len(batch.Results))
	for _, r := range batch.Results {
		assert.False(t, seen[r.ID])
		seen[r.ID] = true
	}
}

func TestBatchProcessorEmpty(t *testing.T) {
	bp := NewBatchProcessor(newTestProcessor(), 2)
	batch := bp.ProcessBatch(context.Background(), nil)
	assert.Zero(t, batch.TotalJobs)
	assert.Empty(t, batch.Results)
}
