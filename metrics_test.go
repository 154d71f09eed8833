package cdaengine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordParse(t *testing.T) {
	m := NewMetrics()

	m.RecordParse(true)
	m.RecordParse(true)
	m.RecordParse(false)

	assert.Equal(t, uint64(3), m.ParsesTotal())
	assert.Equal(t, uint64(1), m.ParsesFailed())
}

func TestRecordValidationTiming(t *testing.T) {
	m := NewMetrics()

	m.RecordValidation(10*time.Millisecond, true)
	m.RecordValidation(30*time.Millisecond, false)
	m.RecordValidation(20*time.Millisecond, true)

	assert.Equal(t, uint64(3), m.ValidationsTotal())
	assert.Equal(t, uint64(2), m.ValidationsValid())
	assert.Equal(t, 10*time.Millisecond, m.MinValidationTime())
	assert.Equal(t, 30*time.Millisecond, m.MaxValidationTime())
	assert.Equal(t, 20*time.Millisecond, m.AverageValidationTime())
}

func TestEmptyMetrics(t *testing.T) {
	m := NewMetrics()

	assert.Zero(t, m.MinValidationTime())
	assert.Zero(t, m.MaxValidationTime())
	assert.Zero(t, m.AverageValidationTime())
	assert.Zero(t, m.CacheHitRate())
}

func TestCacheAndPoolCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordPoolAcquire()
	m.RecordPoolRelease()

	assert.Equal(t, uint64(2), m.CacheHits())
	assert.Equal(t, uint64(1), m.CacheMisses())
	assert.InDelta(t, 2.0/3.0, m.CacheHitRate(), 1e-9)
	assert.Equal(t, uint64(1), m.PoolAcquires())
	assert.Equal(t, uint64(1), m.PoolReleases())
}

func TestRecordIssue(t *testing.T) {
	m := NewMetrics()

	m.RecordIssue(SeverityError)
	m.RecordIssue(SeverityFatal)
	m.RecordIssue(SeverityWarning)

	assert.Equal(t, uint64(2), m.ErrorsTotal())
	assert.Equal(t, uint64(1), m.WarningsTotal())
}

func TestPhaseMetrics(t *testing.T) {
	m := NewMetrics()

	m.RecordPhase("structure", 5*time.Millisecond, 2)
	m.RecordPhase("structure", 15*time.Millisecond, 0)
	m.RecordPhase("codes", 1*time.Millisecond, 1)

	stats, ok := m.PhaseStats("structure")
	require.True(t, ok)
	assert.Equal(t, uint64(2), stats.Invocations)
	assert.Equal(t, 20*time.Millisecond, stats.TotalTime)
	assert.Equal(t, 10*time.Millisecond, stats.AvgTime)
	assert.Equal(t, uint64(2), stats.IssuesFound)

	_, ok = m.PhaseStats("missing")
	assert.False(t, ok)

	assert.Len(t, m.AllPhaseStats(), 2)
}

func TestSnapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordParse(true)
	m.RecordValidation(10*time.Millisecond, true)
	m.RecordValidation(20*time.Millisecond, false)
	m.RecordCacheHit()
	m.RecordPhase("codes", time.Millisecond, 0)

	s := m.Snapshot()
	assert.Equal(t, uint64(1), s.ParsesTotal)
	assert.Equal(t, uint64(2), s.ValidationsTotal)
	assert.InDelta(t, 0.5, s.ValidationRate, 1e-9)
	assert.Equal(t, uint64(10_000_000), s.MinValidationTimeNs)
	assert.Equal(t, uint64(20_000_000), s.MaxValidationTimeNs)
	assert.Equal(t, uint64(1), s.CacheHits)
	require.Len(t, s.Phases, 1)
	assert.Equal(t, "codes", s.Phases[0].Name)
}

func TestReset(t *testing.T) {
	m := NewMetrics()

	m.RecordParse(false)
	m.RecordValidation(time.Millisecond, true)
	m.RecordPhase("structure", time.Millisecond, 1)
	m.Reset()

	assert.Zero(t, m.ParsesTotal())
	assert.Zero(t, m.ValidationsTotal())
	assert.Zero(t, m.MinValidationTime())
	assert.Empty(t, m.AllPhaseStats())
}

func TestMetricsConcurrency(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordParse(true)
				m.RecordValidation(time.Millisecond, true)
				m.RecordCacheHit()
				m.RecordPhase("structure", time.Microsecond, 0)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(800), m.ParsesTotal())
	assert.Equal(t, uint64(800), m.ValidationsTotal())
	assert.Equal(t, uint64(800), m.CacheHits())

	stats, ok := m.PhaseStats("structure")
	require.True(t, ok)
	assert.Equal(t, uint64(800), stats.Invocations)
}
