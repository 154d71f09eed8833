package cdaengine

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRegisters(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector(m)))
}

func TestCollectorExportsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordParse(true)
	m.RecordParse(false)
	m.RecordValidation(time.Millisecond, true)
	m.RecordCacheHit()
	m.RecordIssue(SeverityError)

	c := NewCollector(m)

	expected := `
# HELP cda_parses_total Total number of parse calls.
# TYPE cda_parses_total counter
cda_parses_total 2
# HELP cda_parses_failed_total Number of failed parse calls.
# TYPE cda_parses_failed_total counter
cda_parses_failed_total 1
# HELP cda_query_cache_hits_total Query cache hits.
# TYPE cda_query_cache_hits_total counter
cda_query_cache_hits_total 1
# HELP cda_validation_errors_total Validation error issues found.
# TYPE cda_validation_errors_total counter
cda_validation_errors_total 1
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"cda_parses_total", "cda_parses_failed_total",
		"cda_query_cache_hits_total", "cda_validation_errors_total")
	assert.NoError(t, err)
}

func TestCollectorExportsPhaseLabels(t *testing.T) {
	m := NewMetrics()
	m.RecordPhase("structure", 2*time.Second, 1)
	m.RecordPhase("codes", time.Second, 0)

	c := NewCollector(m)

	expected := `
# HELP cda_phase_invocations_total Invocations per validation phase.
# TYPE cda_phase_invocations_total counter
cda_phase_invocations_total{phase="codes"} 1
cda_phase_invocations_total{phase="structure"} 1
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"cda_phase_invocations_total")
	assert.NoError(t, err)
}
