package cdaengine

import "github.com/prometheus/client_golang/prometheus"

// Collector adapts a Metrics instance to the Prometheus collector interface
// so the engine's counters can be scraped alongside application metrics.
// Register it with prometheus.MustRegister(cdaengine.NewCollector(metrics)).
type Collector struct {
	metrics *Metrics

	parsesTotal      *prometheus.Desc
	parsesFailed     *prometheus.Desc
	validationsTotal *prometheus.Desc
	validationsValid *prometheus.Desc
	cacheHits        *prometheus.Desc
	cacheMisses      *prometheus.Desc
	poolAcquires     *prometheus.Desc
	poolReleases     *prometheus.Desc
	errorsTotal      *prometheus.Desc
	warningsTotal    *prometheus.Desc
	phaseTime        *prometheus.Desc
	phaseInvocations *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Prometheus collector over the given metrics.
func NewCollector(m *Metrics) *Collector {
	return &Collector{
		metrics: m,
		parsesTotal: prometheus.NewDesc(
			"cda_parses_total", "Total number of parse calls.", nil, nil),
		parsesFailed: prometheus.NewDesc(
			"cda_parses_failed_total", "Number of failed parse calls.", nil, nil),
		validationsTotal: prometheus.NewDesc(
			"cda_validations_total", "Total number of validations performed.", nil, nil),
		validationsValid: prometheus.NewDesc(
			"cda_validations_valid_total", "Number of validations that found no errors.", nil, nil),
		cacheHits: prometheus.NewDesc(
			"cda_query_cache_hits_total", "Query cache hits.", nil, nil),
		cacheMisses: prometheus.NewDesc(
			"cda_query_cache_misses_total", "Query cache misses.", nil, nil),
		poolAcquires: prometheus.NewDesc(
			"cda_element_pool_acquires_total", "Element pool acquire operations.", nil, nil),
		poolReleases: prometheus.NewDesc(
			"cda_element_pool_releases_total", "Element pool release operations.", nil, nil),
		errorsTotal: prometheus.NewDesc(
			"cda_validation_errors_total", "Validation error issues found.", nil, nil),
		warningsTotal: prometheus.NewDesc(
			"cda_validation_warnings_total", "Validation warning issues found.", nil, nil),
		phaseTime: prometheus.NewDesc(
			"cda_phase_time_seconds_total", "Cumulative time spent per validation phase.", []string{"phase"}, nil),
		phaseInvocations: prometheus.NewDesc(
			"cda_phase_invocations_total", "Invocations per validation phase.", []string{"phase"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.parsesTotal
	ch <- c.parsesFailed
	ch <- c.validationsTotal
	ch <- c.validationsValid
	ch <- c.cacheHits
	ch <- c.cacheMisses
	ch <- c.poolAcquires
	ch <- c.poolReleases
	ch <- c.errorsTotal
	ch <- c.warningsTotal
	ch <- c.phaseTime
	ch <- c.phaseInvocations
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.metrics.Snapshot()

	counter := func(desc *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
	}

	counter(c.parsesTotal, s.ParsesTotal)
	counter(c.parsesFailed, s.ParsesFailed)
	counter(c.validationsTotal, s.ValidationsTotal)
	counter(c.validationsValid, s.ValidationsValid)
	counter(c.cacheHits, s.CacheHits)
	counter(c.cacheMisses, s.CacheMisses)
	counter(c.poolAcquires, s.PoolAcquires)
	counter(c.poolReleases, s.PoolReleases)
	counter(c.errorsTotal, s.ErrorsTotal)
	counter(c.warningsTotal, s.WarningsTotal)

	for _, phase := range s.Phases {
		ch <- prometheus.MustNewConstMetric(
			c.phaseTime, prometheus.CounterValue, phase.TotalTime.Seconds(), phase.Name)
		counter(c.phaseInvocations, phase.Invocations, phase.Name)
	}
}
