package cdaengine

import "runtime"

// Default limits. The parser enforces these before and during the token scan.
const (
	// DefaultMaxDepth is the default maximum element nesting depth.
	DefaultMaxDepth = 256
	// DefaultMaxDocumentSize is the default maximum document size in bytes.
	DefaultMaxDocumentSize = 50 << 20 // 50 MiB
	// DefaultStreamBufferSize is the default chunk size for streaming reads.
	DefaultStreamBufferSize = 64 << 10 // 64 KiB
)

// Option configures the engine.
type Option func(*Options)

// Options holds all configuration for the engine.
type Options struct {
	// Parser limits
	MaxDepth                int
	MaxDocumentSize         int64
	ValidateNamespaces      bool
	ResolveExternalEntities bool

	// Validator behavior
	StopOnFirstError      bool
	MaxErrors             int
	ValidateCDASchema     bool
	CheckConformanceRules bool

	// Performance
	QueryCacheSize   int
	ElementPoolSize  int
	EnablePooling    bool
	EnableInterning  bool
	WorkerCount      int
	StreamBufferSize int

	// Metrics
	CollectMetrics bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		MaxDepth:                DefaultMaxDepth,
		MaxDocumentSize:         DefaultMaxDocumentSize,
		ValidateNamespaces:      true,
		ResolveExternalEntities: false, // never resolved; security default

		StopOnFirstError:      false,
		MaxErrors:             0, // unlimited
		ValidateCDASchema:     true,
		CheckConformanceRules: true,

		QueryCacheSize:   1000,
		ElementPoolSize:  256,
		EnablePooling:    true,
		EnableInterning:  true,
		WorkerCount:      runtime.NumCPU(),
		StreamBufferSize: DefaultStreamBufferSize,

		CollectMetrics: true,
	}
}

// --- Parser Options ---

// WithMaxDepth sets the maximum element nesting depth.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		if depth > 0 {
			o.MaxDepth = depth
		}
	}
}

// WithMaxDocumentSize sets the maximum accepted document size in bytes.
func WithMaxDocumentSize(size int64) Option {
	return func(o *Options) {
		if size > 0 {
			o.MaxDocumentSize = size
		}
	}
}

// WithNamespaceValidation enables or disables namespace resolution checks.
func WithNamespaceValidation(enable bool) Option {
	return func(o *Options) {
		o.ValidateNamespaces = enable
	}
}

// --- Validator Options ---

// WithStopOnFirstError makes validation short-circuit on the first error.
// Partial diagnostics collected up to that point are still returned.
func WithStopOnFirstError(enable bool) Option {
	return func(o *Options) {
		o.StopOnFirstError = enable
	}
}

// WithMaxErrors caps the number of errors collected. Use 0 for unlimited.
func WithMaxErrors(max int) Option {
	return func(o *Options) {
		o.MaxErrors = max
	}
}

// WithCDASchema enables or disables structural CDA schema checks.
func WithCDASchema(enable bool) Option {
	return func(o *Options) {
		o.ValidateCDASchema = enable
	}
}

// WithConformanceRules enables or disables CDA conformance rule checks.
func WithConformanceRules(enable bool) Option {
	return func(o *Options) {
		o.CheckConformanceRules = enable
	}
}

// --- Performance Options ---

// WithQueryCacheSize sets the query result cache capacity.
func WithQueryCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.QueryCacheSize = size
		}
	}
}

// WithElementPoolSize sets the element pool capacity.
func WithElementPoolSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ElementPoolSize = size
		}
	}
}

// WithPooling enables or disables element pooling.
func WithPooling(enable bool) Option {
	return func(o *Options) {
		o.EnablePooling = enable
	}
}

// WithInterning enables or disables string interning.
func WithInterning(enable bool) Option {
	return func(o *Options) {
		o.EnableInterning = enable
	}
}

// WithWorkerCount sets the number of workers for batch processing.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithStreamBufferSize sets the chunk size for streaming extraction.
func WithStreamBufferSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.StreamBufferSize = size
		}
	}
}

// WithMetrics enables or disables metric collection.
func WithMetrics(enable bool) Option {
	return func(o *Options) {
		o.CollectMetrics = enable
	}
}

// --- Presets ---

// StrictOptions returns options for strict validation: every rule enabled and
// validation stops accumulating after the first error.
func StrictOptions() []Option {
	return []Option{
		WithCDASchema(true),
		WithConformanceRules(true),
		WithStopOnFirstError(true),
	}
}

// FastOptions returns options optimized for throughput over completeness.
func FastOptions() []Option {
	return []Option{
		WithConformanceRules(false),
		WithQueryCacheSize(5000),
		WithPooling(true),
		WithInterning(true),
	}
}
