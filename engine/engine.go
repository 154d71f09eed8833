// Package engine provides the main CDA processing engine.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	cda "github.com/gocda/engine"
	"github.com/gocda/engine/cache"
	"github.com/gocda/engine/document"
	"github.com/gocda/engine/intern"
	"github.com/gocda/engine/parser"
	"github.com/gocda/engine/pkg/logger"
	"github.com/gocda/engine/pool"
	"github.com/gocda/engine/serializer"
	"github.com/gocda/engine/validator"
	"github.com/gocda/engine/worker"
	"github.com/gocda/engine/xpath"
)

const tracerName = "github.com/gocda/engine"

// ErrNoDocument reports a query against a nil document or one without a
// root element.
var ErrNoDocument = errors.New("no document to query")

// Engine is the main CDA document processing engine.
// It coordinates parsing, querying, validation and serialization and
// manages the shared performance layer.
type Engine struct {
	// Configuration
	release cda.CDARelease
	options *cda.Options

	// Components
	parser    *parser.Parser
	validator *validator.Validator

	// Performance layer
	queryCache  *cache.QueryCache
	elementPool *pool.ElementPool
	interner    *intern.Interner

	// Observability
	metrics *cda.Metrics
	log     *logger.Logger
	tracer  trace.Tracer

	// Worker pool for batch processing
	workerPool     chan struct{}
	workerPoolOnce sync.Once
}

// New creates a new Engine for the given CDA release.
func New(ctx context.Context, release cda.CDARelease, opts ...cda.Option) (*Engine, error) {
	options := cda.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	e := &Engine{
		release: release,
		options: options,
		metrics: cda.NewMetrics(),
		log:     logger.Default().WithComponent("engine"),
		tracer:  otel.Tracer(tracerName),
	}

	e.buildComponents()

	return e, nil
}

// buildComponents constructs the parser, validator and performance layer
// from the configured options.
func (e *Engine) buildComponents() {
	cfg := parser.Config{
		ValidateNamespaces:      e.options.ValidateNamespaces,
		ResolveExternalEntities: e.options.ResolveExternalEntities,
		MaxDepth:                e.options.MaxDepth,
		MaxDocumentSize:         e.options.MaxDocumentSize,
	}
	e.parser = parser.New(cfg)

	if e.options.EnableInterning {
		e.interner = intern.New()
		e.parser = e.parser.WithInterner(e.interner)
	}

	e.validator = validator.New(
		validator.WithCDASchema(e.options.ValidateCDASchema),
		validator.WithConformanceRules(e.options.CheckConformanceRules),
		validator.WithStopOnFirstError(e.options.StopOnFirstError),
		validator.WithMaxErrors(e.options.MaxErrors),
	)
	if e.options.CollectMetrics {
		e.validator = e.validator.WithMetrics(e.metrics)
	}

	e.queryCache = cache.NewQueryCache(e.options.QueryCacheSize)

	if e.options.EnablePooling {
		e.elementPool = pool.NewElementPool(e.options.ElementPoolSize)
	}
}

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(l *logger.Logger) {
	if l != nil {
		e.log = l
	}
}

// Parse parses a CDA document from raw bytes.
func (e *Engine) Parse(ctx context.Context, data []byte) (*document.Document, error) {
	_, span := e.tracer.Start(ctx, "cda.parse",
		trace.WithAttributes(attribute.Int("document.bytes", len(data))))
	defer span.End()

	doc, err := e.parser.Parse(data)
	e.metrics.RecordParse(err == nil)

	if err != nil {
		span.RecordError(err)
		e.log.Debug("parse failed: %v", err)
		return nil, err
	}
	return doc, nil
}

// ParseWithDiagnostics parses a CDA document and returns non-fatal
// diagnostics collected during the scan alongside the document.
func (e *Engine) ParseWithDiagnostics(ctx context.Context, data []byte) (*document.Document, []cda.Diagnostic, error) {
	_, span := e.tracer.Start(ctx, "cda.parse",
		trace.WithAttributes(attribute.Int("document.bytes", len(data))))
	defer span.End()

	doc, diags, err := e.parser.ParseWithDiagnostics(data)
	e.metrics.RecordParse(err == nil)

	if err != nil {
		span.RecordError(err)
		return nil, diags, err
	}
	return doc, diags, nil
}

// Validate validates a parsed document.
func (e *Engine) Validate(ctx context.Context, doc *document.Document) (*cda.ValidationResult, error) {
	_, span := e.tracer.Start(ctx, "cda.validate")
	defer span.End()

	result := e.validator.ValidateDocument(doc)
	span.SetAttributes(
		attribute.Bool("validation.valid", result.Valid),
		attribute.Int("validation.errors", result.ErrorCount()),
		attribute.Int("validation.warnings", result.WarningCount()),
	)
	return result, nil
}

// ParseAndValidate parses raw bytes and validates the result in one call.
// Parse failures are reported as a validation result with a single error
// rather than as a Go error, matching batch processing semantics.
func (e *Engine) ParseAndValidate(ctx context.Context, data []byte) (*cda.ValidationResult, error) {
	ctx, span := e.tracer.Start(ctx, "cda.parse_and_validate")
	defer span.End()

	doc, err := e.Parse(ctx, data)
	if err != nil {
		result := cda.AcquireResult()
		result.AddIssue(cda.ErrorIssue("DOC-PARSE-FAILED").
			Message(fmt.Sprintf("document could not be parsed: %v", err)).
			Phase("parse").
			Build())
		return result, nil
	}

	return e.Validate(ctx, doc)
}

// Query evaluates a path expression against a document, caching results
// per document and expression.
func (e *Engine) Query(ctx context.Context, doc *document.Document, expr string) ([]*document.Element, error) {
	_, span := e.tracer.Start(ctx, "cda.query",
		trace.WithAttributes(attribute.String("query.expr", expr)))
	defer span.End()

	if doc == nil || doc.Root == nil {
		return nil, ErrNoDocument
	}

	// Results are only valid for the document they were computed against,
	// so the cache key carries the root's identity.
	key := fmt.Sprintf("%p|%s", doc.Root, expr)

	results, hit, err := e.queryCache.GetOrCompute(key, func() ([]*document.Element, error) {
		return xpath.QueryDocument(doc, expr)
	})
	if hit {
		e.metrics.RecordCacheHit()
	} else {
		e.metrics.RecordCacheMiss()
	}

	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return results, nil
}

// QueryFirst evaluates a path expression and returns the first match,
// or nil when nothing matches.
func (e *Engine) QueryFirst(ctx context.Context, doc *document.Document, expr string) (*document.Element, error) {
	results, err := e.Query(ctx, doc, expr)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// Serialize renders a document back to XML text.
func (e *Engine) Serialize(ctx context.Context, doc *document.Document, opts serializer.Options) ([]byte, error) {
	_, span := e.tracer.Start(ctx, "cda.serialize")
	defer span.End()

	data, err := serializer.ToBytes(doc, opts)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return data, nil
}

// ValidateBatch parses and validates multiple documents in parallel.
// Results are returned in input order.
func (e *Engine) ValidateBatch(ctx context.Context, documents [][]byte) []*cda.ValidationResult {
	ctx, span := e.tracer.Start(ctx, "cda.validate_batch",
		trace.WithAttributes(attribute.Int("batch.size", len(documents))))
	defer span.End()

	results := make([]*cda.ValidationResult, len(documents))

	e.workerPoolOnce.Do(func() {
		workers := e.options.WorkerCount
		if workers <= 0 {
			workers = 4
		}
		e.workerPool = make(chan struct{}, workers)
	})

	var wg sync.WaitGroup
	for i, doc := range documents {
		wg.Add(1)
		go func(idx int, data []byte) {
			defer wg.Done()

			e.workerPool <- struct{}{}
			defer func() { <-e.workerPool }()

			result, err := e.ParseAndValidate(ctx, data)
			if err != nil {
				result = cda.AcquireResult()
				result.AddIssue(cda.ErrorIssue("DOC-PROCESSING").
					Message(err.Error()).
					Build())
			}
			results[idx] = result
		}(i, doc)
	}

	wg.Wait()
	return results
}

// Processor returns a worker.Processor backed by this engine, for use
// with the worker pool and batch processor.
func (e *Engine) Processor() worker.Processor {
	return worker.ProcessorFunc(func(ctx context.Context, doc []byte) (*cda.ValidationResult, error) {
		return e.ParseAndValidate(ctx, doc)
	})
}

// Metrics returns the engine's metrics.
func (e *Engine) Metrics() *cda.Metrics {
	return e.metrics
}

// CacheStats returns query cache statistics.
func (e *Engine) CacheStats() cache.Stats {
	return e.queryCache.Stats()
}

// PoolStats returns element pool statistics, or the zero value when
// pooling is disabled.
func (e *Engine) PoolStats() pool.Stats {
	if e.elementPool == nil {
		return pool.Stats{}
	}
	return e.elementPool.Stats()
}

// InternStats returns string interner statistics, or the zero value when
// interning is disabled.
func (e *Engine) InternStats() intern.Stats {
	if e.interner == nil {
		return intern.Stats{}
	}
	return e.interner.Stats()
}

// Release returns the CDA release this engine is configured for.
func (e *Engine) Release() cda.CDARelease {
	return e.release
}

// Options returns the engine's options.
func (e *Engine) Options() *cda.Options {
	return e.options
}

// Close releases resources held by the engine.
func (e *Engine) Close() error {
	e.queryCache.Invalidate()
	if e.elementPool != nil {
		e.elementPool.Clear()
	}
	if e.interner != nil {
		e.interner.Clear()
	}
	return nil
}
