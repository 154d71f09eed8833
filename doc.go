// Package cdaengine provides high-performance HL7 v3 / CDA R2 document
// processing: parsing, querying, conformance validation and serialization.
//
// This package is designed from the ground up to leverage Go's strengths:
// concurrency with goroutines, sync.Pool for memory efficiency, generics
// for type-safe caches, and small composable interfaces.
//
// # Quick Start
//
//	import (
//	    cda "github.com/gocda/engine"
//	    "github.com/gocda/engine/engine"
//	)
//
//	eng, err := engine.New(ctx, cda.R2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, err := eng.Parse(ctx, documentXML)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := eng.Validate(ctx, doc)
//	if result.HasErrors() {
//	    for _, issue := range result.Errors {
//	        fmt.Println(issue.Message)
//	    }
//	}
//	result.Release() // Return to pool for better performance
//
// # Performance Features
//
//   - Worker Pool: Parallel batch validation using runtime.NumCPU() workers
//   - sync.Pool: Reduces GC pressure through result and buffer reuse
//   - Element Pool: Bounded free list for tree node reuse
//   - String Interning: Deduplicates the small CDA element vocabulary
//   - Generic Cache: Type-safe query result cache without interface{} overhead
//   - Streaming: Extract fragments from large documents without loading
//     the whole file into memory
//
// # Functional Options
//
//	eng, err := engine.New(ctx, cda.R2,
//	    cda.WithMaxDepth(128),
//	    cda.WithConformanceRules(true),
//	    cda.WithWorkerCount(runtime.NumCPU()),
//	    cda.WithMaxErrors(100),
//	)
//
// # Validation Phases
//
// Validation is performed in phases, each handling one aspect of CDA:
//
//   - Structure: Required ClinicalDocument children and act attributes
//   - Identifiers: id roots and templateId OID syntax
//   - Codes: code elements and codeSystem presence
//   - Timestamps: HL7 TS literal format
//   - Narrative: Section title, code and text rules
//   - Cardinality: Elements restricted to a single occurrence
//
// # Security
//
// The parser enforces a maximum document size before scanning and a
// maximum nesting depth during the scan, never resolves external
// entities, and ignores document type declarations.
package cdaengine
