package parser

import cdaengine "github.com/gocda/engine"

// Config holds the security limits and behavior switches for a parse call.
// It is an immutable value: create it, pass it to New, and discard it.
type Config struct {
	// ValidateNamespaces emits warning diagnostics for prefixes that do not
	// resolve to a declared namespace.
	ValidateNamespaces bool

	// ResolveExternalEntities is kept for API compatibility with the
	// configuration surface; external entities are never resolved.
	ResolveExternalEntities bool

	// MaxDepth is the maximum element nesting depth.
	MaxDepth int

	// MaxDocumentSize is the maximum accepted input size in bytes.
	// The check runs before any lexical work.
	MaxDocumentSize int64
}

// DefaultConfig returns the default parser configuration.
func DefaultConfig() Config {
	return Config{
		ValidateNamespaces:      true,
		ResolveExternalEntities: false,
		MaxDepth:                cdaengine.DefaultMaxDepth,
		MaxDocumentSize:         cdaengine.DefaultMaxDocumentSize,
	}
}
