// Package domain defines the core business entities for Ubuzima.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Text built from one NISR dataset row, with metadata
//   - QueryResult: A document returned by similarity search
//   - ChatResult: The structured reply to a question
//   - ScopeRules: Keyword lists that gate questions
//   - AppSettings: Provider, index and server configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
