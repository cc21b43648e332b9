// Package domain defines the core business entities for naviyam.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Session: A conversation with its message history and dialogue state
//   - ConversationState: Intent, slots and the intent stack
//   - Shop, Menu: The knowledge corpus records
//   - Document: Corpus records rendered for embedding
//   - SearchResult: A fused retrieval candidate
//   - CacheEntry: A memoised search result
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
