// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SessionStore: Live session persistence (memory or Redis)
//   - CorpusStore: Loads the shop corpus (JSON file or SQLite)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - VectorStore: Vector similarity search (qdrant). Without it, hybrid search is keyword only.
//   - EmbeddingService: Encodes queries. Without it, VectorStore is also unused.
//   - SynonymSource: Synonym dictionary. Without it, queries are not expanded.
//   - IndexSnapshotStore: Persists built keyword indexes between runs.
//   - CacheDisk: Second tier of the query cache.
//   - SessionArchive: Keeps cleared sessions for later inspection.
//   - NLU: Intent and entity extraction for the bundled CLI and MCP front ends.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
