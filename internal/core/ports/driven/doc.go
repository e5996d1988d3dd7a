// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - DatasetReader: Reads the NISR nutrition and survey tables
//   - EmbeddingService: Turns text into vectors
//   - VectorStore: Persists documents with embeddings and runs k-NN search
//   - LLMService: Generates grounded answers
//   - ConfigStore: Application configuration
//   - PromptStore: Operator-editable prompt templates
//   - AIConfigValidator: Checks provider connectivity
//
// All adapters are constructed once at startup and shared by concurrent
// request handlers, so implementations must be safe for concurrent use.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or service package
package driven
