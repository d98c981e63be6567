// Package embedder maps text to fixed-dimension dense vectors behind a
// single interface, regardless of the underlying model client.
//
// Three providers are available:
//   - openai: hosted OpenAI embeddings via the go-openai client
//   - jina: hosted Jina AI embeddings via plain HTTP
//   - local: a deterministic hashed bag-of-words model, fully offline
//
// All providers are deterministic for identical input and share an
// optional LRU cache keyed by the SHA-256 of the text. Remote providers
// retry with exponential backoff; a model that remains unreachable
// surfaces types.ErrEmbeddingUnavailable to the caller, which owns any
// further retry policy.
//
// Dimensionality is fixed per provider instance; the index store checks
// it against persisted data on load.
package embedder
