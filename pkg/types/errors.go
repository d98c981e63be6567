package types

import "errors"

// Core error taxonomy. Components wrap these with %w so callers can
// classify failures with errors.Is regardless of which layer produced them.
var (
	// ErrConfiguration indicates invalid chunking or store parameters
	// (overlap >= chunk size, non-positive sizes).
	ErrConfiguration = errors.New("invalid configuration")

	// ErrEmbeddingUnavailable indicates the embedding model could not be
	// reached or loaded. Retry policy belongs to the caller.
	ErrEmbeddingUnavailable = errors.New("embedding model unavailable")

	// ErrIndexCorrupt indicates persisted index data is incompatible with
	// the current embedder configuration, or unreadable/truncated.
	ErrIndexCorrupt = errors.New("index corrupt or incompatible")

	// ErrInvalidArgument indicates a bad call-site argument such as a
	// non-positive k or an empty query.
	ErrInvalidArgument = errors.New("invalid argument")
)
