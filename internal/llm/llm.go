// Package llm wraps hosted generative models behind a single-method
// interface. Response-shape differences between vendors stay inside the
// provider implementations.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates the generation model could not be reached
	// or returned no usable content.
	ErrUnavailable = errors.New("generation model unavailable")

	// ErrMissingAPIKey indicates no credential was configured for the
	// requested provider.
	ErrMissingAPIKey = errors.New("missing API key")
)

// Provider generates text from a prompt.
type Provider interface {
	// GenerateText returns the model's text response for the prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider for logging and index metadata.
	Name() string

	// Close releases provider resources.
	Close() error
}
