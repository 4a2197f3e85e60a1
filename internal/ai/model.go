// Package ai abstracts the generative model provider behind a small
// interface so services and handlers never touch provider wire formats.
package ai

import (
	"context"
	"errors"
)

var ErrProviderUnavailable = errors.New("ai provider unavailable")

// ModelClient generates text completions. Implementations own their provider
// credentials and wire protocol.
type ModelClient interface {
	// GenerateText returns a completion for a plain text prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// GenerateFromImage returns a completion for a prompt grounded on an
	// inline image.
	GenerateFromImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}
