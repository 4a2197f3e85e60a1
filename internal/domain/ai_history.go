package domain

import "time"

// InteractionKind classifies a stored AI interaction.
type InteractionKind string

const (
	// InteractionChat is a free-form plant-care question.
	InteractionChat InteractionKind = "chat"

	// InteractionDiagnosis is an image-based plant health analysis.
	InteractionDiagnosis InteractionKind = "diagnosis"
)

// AIInteraction is one stored prompt/response exchange, keyed by the subject
// that the session token authenticated.
type AIInteraction struct {
	ID       string
	UserID   string
	Kind     InteractionKind
	Input    string
	Output   string
	Metadata map[string]any // optional details (mime type, image flag, ...)

	CreatedAt time.Time
}
