package service

import (
	"context"
	"fmt"

	"github.com/serplantas/serplantas/internal/ai"
	"github.com/serplantas/serplantas/internal/domain"
	"github.com/serplantas/serplantas/internal/store"
	"github.com/serplantas/serplantas/pkg/idx"
)

const (
	historyLimit = 50

	// Default diagnosis prompt when the caller does not supply one.
	defaultDiagnosePrompt = "Analiza esta planta y detecta si tiene alguna enfermedad. Responde en español."
)

type AIService struct {
	Store store.Store
	Model ai.ModelClient
}

// Chat sends a plant-care question to the model and records the exchange.
func (s *AIService) Chat(ctx context.Context, userID, message string) (string, error) {
	if message == "" {
		return "", fmt.Errorf("%w: message is required", ErrValidation)
	}

	reply, err := s.Model.GenerateText(ctx, message)
	if err != nil {
		return "", err
	}

	if err := s.Store.AIHistory().CreateInteraction(ctx, domain.AIInteraction{
		ID:     idx.New().String(),
		UserID: userID,
		Kind:   domain.InteractionChat,
		Input:  message,
		Output: reply,
	}); err != nil {
		return "", fmt.Errorf("failed to record interaction: %w", err)
	}
	return reply, nil
}

// Diagnose runs an uploaded plant image through the vision model. An empty
// prompt falls back to the stock disease-detection prompt.
func (s *AIService) Diagnose(ctx context.Context, userID string, image []byte, mimeType, prompt string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: image is required", ErrValidation)
	}
	if prompt == "" {
		prompt = defaultDiagnosePrompt
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	reply, err := s.Model.GenerateFromImage(ctx, prompt, image, mimeType)
	if err != nil {
		return "", err
	}

	if err := s.Store.AIHistory().CreateInteraction(ctx, domain.AIInteraction{
		ID:     idx.New().String(),
		UserID: userID,
		Kind:   domain.InteractionDiagnosis,
		Input:  prompt,
		Output: reply,
		Metadata: map[string]any{
			"hasImage": true,
			"mimeType": mimeType,
		},
	}); err != nil {
		return "", fmt.Errorf("failed to record interaction: %w", err)
	}
	return reply, nil
}

// History returns the user's most recent interactions, newest first.
func (s *AIService) History(ctx context.Context, userID string) ([]domain.AIInteraction, error) {
	return s.Store.AIHistory().ListRecentByUser(ctx, userID, historyLimit)
}

// ClearChat wipes chat history only; diagnoses are kept.
func (s *AIService) ClearChat(ctx context.Context, userID string) error {
	return s.Store.AIHistory().DeleteByUserAndKind(ctx, userID, domain.InteractionChat)
}
