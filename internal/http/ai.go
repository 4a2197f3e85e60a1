package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/serplantas/serplantas/internal/service"
	"github.com/serplantas/serplantas/pkg/httpx"
	"github.com/serplantas/serplantas/pkg/plantsdk"
	"github.com/serplantas/serplantas/pkg/slogx"
)

// Uploads above this size are rejected before touching the model.
const maxImageBytes = 8 << 20

// AIHandler proxies plant-care questions and photo diagnoses to the model.
type AIHandler struct {
	AIService *service.AIService
}

// HandleChat handles POST /ai/chat.
func (h *AIHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		plantsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req plantsdk.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		plantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	reply, err := h.AIService.Chat(ctx, userID, req.Message)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, plantsdk.ChatResponse{Response: reply})
}

// HandleDiagnose handles POST /ai/diagnose. Multipart form with a "file"
// image part and an optional "prompt" field.
func (h *AIHandler) HandleDiagnose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		plantsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		plantsdk.ValidationError("expected multipart form with a file part").WriteError(w)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		plantsdk.ValidationError("image file is required").WriteError(w)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		log.Error("failed to read upload", "err", err)
		plantsdk.ErrServerError.WriteError(w)
		return
	}

	reply, err := h.AIService.Diagnose(ctx, userID, image,
		header.Header.Get("Content-Type"), r.FormValue("prompt"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, plantsdk.ChatResponse{Response: reply})
}

// HandleHistory handles GET /ai/history.
func (h *AIHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		plantsdk.ErrInvalidToken.WriteError(w)
		return
	}

	items, err := h.AIService.History(ctx, userID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	history := make([]plantsdk.Interaction, 0, len(items))
	for _, it := range items {
		history = append(history, plantsdk.Interaction{
			ID:        it.ID,
			Kind:      string(it.Kind),
			Input:     it.Input,
			Output:    it.Output,
			Metadata:  it.Metadata,
			CreatedAt: it.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, plantsdk.HistoryResponse{History: history})
}

// HandleClearHistory handles DELETE /ai/history. Chat history only;
// diagnoses stay.
func (h *AIHandler) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		plantsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.AIService.ClearChat(ctx, userID); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, plantsdk.MessageResponse{Message: "chat history cleared"})
}
