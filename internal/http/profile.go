package http

import (
	"net/http"

	"github.com/serplantas/serplantas/internal/service"
	"github.com/serplantas/serplantas/pkg/httpx"
	"github.com/serplantas/serplantas/pkg/plantsdk"
	"github.com/serplantas/serplantas/pkg/slogx"
)

// ProfileHandler serves the authenticated profile and the logout ack.
type ProfileHandler struct {
	AuthService *service.AuthService
}

// HandleProfile handles GET /auth/profile.
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		plantsdk.ErrInvalidToken.WriteError(w)
		return
	}

	summary, err := h.AuthService.Profile(ctx, userID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, plantsdk.UserSummary{
		ID:        summary.ID,
		Username:  summary.Username,
		Email:     summary.Email,
		FirstName: summary.FirstName,
	})
}

// HandleLogout handles POST /auth/logout. Sessions are stateless; the server
// holds nothing to revoke, so this acknowledges and the client drops the
// token. It stays authenticated so dead tokens get a 401 instead of a false
// success.
func (h *ProfileHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		plantsdk.ErrInvalidToken.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, plantsdk.MessageResponse{
		Message: "logged out; discard the token client-side",
	})
}
