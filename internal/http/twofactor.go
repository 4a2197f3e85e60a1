package http

import (
	"encoding/json"
	"net/http"

	"github.com/serplantas/serplantas/internal/service"
	"github.com/serplantas/serplantas/pkg/httpx"
	"github.com/serplantas/serplantas/pkg/plantsdk"
	"github.com/serplantas/serplantas/pkg/slogx"
)

// TwoFactorHandler serves TOTP enrollment for authenticated users.
type TwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService
}

// HandleSetup handles GET /auth/2fa/setup. It provisions a pending secret;
// nothing is enforced until the code is confirmed via HandleEnable.
func (h *TwoFactorHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		plantsdk.ErrInvalidToken.WriteError(w)
		return
	}

	enrollment, err := h.TwoFactorService.BeginEnrollment(ctx, userID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info("two-factor enrollment started", "user_id", userID)
	httpx.WriteJSON(w, http.StatusOK, plantsdk.TwoFactorSetupResponse{
		Secret:          enrollment.Secret,
		ProvisioningURI: enrollment.ProvisioningURI,
	})
}

// HandleEnable handles POST /auth/2fa/enable. On success the response carries
// the plaintext backup codes; they are never retrievable again.
func (h *TwoFactorHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		plantsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req plantsdk.TwoFactorEnableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		plantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	codes, err := h.TwoFactorService.CompleteEnrollment(ctx, userID, req.Code)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info("two-factor enabled", "user_id", userID)
	httpx.WriteJSON(w, http.StatusOK, plantsdk.BackupCodesResponse{BackupCodes: codes})
}
