package http

import (
	"encoding/json"
	"net/http"

	"github.com/serplantas/serplantas/internal/domain"
	"github.com/serplantas/serplantas/internal/service"
	"github.com/serplantas/serplantas/pkg/httpx"
	"github.com/serplantas/serplantas/pkg/plantsdk"
	"github.com/serplantas/serplantas/pkg/slogx"
)

// AuthHandler serves the credential endpoints: register, login, and the
// second-factor login exchange.
type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister handles POST /auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req plantsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		plantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.AuthService.Register(ctx, service.RegisterInput{
		FirstName:      req.FirstName,
		SecondName:     req.SecondName,
		LastName:       req.LastName,
		SecondLastName: req.SecondLastName,
		Email:          req.Email,
		Password:       req.Password,
	})
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info("user registered", "user_id", res.User.ID, "username", res.User.Username)
	httpx.WriteJSON(w, http.StatusCreated, authResponse(res))
}

// HandleLogin handles POST /auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req plantsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		plantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		log.Warn("login rejected", "username", req.Username)
		writeServiceError(w, log, err)
		return
	}

	log.Info("user logged in",
		"user_id", res.User.ID,
		"requires_two_factor", res.RequiresTwoFactor,
	)
	httpx.WriteJSON(w, http.StatusOK, authResponse(res))
}

// HandleTwoFactorLogin handles POST /auth/login-2fa.
func (h *AuthHandler) HandleTwoFactorLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req plantsdk.TwoFactorLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		plantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.AuthService.CompleteLogin(ctx, req.Token, req.Code)
	if err != nil {
		log.Warn("second factor rejected")
		writeServiceError(w, log, err)
		return
	}

	log.Info("second factor accepted", "user_id", res.User.ID)
	httpx.WriteJSON(w, http.StatusOK, authResponse(res))
}

func authResponse(res domain.AuthResult) plantsdk.AuthResponse {
	return plantsdk.AuthResponse{
		User: plantsdk.UserSummary{
			ID:        res.User.ID,
			Username:  res.User.Username,
			Email:     res.User.Email,
			FirstName: res.User.FirstName,
		},
		Token:             res.Token,
		RequiresTwoFactor: res.RequiresTwoFactor,
	}
}
