package plantsdk

import "time"

// UserSummary is the non-sensitive projection of an account.
type UserSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
}

// RegisterRequest creates a new account. All four name parts are required;
// the username is derived server-side and cannot be chosen.
type RegisterRequest struct {
	FirstName      string `json:"firstName"`
	SecondName     string `json:"secondName"`
	LastName       string `json:"lastName"`
	SecondLastName string `json:"secondLastName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TwoFactorLoginRequest exchanges a provisional token plus a TOTP or backup
// code for a full session.
type TwoFactorLoginRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

// AuthResponse is returned by register, login, and login-2fa. When
// RequiresTwoFactor is true the token is provisional and only good for the
// login-2fa exchange.
type AuthResponse struct {
	User              UserSummary `json:"user"`
	Token             string      `json:"token"`
	RequiresTwoFactor bool        `json:"requiresTwoFactor,omitempty"`
}

// TwoFactorSetupResponse carries the fresh TOTP secret. Shown once; treat it
// like a password.
type TwoFactorSetupResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioningUri"`
}

type TwoFactorEnableRequest struct {
	Code string `json:"code"`
}

// BackupCodesResponse carries the plaintext backup codes, returned exactly
// once at enrollment.
type BackupCodesResponse struct {
	BackupCodes []string `json:"backupCodes"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// Interaction is one recorded AI exchange.
type Interaction struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Input     string         `json:"input"`
	Output    string         `json:"output"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

type HistoryResponse struct {
	History []Interaction `json:"history"`
}

type HealthChecks struct {
	Database string `json:"database"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
