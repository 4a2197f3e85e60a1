package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/serplantas/serplantas/internal/domain"
	"github.com/serplantas/serplantas/internal/store"
	"github.com/serplantas/serplantas/pkg/cryptox"
	"github.com/serplantas/serplantas/pkg/idx"
	"github.com/serplantas/serplantas/pkg/jwtx"
)

const minPasswordLength = 8

var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")

	// The three rejection errors share one public wording. Handlers map all
	// of them to the same description so a caller probing the API cannot
	// tell a wrong password from a wrong code or a missing account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCode        = errors.New("invalid code")

	ErrTwoFactorNotEnabled = errors.New("two-factor authentication not enabled")
)

// RegisterInput carries the profile fields for a new account. All four name
// parts are required.
type RegisterInput struct {
	FirstName      string
	SecondName     string
	LastName       string
	SecondLastName string
	Email          string
	Password       string
}

type AuthService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Verifier   jwtx.Verifier
	Issuer     string // "iss" claim on minted tokens
	HashParams cryptox.Params
}

func (s *AuthService) sessionToken(user domain.User) (string, error) {
	return s.Signer.Sign(jwtx.NewSessionClaims(
		user.ID, user.Username, s.Issuer, jwtx.SessionTokenTTL, time.Now().UTC()))
}

func (s *AuthService) provisionalToken(user domain.User) (string, error) {
	return s.Signer.Sign(jwtx.NewProvisionalClaims(
		user.ID, user.Username, s.Issuer, jwtx.ProvisionalTokenTTL, time.Now().UTC()))
}

// Register creates a new account and logs it straight in. The username is
// derived from the profile, never chosen by the caller.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.AuthResult, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.SecondName = strings.TrimSpace(in.SecondName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.SecondLastName = strings.TrimSpace(in.SecondLastName)
	in.Email = strings.TrimSpace(in.Email)

	if in.FirstName == "" || in.SecondName == "" || in.LastName == "" || in.SecondLastName == "" {
		return domain.AuthResult{}, fmt.Errorf("%w: all name parts are required", ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.AuthResult{}, fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if err := checkPasswordPolicy(in.Password); err != nil {
		return domain.AuthResult{}, err
	}

	username := domain.DeriveUsername(in.FirstName, in.LastName)
	if username == "" {
		return domain.AuthResult{}, fmt.Errorf("%w: cannot derive username from name", ErrValidation)
	}

	// Pre-checks give friendly errors; the UNIQUE constraints below remain
	// the backstop for concurrent registrations.
	if _, err := s.Store.Users().GetUserByEmail(ctx, in.Email); err == nil {
		return domain.AuthResult{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.AuthResult{}, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.Store.Users().GetUserByUsername(ctx, username); err == nil {
		return domain.AuthResult{}, ErrDuplicateUsername
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.AuthResult{}, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := cryptox.HashPasswordWithParams(in.Password, s.HashParams)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		ID:             idx.New().String(),
		FirstName:      in.FirstName,
		SecondName:     in.SecondName,
		LastName:       in.LastName,
		SecondLastName: in.SecondLastName,
		Username:       username,
		Email:          in.Email,
		PasswordHash:   hash,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			return domain.AuthResult{}, ErrDuplicateEmail
		case errors.Is(err, store.ErrUsernameTaken):
			return domain.AuthResult{}, ErrDuplicateUsername
		}
		return domain.AuthResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.sessionToken(user)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return domain.AuthResult{User: user.Summary(), Token: token}, nil
}

// Login authenticates with username and password. Accounts with two-factor
// enabled get a short-lived provisional token instead of a full session.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.AuthResult, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AuthResult{}, ErrInvalidCredentials
		}
		return domain.AuthResult{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.AuthResult{}, ErrInvalidCredentials
		}
		return domain.AuthResult{}, fmt.Errorf("failed to verify password: %w", err)
	}

	if user.TwoFactorActive() {
		token, err := s.provisionalToken(user)
		if err != nil {
			return domain.AuthResult{}, fmt.Errorf("failed to sign token: %w", err)
		}
		return domain.AuthResult{User: user.Summary(), Token: token, RequiresTwoFactor: true}, nil
	}

	token, err := s.sessionToken(user)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return domain.AuthResult{User: user.Summary(), Token: token}, nil
}

// CompleteLogin exchanges a provisional token plus a TOTP or backup code for
// a full session. The TOTP window is tried first; on miss the code is treated
// as a backup code and burned atomically.
func (s *AuthService) CompleteLogin(ctx context.Context, provisionalToken, code string) (domain.AuthResult, error) {
	claims, err := s.Verifier.Verify(provisionalToken)
	if err != nil {
		return domain.AuthResult{}, ErrInvalidToken
	}
	if !claims.Provisional {
		return domain.AuthResult{}, ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AuthResult{}, ErrInvalidToken
		}
		return domain.AuthResult{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.TwoFactorActive() {
		return domain.AuthResult{}, ErrTwoFactorNotEnabled
	}

	ok, err := s.checkSecondFactor(ctx, user, code)
	if err != nil {
		return domain.AuthResult{}, err
	}
	if !ok {
		return domain.AuthResult{}, ErrInvalidCode
	}

	token, err := s.sessionToken(user)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return domain.AuthResult{User: user.Summary(), Token: token}, nil
}

// ValidateSessionToken verifies a full session token and returns its claims.
// Provisional tokens are rejected; they only open the second-factor exchange.
func (s *AuthService) ValidateSessionToken(token string) (jwtx.Claims, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, ErrInvalidToken
	}
	if claims.Provisional {
		return jwtx.Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Profile returns the summary for an authenticated user.
func (s *AuthService) Profile(ctx context.Context, userID string) (domain.Summary, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.Summary{}, err
	}
	return user.Summary(), nil
}

func (s *AuthService) checkSecondFactor(ctx context.Context, user domain.User, code string) (bool, error) {
	valid, err := totp.ValidateCustom(code, *user.TwoFactorSecret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      2,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err == nil && valid {
		return true, nil
	}

	// Backup codes are issued uppercase; accept them case-insensitively.
	normalized := strings.ToUpper(strings.TrimSpace(code))
	hash := cryptox.FingerprintToken(normalized)
	consumed, err := s.Store.BackupCodes().ConsumeBackupCode(ctx, user.ID, hash)
	if err != nil {
		return false, fmt.Errorf("failed to consume backup code: %w", err)
	}
	return consumed, nil
}

func checkPasswordPolicy(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	var hasUpper, hasLower, hasDigitOrSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		default:
			hasDigitOrSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigitOrSpecial {
		return fmt.Errorf("%w: password needs an uppercase letter, a lowercase letter, and a digit or symbol", ErrValidation)
	}
	return nil
}
