package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/serplantas/serplantas/internal/domain"
	"github.com/serplantas/serplantas/internal/store"
	"github.com/serplantas/serplantas/pkg/cryptox"
)

const (
	backupCodeCount = 10
	totpSecretSize  = 20 // bytes; 160-bit secrets per RFC 4226
)

var ErrTwoFactorAlreadyEnabled = errors.New("two-factor authentication already enabled")

type TwoFactorService struct {
	Store  store.Store
	Issuer string // Issuer name for TOTP (e.g., "SerPlantas")
}

// BeginEnrollment generates a fresh TOTP secret for the user and stores it in
// the pending slot. Two-factor is NOT active until CompleteEnrollment
// verifies a code; re-running enrollment before that replaces the pending
// secret.
func (s *TwoFactorService) BeginEnrollment(ctx context.Context, userID string) (domain.TwoFactorEnrollment, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.TwoFactorEnrollment{}, err
	}
	if user.TwoFactorActive() {
		return domain.TwoFactorEnrollment{}, ErrTwoFactorAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Username,
		Period:      30,
		SecretSize:  totpSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TwoFactorEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	if err := s.Store.Users().SetPendingTwoFactorSecret(ctx, userID, key.Secret()); err != nil {
		return domain.TwoFactorEnrollment{}, fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	return domain.TwoFactorEnrollment{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
	}, nil
}

// CompleteEnrollment verifies a code against the pending secret and, if it
// matches, activates two-factor and issues a fresh set of backup codes. The
// plaintext codes are returned exactly once; only fingerprints are stored.
func (s *TwoFactorService) CompleteEnrollment(ctx context.Context, userID string, code string) ([]string, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorActive() {
		return nil, ErrTwoFactorAlreadyEnabled
	}
	secret := user.PendingSecret()
	if secret == "" {
		return nil, ErrTwoFactorNotEnabled
	}

	valid, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      2,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !valid {
		return nil, ErrInvalidCode
	}

	backupCodes := make([]string, backupCodeCount)
	for i := range backupCodeCount {
		code, err := cryptox.GenerateBackupCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		backupCodes[i] = code
	}

	// Activation and the backup-code swap land together or not at all.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, userID); err != nil {
			return fmt.Errorf("failed to clear old backup codes: %w", err)
		}
		for _, code := range backupCodes {
			hash := cryptox.FingerprintToken(code)
			if err := tx.BackupCodes().CreateBackupCode(ctx, userID, hash); err != nil {
				return fmt.Errorf("failed to store backup code: %w", err)
			}
		}
		if err := tx.Users().ConfirmTwoFactor(ctx, userID); err != nil {
			return fmt.Errorf("failed to enable two-factor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return backupCodes, nil
}
