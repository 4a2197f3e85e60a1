package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serplantas/serplantas/internal/store"
	"github.com/serplantas/serplantas/internal/store/drivers/sqlite"
	"github.com/serplantas/serplantas/pkg/cryptox"
	"github.com/serplantas/serplantas/pkg/jwtx"
)

const testIssuer = "serplantas-test"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newAuthService(t *testing.T) (*AuthService, store.Store) {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	tokens, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), testIssuer)
	require.NoError(t, err)

	return &AuthService{
		Store:      s,
		Signer:     tokens,
		Verifier:   tokens,
		Issuer:     testIssuer,
		HashParams: cryptox.TestParams,
	}, s
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FirstName:      "Juan",
		SecondName:     "Carlos",
		LastName:       "González",
		SecondLastName: "Pérez",
		Email:          "juan@example.com",
		Password:       "Str0ng-pass",
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	assert.Equal(t, "jgonzález", res.User.Username)
	assert.Equal(t, "juan@example.com", res.User.Email)
	assert.Equal(t, "Juan", res.User.FirstName)
	assert.NotEmpty(t, res.User.ID)
	assert.False(t, res.RequiresTwoFactor)

	// Registration logs straight in with a full session token.
	claims, err := svc.ValidateSessionToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)
	assert.Equal(t, "jgonzález", claims.Username)
	assert.False(t, claims.Provisional)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing first name", func(in *RegisterInput) { in.FirstName = "  " }},
		{"missing second name", func(in *RegisterInput) { in.SecondName = "" }},
		{"missing last name", func(in *RegisterInput) { in.LastName = "" }},
		{"missing second last name", func(in *RegisterInput) { in.SecondLastName = " " }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *RegisterInput) { in.Password = "Ab1!" }},
		{"no uppercase", func(in *RegisterInput) { in.Password = "weak-pass-1" }},
		{"no lowercase", func(in *RegisterInput) { in.Password = "WEAK-PASS-1" }},
		{"letters only", func(in *RegisterInput) { in.Password = "WeakPassword" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegisterInput()
			tt.mutate(&in)
			_, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegister_PasswordDigitOrSpecial(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	// A digit satisfies the third class.
	in := validRegisterInput()
	in.Password = "Passw0rdd"
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	// So does a symbol with no digit.
	in = validRegisterInput()
	in.FirstName = "Ana"
	in.LastName = "Luna"
	in.Email = "ana@example.com"
	in.Password = "Password!"
	_, err = svc.Register(ctx, in)
	require.NoError(t, err)
}

func TestRegister_Duplicates(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	// Same email, different name.
	in := validRegisterInput()
	in.FirstName = "Pedro"
	in.LastName = "Pérez"
	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// Same derived username ("Julia González" also derives jgonzález).
	in = validRegisterInput()
	in.FirstName = "Julia"
	in.Email = "julia@example.com"
	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	res, err := svc.Login(ctx, "jgonzález", "Str0ng-pass")
	require.NoError(t, err)
	assert.False(t, res.RequiresTwoFactor)

	claims, err := svc.ValidateSessionToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)
}

func TestLogin_BadCredentialsAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "jgonzález", "Wr0ng-pass!")
	_, unknownUser := svc.Login(ctx, "nobody", "Str0ng-pass")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

// enrollTwoFactor registers a user and walks the full enrollment, returning
// the shared TOTP secret and the plaintext backup codes.
func enrollTwoFactor(t *testing.T, svc *AuthService, st store.Store) (userID, secret string, backupCodes []string) {
	t.Helper()
	ctx := context.Background()

	res, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	twofa := &TwoFactorService{Store: st, Issuer: testIssuer}
	enrollment, err := twofa.BeginEnrollment(ctx, res.User.ID)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	require.Contains(t, enrollment.ProvisioningURI, "otpauth://totp/")

	code, err := totp.GenerateCode(enrollment.Secret, time.Now().UTC())
	require.NoError(t, err)

	codes, err := twofa.CompleteEnrollment(ctx, res.User.ID, code)
	require.NoError(t, err)
	require.Len(t, codes, 10)

	return res.User.ID, enrollment.Secret, codes
}

func TestCompleteLogin_WithTOTP(t *testing.T) {
	svc, st := newAuthService(t)
	ctx := context.Background()

	_, secret, _ := enrollTwoFactor(t, svc, st)

	res, err := svc.Login(ctx, "jgonzález", "Str0ng-pass")
	require.NoError(t, err)
	require.True(t, res.RequiresTwoFactor)
	assert.Equal(t, "jgonzález", res.User.Username)

	// The provisional token is not a session.
	_, err = svc.ValidateSessionToken(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	code, err := totp.GenerateCode(secret, time.Now().UTC())
	require.NoError(t, err)

	full, err := svc.CompleteLogin(ctx, res.Token, code)
	require.NoError(t, err)
	assert.False(t, full.RequiresTwoFactor)

	claims, err := svc.ValidateSessionToken(full.Token)
	require.NoError(t, err)
	assert.False(t, claims.Provisional)
}

func TestCompleteLogin_AcceptsAdjacentTOTPStep(t *testing.T) {
	svc, st := newAuthService(t)
	ctx := context.Background()

	_, secret, _ := enrollTwoFactor(t, svc, st)

	res, err := svc.Login(ctx, "jgonzález", "Str0ng-pass")
	require.NoError(t, err)

	// A code from one step ago still lands inside the +-2 step window.
	code, err := totp.GenerateCodeCustom(secret, time.Now().UTC().Add(-30*time.Second), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)

	_, err = svc.CompleteLogin(ctx, res.Token, code)
	require.NoError(t, err)
}

func TestCompleteLogin_WithBackupCode(t *testing.T) {
	svc, st := newAuthService(t)
	ctx := context.Background()

	_, _, codes := enrollTwoFactor(t, svc, st)

	res, err := svc.Login(ctx, "jgonzález", "Str0ng-pass")
	require.NoError(t, err)

	full, err := svc.CompleteLogin(ctx, res.Token, codes[0])
	require.NoError(t, err)
	assert.NotEmpty(t, full.Token)

	// The same backup code cannot be spent twice.
	res, err = svc.Login(ctx, "jgonzález", "Str0ng-pass")
	require.NoError(t, err)
	_, err = svc.CompleteLogin(ctx, res.Token, codes[0])
	assert.ErrorIs(t, err, ErrInvalidCode)

	// But the remaining codes still work.
	res, err = svc.Login(ctx, "jgonzález", "Str0ng-pass")
	require.NoError(t, err)
	_, err = svc.CompleteLogin(ctx, res.Token, codes[1])
	require.NoError(t, err)
}

func TestCompleteLogin_Rejections(t *testing.T) {
	svc, st := newAuthService(t)
	ctx := context.Background()

	_, secret, _ := enrollTwoFactor(t, svc, st)

	res, err := svc.Login(ctx, "jgonzález", "Str0ng-pass")
	require.NoError(t, err)

	t.Run("garbage code", func(t *testing.T) {
		_, err := svc.CompleteLogin(ctx, res.Token, "000000")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		code, err := totp.GenerateCode(secret, time.Now().UTC())
		require.NoError(t, err)
		_, err = svc.CompleteLogin(ctx, "not-a-token", code)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("full session token rejected", func(t *testing.T) {
		code, err := totp.GenerateCode(secret, time.Now().UTC())
		require.NoError(t, err)
		full, err := svc.CompleteLogin(ctx, res.Token, code)
		require.NoError(t, err)

		code, err = totp.GenerateCode(secret, time.Now().UTC())
		require.NoError(t, err)
		_, err = svc.CompleteLogin(ctx, full.Token, code)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestCompleteLogin_TwoFactorNotEnabled(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	// Forge a provisional token for an account without 2FA. The service must
	// refuse rather than mint a session.
	claims := jwtx.NewProvisionalClaims(res.User.ID, res.User.Username, testIssuer, jwtx.ProvisionalTokenTTL, time.Now().UTC())
	token, err := svc.Signer.Sign(claims)
	require.NoError(t, err)

	_, err = svc.CompleteLogin(ctx, token, "123456")
	assert.ErrorIs(t, err, ErrTwoFactorNotEnabled)
}

func TestProfile(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	summary, err := svc.Profile(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, res.User, summary)

	_, err = svc.Profile(ctx, "01K00000000000000000000000")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
