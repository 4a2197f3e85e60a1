package e2e_test

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serplantas/serplantas/pkg/plantsdk"
)

// enrollTwoFactor registers a user and walks the whole enrollment, returning
// the TOTP secret and backup codes.
func enrollTwoFactor(t *testing.T, client *plantsdk.SDKClient) (secret string, backupCodes []string) {
	t.Helper()
	ctx := t.Context()

	session, _ := registerTestUser(t, client)

	setup, err := session.TwoFactorSetup(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.Contains(t, setup.ProvisioningURI, "otpauth://totp/")

	code, err := totp.GenerateCode(setup.Secret, time.Now().UTC())
	require.NoError(t, err)

	codes, err := session.TwoFactorEnable(ctx, code)
	require.NoError(t, err)
	require.Len(t, codes.BackupCodes, 10)

	return setup.Secret, codes.BackupCodes
}

func TestTwoFactorEnrollmentAndLogin(t *testing.T) {
	client, _ := setupServer(t)
	ctx := t.Context()

	secret, _ := enrollTwoFactor(t, client)

	// Password alone now yields a provisional token, not a session.
	session, resp, err := client.Login(ctx, "jgonzález", testPassword)
	require.NoError(t, err)
	require.Nil(t, session)
	require.True(t, resp.RequiresTwoFactor)
	require.NotEmpty(t, resp.Token)

	code, err := totp.GenerateCode(secret, time.Now().UTC())
	require.NoError(t, err)

	full, fullResp, err := client.CompleteTwoFactorLogin(ctx, resp.Token, code)
	require.NoError(t, err)
	assert.False(t, fullResp.RequiresTwoFactor)

	profile, err := full.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jgonzález", profile.Username)
}

func TestTwoFactorLoginWithBackupCode(t *testing.T) {
	client, _ := setupServer(t)
	ctx := t.Context()

	_, codes := enrollTwoFactor(t, client)

	_, resp, err := client.Login(ctx, "jgonzález", testPassword)
	require.NoError(t, err)
	require.True(t, resp.RequiresTwoFactor)

	full, _, err := client.CompleteTwoFactorLogin(ctx, resp.Token, codes[0])
	require.NoError(t, err)
	_, err = full.Profile(ctx)
	require.NoError(t, err)

	// The spent code is gone for good.
	_, resp, err = client.Login(ctx, "jgonzález", testPassword)
	require.NoError(t, err)
	_, _, err = client.CompleteTwoFactorLogin(ctx, resp.Token, codes[0])
	var apiErr *plantsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)

	// A sibling code still works.
	_, resp, err = client.Login(ctx, "jgonzález", testPassword)
	require.NoError(t, err)
	_, _, err = client.CompleteTwoFactorLogin(ctx, resp.Token, codes[1])
	require.NoError(t, err)
}

func TestProvisionalTokenIsNotASession(t *testing.T) {
	client, _ := setupServer(t)
	ctx := t.Context()

	enrollTwoFactor(t, client)

	_, resp, err := client.Login(ctx, "jgonzález", testPassword)
	require.NoError(t, err)
	require.True(t, resp.RequiresTwoFactor)

	// Manually craft a session around the provisional token; every protected
	// endpoint must refuse it.
	forged := client.SessionFromToken(resp.Token)
	_, err = forged.Profile(ctx)
	var apiErr *plantsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)

	_, err = forged.Chat(ctx, "hello")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestTwoFactorEnableRejectsBadCode(t *testing.T) {
	client, _ := setupServer(t)
	ctx := t.Context()

	session, _ := registerTestUser(t, client)

	_, err := session.TwoFactorSetup(ctx)
	require.NoError(t, err)

	_, err = session.TwoFactorEnable(ctx, "000000")
	var apiErr *plantsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)

	// Login still works without a second factor; nothing was enabled.
	full, resp, err := client.Login(ctx, "jgonzález", testPassword)
	require.NoError(t, err)
	require.NotNil(t, full)
	assert.False(t, resp.RequiresTwoFactor)
}
