package e2e_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serplantas/serplantas/pkg/plantsdk"
)

func TestRegisterLoginProfileLogout(t *testing.T) {
	client, _ := setupServer(t)
	ctx := t.Context()

	session, resp := registerTestUser(t, client)
	assert.Equal(t, "jgonzález", resp.User.Username)
	assert.Equal(t, "Juan", resp.User.FirstName)
	assert.False(t, resp.RequiresTwoFactor)

	// Registration token works immediately.
	profile, err := session.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, profile.ID)
	assert.Equal(t, "juan@example.com", profile.Email)

	// Fresh login gets its own session.
	loginSession, loginResp, err := client.Login(ctx, "jgonzález", testPassword)
	require.NoError(t, err)
	require.NotNil(t, loginSession)
	assert.False(t, loginResp.RequiresTwoFactor)

	require.NoError(t, loginSession.Logout(ctx))

	// After logout the SDK dropped its token; the old token string would
	// still verify server-side because sessions are stateless.
	_, err = loginSession.Profile(ctx)
	var apiErr *plantsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	client, _ := setupServer(t)
	ctx := t.Context()

	registerTestUser(t, client)

	// Same email.
	_, _, err := client.Register(ctx, plantsdk.RegisterRequest{
		FirstName:      "Pedro",
		SecondName:     "José",
		LastName:       "Pérez",
		SecondLastName: "Soto",
		Email:          "juan@example.com",
		Password:       testPassword,
	})
	var apiErr *plantsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, plantsdk.ErrorCodeDuplicateEmail, apiErr.Code)

	// Same derived username.
	_, _, err = client.Register(ctx, plantsdk.RegisterRequest{
		FirstName:      "Julia",
		SecondName:     "María",
		LastName:       "González",
		SecondLastName: "Luna",
		Email:          "julia@example.com",
		Password:       testPassword,
	})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, plantsdk.ErrorCodeDuplicateUsername, apiErr.Code)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	client, _ := setupServer(t)

	_, _, err := client.Register(t.Context(), plantsdk.RegisterRequest{
		FirstName:      "Juan",
		SecondName:     "Carlos",
		LastName:       "González",
		SecondLastName: "Pérez",
		Email:          "juan@example.com",
		Password:       "weakpassword",
	})
	var apiErr *plantsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, plantsdk.ErrorCodeValidation, apiErr.Code)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestLoginFailuresShareOneWording(t *testing.T) {
	client, _ := setupServer(t)
	ctx := t.Context()

	registerTestUser(t, client)

	_, _, badPassword := client.Login(ctx, "jgonzález", "Wr0ng-pass!")
	_, _, unknownUser := client.Login(ctx, "nobody", testPassword)

	var errA, errB *plantsdk.APIError
	require.ErrorAs(t, badPassword, &errA)
	require.ErrorAs(t, unknownUser, &errB)
	assert.Equal(t, errA.Code, errB.Code)
	assert.Equal(t, errA.Description, errB.Description)
	assert.Equal(t, 401, errA.StatusCode)
	assert.Equal(t, 401, errB.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	client, _ := setupServer(t)
	ctx := t.Context()

	livez, err := client.Livez(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", livez.Status)

	readyz, err := client.Readyz(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", readyz.Status)
	require.NotNil(t, readyz.Checks)
	assert.Equal(t, "ok", readyz.Checks.Database)
}
