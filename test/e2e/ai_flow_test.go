package e2e_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serplantas/serplantas/pkg/plantsdk"
)

func TestAIChatAndHistory(t *testing.T) {
	client, model := setupServer(t)
	ctx := t.Context()

	session, _ := registerTestUser(t, client)

	model.reply = "water it when the topsoil is dry"
	chat, err := session.Chat(ctx, "how often should I water a monstera?")
	require.NoError(t, err)
	assert.Equal(t, "water it when the topsoil is dry", chat.Response)

	history, err := session.History(ctx)
	require.NoError(t, err)
	require.Len(t, history.History, 1)
	assert.Equal(t, "chat", history.History[0].Kind)
	assert.Equal(t, "how often should I water a monstera?", history.History[0].Input)
	assert.Equal(t, "water it when the topsoil is dry", history.History[0].Output)
}

func TestAIDiagnoseAndClearHistory(t *testing.T) {
	client, model := setupServer(t)
	ctx := t.Context()

	session, _ := registerTestUser(t, client)

	model.reply = "chat answer"
	_, err := session.Chat(ctx, "a chat question")
	require.NoError(t, err)

	model.reply = "leaf spot, trim affected leaves"
	diag, err := session.Diagnose(ctx, []byte{0xFF, 0xD8, 0xFF}, "image/jpeg", "")
	require.NoError(t, err)
	assert.Equal(t, "leaf spot, trim affected leaves", diag.Response)

	history, err := session.History(ctx)
	require.NoError(t, err)
	require.Len(t, history.History, 2)
	assert.Equal(t, "diagnosis", history.History[0].Kind)
	assert.Equal(t, "image/jpeg", history.History[0].Metadata["mimeType"])

	// Clearing drops chats only.
	require.NoError(t, session.ClearHistory(ctx))

	history, err = session.History(ctx)
	require.NoError(t, err)
	require.Len(t, history.History, 1)
	assert.Equal(t, "diagnosis", history.History[0].Kind)
}

func TestAIEndpointsRequireSession(t *testing.T) {
	client, _ := setupServer(t)
	ctx := t.Context()

	anonymous := client.SessionFromToken("")
	_, err := anonymous.Chat(ctx, "hello")
	var apiErr *plantsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)

	garbage := client.SessionFromToken("not-a-real-token")
	_, err = garbage.History(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestAIHistoryIsPerUser(t *testing.T) {
	client, model := setupServer(t)
	ctx := t.Context()

	juan, _ := registerTestUser(t, client)

	ana, _, err := client.Register(ctx, plantsdk.RegisterRequest{
		FirstName:      "Ana",
		SecondName:     "Sofía",
		LastName:       "Luna",
		SecondLastName: "Ríos",
		Email:          "ana@example.com",
		Password:       testPassword,
	})
	require.NoError(t, err)

	model.reply = "an answer"
	_, err = juan.Chat(ctx, "juan's question")
	require.NoError(t, err)

	history, err := ana.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history.History)
}
