package plantsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

// Session is an authenticated client. Tokens are short-lived and there is no
// refresh flow; when the token expires the caller logs in again.
type Session struct {
	client *SDKClient
	token  string
}

func newSession(client *SDKClient, token string) *Session {
	return &Session{client: client, token: token}
}

// Token returns the bearer token backing this session.
func (s *Session) Token() string { return s.token }

// Profile fetches the authenticated user's summary.
func (s *Session) Profile(ctx context.Context) (*UserSummary, error) {
	var resp UserSummary
	if err := s.client.do(ctx, http.MethodGet, "/auth/profile", s.token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout acknowledges logout server-side and clears the session token.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.client.do(ctx, http.MethodPost, "/auth/logout", s.token, nil, nil); err != nil {
		return err
	}
	s.token = ""
	return nil
}

// TwoFactorSetup provisions a pending TOTP secret for this account.
func (s *Session) TwoFactorSetup(ctx context.Context) (*TwoFactorSetupResponse, error) {
	var resp TwoFactorSetupResponse
	if err := s.client.do(ctx, http.MethodGet, "/auth/2fa/setup", s.token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TwoFactorEnable confirms the pending secret with a live code. The returned
// backup codes are shown exactly once.
func (s *Session) TwoFactorEnable(ctx context.Context, code string) (*BackupCodesResponse, error) {
	raw, err := json.Marshal(TwoFactorEnableRequest{Code: code})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var resp BackupCodesResponse
	if err := s.client.do(ctx, http.MethodPost, "/auth/2fa/enable", s.token, bytes.NewReader(raw), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chat sends a plant-care question to the assistant.
func (s *Session) Chat(ctx context.Context, message string) (*ChatResponse, error) {
	raw, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var resp ChatResponse
	if err := s.client.do(ctx, http.MethodPost, "/ai/chat", s.token, bytes.NewReader(raw), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Diagnose uploads a plant photo for analysis. mimeType should describe the
// image (e.g. "image/jpeg"); prompt may be empty for the default diagnosis.
func (s *Session) Diagnose(ctx context.Context, image []byte, mimeType, prompt string) (*ChatResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := createImagePart(mw, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if prompt != "" {
		if err := mw.WriteField("prompt", prompt); err != nil {
			return nil, fmt.Errorf("failed to write prompt: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.url("/ai/diagnose"), &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)

	httpResp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	var resp ChatResponse
	if err := decodeResponse(httpResp, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History fetches the most recent AI interactions, newest first.
func (s *Session) History(ctx context.Context) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := s.client.do(ctx, http.MethodGet, "/ai/history", s.token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearHistory wipes the chat history; diagnoses are preserved.
func (s *Session) ClearHistory(ctx context.Context) error {
	return s.client.do(ctx, http.MethodDelete, "/ai/history", s.token, nil, nil)
}

// createImagePart adds a "file" part carrying the image's MIME type, which
// the server forwards to the vision model.
func createImagePart(mw *multipart.Writer, mimeType string) (io.Writer, error) {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="plant"`)
	if mimeType != "" {
		header.Set("Content-Type", mimeType)
	}
	return mw.CreatePart(header)
}
