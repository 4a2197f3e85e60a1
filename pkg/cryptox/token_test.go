package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"128-bit token", TokenSize128},
		{"256-bit token", TokenSize256},
		{"custom size", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateTokenInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestGenerateBackupCode(t *testing.T) {
	seen := make(map[string]struct{})
	for range 50 {
		code, err := GenerateBackupCode()
		require.NoError(t, err)
		require.Len(t, code, BackupCodeLength)

		for _, r := range code {
			require.True(t,
				(r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
				"code must be uppercase alphanumeric, got %q", code)
		}
		seen[code] = struct{}{}
	}
	require.Greater(t, len(seen), 45, "codes should essentially never collide")
}

func TestFingerprintToken(t *testing.T) {
	fp := FingerprintToken("backup-code")

	require.Equal(t, fp, FingerprintToken("backup-code"), "fingerprint is deterministic")
	require.NotEqual(t, fp, FingerprintToken("other-code"))
	require.Len(t, fp, 43, "sha256 as raw base64url")
}
