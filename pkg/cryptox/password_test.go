package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Set up a temporary pepper file for testing
	pepperPath := filepath.Join(os.TempDir(), "serplantas-test-pepper")
	SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestHashPasswordProducesPHCFormat(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "Seguro123!"},
		{"long password", strings.Repeat("a", 100)},
		{"unicode password", "contraseñaДа密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPasswordWithParams(tt.password, TestParams)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"),
				"hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.Contains(t, parts[3], "m=")
			require.Contains(t, parts[3], "t=")
			require.Contains(t, parts[3], "p=")
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")

			require.NotContains(t, hash, tt.password,
				"hash must never embed the plaintext")
		})
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	hash1, err := HashPasswordWithParams("samepassword", TestParams)
	require.NoError(t, err)
	hash2, err := HashPasswordWithParams("samepassword", TestParams)
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPasswordWithParams("Seguro123!", TestParams)
	require.NoError(t, err)

	t.Run("accepts correct password", func(t *testing.T) {
		require.NoError(t, VerifyPassword("Seguro123!", hash))
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		require.ErrorIs(t, VerifyPassword("Seguro123?", hash), ErrPasswordMismatch)
	})

	t.Run("rejects malformed hash", func(t *testing.T) {
		require.Error(t, VerifyPassword("whatever", "not-a-phc-string"))
	})

	t.Run("rejects truncated hash", func(t *testing.T) {
		require.Error(t, VerifyPassword("Seguro123!", hash[:len(hash)-10]+"$"))
	})
}

func TestVerifyPasswordReadsParamsFromHash(t *testing.T) {
	// A hash produced with non-default params must still verify: the work
	// factor travels inside the PHC string.
	custom := Params{Memory: 16, Iterations: 1, Parallelism: 2, SaltLength: 16, KeyLength: 32}
	hash, err := HashPasswordWithParams("Seguro123!", custom)
	require.NoError(t, err)

	require.NoError(t, VerifyPassword("Seguro123!", hash))
}
