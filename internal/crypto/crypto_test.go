package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Tandemrecruit/ReplyStack-sub002/internal/errors"
)

// generateTestKey returns a random 32-byte key as a hex string.
func generateTestKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return hex.EncodeToString(key)
}

func TestNewTokenCipher(t *testing.T) {
	t.Run("valid primary key", func(t *testing.T) {
		c, err := NewTokenCipher(generateTestKey(t), "")
		require.NoError(t, err)
		assert.True(t, c.IsConfigured())
	})

	t.Run("empty primary key yields unconfigured cipher", func(t *testing.T) {
		c, err := NewTokenCipher("", "")
		require.NoError(t, err)
		assert.False(t, c.IsConfigured())
	})

	t.Run("malformed primary key is a hard error", func(t *testing.T) {
		_, err := NewTokenCipher("notvalidhex", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid primary encryption key")
	})

	t.Run("wrong primary key size is a hard error", func(t *testing.T) {
		_, err := NewTokenCipher("0123456789abcdef", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must be exactly 64 hex characters")
	})

	t.Run("malformed fallback key is skipped", func(t *testing.T) {
		c, err := NewTokenCipher(generateTestKey(t), "notvalidhex")
		require.NoError(t, err)
		assert.True(t, c.IsConfigured())
		assert.Len(t, c.keys, 1)
	})

	t.Run("valid fallback key is kept", func(t *testing.T) {
		c, err := NewTokenCipher(generateTestKey(t), generateTestKey(t))
		require.NoError(t, err)
		assert.Len(t, c.keys, 2)
	})
}

func TestTokenCipher_RoundTrip(t *testing.T) {
	c, err := NewTokenCipher(generateTestKey(t), "")
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"simple token", "1//0gabcdefghijklmnop"},
		{"empty string", ""},
		{"non-ascii", "grüße aus köln 日本語 🙂"},
		{"multi-kilobyte", strings.Repeat("long-secret-material-", 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := c.Encrypt(tt.plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, tt.plaintext, ciphertext)

			decrypted, err := c.Decrypt(ciphertext)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, decrypted)
		})
	}
}

func TestTokenCipher_UniqueNonces(t *testing.T) {
	c, err := NewTokenCipher(generateTestKey(t), "")
	require.NoError(t, err)

	ct1, err := c.Encrypt("same-plaintext")
	require.NoError(t, err)
	ct2, err := c.Encrypt("same-plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, ct1, ct2, "nonces must be unique")
}

func TestTokenCipher_DecryptFailures(t *testing.T) {
	c, err := NewTokenCipher(generateTestKey(t), "")
	require.NoError(t, err)

	assertDecryptionError := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		var structured *apperrors.Error
		require.ErrorAs(t, err, &structured)
		assert.Equal(t, apperrors.TypeDecryption, structured.Type)
	}

	t.Run("invalid hex", func(t *testing.T) {
		_, err := c.Decrypt("notvalidhex")
		assertDecryptionError(t, err)
	})

	t.Run("too short to contain nonce", func(t *testing.T) {
		_, err := c.Decrypt("abcd")
		assertDecryptionError(t, err)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		ciphertext, err := c.Encrypt("secret")
		require.NoError(t, err)

		raw, err := hex.DecodeString(ciphertext)
		require.NoError(t, err)

		// Flip one byte past the nonce, inside the ciphertext/tag portion.
		raw[len(raw)-1] ^= 0x01
		_, err = c.Decrypt(hex.EncodeToString(raw))
		assertDecryptionError(t, err)
	})

	t.Run("every flipped ciphertext byte fails", func(t *testing.T) {
		ciphertext, err := c.Encrypt("integrity")
		require.NoError(t, err)

		raw, err := hex.DecodeString(ciphertext)
		require.NoError(t, err)

		nonceSize := c.keys[0].NonceSize()
		for i := nonceSize; i < len(raw); i++ {
			mutated := make([]byte, len(raw))
			copy(mutated, raw)
			mutated[i] ^= 0xff

			_, err := c.Decrypt(hex.EncodeToString(mutated))
			assertDecryptionError(t, err)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := NewTokenCipher(generateTestKey(t), "")
		require.NoError(t, err)

		ciphertext, err := other.Encrypt("secret")
		require.NoError(t, err)

		_, err = c.Decrypt(ciphertext)
		assertDecryptionError(t, err)
	})
}

func TestTokenCipher_Unconfigured(t *testing.T) {
	c, err := NewTokenCipher("", "")
	require.NoError(t, err)

	assertConfigError := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		var structured *apperrors.Error
		require.ErrorAs(t, err, &structured)
		assert.Equal(t, apperrors.TypeConfig, structured.Type)
	}

	_, err = c.Encrypt("anything")
	assertConfigError(t, err)

	_, err = c.Decrypt("deadbeef")
	assertConfigError(t, err)
}

func TestTokenCipher_KeyRotation(t *testing.T) {
	oldKey := generateTestKey(t)
	newKey := generateTestKey(t)

	t.Run("old ciphertext readable after rotation", func(t *testing.T) {
		oldCipher, err := NewTokenCipher(oldKey, "")
		require.NoError(t, err)

		ciphertext, err := oldCipher.Encrypt("rotated-secret")
		require.NoError(t, err)

		rotated, err := NewTokenCipher(newKey, oldKey)
		require.NoError(t, err)

		decrypted, err := rotated.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, "rotated-secret", decrypted)
	})

	t.Run("new encryptions use the primary key", func(t *testing.T) {
		rotated, err := NewTokenCipher(newKey, oldKey)
		require.NoError(t, err)

		ciphertext, err := rotated.Encrypt("fresh-secret")
		require.NoError(t, err)

		// Only the new primary key can open it.
		primaryOnly, err := NewTokenCipher(newKey, "")
		require.NoError(t, err)
		decrypted, err := primaryOnly.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, "fresh-secret", decrypted)

		oldOnly, err := NewTokenCipher(oldKey, "")
		require.NoError(t, err)
		_, err = oldOnly.Decrypt(ciphertext)
		assert.Error(t, err)
	})

	t.Run("no fallback means old ciphertext fails", func(t *testing.T) {
		oldCipher, err := NewTokenCipher(oldKey, "")
		require.NoError(t, err)

		ciphertext, err := oldCipher.Encrypt("stranded-secret")
		require.NoError(t, err)

		rotated, err := NewTokenCipher(newKey, "")
		require.NoError(t, err)

		_, err = rotated.Decrypt(ciphertext)
		var structured *apperrors.Error
		require.ErrorAs(t, err, &structured)
		assert.Equal(t, apperrors.TypeDecryption, structured.Type)
	})
}
