package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	apperrors "github.com/Tandemrecruit/ReplyStack-sub002/internal/errors"
)

// Service encrypts and decrypts opaque secrets for storage.
type Service interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
	IsConfigured() bool
}

// NoopService passes secrets through without encryption (dev/test mode).
type NoopService struct{}

func (NoopService) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (NoopService) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }
func (NoopService) IsConfigured() bool                        { return true }

// TokenCipher encrypts secrets with AES-256-GCM. Encryption always uses the
// primary key; decryption tries the primary key first and then any configured
// fallback key, so keys can be rotated without re-encrypting stored rows.
//
// The encoded form is hex(nonce || ciphertext || tag). Two encryptions of the
// same plaintext differ because a fresh random nonce is drawn per call.
type TokenCipher struct {
	keys []cipher.AEAD // primary first, then well-formed fallbacks
}

// NewTokenCipher builds a cipher from hex-encoded 256-bit keys.
//
// An empty primary key yields an unconfigured cipher: IsConfigured reports
// false and Encrypt/Decrypt fail with a config error, so callers can fail
// fast with a clear message instead of a cryptic decryption error. A
// malformed primary key is a hard startup error. A malformed fallback key is
// logged and skipped; it never blocks startup or decryption.
func NewTokenCipher(primaryHex, fallbackHex string) (*TokenCipher, error) {
	c := &TokenCipher{}

	if primaryHex != "" {
		primary, err := parseKey(primaryHex)
		if err != nil {
			return nil, fmt.Errorf("invalid primary encryption key: %w", err)
		}
		c.keys = append(c.keys, primary)
	}

	if fallbackHex != "" {
		fallback, err := parseKey(fallbackHex)
		if err != nil {
			slog.Warn("Skipping malformed fallback encryption key", "error", err)
		} else {
			c.keys = append(c.keys, fallback)
		}
	}

	return c, nil
}

func parseKey(hexKey string) (cipher.AEAD, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("key must be valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be exactly 64 hex characters (32 bytes), got %d bytes", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return gcm, nil
}

// IsConfigured reports whether a valid primary key is present.
func (c *TokenCipher) IsConfigured() bool {
	return len(c.keys) > 0
}

// Encrypt seals plaintext under the primary key with a fresh random nonce.
func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	if !c.IsConfigured() {
		return "", apperrors.ConfigError("no encryption key configured")
	}

	gcm := c.keys[0]
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends the encrypted data to nonce, returning nonce || ciphertext || tag
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(ciphertext), nil
}

// Decrypt opens an encoded blob, trying each configured key in order and
// short-circuiting on the first success. Malformed input, tampering, and a
// wrong key all fail with the same decryption error.
func (c *TokenCipher) Decrypt(ciphertext string) (string, error) {
	if !c.IsConfigured() {
		return "", apperrors.ConfigError("no encryption key configured")
	}

	buffer, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", apperrors.DecryptionError(fmt.Errorf("failed to decode hex: %w", err))
	}

	nonceSize := c.keys[0].NonceSize()
	if len(buffer) < nonceSize {
		return "", apperrors.DecryptionError(fmt.Errorf("ciphertext too short"))
	}

	nonce, cipherBytes := buffer[:nonceSize], buffer[nonceSize:]

	var lastErr error
	for _, gcm := range c.keys {
		plainBytes, err := gcm.Open(nil, nonce, cipherBytes, nil)
		if err == nil {
			return string(plainBytes), nil
		}
		lastErr = err
	}

	return "", apperrors.DecryptionError(fmt.Errorf("failed to decrypt: %w", lastErr))
}
