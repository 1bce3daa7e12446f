// Package crypto provides encryption services for data at rest.
//
// Implements AES-256-GCM encryption for the Google refresh token stored in
// PostgreSQL, with an ordered primary/fallback key list for zero-downtime key
// rotation. Two implementations: TokenCipher (production) and NoopService
// (dev/test plaintext passthrough).
package crypto
