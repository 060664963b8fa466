// Package salt implements the default SaltProvider: a high-entropy,
// base64url-encoded, cryptographically random string, unique per
// disclosure within one credential (spec.md §3, §4.D). Grounded on the
// internal/salt helper used by MichaelFraser99/go-sd-jwt's disclosure
// package.
package salt

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DefaultByteLength is the number of random bytes read per salt, matching
// the factory's default described in spec.md §4.D.
const DefaultByteLength = 16

// New returns a fresh base64url-encoded random salt of DefaultByteLength
// bytes.
func New() (string, error) {
	return NewN(DefaultByteLength)
}

// NewN returns a fresh base64url-encoded random salt of n bytes.
func NewN(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("salt: failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
