// Package decoy implements the default decoy-digest generator used to pad
// an object's _sd array so that its real disclosure count cannot be
// inferred (spec.md §4.D, invariant 4 in §8).
package decoy

import (
	"crypto/rand"
	"fmt"

	"github.com/sdjwtcore/sdjwt/internal/digest"
)

// New returns a pseudo-random digest of the same byte width as alg's real
// digests, with no disclosure pre-image. It is produced by hashing random
// bytes, matching spec.md §4.D ("Decoys are generated by hashing random
// bytes of the same width as real digests").
func New(alg digest.Algorithm) (string, error) {
	buf := make([]byte, alg.Size())
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("decoy: failed to read random bytes: %w", err)
	}
	return digest.Of(alg, buf), nil
}
