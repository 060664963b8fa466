// Package issuer implements the SD-JWT factory (spec.md §4.D): turning a
// sdjwt.DObject into a JWT payload with digest placeholders plus the
// disclosures that recover the hidden claims, padding each object's _sd
// array with decoys and shuffling it so that real vs. decoy digests (and
// their per-key origin) are not inferable from order.
//
// The walk mirrors masv3971/gosdjwt's Instruction-tree recursion, adapted
// to the typed Disclosable/DValue sum instead of a single dynamic
// Instruction struct.
package issuer

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/sdjwtcore/sdjwt/disclosure"
	"github.com/sdjwtcore/sdjwt/internal/decoy"
	"github.com/sdjwtcore/sdjwt/internal/digest"
)

// MinDigests expresses the factory's floor on an object's _sd array
// length, either "no floor" or "at least k" (spec.md §4.D).
type MinDigests struct {
	set bool
	k   int
}

// NoMinimum means objects are padded only enough to hide nothing beyond
// their real digest count (i.e. not padded at all).
func NoMinimum() MinDigests { return MinDigests{} }

// AtLeast requires every non-empty _sd array to contain at least k
// digests, padding with decoys as needed.
func AtLeast(k int) MinDigests { return MinDigests{set: true, k: k} }

func (m MinDigests) floor() int {
	if !m.set {
		return 0
	}
	return m.k
}

// DecoyGenerator produces a pseudo-random digest of alg's width with no
// disclosure pre-image. The default is internal/decoy.New.
type DecoyGenerator func(alg digest.Algorithm) (string, error)

// Config configures a single issuance call (spec.md §4.D).
type Config struct {
	// HashAlgorithm names the digest engine algorithm to use. Defaults to
	// digest.Default ("sha-256") when empty.
	HashAlgorithm string
	// SaltProvider supplies a fresh salt per disclosure. Defaults to
	// disclosure.DefaultSaltProvider when nil.
	SaltProvider disclosure.SaltProvider
	// DecoyGenerator supplies decoy digests. Defaults to internal/decoy.New
	// when nil.
	DecoyGenerator DecoyGenerator
	// MinDigests is the floor on each non-empty _sd array's length.
	// Defaults to NoMinimum.
	MinDigests MinDigests
}

func (c Config) resolve() (Config, digest.Algorithm, error) {
	out := c
	name := out.HashAlgorithm
	if name == "" {
		name = digest.Default
	}
	alg, ok := digest.FromName(name)
	if !ok {
		return Config{}, digest.Algorithm{}, fmt.Errorf("issuer: unknown hash algorithm %q", name)
	}
	if out.SaltProvider == nil {
		out.SaltProvider = disclosure.DefaultSaltProvider
	}
	if out.DecoyGenerator == nil {
		out.DecoyGenerator = decoy.New
	}
	return out, alg, nil
}

// randIndex returns a uniform random int in [0, n) using crypto/rand, so
// the _sd shuffle does not depend on a seedable, predictable PRNG.
func randIndex(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("issuer: failed to read random index: %w", err)
	}
	return int(v.Int64()), nil
}

func shuffle(s []string) error {
	for i := len(s) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return err
		}
		s[i], s[j] = s[j], s[i]
	}
	return nil
}
