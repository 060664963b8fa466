// Package digest implements the hash-algorithm registry and the
// digest-of-disclosure operation described in spec.md §4.B. It has no
// dependency on the rest of the module so it can be shared by the
// issuer, holder and disclosure packages without import cycles.
package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"hash"

	"golang.org/x/crypto/sha3"
)

// Algorithm is a registered hash algorithm, keyed by its IANA name.
type Algorithm struct {
	name string
	new  func() hash.Hash
}

// Name returns the algorithm's IANA name (e.g. "sha-256").
func (a Algorithm) Name() string { return a.name }

// New returns a fresh hash.Hash instance for this algorithm.
func (a Algorithm) New() hash.Hash { return a.new() }

// Size returns the digest size in bytes.
func (a Algorithm) Size() int { return a.new().Size() }

var registry = map[string]Algorithm{}

var aliases = map[string]string{}

func register(name string, new func() hash.Hash) {
	registry[name] = Algorithm{name: name, new: new}
}

func init() {
	register("sha-256", sha256.New)
	register("sha-384", sha512.New384)
	register("sha-512", sha512.New)
	register("sha3-256", sha3.New256)
	register("sha3-384", sha3.New384)
	register("sha3-512", sha3.New512)
}

// Alias registers alt as another accepted spelling of canonical, e.g. for
// hosts that emit "sha256" instead of the IANA "sha-256".
func Alias(alt, canonical string) error {
	if _, ok := registry[canonical]; !ok {
		return fmt.Errorf("digest: unknown canonical algorithm %q", canonical)
	}
	aliases[alt] = canonical
	return nil
}

// FromName resolves an IANA hash-algorithm name to its Algorithm, following
// any registered alias. ok is false for unregistered names — callers in
// the core surface this as ErrAlgorithmUnknown.
func FromName(name string) (Algorithm, bool) {
	if canonical, isAlias := aliases[name]; isAlias {
		name = canonical
	}
	alg, ok := registry[name]
	return alg, ok
}

// Default is the factory's default hash algorithm (spec.md §4.D).
const Default = "sha-256"

// Of computes base64url_nopad(H(asciiBytes)) for the given algorithm, as
// required by spec.md §3 ("Each disclosure has a digest...") and §4.A.
func Of(alg Algorithm, asciiBytes []byte) string {
	h := alg.New()
	h.Write(asciiBytes)
	sum := h.Sum(nil)
	return base64.RawURLEncoding.EncodeToString(sum)
}
