// Package keybinding implements the holder-binding extension described in
// spec.md §6's supplemented scope: computing and checking the sd_hash a
// key-binding JWT (KB-JWT) binds a presentation to, and the nonce/audience/
// freshness checks a verifier runs against it.
//
// Grounded on the credence VC package's CreateKeyBindingJWT/verifyKeyBinding
// (nonce, audience and sd_hash checks) and aries-framework-go's
// holder.BindingInfo / verifier.WithExpectedNonceForHolderBinding option
// shapes.
package keybinding

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sdjwtcore/sdjwt"
	"github.com/sdjwtcore/sdjwt/internal/digest"
)

// Policy describes whether a presentation is required to carry a KB-JWT.
type Policy int

const (
	// Optional accepts a presentation with or without one.
	Optional Policy = iota
	// Forbidden rejects any presentation carrying a KB-JWT.
	Forbidden
	// Required rejects a presentation with no KB-JWT.
	Required
)

// Claims is the KB-JWT's payload, per spec.md's key-binding extension:
// nonce and audience challenge-response, an issued-at timestamp, and the
// sd_hash binding the KB-JWT to one specific presentation.
type Claims struct {
	jwt.RegisteredClaims
	Nonce  string `json:"nonce"`
	SDHash string `json:"sd_hash"`
}

// NewNonce generates a default holder-challenge nonce, grounded on the
// dc4eu-vc / Mindburn-Labs-helm stacks' use of google/uuid for one-shot
// challenge tokens.
func NewNonce() string {
	return uuid.NewString()
}

// SDHash computes the sd_hash binding value: the digest, under alg, of the
// ASCII bytes "<jwt>~<disclosure1>~...~<disclosureN>~" that precede the
// KB-JWT on the wire (spec.md §6).
func SDHash(alg digest.Algorithm, signedJWT string, disclosures []string) string {
	var presented string
	for _, d := range disclosures {
		presented += d + "~"
	}
	presented = signedJWT + "~" + presented
	return digest.Of(alg, []byte(presented))
}

// Expectation is what a verifier requires of an incoming KB-JWT.
type Expectation struct {
	Nonce    string
	Audience string
	// MaxAge bounds how old the KB-JWT's iat may be. Zero disables the
	// check.
	MaxAge time.Duration
	Now    time.Time
}

// Verify checks claims against an Expectation and the sd_hash computed over
// the actual presentation, per spec.md's key-binding extension. It does not
// verify the KB-JWT's signature; that is the caller's job via a
// SignatureVerifier, matching the layering the rest of this module uses for
// JWS verification.
func Verify(claims Claims, expect Expectation, wantHash string) error {
	if claims.Nonce == "" || claims.Nonce != expect.Nonce {
		return fmt.Errorf("%w: key-binding nonce mismatch", sdjwt.ErrPolicyViolation)
	}

	if expect.Audience != "" {
		matches := false
		for _, a := range claims.Audience {
			if a == expect.Audience {
				matches = true
				break
			}
		}
		if !matches {
			return fmt.Errorf("%w: key-binding audience mismatch", sdjwt.ErrPolicyViolation)
		}
	}

	if claims.SDHash == "" || claims.SDHash != wantHash {
		return fmt.Errorf("%w: sd_hash does not match the presented disclosures", sdjwt.ErrPolicyViolation)
	}

	if expect.MaxAge > 0 {
		if claims.IssuedAt == nil {
			return fmt.Errorf("%w: key-binding JWT has no iat to check freshness against", sdjwt.ErrPolicyViolation)
		}
		now := expect.Now
		if now.IsZero() {
			now = time.Now()
		}
		if now.Sub(claims.IssuedAt.Time) > expect.MaxAge {
			return fmt.Errorf("%w: key-binding JWT is older than the allowed max age", sdjwt.ErrPolicyViolation)
		}
	}

	return nil
}

// Require reports whether policy rejects the absence (or presence) of a
// KB-JWT on a presentation that does/doesn't carry one.
func Require(policy Policy, present bool) error {
	switch policy {
	case Required:
		if !present {
			return fmt.Errorf("%w: a key-binding JWT is required but absent", sdjwt.ErrPolicyViolation)
		}
	case Forbidden:
		if present {
			return fmt.Errorf("%w: a key-binding JWT is present but forbidden by policy", sdjwt.ErrPolicyViolation)
		}
	case Optional:
	}
	return nil
}
