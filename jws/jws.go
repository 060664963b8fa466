// Package jws is the signature-verification boundary adapter SPEC_FULL.md
// §B names: it wraps golang-jwt/jwt/v5 for verifying the JWT that carries
// the SD-JWT claims, and the optional key-binding JWT, grounded on the
// dc4eu-vc verifier's checkVPTokenIntegrity (jwt.Parse with a Keyfunc,
// checking token.Valid and standard time claims).
package jws

import (
	"crypto"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sdjwtcore/sdjwt"
)

// KeyResolver returns the verification key for a parsed-but-unverified
// token, given its header. Implementations typically dispatch on the "kid"
// or "iss" header/claim to look up an issuer's or holder's public key.
type KeyResolver func(token *jwt.Token) (crypto.PublicKey, error)

// Verifier verifies a compact JWT's signature and standard time-based
// claims (exp/nbf), returning its claims on success.
type Verifier struct {
	resolver KeyResolver
	// ValidMethods restricts accepted signing algorithms, e.g.
	// []string{"ES256", "EdDSA"}. Empty means any algorithm the key
	// resolver is willing to produce a key for.
	ValidMethods []string
}

// NewVerifier builds a Verifier that resolves keys via resolver.
func NewVerifier(resolver KeyResolver) *Verifier {
	return &Verifier{resolver: resolver}
}

// Verify checks compactJWT's signature and exp/nbf claims, returning its
// claims as a plain map.
func (v *Verifier) Verify(compactJWT string) (map[string]any, error) {
	var opts []jwt.ParserOption
	if len(v.ValidMethods) > 0 {
		opts = append(opts, jwt.WithValidMethods(v.ValidMethods))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(compactJWT, claims, func(t *jwt.Token) (any, error) {
		return v.resolver(t)
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: signature verification failed: %v", sdjwt.ErrPolicyViolation, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: token signature is not valid", sdjwt.ErrPolicyViolation)
	}

	return map[string]any(claims), nil
}

// StaticKey builds a KeyResolver that always returns key, for callers who
// have already resolved the signer's public key out of band (e.g. from an
// issuer's well-known JWKS, fetched before calling Verify).
func StaticKey(key crypto.PublicKey) KeyResolver {
	return func(*jwt.Token) (crypto.PublicKey, error) {
		return key, nil
	}
}
