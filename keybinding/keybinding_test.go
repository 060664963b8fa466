package keybinding

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdjwtcore/sdjwt"
	"github.com/sdjwtcore/sdjwt/internal/digest"
)

func sha256Alg(t *testing.T) digest.Algorithm {
	t.Helper()
	alg, ok := digest.FromName(digest.Default)
	require.True(t, ok)
	return alg
}

func TestSDHashIsDeterministic(t *testing.T) {
	alg := sha256Alg(t)
	h1 := SDHash(alg, "header.payload.sig", []string{"d1", "d2"})
	h2 := SDHash(alg, "header.payload.sig", []string{"d1", "d2"})
	assert.Equal(t, h1, h2)
}

func TestSDHashSensitiveToDisclosureOrder(t *testing.T) {
	alg := sha256Alg(t)
	h1 := SDHash(alg, "header.payload.sig", []string{"d1", "d2"})
	h2 := SDHash(alg, "header.payload.sig", []string{"d2", "d1"})
	assert.NotEqual(t, h1, h2)
}

func TestSDHashSensitiveToEmptyDisclosures(t *testing.T) {
	alg := sha256Alg(t)
	h1 := SDHash(alg, "header.payload.sig", nil)
	h2 := SDHash(alg, "header.payload.sig", []string{"d1"})
	assert.NotEqual(t, h1, h2)
}

func TestNewNonceIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := NewNonce()
		require.False(t, seen[n])
		seen[n] = true
	}
}

func validClaims(alg digest.Algorithm) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience: jwt.ClaimStrings{"https://verifier.example"},
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		Nonce:  "nonce-1",
		SDHash: SDHash(alg, "header.payload.sig", []string{"d1"}),
	}
}

func TestVerifyAcceptsMatchingClaims(t *testing.T) {
	alg := sha256Alg(t)
	claims := validClaims(alg)
	expect := Expectation{Nonce: "nonce-1", Audience: "https://verifier.example"}
	wantHash := SDHash(alg, "header.payload.sig", []string{"d1"})

	err := Verify(claims, expect, wantHash)
	assert.NoError(t, err)
}

func TestVerifyRejectsNonceMismatch(t *testing.T) {
	alg := sha256Alg(t)
	claims := validClaims(alg)
	expect := Expectation{Nonce: "different-nonce", Audience: "https://verifier.example"}
	wantHash := SDHash(alg, "header.payload.sig", []string{"d1"})

	err := Verify(claims, expect, wantHash)
	assert.ErrorIs(t, err, sdjwt.ErrPolicyViolation)
}

func TestVerifyRejectsAudienceMismatch(t *testing.T) {
	alg := sha256Alg(t)
	claims := validClaims(alg)
	expect := Expectation{Nonce: "nonce-1", Audience: "https://someone-else.example"}
	wantHash := SDHash(alg, "header.payload.sig", []string{"d1"})

	err := Verify(claims, expect, wantHash)
	assert.ErrorIs(t, err, sdjwt.ErrPolicyViolation)
}

func TestVerifyRejectsSDHashMismatch(t *testing.T) {
	alg := sha256Alg(t)
	claims := validClaims(alg)
	expect := Expectation{Nonce: "nonce-1", Audience: "https://verifier.example"}

	err := Verify(claims, expect, "wrong-hash")
	assert.ErrorIs(t, err, sdjwt.ErrPolicyViolation)
}

func TestVerifyRejectsStaleKeyBinding(t *testing.T) {
	alg := sha256Alg(t)
	claims := validClaims(alg)
	claims.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
	expect := Expectation{
		Nonce:    "nonce-1",
		Audience: "https://verifier.example",
		MaxAge:   time.Hour,
	}
	wantHash := SDHash(alg, "header.payload.sig", []string{"d1"})

	err := Verify(claims, expect, wantHash)
	assert.ErrorIs(t, err, sdjwt.ErrPolicyViolation)
}

func TestVerifyRejectsMissingIssuedAtWhenMaxAgeSet(t *testing.T) {
	alg := sha256Alg(t)
	claims := validClaims(alg)
	claims.IssuedAt = nil
	expect := Expectation{
		Nonce:    "nonce-1",
		Audience: "https://verifier.example",
		MaxAge:   time.Hour,
	}
	wantHash := SDHash(alg, "header.payload.sig", []string{"d1"})

	err := Verify(claims, expect, wantHash)
	assert.ErrorIs(t, err, sdjwt.ErrPolicyViolation)
}

func TestRequireForbiddenRejectsPresent(t *testing.T) {
	assert.ErrorIs(t, Require(Forbidden, true), sdjwt.ErrPolicyViolation)
	assert.NoError(t, Require(Forbidden, false))
}

func TestRequireRequiredRejectsAbsent(t *testing.T) {
	assert.ErrorIs(t, Require(Required, false), sdjwt.ErrPolicyViolation)
	assert.NoError(t, Require(Required, true))
}

func TestRequireOptionalAcceptsEither(t *testing.T) {
	assert.NoError(t, Require(Optional, true))
	assert.NoError(t, Require(Optional, false))
}
