package jws

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signHMAC(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	secret := []byte("top-secret")
	token := signHMAC(t, secret, jwt.MapClaims{"sub": "user-1"})

	v := NewVerifier(StaticKey(secret))
	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["sub"])
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	token := signHMAC(t, []byte("right-secret"), jwt.MapClaims{"sub": "user-1"})

	v := NewVerifier(StaticKey([]byte("wrong-secret")))
	_, err := v.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	secret := []byte("top-secret")
	token := signHMAC(t, secret, jwt.MapClaims{
		"sub": "user-1",
		"exp": jwt.NewNumericDate(time.Now().Add(-time.Hour)).Unix(),
	})

	v := NewVerifier(StaticKey(secret))
	_, err := v.Verify(token)
	assert.Error(t, err)
}

func TestVerifyEnforcesValidMethods(t *testing.T) {
	secret := []byte("top-secret")
	token := signHMAC(t, secret, jwt.MapClaims{"sub": "user-1"})

	v := NewVerifier(StaticKey(secret))
	v.ValidMethods = []string{"ES256"}

	_, err := v.Verify(token)
	assert.Error(t, err)
}

func TestVerifyAllowsMatchingValidMethods(t *testing.T) {
	secret := []byte("top-secret")
	token := signHMAC(t, secret, jwt.MapClaims{"sub": "user-1"})

	v := NewVerifier(StaticKey(secret))
	v.ValidMethods = []string{"HS256"}

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["sub"])
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	v := NewVerifier(StaticKey([]byte("secret")))
	_, err := v.Verify("not-a-jwt")
	assert.Error(t, err)
}
