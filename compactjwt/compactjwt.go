// Package compactjwt is the boundary adapter for the SD-JWT wire framing
// described in spec.md §6: `<jwt>~<disc1>~<disc2>~...~[<kb-jwt>]`, or the
// equivalent JWS JSON serialization. The transformation engine in
// holder/issuer/validator accepts already-split inputs; this package does
// the splitting, grounded on the teacher's (SchulzeStTSI/go-sd-jwt)
// validateJwt/validateJws dual-format handling, generalized to also
// recognize a trailing key-binding JWT segment.
package compactjwt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sdjwtcore/sdjwt"
)

// Result is a parsed SD-JWT, split into its transformation-engine-ready
// parts but not yet signature-verified — that is the caller's job via a
// SignatureVerifier (spec.md §6).
type Result struct {
	// JWT is the compact header.payload.signature string, suitable for
	// passing to a SignatureVerifier.
	JWT string
	// Header is the JWT's decoded, unverified header.
	Header map[string]any
	// Claims is the JWT's decoded, unverified payload — the input to
	// holder.Recreate.
	Claims map[string]any
	// Disclosures are the encoded disclosure blobs, in wire order.
	Disclosures []string
	// KeyBindingJWT is the trailing kb+jwt segment, if present.
	KeyBindingJWT string
	HasKeyBinding bool
}

// jwsForm mirrors the JWS JSON Serialization shape the teacher validates
// (payload/protected/signature/disclosures/kb_jwt).
type jwsForm struct {
	Payload     *string  `json:"payload"`
	Protected   *string  `json:"protected"`
	Signature   *string  `json:"signature"`
	Disclosures []string `json:"disclosures"`
	KbJwt       *string  `json:"kb_jwt"`
}

// Parse splits an SD-JWT, accepting either the tilde-separated compact
// form or the JWS JSON Serialization form.
func Parse(token string) (*Result, error) {
	var jf jwsForm
	if err := json.Unmarshal([]byte(token), &jf); err == nil {
		if jf.Payload != nil && jf.Protected != nil && jf.Signature != nil {
			return parseJWS(jf)
		}
	}
	return parseCompact(token)
}

func parseCompact(token string) (*Result, error) {
	sections := strings.Split(token, "~")
	if len(sections) < 2 {
		return nil, fmt.Errorf("%w: token is missing the trailing ~ disclosure framing", sdjwt.ErrInputMalformed)
	}

	jwtPart := sections[0]
	header, claims, err := parseUnverifiedJWT(jwtPart)
	if err != nil {
		return nil, err
	}

	rest := sections[1:]

	var kbJWT string
	hasKB := false
	if n := len(rest); n > 0 {
		last := rest[n-1]
		switch {
		case last == "":
			rest = rest[:n-1]
		case looksLikeJWT(last):
			kbJWT = last
			hasKB = true
			rest = rest[:n-1]
		}
	}

	var disclosures []string
	for _, d := range rest {
		if d == "" {
			continue
		}
		disclosures = append(disclosures, d)
	}

	return &Result{
		JWT:           jwtPart,
		Header:        header,
		Claims:        claims,
		Disclosures:   disclosures,
		KeyBindingJWT: kbJWT,
		HasKeyBinding: hasKB,
	}, nil
}

func parseJWS(jf jwsForm) (*Result, error) {
	headerBytes, err := base64.RawURLEncoding.DecodeString(*jf.Protected)
	if err != nil {
		return nil, fmt.Errorf("%w: protected header is not valid base64url: %v", sdjwt.ErrInputMalformed, err)
	}
	var header map[string]any
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("%w: protected header is not valid JSON: %v", sdjwt.ErrInputMalformed, err)
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(*jf.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not valid base64url: %v", sdjwt.ErrInputMalformed, err)
	}
	var claims map[string]any
	if err := json.Unmarshal(payloadBytes, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload is not valid JSON: %v", sdjwt.ErrInputMalformed, err)
	}

	var disclosures []string
	for _, d := range jf.Disclosures {
		if d != "" {
			disclosures = append(disclosures, d)
		}
	}

	kbJWT := ""
	if jf.KbJwt != nil {
		kbJWT = *jf.KbJwt
	}

	return &Result{
		JWT:           *jf.Protected + "." + *jf.Payload + "." + *jf.Signature,
		Header:        header,
		Claims:        claims,
		Disclosures:   disclosures,
		KeyBindingJWT: kbJWT,
		HasKeyBinding: kbJWT != "",
	}, nil
}

func parseUnverifiedJWT(jwtPart string) (header map[string]any, claims map[string]any, err error) {
	mc := jwt.MapClaims{}
	parser := jwt.NewParser()
	tok, _, err := parser.ParseUnverified(jwtPart, mc)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: not a valid JWT: %v", sdjwt.ErrInputMalformed, err)
	}
	return tok.Header, map[string]any(mc), nil
}

// looksLikeJWT distinguishes a trailing key-binding JWT from a trailing
// disclosure: a JWT's compact form always has exactly two '.' separators,
// which base64url content (a disclosure blob) never contains.
func looksLikeJWT(s string) bool {
	return strings.Count(s, ".") == 2
}

// Serialize reassembles the tilde-separated compact form from a signed
// JWT, its disclosures, and an optional key-binding JWT (spec.md §6: "the
// trailing tilde is present even when there are no disclosures").
func Serialize(signedJWT string, disclosures []string, keyBindingJWT string) string {
	var b strings.Builder
	b.WriteString(signedJWT)
	b.WriteByte('~')
	for _, d := range disclosures {
		b.WriteString(d)
		b.WriteByte('~')
	}
	b.WriteString(keyBindingJWT)
	return b.String()
}
