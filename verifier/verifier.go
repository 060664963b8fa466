// Package verifier is the top-level assembled entry point for consuming an
// SD-JWT: it wires compactjwt, jws and holder (and, when a key-binding JWT
// is present, keybinding) into the single `New`/`SdJwt` surface the
// teacher (SchulzeStTSI/go-sd-jwt) exposes, generalized from its single
// compact/JWS dual-format parser into the full selective-disclosure
// pipeline. Shaped after aries-framework-go's verifier.Parse option
// composition.
package verifier

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sdjwtcore/sdjwt"
	"github.com/sdjwtcore/sdjwt/compactjwt"
	"github.com/sdjwtcore/sdjwt/holder"
	"github.com/sdjwtcore/sdjwt/internal/digest"
	"github.com/sdjwtcore/sdjwt/jws"
	"github.com/sdjwtcore/sdjwt/keybinding"
)

// SdJwt is a fully verified, recreated SD-JWT: signature checked, every
// disclosure matched against a digest in the payload, key binding checked
// whenever a KB-JWT is present. It mirrors the teacher's SdJwt in spirit (a
// validated value obtained only through a constructor, exposed through
// getters) but over the full transformation pipeline rather than just
// parsing.
type SdJwt struct {
	header  map[string]any
	claims  map[string]any
	ledger  *holder.Ledger
	kbSeen  bool
	kbJWT   string
	rawJWT  string
	rawDisc []string
	sdAlg   digest.Algorithm
}

// Header returns the outer JWT's decoded header.
func (s *SdJwt) Header() map[string]any { return s.header }

// Claims returns the recreated claim tree, with every disclosed value
// substituted in place of its digest placeholder.
func (s *SdJwt) Claims() map[string]any { return s.claims }

// Ledger returns the per-path disclosure ledger, for use with
// validator.Validate or holder.SelectByPath.
func (s *SdJwt) Ledger() *holder.Ledger { return s.ledger }

// HasKeyBinding reports whether the presentation carried a KB-JWT.
func (s *SdJwt) HasKeyBinding() bool { return s.kbSeen }

// Options configures New's verification behavior.
type Options struct {
	// SignatureVerifier checks the outer JWT's signature. Required: a
	// token whose signature cannot be checked is never considered valid.
	SignatureVerifier *jws.Verifier
	// KeyBindingPolicy governs whether a KB-JWT is required, optional or
	// forbidden. Defaults to keybinding.Optional.
	KeyBindingPolicy keybinding.Policy
	// KeyBindingVerifier checks the KB-JWT's signature, when present.
	// Required only if a KB-JWT is present or KeyBindingPolicy is
	// keybinding.Required.
	KeyBindingVerifier *jws.Verifier
	// KeyBindingExpect is matched against the KB-JWT's claims and the
	// presentation's computed sd_hash.
	KeyBindingExpect keybinding.Expectation
}

// New parses, verifies and recreates an SD-JWT presentation: token's outer
// JWT signature, then its disclosures against the recreated payload, then
// (per opts.KeyBindingPolicy) its trailing KB-JWT.
func New(token string, opts Options) (*SdJwt, error) {
	parsed, err := compactjwt.Parse(token)
	if err != nil {
		return nil, err
	}

	if opts.SignatureVerifier == nil {
		return nil, fmt.Errorf("verifier: a SignatureVerifier is required")
	}
	verifiedClaims, err := opts.SignatureVerifier.Verify(parsed.JWT)
	if err != nil {
		return nil, err
	}

	if err := keybinding.Require(opts.KeyBindingPolicy, parsed.HasKeyBinding); err != nil {
		return nil, err
	}

	alg := digest.Algorithm{}
	if parsed.HasKeyBinding {
		algName, _ := verifiedClaims["_sd_alg"].(string)
		if algName == "" {
			algName = digest.Default
		}
		var ok bool
		alg, ok = digest.FromName(algName)
		if !ok {
			return nil, fmt.Errorf("%w: %q", sdjwt.ErrAlgorithmUnknown, algName)
		}
	}

	result, err := holder.Recreate(verifiedClaims, parsed.Disclosures)
	if err != nil {
		return nil, err
	}

	sd := &SdJwt{
		header:  parsed.Header,
		claims:  result.Payload,
		ledger:  result.Ledger,
		kbSeen:  parsed.HasKeyBinding,
		kbJWT:   parsed.KeyBindingJWT,
		rawJWT:  parsed.JWT,
		rawDisc: parsed.Disclosures,
		sdAlg:   alg,
	}

	if parsed.HasKeyBinding {
		if err := sd.verifyKeyBinding(opts); err != nil {
			return nil, err
		}
	}

	return sd, nil
}

func (s *SdJwt) verifyKeyBinding(opts Options) error {
	if opts.KeyBindingVerifier == nil {
		return fmt.Errorf("verifier: presentation carries a key-binding JWT but no KeyBindingVerifier was configured")
	}

	kbClaimsRaw, err := opts.KeyBindingVerifier.Verify(s.kbJWT)
	if err != nil {
		return err
	}
	kbClaims := claimsFromMap(kbClaimsRaw)

	wantHash := keybinding.SDHash(s.sdAlg, s.rawJWT, s.rawDisc)

	return keybinding.Verify(kbClaims, opts.KeyBindingExpect, wantHash)
}

// claimsFromMap re-derives the typed keybinding.Claims the jws.Verifier's
// plain map lost: jwt.ParseWithClaims into jwt.MapClaims doesn't know
// about the sd_hash/nonce extensions, so they're pulled out by name, and
// the registered aud/iat claims are re-parsed the same way
// jwt.MapClaims.GetAudience/GetIssuedAt would.
func claimsFromMap(m map[string]any) keybinding.Claims {
	c := keybinding.Claims{}
	if nonce, ok := m["nonce"].(string); ok {
		c.Nonce = nonce
	}
	if hash, ok := m["sd_hash"].(string); ok {
		c.SDHash = hash
	}

	switch aud := m["aud"].(type) {
	case string:
		c.Audience = jwt.ClaimStrings{aud}
	case []any:
		for _, a := range aud {
			if s, ok := a.(string); ok {
				c.Audience = append(c.Audience, s)
			}
		}
	}

	if iat, ok := m["iat"].(float64); ok {
		t := time.Unix(int64(iat), 0)
		c.IssuedAt = jwt.NewNumericDate(t)
	}

	return c
}
