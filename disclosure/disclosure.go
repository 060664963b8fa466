// Package disclosure implements the SD-JWT disclosure codec: encoding a
// single disclosure blob from a salt/name/value triple (or salt/value
// pair), decoding one back, and computing its digest. See spec.md §4.A.
// The shape is grounded on MichaelFraser99/go-sd-jwt's disclosure
// subpackage (NewFromObject / NewFromArrayElement / NewFromDisclosure).
package disclosure

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/sdjwtcore/sdjwt"
	"github.com/sdjwtcore/sdjwt/internal/digest"
	"github.com/sdjwtcore/sdjwt/internal/salt"
)

// Kind discriminates the two disclosure shapes of spec.md §3.
type Kind int

const (
	// ObjectProperty is the 3-element [salt, name, value] shape.
	ObjectProperty Kind = iota
	// ArrayElement is the 2-element [salt, value] shape.
	ArrayElement
)

// Disclosure is a single decoded or constructed disclosure, together with
// its base64url-encoded wire blob. The blob is kept alongside the decoded
// fields because the digest is computed over the encoded string, not a
// re-serialization of the decoded value (spec.md §4.A rationale).
type Disclosure struct {
	Kind    Kind
	Salt    string
	Name    string // valid only when Kind == ObjectProperty
	Value   any
	Encoded string
}

// SaltProvider supplies a fresh, unique-per-disclosure salt. The default
// implementation is internal/salt.New; tests inject deterministic
// counter-based providers per spec.md §5/§9.
type SaltProvider func() (string, error)

// DefaultSaltProvider is the cryptographically random provider used when
// the issuer is not configured with one explicitly.
func DefaultSaltProvider() (string, error) { return salt.New() }

// EncodeObject builds an object-property disclosure [salt, name, value]
// and its base64url blob. It rejects reserved claim names per spec.md §3.
func EncodeObject(name string, value any, provider SaltProvider) (*Disclosure, error) {
	if name == "" || sdjwt.ReservedClaimNames[name] {
		return nil, fmt.Errorf("%w: reserved or empty claim name %q", sdjwt.ErrInputMalformed, name)
	}
	if provider == nil {
		provider = DefaultSaltProvider
	}
	s, err := provider()
	if err != nil {
		return nil, fmt.Errorf("disclosure: salt provider failed: %w", err)
	}
	return encode(Kind(ObjectProperty), s, name, value)
}

// EncodeArray builds an array-element disclosure [salt, value] and its
// base64url blob.
func EncodeArray(value any, provider SaltProvider) (*Disclosure, error) {
	if provider == nil {
		provider = DefaultSaltProvider
	}
	s, err := provider()
	if err != nil {
		return nil, fmt.Errorf("disclosure: salt provider failed: %w", err)
	}
	return encode(ArrayElement, s, "", value)
}

func encode(kind Kind, s, name string, value any) (*Disclosure, error) {
	var raw []any
	if kind == ObjectProperty {
		raw = []any{s, name, value}
	} else {
		raw = []any{s, value}
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("disclosure: failed to encode disclosure array: %w", err)
	}

	return &Disclosure{
		Kind:    kind,
		Salt:    s,
		Name:    name,
		Value:   value,
		Encoded: base64.RawURLEncoding.EncodeToString(b),
	}, nil
}

// Decode parses a base64url-encoded disclosure blob, returning
// ErrInputMalformed (spec.md §4.A) for any structural violation: invalid
// base64url, invalid UTF-8/JSON, wrong arity, a non-string name in the
// 3-element form, or a reserved claim name.
func Decode(blob string) (*Disclosure, error) {
	raw, err := base64.RawURLEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: disclosure is not valid base64url: %v", sdjwt.ErrInputMalformed, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: disclosure is not valid UTF-8", sdjwt.ErrInputMalformed)
	}

	var arr []any
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, fmt.Errorf("%w: disclosure is not a valid JSON array: %v", sdjwt.ErrInputMalformed, err)
	}

	switch len(arr) {
	case 2:
		s, ok := arr[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: disclosure salt must be a string", sdjwt.ErrInputMalformed)
		}
		return &Disclosure{Kind: ArrayElement, Salt: s, Value: arr[1], Encoded: blob}, nil
	case 3:
		s, ok := arr[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: disclosure salt must be a string", sdjwt.ErrInputMalformed)
		}
		name, ok := arr[1].(string)
		if !ok {
			return nil, fmt.Errorf("%w: disclosure claim name must be a string", sdjwt.ErrInputMalformed)
		}
		if sdjwt.ReservedClaimNames[name] {
			return nil, fmt.Errorf("%w: disclosure uses reserved claim name %q", sdjwt.ErrInputMalformed, name)
		}
		return &Disclosure{Kind: ObjectProperty, Salt: s, Name: name, Value: arr[2], Encoded: blob}, nil
	default:
		return nil, fmt.Errorf("%w: disclosure array must have 2 or 3 elements, got %d", sdjwt.ErrInputMalformed, len(arr))
	}
}

// Digest computes base64url_nopad(H(ascii(blob))) for this disclosure
// under alg, recomputed directly over the encoded string as spec.md §4.A
// requires.
func (d *Disclosure) Digest(alg digest.Algorithm) string {
	return digest.Of(alg, []byte(d.Encoded))
}
