package issuer

import (
	"fmt"

	"github.com/sdjwtcore/sdjwt"
	"github.com/sdjwtcore/sdjwt/disclosure"
	"github.com/sdjwtcore/sdjwt/internal/digest"
)

// Result is the outcome of a successful issuance: the JWT payload ready
// for signing, and the disclosures that must be distributed alongside it
// out-of-band (spec.md §3 "Lifecycle").
type Result struct {
	Payload     map[string]any
	Disclosures []*disclosure.Disclosure
}

// Issue walks root and produces the payload fragment plus disclosures
// described by spec.md §4.D. root represents the credential's top-level
// object; it has no disclosability tag of its own because there is no
// parent _sd array to hold a digest for it.
func Issue(root sdjwt.DObject, cfg Config) (*Result, error) {
	resolved, alg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	st := &state{cfg: resolved, alg: alg, seenSalts: make(map[string]bool)}

	payload, err := st.buildObject(root)
	if err != nil {
		return nil, err
	}

	if len(st.disclosures) > 0 {
		payload["_sd_alg"] = alg.Name()
	}

	return &Result{Payload: payload, Disclosures: st.disclosures}, nil
}

type state struct {
	cfg         Config
	alg         digest.Algorithm
	disclosures []*disclosure.Disclosure
	seenSalts   map[string]bool
}

// salt wraps the configured SaltProvider with the uniqueness check
// required by spec.md §4.D ("SaltCollision ... treated as fatal").
func (s *state) salt() (string, error) {
	v, err := s.cfg.SaltProvider()
	if err != nil {
		return "", fmt.Errorf("issuer: salt provider failed: %w", err)
	}
	if s.seenSalts[v] {
		return "", fmt.Errorf("issuer: salt collision detected, broken salt provider")
	}
	s.seenSalts[v] = true
	return v, nil
}

func (s *state) buildObject(o sdjwt.DObject) (map[string]any, error) {
	result := map[string]any{}
	var sd []string

	for _, name := range o.Names() {
		el, _ := o.Get(name)
		if sdjwt.ReservedClaimNames[name] {
			return nil, fmt.Errorf("%w: claim name %q is reserved", sdjwt.ErrInputMalformed, name)
		}

		switch el.Tag {
		case sdjwt.NeverSelectively:
			v, err := s.valueJSON(el.Value)
			if err != nil {
				return nil, err
			}
			result[name] = v

		case sdjwt.AlwaysSelectively:
			v, err := s.valueJSON(el.Value)
			if err != nil {
				return nil, err
			}
			d, err := s.newDisclosureForName(name, v)
			if err != nil {
				return nil, err
			}
			sd = append(sd, d.Digest(s.alg))
		}
	}

	if len(sd) > 0 {
		padded, err := s.padAndShuffle(sd)
		if err != nil {
			return nil, err
		}
		result["_sd"] = padded
	}

	return result, nil
}

func (s *state) buildArray(a sdjwt.DArray) ([]any, error) {
	out := make([]any, 0, a.Len())

	for _, el := range a.Elements() {
		switch el.Tag {
		case sdjwt.NeverSelectively:
			v, err := s.valueJSON(el.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, v)

		case sdjwt.AlwaysSelectively:
			v, err := s.valueJSON(el.Value)
			if err != nil {
				return nil, err
			}
			d, err := s.newArrayDisclosure(v)
			if err != nil {
				return nil, err
			}
			out = append(out, map[string]any{"...": d.Digest(s.alg)})
		}
	}

	return out, nil
}

func (s *state) valueJSON(v sdjwt.DValue) (any, error) {
	switch v.Kind() {
	case sdjwt.KindID:
		return v.ID(), nil
	case sdjwt.KindObj:
		return s.buildObject(v.Obj())
	case sdjwt.KindArr:
		return s.buildArray(v.Arr())
	default:
		return nil, fmt.Errorf("issuer: unknown DValue kind %d", v.Kind())
	}
}

func (s *state) newDisclosureForName(name string, value any) (*disclosure.Disclosure, error) {
	saltOnce := saltOnceProvider(s)
	d, err := disclosure.EncodeObject(name, value, saltOnce)
	if err != nil {
		return nil, err
	}
	s.disclosures = append(s.disclosures, d)
	return d, nil
}

func (s *state) newArrayDisclosure(value any) (*disclosure.Disclosure, error) {
	saltOnce := saltOnceProvider(s)
	d, err := disclosure.EncodeArray(value, saltOnce)
	if err != nil {
		return nil, err
	}
	s.disclosures = append(s.disclosures, d)
	return d, nil
}

// saltOnceProvider adapts state.salt (which needs no arguments but does
// need receiver state) to the disclosure.SaltProvider function type.
func saltOnceProvider(s *state) disclosure.SaltProvider {
	return func() (string, error) { return s.salt() }
}

// padAndShuffle pads real's digest list with decoys up to the configured
// floor, guards against decoy/real collisions, and shuffles the result so
// that real vs. decoy digests are not distinguishable by position
// (spec.md §4.D, invariant 4 in §8).
func (s *state) padAndShuffle(real []string) ([]string, error) {
	seen := make(map[string]bool, len(real))
	for _, d := range real {
		seen[d] = true
	}

	out := make([]string, len(real))
	copy(out, real)

	floor := s.cfg.MinDigests.floor()
	for len(out) < floor {
		d, err := s.newDecoy(seen)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
		seen[d] = true
	}

	if err := shuffle(out); err != nil {
		return nil, err
	}
	return out, nil
}

const maxDecoyRetries = 100

func (s *state) newDecoy(seen map[string]bool) (string, error) {
	for i := 0; i < maxDecoyRetries; i++ {
		d, err := s.cfg.DecoyGenerator(s.alg)
		if err != nil {
			return "", fmt.Errorf("issuer: decoy generator failed: %w", err)
		}
		if !seen[d] {
			return d, nil
		}
	}
	return "", fmt.Errorf("issuer: could not generate a non-colliding decoy digest after %d attempts", maxDecoyRetries)
}
