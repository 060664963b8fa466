// Package holder implements the claim recreator (spec.md §4.E): given a
// JWT payload containing _sd/_sd_alg/"..." markers and an unordered bag of
// disclosures, it reconstructs the original claim tree and builds the
// per-path disclosure ledger used for presentation filtering and
// definition validation.
package holder

import (
	"fmt"

	"github.com/sdjwtcore/sdjwt"
	"github.com/sdjwtcore/sdjwt/disclosure"
	"github.com/sdjwtcore/sdjwt/internal/digest"
)

// MaxDepth bounds the recursion depth walked during recreation. Depth is
// attacker-controllable (a malicious disclosure bag can nest arbitrarily),
// so spec.md §5/§9 requires a defense; rather than rewrite the walk as an
// explicit work stack, recreation fails closed once this bound is crossed.
const MaxDepth = 64

// Result is the outcome of a successful recreation.
type Result struct {
	Payload map[string]any
	Ledger  *Ledger
	// Consumed lists every disclosure matched against a digest in the
	// payload, in the order its digest was encountered during the walk.
	// AvailableClaims uses this ordering (spec.md §4.E "Ordering &
	// determinism").
	Consumed []*disclosure.Disclosure
}

// Recreate reconstructs the claim tree described by payload using the
// disclosures in bag, returning the processed claims and the per-path
// ledger (spec.md §4.E). Every disclosure in bag must be matched by a
// digest in the payload, or recreation fails. A digest that occurs more
// than once in the payload is matched at its first occurrence only; later
// occurrences are skipped like digests that have no disclosure.
func Recreate(payload map[string]any, bag []string) (*Result, error) {
	pool := map[string]*disclosure.Disclosure{}

	if len(bag) > 0 {
		algName, _ := payload["_sd_alg"].(string)
		if algName == "" {
			return nil, fmt.Errorf("%w: _sd_alg is missing but disclosures were supplied", sdjwt.ErrAlgorithmUnknown)
		}
		alg, ok := digest.FromName(algName)
		if !ok {
			return nil, fmt.Errorf("%w: %q", sdjwt.ErrAlgorithmUnknown, algName)
		}

		for _, blob := range bag {
			dis, err := disclosure.Decode(blob)
			if err != nil {
				return nil, err
			}
			h := dis.Digest(alg)
			if _, dup := pool[h]; dup {
				return nil, fmt.Errorf("%w: duplicate digest across disclosures", sdjwt.ErrDisclosureInconsistency)
			}
			pool[h] = dis
		}
	}

	st := &state{pool: pool, ledger: newLedger()}

	processed, err := st.walkValue(payload, sdjwt.Root(), nil, 0)
	if err != nil {
		return nil, err
	}

	if len(st.pool) > 0 {
		return nil, fmt.Errorf("%w: %d disclosure(s) were never referenced by the payload", sdjwt.ErrDisclosureInconsistency, len(st.pool))
	}

	processedMap, ok := processed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: payload root must be a JSON object", sdjwt.ErrInputMalformed)
	}

	return &Result{Payload: processedMap, Ledger: st.ledger, Consumed: st.consumed}, nil
}

type state struct {
	pool     map[string]*disclosure.Disclosure
	ledger   *Ledger
	consumed []*disclosure.Disclosure
}

// appendDisclosure returns a new slice with d appended, never aliasing
// inherited's backing array. Sibling branches of the walk share the same
// inherited slice value, so an in-place append here would silently
// corrupt one sibling's ledger entry with another's digest.
func appendDisclosure(inherited []*disclosure.Disclosure, d *disclosure.Disclosure) []*disclosure.Disclosure {
	out := make([]*disclosure.Disclosure, len(inherited)+1)
	copy(out, inherited)
	out[len(inherited)] = d
	return out
}

func (s *state) walkValue(v any, path sdjwt.ClaimPath, inherited []*disclosure.Disclosure, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: maximum nesting depth (%d) exceeded at %s", sdjwt.ErrInputMalformed, MaxDepth, path.String())
	}

	switch t := v.(type) {
	case map[string]any:
		return s.walkObject(t, path, inherited, depth)
	case []any:
		return s.walkArray(t, path, inherited, depth)
	default:
		s.ledger.set(path, inherited)
		return v, nil
	}
}

func (s *state) walkObject(m map[string]any, path sdjwt.ClaimPath, inherited []*disclosure.Disclosure, depth int) (map[string]any, error) {
	s.ledger.set(path, inherited)

	output := make(map[string]any, len(m))

	for k, v := range m {
		if k == "_sd" || k == "_sd_alg" {
			continue
		}
		childPath := path.Claim(k)
		val, err := s.walkValue(v, childPath, inherited, depth+1)
		if err != nil {
			return nil, err
		}
		output[k] = val
	}

	sdRaw, hasSD := m["_sd"]
	if !hasSD {
		return output, nil
	}

	sdSlice, ok := sdRaw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: _sd must be an array", sdjwt.ErrInputMalformed)
	}

	for _, digestAny := range sdSlice {
		digestStr, ok := digestAny.(string)
		if !ok {
			return nil, fmt.Errorf("%w: _sd entries must be strings", sdjwt.ErrInputMalformed)
		}

		dis, found := s.pool[digestStr]
		if !found {
			continue // presentation filtering: no matching disclosure, skip silently
		}
		delete(s.pool, digestStr)
		s.consumed = append(s.consumed, dis)

		if dis.Kind != disclosure.ObjectProperty {
			return nil, fmt.Errorf("%w: disclosure referenced from _sd is not an object-property disclosure", sdjwt.ErrInputMalformed)
		}
		if sdjwt.ReservedClaimNames[dis.Name] {
			return nil, fmt.Errorf("%w: disclosed claim name %q is reserved", sdjwt.ErrInputMalformed, dis.Name)
		}
		if _, exists := output[dis.Name]; exists {
			return nil, fmt.Errorf("%w: claim %q collides with an already-present claim", sdjwt.ErrDisclosureInconsistency, dis.Name)
		}

		childPath := path.Claim(dis.Name)
		childLedger := appendDisclosure(inherited, dis)

		val, err := s.walkValue(dis.Value, childPath, childLedger, depth+1)
		if err != nil {
			return nil, err
		}
		output[dis.Name] = val
		s.ledger.set(childPath, childLedger)
	}

	return output, nil
}

func (s *state) walkArray(a []any, path sdjwt.ClaimPath, inherited []*disclosure.Disclosure, depth int) ([]any, error) {
	s.ledger.set(path, inherited)

	out := make([]any, 0, len(a))

	for i, elem := range a {
		elemPath := path.ArrayElement(i)

		digestStr, isMarker := arrayElementDigest(elem)
		if !isMarker {
			val, err := s.walkValue(elem, elemPath, inherited, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
			continue
		}

		dis, found := s.pool[digestStr]
		if !found {
			continue // presentation filtering: element omitted entirely
		}
		delete(s.pool, digestStr)
		s.consumed = append(s.consumed, dis)

		if dis.Kind != disclosure.ArrayElement {
			return nil, fmt.Errorf("%w: disclosure referenced from \"...\" is not an array-element disclosure", sdjwt.ErrInputMalformed)
		}

		childLedger := appendDisclosure(inherited, dis)
		val, err := s.walkValue(dis.Value, elemPath, childLedger, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
		s.ledger.set(elemPath, childLedger)
	}

	return out, nil
}

// arrayElementDigest recognizes the {"...": digest} placeholder shape.
func arrayElementDigest(elem any) (string, bool) {
	m, ok := elem.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	v, ok := m["..."]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
