package holder

import (
	"github.com/sdjwtcore/sdjwt"
	"github.com/sdjwtcore/sdjwt/disclosure"
)

// SelectByPath returns the encoded disclosure blobs needed to present the
// nodes named by paths, including every ancestor disclosure each of them
// depends on. This is the supported way to build a presentation subset
// when any selected claim sits below another selectively-disclosed node,
// since the payload's digest placeholder for a nested claim cannot be
// resolved without the enclosing claim's own disclosure.
//
// Companion to Recreate, grounded on aries-framework-go's
// holder.CreatePresentation(cfi, selectedDisclosures).
func SelectByPath(ledger *Ledger, paths []sdjwt.ClaimPath) []string {
	seen := make(map[string]bool)
	var blobs []string

	for _, p := range paths {
		ds, ok := ledger.Get(p)
		if !ok {
			continue
		}
		for _, d := range ds {
			if seen[d.Encoded] {
				continue
			}
			seen[d.Encoded] = true
			blobs = append(blobs, d.Encoded)
		}
	}

	return blobs
}

// NamedClaim describes one object-property disclosure available for
// presentation, grounded on aries-framework-go's holder.Claim
// (Name/Disclosure pair returned from holder.Parse).
type NamedClaim struct {
	Name       string
	Value      any
	Disclosure string
}

// AvailableClaims lists every object-property disclosure consumed while
// building full, in the order their digests were encountered (spec.md §4.E
// "Ordering & determinism"). Array-element disclosures carry no claim
// name and are omitted; select those via SelectByPath instead.
func AvailableClaims(full *Result) []NamedClaim {
	claims := make([]NamedClaim, 0, len(full.Consumed))
	for _, d := range full.Consumed {
		if d.Kind != disclosure.ObjectProperty {
			continue
		}
		claims = append(claims, NamedClaim{Name: d.Name, Value: d.Value, Disclosure: d.Encoded})
	}
	return claims
}

// SelectByName returns the encoded disclosure blobs for the named claims
// out of available, preserving available's order. It is only correct for
// flat disclosure sets: if a selected claim is nested under another
// selectively-disclosed object, its ancestor's disclosure must also be
// included, which SelectByPath does automatically and this helper does
// not. Grounded on aries-framework-go's getDisclosuresFromClaimNames test
// helper, promoted here to a supported API.
func SelectByName(available []NamedClaim, names []string) []string {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var blobs []string
	for _, c := range available {
		if want[c.Name] {
			blobs = append(blobs, c.Disclosure)
		}
	}
	return blobs
}
