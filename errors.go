// Package sdjwt provides the disclosable-tree model and claim-path
// primitives shared by the issuer, holder and validator packages that
// implement the SD-JWT claim-disclosure transformation.
package sdjwt

import "errors"

// Sentinel errors for the taxonomy described in spec.md §7. Callers should
// use errors.Is against these rather than matching error strings.
var (
	// ErrInputMalformed covers bad base64url, bad JSON, bad disclosure
	// arity and reserved-name usage.
	ErrInputMalformed = errors.New("sdjwt: input malformed")

	// ErrAlgorithmUnknown covers a missing or unrecognized _sd_alg.
	ErrAlgorithmUnknown = errors.New("sdjwt: hash algorithm unknown")

	// ErrDisclosureInconsistency covers duplicate digests, claim-name
	// collisions on re-insertion and orphaned (unused) disclosures. A
	// digest with no matching disclosure is skipped, not reported.
	ErrDisclosureInconsistency = errors.New("sdjwt: disclosure inconsistency")

	// ErrSchemaViolation names the kind covering unknown attributes, wrong
	// types and incorrect disclosability. validator.Validate reports these
	// as Violation values and does not return this error.
	ErrSchemaViolation = errors.New("sdjwt: schema violation")

	// ErrIllegalNesting covers an AlwaysSelectively node directly
	// wrapping another AlwaysSelectively node with no intervening value.
	ErrIllegalNesting = errors.New("sdjwt: illegal nesting of disclosable nodes")

	// ErrPolicyViolation covers an invalid signature or a missing/invalid
	// key binding: the input is well-formed and internally consistent,
	// but fails a verifier's trust policy.
	ErrPolicyViolation = errors.New("sdjwt: policy violation")
)

// ReservedClaimNames are the claim names an issuer must never use for a
// user-supplied claim (spec.md §3).
var ReservedClaimNames = map[string]bool{
	"_sd":     true,
	"_sd_alg": true,
	"...":     true,
}

// WellKnownClaims are standard JWT/VC claims excluded from definition
// validation (spec.md §4.F).
var WellKnownClaims = map[string]bool{
	"iss":            true,
	"sub":            true,
	"aud":            true,
	"exp":            true,
	"nbf":            true,
	"iat":            true,
	"jti":            true,
	"vct":            true,
	"vct#integrity":  true,
}
