// Package validator implements the definition validator (spec.md §4.F):
// it cross-checks a reconstructed payload and its per-path disclosure
// ledger against a typed schema, enforcing that every node was disclosed
// the way the schema requires and flagging unknown attributes and type
// mismatches. Validation is exhaustive — every violation is collected,
// never just the first (spec.md §7).
package validator

import (
	"github.com/sdjwtcore/sdjwt"
	"github.com/sdjwtcore/sdjwt/holder"
)

// ViolationKind discriminates the kinds of SchemaViolation spec.md §4.F
// defines.
type ViolationKind int

const (
	// UnknownObjectAttribute: a payload key has no counterpart in the schema.
	UnknownObjectAttribute ViolationKind = iota
	// IncorrectlyDisclosed: a node's disclosure state doesn't match its
	// schema tag.
	IncorrectlyDisclosed
	// WrongAttributeType: the payload value's JSON type doesn't match the
	// schema node's type.
	WrongAttributeType
)

func (k ViolationKind) String() string {
	switch k {
	case UnknownObjectAttribute:
		return "UnknownObjectAttribute"
	case IncorrectlyDisclosed:
		return "IncorrectlyDisclosed"
	case WrongAttributeType:
		return "WrongAttributeType"
	default:
		return "Unknown"
	}
}

// Violation is a single schema-validation finding at a given path.
type Violation struct {
	Kind ViolationKind
	Path sdjwt.ClaimPath
	// Detail is a short human-readable explanation, e.g. the offending
	// attribute name for UnknownObjectAttribute.
	Detail string
}

// SchemaNode is the typed schema IR described in spec.md §4.F: identical
// in shape to the Disclosable tree but leaves are tagged only by kind
// (Id/Obj/Arr), never by value.
type SchemaNode struct {
	Tag  sdjwt.Disclosability
	Kind sdjwt.Kind
	// Obj is populated when Kind == sdjwt.KindObj: the schema for each
	// expected claim name.
	Obj map[string]SchemaNode
	// Arr is populated when Kind == sdjwt.KindArr: the single-element
	// template every array entry must match. A nil Arr means the array's
	// contents are not constrained.
	Arr *SchemaNode
}

// IDNode builds a leaf schema node for a plain JSON value.
func IDNode(tag sdjwt.Disclosability) SchemaNode {
	return SchemaNode{Tag: tag, Kind: sdjwt.KindID}
}

// ObjNode builds a schema node for a nested object.
func ObjNode(tag sdjwt.Disclosability, fields map[string]SchemaNode) SchemaNode {
	return SchemaNode{Tag: tag, Kind: sdjwt.KindObj, Obj: fields}
}

// ArrNode builds a schema node for an array with a uniform element
// template. Pass a nil template to leave the array's contents
// unconstrained.
func ArrNode(tag sdjwt.Disclosability, template *SchemaNode) SchemaNode {
	return SchemaNode{Tag: tag, Kind: sdjwt.KindArr, Arr: template}
}

// Validate cross-checks payload (the processed claims from
// holder.Recreate) and its ledger against schema, per spec.md §4.F. It
// strips well-known JWT/VC claims from the root before walking, and
// returns every violation found; an empty slice means the payload is
// valid.
func Validate(payload map[string]any, ledger *holder.Ledger, schema map[string]SchemaNode) []Violation {
	var violations []Violation

	stripped := make(map[string]any, len(payload))
	for k, v := range payload {
		if sdjwt.WellKnownClaims[k] {
			continue
		}
		stripped[k] = v
	}

	walkObject(stripped, sdjwt.Root(), schema, ledger, &violations)
	return violations
}

func walkObject(actual map[string]any, path sdjwt.ClaimPath, schema map[string]SchemaNode, ledger *holder.Ledger, out *[]Violation) {
	parentLen := ledger.Len(path)

	for k, v := range actual {
		childPath := path.Claim(k)
		node, known := schema[k]
		if !known {
			*out = append(*out, Violation{Kind: UnknownObjectAttribute, Path: childPath, Detail: k})
			continue
		}

		required := ledger.Len(childPath) > parentLen
		switch node.Tag {
		case sdjwt.AlwaysSelectively:
			if !required {
				*out = append(*out, Violation{Kind: IncorrectlyDisclosed, Path: childPath, Detail: "expected selective disclosure"})
			}
		case sdjwt.NeverSelectively:
			if required {
				*out = append(*out, Violation{Kind: IncorrectlyDisclosed, Path: childPath, Detail: "claim must not be selectively disclosed"})
			}
		}

		if v == nil {
			// null short-circuits type recursion but disclosability was
			// already checked above, per spec.md §9's open question
			// resolved to treat null the same as any other value there.
			continue
		}

		switch node.Kind {
		case sdjwt.KindObj:
			m, ok := v.(map[string]any)
			if !ok {
				*out = append(*out, Violation{Kind: WrongAttributeType, Path: childPath, Detail: "expected object"})
				continue
			}
			walkObject(m, childPath, node.Obj, ledger, out)
		case sdjwt.KindArr:
			a, ok := v.([]any)
			if !ok {
				*out = append(*out, Violation{Kind: WrongAttributeType, Path: childPath, Detail: "expected array"})
				continue
			}
			walkArray(a, childPath, node.Arr, ledger, out)
		case sdjwt.KindID:
			// any JSON scalar, or an untyped array/object the schema does
			// not descend into, is acceptable.
		}
	}
}

func walkArray(actual []any, path sdjwt.ClaimPath, template *SchemaNode, ledger *holder.Ledger, out *[]Violation) {
	if template == nil {
		return // schema does not constrain this array's contents
	}

	parentLen := ledger.Len(path)

	for i, v := range actual {
		elemPath := path.ArrayElement(i)

		required := ledger.Len(elemPath) > parentLen
		switch template.Tag {
		case sdjwt.AlwaysSelectively:
			if !required {
				*out = append(*out, Violation{Kind: IncorrectlyDisclosed, Path: elemPath, Detail: "expected selective disclosure"})
			}
		case sdjwt.NeverSelectively:
			if required {
				*out = append(*out, Violation{Kind: IncorrectlyDisclosed, Path: elemPath, Detail: "element must not be selectively disclosed"})
			}
		}

		if v == nil {
			continue
		}

		switch template.Kind {
		case sdjwt.KindObj:
			m, ok := v.(map[string]any)
			if !ok {
				*out = append(*out, Violation{Kind: WrongAttributeType, Path: elemPath, Detail: "expected object"})
				continue
			}
			walkObject(m, elemPath, template.Obj, ledger, out)
		case sdjwt.KindArr:
			a, ok := v.([]any)
			if !ok {
				*out = append(*out, Violation{Kind: WrongAttributeType, Path: elemPath, Detail: "expected array"})
				continue
			}
			walkArray(a, elemPath, template.Arr, ledger, out)
		case sdjwt.KindID:
		}
	}
}
