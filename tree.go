package sdjwt

// Disclosability marks whether a node must always appear as a plain value
// in the issued payload (NeverSelectively) or must only appear behind a
// digest placeholder, recoverable via its disclosure (AlwaysSelectively).
// See spec.md §3.
type Disclosability int

const (
	// NeverSelectively means the node's value is embedded directly in the
	// payload; no disclosure is generated for it.
	NeverSelectively Disclosability = iota
	// AlwaysSelectively means the node's value is replaced by a digest
	// placeholder and recoverable only through its disclosure.
	AlwaysSelectively
)

func (d Disclosability) String() string {
	if d == AlwaysSelectively {
		return "AlwaysSelectively"
	}
	return "NeverSelectively"
}

// Kind discriminates the three shapes a DValue can take.
type Kind int

const (
	// KindID is a plain JSON value (null, bool, number, string, or an
	// array/object that the tree does not recurse into further).
	KindID Kind = iota
	// KindObj is a nested DObject.
	KindObj
	// KindArr is a nested DArray.
	KindArr
)

// DValue is the closed sum DValue = Id(JsonValue) | Obj(DObject) | Arr(DArray).
// Exactly one of the three payload fields is meaningful, selected by Kind.
type DValue struct {
	kind Kind
	id   any
	obj  DObject
	arr  DArray
}

// Kind reports which alternative of the sum this value holds.
func (v DValue) Kind() Kind { return v.kind }

// ID returns the plain JSON value. Valid only when Kind() == KindID.
func (v DValue) ID() any { return v.id }

// Obj returns the nested object. Valid only when Kind() == KindObj.
func (v DValue) Obj() DObject { return v.obj }

// Arr returns the nested array. Valid only when Kind() == KindArr.
func (v DValue) Arr() DArray { return v.arr }

// Id builds a leaf DValue wrapping a plain JSON value.
func Id(v any) DValue { return DValue{kind: KindID, id: v} }

// Obj builds a DValue wrapping a nested object.
func Obj(o DObject) DValue { return DValue{kind: KindObj, obj: o} }

// Arr builds a DValue wrapping a nested array.
func Arr(a DArray) DValue { return DValue{kind: KindArr, arr: a} }

// DElement is Disclosable<DValue>: a value paired with the disclosability
// tag that governs how the factory and validator treat it.
type DElement struct {
	Tag   Disclosability
	Value DValue
}

// Plain constructs a DElement tagged NeverSelectively.
func Plain(v DValue) DElement {
	return DElement{Tag: NeverSelectively, Value: v}
}

// Selective constructs a DElement tagged AlwaysSelectively.
func Selective(v DValue) DElement {
	return DElement{Tag: AlwaysSelectively, Value: v}
}

// DObject is a mapping from claim name to DElement. Insertion order is
// semantically irrelevant — the factory shuffles resulting digests — but
// is preserved here so tests can assert on source order when useful.
type DObject struct {
	names  []string
	fields map[string]DElement
}

// NewDObject builds an empty disclosable object.
func NewDObject() DObject {
	return DObject{fields: make(map[string]DElement)}
}

// With returns a copy of the object with claim name bound to element. It
// does not mutate the receiver, so trees built with the DSL stay immutable
// as required by spec.md §3 ("Lifecycle").
func (o DObject) With(name string, el DElement) DObject {
	next := DObject{
		names:  make([]string, len(o.names), len(o.names)+1),
		fields: make(map[string]DElement, len(o.fields)+1),
	}
	copy(next.names, o.names)
	for k, v := range o.fields {
		next.fields[k] = v
	}
	if _, exists := o.fields[name]; !exists {
		next.names = append(next.names, name)
	}
	next.fields[name] = el
	return next
}

// Names returns the object's claim names in insertion order.
func (o DObject) Names() []string {
	return o.names
}

// Get returns the element bound to name, if any.
func (o DObject) Get(name string) (DElement, bool) {
	el, ok := o.fields[name]
	return el, ok
}

// Len reports the number of claims in the object.
func (o DObject) Len() int {
	return len(o.names)
}

// DArray is an ordered sequence of DElement, each independently
// disclosable (spec.md §3).
type DArray struct {
	elements []DElement
}

// NewDArray builds a disclosable array from its elements.
func NewDArray(elements ...DElement) DArray {
	cp := make([]DElement, len(elements))
	copy(cp, elements)
	return DArray{elements: cp}
}

// Append returns a copy of the array with element appended.
func (a DArray) Append(el DElement) DArray {
	next := make([]DElement, len(a.elements)+1)
	copy(next, a.elements)
	next[len(a.elements)] = el
	return DArray{elements: next}
}

// Elements returns the array's elements in order. The returned slice must
// not be mutated.
func (a DArray) Elements() []DElement {
	return a.elements
}

// Len reports the number of elements in the array.
func (a DArray) Len() int {
	return len(a.elements)
}

// Object is a convenience constructor for a plain claim whose value is an
// object, tagged with the given disclosability.
func Object(tag Disclosability, o DObject) DElement {
	return DElement{Tag: tag, Value: Obj(o)}
}

// Array is a convenience constructor for a claim whose value is an array,
// tagged with the given disclosability.
func Array(tag Disclosability, a DArray) DElement {
	return DElement{Tag: tag, Value: Arr(a)}
}

// Claim is a convenience constructor for a leaf claim carrying a plain
// JSON value, tagged with the given disclosability.
func Claim(tag Disclosability, v any) DElement {
	return DElement{Tag: tag, Value: Id(v)}
}
