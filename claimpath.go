package sdjwt

import (
	"fmt"
	"strconv"
	"strings"
)

// Step is a single component of a ClaimPath: either an object key (string)
// or an array index (int).
type Step struct {
	key     string
	index   int
	isIndex bool
}

// Key reports the object-key step, if this step is one.
func (s Step) Key() (string, bool) {
	if s.isIndex {
		return "", false
	}
	return s.key, true
}

// Index reports the array-index step, if this step is one.
func (s Step) Index() (int, bool) {
	if !s.isIndex {
		return 0, false
	}
	return s.index, true
}

func (s Step) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.key
}

// ClaimPath is an ordered sequence of steps identifying a node in a JSON
// tree, as defined in spec.md §3. ClaimPath values are immutable; every
// mutator returns a new path sharing no backing array with its parent.
type ClaimPath struct {
	steps []Step
}

// Root is the empty ClaimPath, denoting the payload's top-level object.
func Root() ClaimPath {
	return ClaimPath{}
}

// Claim appends an object-key step and returns the new path.
func (p ClaimPath) Claim(name string) ClaimPath {
	next := make([]Step, len(p.steps)+1)
	copy(next, p.steps)
	next[len(p.steps)] = Step{key: name}
	return ClaimPath{steps: next}
}

// ArrayElement appends an array-index step and returns the new path.
func (p ClaimPath) ArrayElement(i int) ClaimPath {
	next := make([]Step, len(p.steps)+1)
	copy(next, p.steps)
	next[len(p.steps)] = Step{index: i, isIndex: true}
	return ClaimPath{steps: next}
}

// Len returns the number of steps in the path.
func (p ClaimPath) Len() int {
	return len(p.steps)
}

// Steps returns the path's steps. The returned slice must not be mutated.
func (p ClaimPath) Steps() []Step {
	return p.steps
}

// Parent returns the path with its last step removed, and whether one
// existed to remove.
func (p ClaimPath) Parent() (ClaimPath, bool) {
	if len(p.steps) == 0 {
		return ClaimPath{}, false
	}
	return ClaimPath{steps: p.steps[:len(p.steps)-1]}, true
}

// Equal compares two paths step-wise.
func (p ClaimPath) Equal(other ClaimPath) bool {
	if len(p.steps) != len(other.steps) {
		return false
	}
	for i := range p.steps {
		if p.steps[i] != other.steps[i] {
			return false
		}
	}
	return true
}

// String renders the path as a dotted/bracketed diagnostic string, e.g.
// "credentialSubject.vaccine[0].name".
func (p ClaimPath) String() string {
	if len(p.steps) == 0 {
		return "$"
	}
	var b strings.Builder
	for i, s := range p.steps {
		if s.isIndex {
			fmt.Fprintf(&b, "[%d]", s.index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.key)
	}
	return b.String()
}
