package holder

import (
	"strconv"
	"strings"

	"github.com/sdjwtcore/sdjwt"
	"github.com/sdjwtcore/sdjwt/disclosure"
)

// Ledger maps a ClaimPath to the ordered list of disclosures consumed on
// the walk from the payload root to that path, inclusive (spec.md §3 "Per-
// path disclosure ledger"). ClaimPath is not itself comparable (it holds a
// slice), so entries are indexed by a canonical string encoding of the
// path's steps.
type Ledger struct {
	entries map[string][]*disclosure.Disclosure
	paths   map[string]sdjwt.ClaimPath
}

func newLedger() *Ledger {
	return &Ledger{
		entries: make(map[string][]*disclosure.Disclosure),
		paths:   make(map[string]sdjwt.ClaimPath),
	}
}

// keyOf encodes a ClaimPath unambiguously: each step is tagged by kind
// ("k" for a claim-name step, "i" for an array-index step) and separated
// by a unit separator unlikely to appear in a claim name.
func keyOf(p sdjwt.ClaimPath) string {
	var b strings.Builder
	for _, s := range p.Steps() {
		if name, ok := s.Key(); ok {
			b.WriteString("k:")
			b.WriteString(name)
		} else {
			idx, _ := s.Index()
			b.WriteString("i:")
			b.WriteString(strconv.Itoa(idx))
		}
		b.WriteByte('\x1f')
	}
	return b.String()
}

func (l *Ledger) set(p sdjwt.ClaimPath, consumed []*disclosure.Disclosure) {
	k := keyOf(p)
	l.entries[k] = consumed
	l.paths[k] = p
}

// Get returns the disclosures consumed on the walk to p, and whether p was
// visited at all during recreation.
func (l *Ledger) Get(p sdjwt.ClaimPath) ([]*disclosure.Disclosure, bool) {
	v, ok := l.entries[keyOf(p)]
	return v, ok
}

// Len returns len(l.Get(p)) without requiring the caller to check ok.
func (l *Ledger) Len(p sdjwt.ClaimPath) int {
	return len(l.entries[keyOf(p)])
}

// Disclosed reports whether the node at p was reached via selective
// disclosure: its ledger entry is strictly longer than its parent's
// (spec.md §3).
func (l *Ledger) Disclosed(p sdjwt.ClaimPath) bool {
	parent, ok := p.Parent()
	parentLen := 0
	if ok {
		parentLen = l.Len(parent)
	}
	return l.Len(p) > parentLen
}
