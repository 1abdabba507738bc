// Package patches holds per-selector behavioral overrides. A lookup
// returns the value of the most specific matching selector, where
// specificity is judged by how few elements the selector matches in the
// queried snapshot. This is a deliberate heuristic: a rule hitting one
// element outranks a rule hitting the whole page without the caller
// having to hand out priority numbers.
package patches

import (
	"sort"

	"github.com/juxbox-org/webtraversallibrary/internal/selector"
	"github.com/juxbox-org/webtraversallibrary/internal/snapshot"
)

type rule struct {
	sel   selector.Selector
	value string
}

// Overrides is a mutable table of selector-keyed override values plus
// one optional default.
type Overrides struct {
	rules      []rule
	def        string
	defPresent bool
}

func New() *Overrides {
	return &Overrides{}
}

// Add registers an override value for a selector. Re-adding the same
// selector replaces the prior value.
func (o *Overrides) Add(sel selector.Selector, value string) {
	for i, r := range o.rules {
		if r.sel == sel {
			o.rules[i].value = value
			return
		}
	}

	o.rules = append(o.rules, rule{sel: sel, value: value})
}

// SetDefault registers the value returned when no selector matches.
// Equivalent to registering a "*" rule, but without the query cost.
func (o *Overrides) SetDefault(value string) {
	o.def = value
	o.defPresent = true
}

// Contains reports whether a rule is registered for the selector.
func (o *Overrides) Contains(sel selector.Selector) bool {
	for _, r := range o.rules {
		if r.sel == sel {
			return true
		}
	}

	return false
}

func (o *Overrides) Len() int {
	return len(o.rules)
}

// Check returns the override value applying to the element within the
// given snapshot. Every registered selector is evaluated against the
// snapshot; the selector with the smallest non-empty match set that
// contains the element wins, ties broken by registration order. When no
// rule matches, the default is returned (second result false when no
// default is set either).
func (o *Overrides) Check(snap *snapshot.Snapshot, element *snapshot.PageElement) (string, bool) {
	type candidate struct {
		order   int
		value   string
		matches snapshot.Elements
	}

	els := snap.Elements()

	candidates := make([]candidate, 0, len(o.rules))
	for i, r := range o.rules {
		candidates = append(candidates, candidate{
			order:   i,
			value:   r.value,
			matches: els.BySelector(r.sel),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].matches) < len(candidates[j].matches)
	})

	for _, c := range candidates {
		for _, m := range c.matches {
			if m.Node() == element.Node() {
				return c.value, true
			}
		}
	}

	return o.def, o.defPresent
}
