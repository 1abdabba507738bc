package action

import (
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/net/html"

	"github.com/juxbox-org/webtraversallibrary/internal/selector"
	"github.com/juxbox-org/webtraversallibrary/internal/snapshot"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
)

// Actions is an ordered sequence of actions with a narrowing algebra.
// Order matters for sorting and selection, not for membership queries.
type Actions []Action

// ByType returns the actions carrying the given variant tag.
func (l Actions) ByType(kind Kind) Actions {
	out := Actions{}
	for _, a := range l {
		if a.Kind() == kind {
			out = append(out, a)
		}
	}

	return out
}

// ElementActions returns the members of the element capability group.
func (l Actions) ElementActions() Actions {
	out := Actions{}
	for _, a := range l {
		if _, ok := a.(ElementAction); ok {
			out = append(out, a)
		}
	}

	return out
}

// ByScore returns element actions whose bound target carries the named
// metadata score strictly greater than limit. Scores are absent unless
// a classifier produced them; absent is not zero.
func (l Actions) ByScore(name string, limit float64) Actions {
	out := Actions{}
	for _, a := range l {
		el, ok := boundElement(a)
		if !ok {
			continue
		}
		if v, ok := el.Score(name); ok && v > limit {
			out = append(out, a)
		}
	}

	return out
}

// ByRawScore is ByScore over the pre-scaling classifier outputs.
func (l Actions) ByRawScore(name string, limit float64) Actions {
	out := Actions{}
	for _, a := range l {
		el, ok := boundElement(a)
		if !ok {
			continue
		}
		if v, ok := el.RawScore(name); ok && v > limit {
			out = append(out, a)
		}
	}

	return out
}

// ByElement returns the element actions bound to exactly this element.
func (l Actions) ByElement(el *snapshot.PageElement) Actions {
	out := Actions{}
	for _, a := range l {
		bound, ok := boundElement(a)
		if ok && bound == el {
			out = append(out, a)
		}
	}

	return out
}

// BySelector queries the snapshot owning the first element action's
// target and keeps actions bound to a matched node. Matching first goes
// through the stable capture identifiers; when the selector hits nodes
// the capture has not stamped yet, it falls back to structural node
// equality. Identifier stamping and structural parsing come from two
// subsystems that can diverge, and resolution must not drop valid
// matches when they do.
func (l Actions) BySelector(sel selector.Selector) Actions {
	if len(l) == 0 {
		return Actions{}
	}

	elementActions := l.ElementActions()
	if len(elementActions) == 0 {
		return Actions{}
	}

	var page *snapshot.Snapshot
	for _, a := range elementActions {
		if el, ok := boundElement(a); ok {
			page = el.Page()
			break
		}
	}
	if page == nil {
		return Actions{}
	}

	nodes := page.Select(sel.CSS)
	if len(nodes) == 0 {
		return Actions{}
	}

	uids := make(map[int]struct{})
	nodeSet := make(map[*html.Node]struct{}, len(nodes))
	for _, n := range nodes {
		nodeSet[n] = struct{}{}
		for _, attr := range n.Attr {
			if attr.Key == snapshot.UIDAttribute {
				if uid, err := strconv.Atoi(attr.Val); err == nil {
					uids[uid] = struct{}{}
				}
			}
		}
	}

	out := Actions{}
	for _, a := range elementActions {
		el, ok := boundElement(a)
		if !ok {
			continue
		}
		if _, hit := uids[el.UID()]; hit && el.UID() != snapshot.UIDUnassigned {
			out = append(out, a)
		}
	}

	if len(out) > 0 {
		return out
	}

	// Fallback on structural nodes when the match was never stamped.
	for _, a := range elementActions {
		el, ok := boundElement(a)
		if !ok {
			continue
		}
		if _, hit := nodeSet[el.Node()]; hit {
			out = append(out, a)
		}
	}

	return out
}

// SortBy orders the collection by the named raw score, treating missing
// entries as 0. The sort is stable and in place; the collection is
// returned to allow chaining.
func (l Actions) SortBy(name string, reverse bool) Actions {
	score := func(a Action) float64 {
		el, ok := boundElement(a)
		if !ok {
			return 0
		}
		v, _ := el.RawScore(name)
		return v
	}

	sort.SliceStable(l, func(i, j int) bool {
		if reverse {
			return score(l[i]) > score(l[j])
		}
		return score(l[i]) < score(l[j])
	})

	return l
}

// Unique returns the sole member, failing when the collection does not
// hold exactly one action.
func (l Actions) Unique() (Action, error) {
	const op = "Unique"

	if len(l) != 1 {
		return nil, apperr.Wrap(op, apperr.CodeUsage,
			fmt.Errorf("expected exactly one action, have %d", len(l)), nil)
	}

	return l[0], nil
}

func boundElement(a Action) (*snapshot.PageElement, bool) {
	ea, ok := a.(ElementAction)
	if !ok {
		return nil, false
	}

	return ea.Target().Element()
}
