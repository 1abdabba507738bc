package snapshot

import (
	"golang.org/x/net/html"

	"github.com/juxbox-org/webtraversallibrary/internal/geometry"
	"github.com/juxbox-org/webtraversallibrary/internal/selector"
)

// UIDUnassigned marks an element the capture has not stamped yet.
const UIDUnassigned = -1

// PageElement is the immutable capture of one DOM node. Metadata and
// RawScores are annotation maps filled by external classifiers; copies
// of an element share them.
type PageElement struct {
	page *Snapshot
	node *html.Node
	uid  int

	// Selector is the locator that produced this element binding.
	Selector  selector.Selector
	Metadata  map[string]any
	RawScores map[string]float64
	Bounds    geometry.Rect
}

// Page returns the owning snapshot.
func (e *PageElement) Page() *Snapshot {
	return e.page
}

// Node returns the underlying structural node.
func (e *PageElement) Node() *html.Node {
	return e.node
}

// UID returns the stable per-capture identifier, or UIDUnassigned.
func (e *PageElement) UID() int {
	return e.uid
}

// Text returns the element's visible text as recorded at capture time.
func (e *PageElement) Text() string {
	t, _ := e.Metadata["text"].(string)
	return t
}

// Attribute returns the named HTML attribute, or "".
func (e *PageElement) Attribute(name string) string {
	attrs, _ := e.Metadata["attributes"].(map[string]string)
	return attrs[name]
}

// Score returns the named numeric metadata entry. Scores are absent by
// default; they exist only once a classifier has produced them.
func (e *PageElement) Score(name string) (float64, bool) {
	v, ok := e.Metadata[name].(float64)
	return v, ok
}

// RawScore returns the named pre-scaling classifier output.
func (e *PageElement) RawScore(name string) (float64, bool) {
	v, ok := e.RawScores[name]
	return v, ok
}

// WithSelector returns a copy of the element with the given selector
// recorded as the one that produced it. Elements can be reachable by
// more than one selector; the copy pins down which one this binding
// came from. Annotation maps are shared with the original.
func (e *PageElement) WithSelector(sel selector.Selector) *PageElement {
	clone := *e
	clone.Selector = sel
	return &clone
}

// Parent returns the element wrapping the node's parent. When the parent
// was not stamped by the capture, a detached element with a derived XPath
// selector is returned so driver calls can still address it.
func (e *PageElement) Parent() *PageElement {
	parent := e.node.Parent
	if parent == nil || parent.Type != html.ElementNode {
		return nil
	}

	if p, ok := e.page.ElementByNode(parent); ok {
		return p
	}

	attrs := make(map[string]string, len(parent.Attr))
	for _, a := range parent.Attr {
		attrs[a.Key] = a.Val
	}

	return &PageElement{
		page:      e.page,
		node:      parent,
		uid:       UIDUnassigned,
		Selector:  selector.Selector{XPath: NodeXPath(parent), Iframe: e.Selector.Iframe},
		Metadata:  map[string]any{"text": nodeText(parent), "attributes": attrs},
		RawScores: map[string]float64{},
	}
}

// Elements is an ordered set of page elements.
type Elements []*PageElement

// BySelector returns the elements matched by the CSS form of sel,
// preserving document order. The query runs against the owning snapshot
// of the first element.
func (es Elements) BySelector(sel selector.Selector) Elements {
	if len(es) == 0 {
		return nil
	}

	nodes := es[0].page.Select(sel.CSS)
	if len(nodes) == 0 {
		return nil
	}

	matched := make(map[*html.Node]struct{}, len(nodes))
	for _, n := range nodes {
		matched[n] = struct{}{}
	}

	var out Elements
	for _, e := range es {
		if _, ok := matched[e.node]; ok {
			out = append(out, e)
		}
	}

	return out
}

// ByUID returns the element carrying the given capture identifier.
func (es Elements) ByUID(uid int) (*PageElement, bool) {
	for _, e := range es {
		if e.uid == uid {
			return e, true
		}
	}

	return nil, false
}
