// Package snapshot models the structural capture of a page at one point
// in time. The capture itself is produced elsewhere; this package parses
// the captured markup and answers selector queries against it.
//
// The capture process stamps every node it has processed with a stable
// per-capture identifier attribute (UIDAttribute). Nodes present in the
// markup but not yet stamped can still be addressed through structural
// queries; callers that need to bridge the two use the fallback path in
// the action package.
package snapshot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/juxbox-org/webtraversallibrary/internal/geometry"
	"github.com/juxbox-org/webtraversallibrary/internal/selector"
)

const (
	// UIDAttribute carries the stable per-capture element identifier.
	UIDAttribute = "wtl-uid"
	// BoundsAttribute carries the element's page-coordinate bounding box
	// as four comma-separated numbers.
	BoundsAttribute = "wtl-bounds"

	// MetadataURL is the page-metadata key holding the captured URL.
	MetadataURL = "url"
)

// Snapshot is the full structural capture of one page.
type Snapshot struct {
	doc      *goquery.Document
	metadata map[string]any
	elements Elements
}

// Parse builds a snapshot from captured markup. Every node stamped with
// UIDAttribute becomes a PageElement.
func Parse(url, markup string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot markup: %w", err)
	}

	s := &Snapshot{
		doc: doc,
		metadata: map[string]any{
			MetadataURL: url,
		},
	}

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		raw, ok := sel.Attr(UIDAttribute)
		if !ok {
			return
		}

		uid, err := strconv.Atoi(raw)
		if err != nil {
			return
		}

		s.elements = append(s.elements, newElement(s, sel.Nodes[0], uid))
	})

	return s, nil
}

// URL returns the page URL recorded at capture time.
func (s *Snapshot) URL() string {
	url, _ := s.metadata[MetadataURL].(string)
	return url
}

// Metadata returns the page-level metadata map.
func (s *Snapshot) Metadata() map[string]any {
	return s.metadata
}

// Elements returns all stamped elements of the capture, in document order.
func (s *Snapshot) Elements() Elements {
	return s.elements
}

// Select returns the structural nodes matching the CSS expression.
func (s *Snapshot) Select(css string) []*html.Node {
	if css == "" {
		return nil
	}

	return s.doc.Find(css).Nodes
}

// ElementByNode returns the stamped element wrapping the given node.
func (s *Snapshot) ElementByNode(n *html.Node) (*PageElement, bool) {
	for _, e := range s.elements {
		if e.node == n {
			return e, true
		}
	}

	return nil, false
}

func newElement(s *Snapshot, n *html.Node, uid int) *PageElement {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[a.Key] = a.Val
	}

	e := &PageElement{
		page:      s,
		node:      n,
		uid:       uid,
		Selector:  selector.NewXPath(fmt.Sprintf("[%s=%q]", UIDAttribute, strconv.Itoa(uid)), NodeXPath(n)),
		Metadata:  map[string]any{"text": nodeText(n), "attributes": attrs},
		RawScores: map[string]float64{},
	}

	if raw, ok := attrs[BoundsAttribute]; ok {
		e.Bounds = parseBounds(raw)
	}

	return e
}

func parseBounds(raw string) geometry.Rect {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return geometry.Rect{}
	}

	nums := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Rect{}
		}
		nums[i] = v
	}

	return geometry.Rect{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.TrimSpace(b.String())
}

// NodeXPath derives an absolute XPath of the form /html/body/div[2] for
// a node in the parsed tree.
func NodeXPath(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	var segments []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		index := 1
		for sib := cur.PrevSibling; sib != nil; sib = sib.PrevSibling {
			if sib.Type == html.ElementNode && sib.Data == cur.Data {
				index++
			}
		}
		segments = append([]string{fmt.Sprintf("%s[%d]", cur.Data, index)}, segments...)
	}

	return "/" + strings.Join(segments, "/")
}
