// Package selector defines the immutable locator used to address page
// elements. A selector always carries a CSS form, may carry an XPath
// form, and may be scoped to an iframe identified by its own XPath.
package selector

// Selector locates zero or more elements on a page. An empty Iframe
// means the top-level document.
type Selector struct {
	CSS    string
	XPath  string
	Iframe string
}

// New returns a selector with only a CSS form.
func New(css string) Selector {
	return Selector{CSS: css}
}

// NewXPath returns a selector carrying both a CSS and an XPath form.
func NewXPath(css, xpath string) Selector {
	return Selector{CSS: css, XPath: xpath}
}

// InIframe returns a copy of s scoped to the iframe at the given XPath.
func (s Selector) InIframe(xpath string) Selector {
	s.Iframe = xpath
	return s
}

// IsZero reports whether the selector has no locator form at all.
func (s Selector) IsZero() bool {
	return s.CSS == "" && s.XPath == ""
}

func (s Selector) String() string {
	if s.CSS != "" {
		return s.CSS
	}

	return s.XPath
}
