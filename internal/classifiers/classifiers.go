// Package classifiers manages the lifecycle of page classifiers. The
// scoring algorithms themselves live outside the core; this registry
// only tracks which classifiers exist, whether they are enabled, and
// whether they operate per element or per view.
package classifiers

import (
	"context"

	"github.com/juxbox-org/webtraversallibrary/internal/snapshot"
)

// CapabilityKind says what a classifier operates on.
type CapabilityKind string

const (
	// KindElement classifiers score individual elements.
	KindElement CapabilityKind = "element"
	// KindView classifiers score a whole page view.
	KindView CapabilityKind = "view"
)

// Callback is the external scoring hook invoked outside this package.
type Callback func(ctx context.Context, snap *snapshot.Snapshot) error

// Classifier is one registered scorer.
type Classifier struct {
	Name     string
	Kind     CapabilityKind
	Enabled  bool
	Callback Callback
}

// Collection is a name-keyed classifier registry. At most one classifier
// is held per name; re-adding a name replaces the prior entry.
type Collection struct {
	byName map[string]*Classifier
	order  []string
}

func NewCollection(classifiers ...*Classifier) *Collection {
	c := &Collection{byName: make(map[string]*Classifier)}
	for _, cl := range classifiers {
		c.Add(cl)
	}

	return c
}

func (c *Collection) Add(cl *Classifier) {
	if _, exists := c.byName[cl.Name]; !exists {
		c.order = append(c.order, cl.Name)
	}
	c.byName[cl.Name] = cl
}

// Start enables the named classifier.
func (c *Collection) Start(name string) {
	if cl, ok := c.byName[name]; ok {
		cl.Enabled = true
	}
}

// Stop disables the named classifier.
func (c *Collection) Stop(name string) {
	if cl, ok := c.byName[name]; ok {
		cl.Enabled = false
	}
}

func (c *Collection) Contains(name string) bool {
	_, ok := c.byName[name]
	return ok
}

func (c *Collection) Len() int {
	return len(c.byName)
}

// All returns the classifiers in registration order.
func (c *Collection) All() []*Classifier {
	out := make([]*Classifier, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}

	return out
}

// ActiveElementClassifiers returns the enabled element classifiers that
// carry a scoring callback. The view is derived, not stored.
func (c *Collection) ActiveElementClassifiers() []*Classifier {
	return c.active(KindElement)
}

// ActiveViewClassifiers returns the enabled view classifiers that carry
// a scoring callback.
func (c *Collection) ActiveViewClassifiers() []*Classifier {
	return c.active(KindView)
}

func (c *Collection) active(kind CapabilityKind) []*Classifier {
	var out []*Classifier
	for _, name := range c.order {
		cl := c.byName[name]
		if cl.Enabled && cl.Callback != nil && cl.Kind == kind {
			out = append(out, cl)
		}
	}

	return out
}
