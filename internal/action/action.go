// Package action implements the declarative browser-interaction units
// driving a traversal session. An action is an immutable value, possibly
// created incomplete; missing fields are supplied later by specialization,
// which always returns a new value. Element-addressed actions start out
// holding a selector and are bound to a concrete snapshotted element
// before execution.
package action

import (
	"context"
	"fmt"

	"github.com/juxbox-org/webtraversallibrary/internal/config"
	"github.com/juxbox-org/webtraversallibrary/internal/geometry"
	"github.com/juxbox-org/webtraversallibrary/internal/ports"
	"github.com/juxbox-org/webtraversallibrary/internal/selector"
	"github.com/juxbox-org/webtraversallibrary/internal/snapshot"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
	"go.uber.org/zap"
)

// Kind is the discriminant tag of the closed action variant set.
type Kind string

const (
	KindClick           Kind = "click"
	KindFillText        Kind = "fill_text"
	KindSelect          Kind = "select"
	KindSelectFramework Kind = "select_framework"
	KindScrollTo        Kind = "scroll_to"
	KindHighlight       Kind = "highlight"
	KindRemove          Kind = "remove"
	KindAddIframe       Kind = "add_iframe"
	KindAnnotate        Kind = "annotate"
	KindClear           Kind = "clear"
	KindNavigate        Kind = "navigate"
	KindRevert          Kind = "revert"
	KindWait            Kind = "wait"
	KindWaitForElement  Kind = "wait_for_element"
	KindWaitForUser     Kind = "wait_for_user"
	KindRefresh         Kind = "refresh"
	KindAbort           Kind = "abort"
)

// Session is the workflow surface actions execute against.
type Session interface {
	Config() *config.Config
	Logger() *zap.Logger
	Driver() ports.Driver
	Bridge() ports.ScriptBridge
	Prompter() ports.Prompter

	// Frame runs fn with the driver context switched into the iframe at
	// the given XPath, restoring the top-level context on every exit
	// path. An empty XPath runs fn in the top-level document.
	Frame(ctx context.Context, iframe string, fn func(context.Context) error) error

	Navigate(ctx context.Context, url string) error
	Refresh(ctx context.Context) error
	ResetTo(ctx context.Context, viewIndex int) error
	ScrollTo(ctx context.Context, bounds geometry.Rect) error

	CurrentWindow() Window
	CreateWindow(ctx context.Context, name string) (Window, error)
	AbortCurrentTab(ctx context.Context) error
}

// Window is one rendering surface of the session, holding tabs.
type Window interface {
	Name() string
	CreateTab(ctx context.Context, name, url, iframeXPath string) error
	CloseTab(ctx context.Context) error
}

// Action is one unit of browser interaction. The variant set is closed:
// only types in this package implement it.
type Action interface {
	Kind() Kind
	Execute(ctx context.Context, s Session) error

	specialize(args Args) (Action, error)
	unsetFields() []string
}

// ElementAction is the capability group of actions addressing a single
// element, either through a selector or a resolved PageElement.
type ElementAction interface {
	Action
	Target() Target
	Selector() selector.Selector

	withTarget(t Target) Action
}

// Args supplies named field values during specialization.
type Args map[string]any

// Specialize returns a copy of a with the named fields overridden. The
// original is unchanged. Unknown field names and mistyped values are
// usage errors.
func Specialize(a Action, args Args) (Action, error) {
	return a.specialize(args)
}

// Apply binds a single positional value. It is permitted only when
// exactly one non-target field of the action is still unset; that field
// receives the value. Anything else is a usage error.
func Apply(a Action, value any) (Action, error) {
	const op = "Apply"

	unset := a.unsetFields()
	if len(unset) != 1 {
		return nil, apperr.Wrap(op, apperr.CodeUsage,
			fmt.Errorf("ambiguous specialization of %s: %d unset fields, use named arguments", a.Kind(), len(unset)),
			map[string]any{apperr.MetaAction: string(a.Kind())})
	}

	return a.specialize(Args{unset[0]: value})
}

// Target is the addressee of an ElementAction: an unresolved selector or
// a resolved snapshotted element.
type Target struct {
	sel *selector.Selector
	el  *snapshot.PageElement
}

func TargetSelector(s selector.Selector) Target {
	return Target{sel: &s}
}

func TargetElement(e *snapshot.PageElement) Target {
	return Target{el: e}
}

// Element returns the resolved element, if the target is bound.
func (t Target) Element() (*snapshot.PageElement, bool) {
	return t.el, t.el != nil
}

// Selector returns the locator addressing the target. For a resolved
// element this is the selector that produced the binding.
func (t Target) Selector() selector.Selector {
	if t.el != nil {
		return t.el.Selector
	}
	if t.sel != nil {
		return *t.sel
	}

	return selector.Selector{}
}

func (t Target) IsZero() bool {
	return t.sel == nil && t.el == nil
}

// element is the embedded base of all element-addressed variants.
type element struct {
	target Target
}

func (e element) Target() Target {
	return e.target
}

func (e element) Selector() selector.Selector {
	return e.target.Selector()
}

// TransformedToElement binds a selector-addressed action to the first
// element matching its selector in the given element set. This is the
// sole transition from selector-addressed to element-addressed state.
// The original selector is re-attached to a copy of the matched element
// so the binding records which locator produced it.
func TransformedToElement(a ElementAction, els snapshot.Elements) (ElementAction, error) {
	const op = "TransformedToElement"

	if _, resolved := a.Target().Element(); resolved {
		return nil, apperr.Wrap(op, apperr.CodeUsage,
			fmt.Errorf("%s target is already resolved", a.Kind()),
			map[string]any{apperr.MetaAction: string(a.Kind())})
	}

	sel := a.Target().Selector()

	matches := els.BySelector(sel)
	if len(matches) == 0 {
		return nil, apperr.Wrap(op, apperr.CodeResolution,
			fmt.Errorf("failed to perform %s: selector %q matches no elements", a.Kind(), sel.CSS),
			map[string]any{
				apperr.MetaAction:   string(a.Kind()),
				apperr.MetaSelector: sel.CSS,
				apperr.MetaStage:    apperr.StageResolution,
			})
	}

	bound := matches[0].WithSelector(sel)

	return a.withTarget(TargetElement(bound)).(ElementAction), nil
}

// resolvedElement fetches the bound element of an action whose execute
// contract needs more than the bare selector.
func resolvedElement(op string, a ElementAction) (*snapshot.PageElement, error) {
	el, ok := a.Target().Element()
	if !ok {
		return nil, apperr.Wrap(op, apperr.CodeResolution,
			fmt.Errorf("%s requires a resolved target", a.Kind()),
			map[string]any{
				apperr.MetaAction:   string(a.Kind()),
				apperr.MetaSelector: a.Selector().CSS,
				apperr.MetaStage:    apperr.StageResolution,
			})
	}

	return el, nil
}
