package action

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juxbox-org/webtraversallibrary/internal/color"
	"github.com/juxbox-org/webtraversallibrary/internal/ports"
	"github.com/juxbox-org/webtraversallibrary/internal/snapshot"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
	"github.com/juxbox-org/webtraversallibrary/pkg/logg"
)

// HighlightColor is the default highlight color.
var HighlightColor = color.MustHex("#FFB3C7")

// Click simulates a click on the target element inside its selector's
// iframe. If the element is not clickable, nothing happens; that is a
// driver-level concern.
type Click struct {
	element
}

func NewClick(target Target) Click {
	return Click{element{target: target}}
}

func (a Click) Kind() Kind { return KindClick }

func (a Click) Execute(ctx context.Context, s Session) error {
	sel := a.Selector()

	return s.Frame(ctx, sel.Iframe, func(ctx context.Context) error {
		return s.Bridge().ClickElement(ctx, sel)
	})
}

func (a Click) withTarget(t Target) Action {
	a.target = t
	return a
}

func (a Click) unsetFields() []string { return nil }

func (a Click) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		switch name {
		case "target":
			if err := setTarget(&out.target, a.Kind(), v); err != nil {
				return nil, err
			}
		default:
			return nil, unknownField(a.Kind(), name)
		}
	}

	return out, nil
}

// FillText sets the text value of the target element. If the target is
// not a text field, anything can happen.
type FillText struct {
	element
	Text Opt[string]
}

func NewFillText(target Target, text string) FillText {
	return FillText{element: element{target: target}, Text: Set(text)}
}

func (a FillText) Kind() Kind { return KindFillText }

func (a FillText) Execute(ctx context.Context, s Session) error {
	sel := a.Selector()

	return s.Frame(ctx, sel.Iframe, func(ctx context.Context) error {
		return s.Bridge().FillText(ctx, sel, a.Text.Or(""))
	})
}

func (a FillText) withTarget(t Target) Action {
	a.target = t
	return a
}

func (a FillText) unsetFields() []string {
	return unsetNames(fieldState{"text", a.Text.IsSet()})
}

func (a FillText) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		var err error
		switch name {
		case "target":
			err = setTarget(&out.target, a.Kind(), v)
		case "text":
			err = setArg(&out.Text, a.Kind(), name, v)
		default:
			err = unknownField(a.Kind(), name)
		}
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Select performs a native dropdown selection by visible text. The
// action is attached to the <option> element; the selection itself runs
// on its parent <select>. Driver failures are soft: logged and reported
// in the execution result without propagating.
type Select struct {
	element
	Value Opt[string]
}

func NewSelect(target Target, value string) Select {
	return Select{element: element{target: target}, Value: Set(value)}
}

func (a Select) Kind() Kind { return KindSelect }

func (a Select) Execute(ctx context.Context, s Session) error {
	const op = "Select"

	el, err := resolvedElement(op, a)
	if err != nil {
		return err
	}

	sel := a.Selector()

	return s.Frame(ctx, sel.Iframe, func(ctx context.Context) error {
		parent := el.Parent()
		if parent == nil {
			return softFailure(op, fmt.Errorf("option element has no parent"), map[string]any{
				apperr.MetaSelector: sel.CSS,
			})
		}

		text := el.Text()
		if err := s.Driver().SelectByText(ctx, parent.Selector.XPath, text); err != nil {
			s.Logger().Warn("Failed to select dropdown",
				zap.String(logg.Selector, parent.Selector.XPath),
				zap.String("option_text", text),
				zap.Error(err))

			return softFailure(op, err, map[string]any{
				apperr.MetaSelector: parent.Selector.XPath,
			})
		}

		return nil
	})
}

func (a Select) withTarget(t Target) Action {
	a.target = t
	return a
}

func (a Select) unsetFields() []string {
	return unsetNames(fieldState{"value", a.Value.IsSet()})
}

func (a Select) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		var err error
		switch name {
		case "target":
			err = setTarget(&out.target, a.Kind(), v)
		case "value":
			err = setArg(&out.Value, a.Kind(), name, v)
		default:
			err = unknownField(a.Kind(), name)
		}
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// SelectFramework selects a value on a framework-rendered dropdown
// (React, Angular and friends) that loads its options with JS after the
// control is opened. It clicks the control, waits a settle interval,
// scans freshly rendered option elements for the shortest visible text
// containing Value (case-insensitive), clicks it unless already
// selected, then clicks the configured dismissal target to close the
// dropdown.
type SelectFramework struct {
	element
	Value Opt[string]
	// OptionTag is the framework-specific tag naming option elements.
	OptionTag Opt[string]
}

func NewSelectFramework(target Target, value, optionTag string) SelectFramework {
	return SelectFramework{
		element:   element{target: target},
		Value:     Set(value),
		OptionTag: Set(optionTag),
	}
}

func (a SelectFramework) Kind() Kind { return KindSelectFramework }

func (a SelectFramework) Execute(ctx context.Context, s Session) error {
	const op = "SelectFramework"

	sel := a.Selector()

	return s.Frame(ctx, sel.Iframe, func(ctx context.Context) error {
		if err := s.Bridge().ClickElement(ctx, sel); err != nil {
			return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
				apperr.MetaSelector: sel.CSS,
				apperr.MetaStage:    apperr.StageInteraction,
			})
		}

		// Give asynchronous options a chance to render.
		time.Sleep(s.Config().ActionsConfig.SelectSettle)

		options, err := s.Driver().FindElements(ctx, ports.ByTagName, a.OptionTag.Or(""))
		if err != nil {
			return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
				apperr.MetaReason: "option_scan_failed",
			})
		}

		want := strings.ToLower(a.Value.Or(""))

		var best ports.WebElement
		var bestText string
		for _, opt := range options {
			text, err := opt.Text(ctx)
			if err != nil {
				continue
			}
			if !strings.Contains(strings.ToLower(text), want) {
				continue
			}
			// Multiple matches: prefer the shortest option text.
			if best == nil || len(text) < len(bestText) {
				best, bestText = opt, text
			}
		}

		if best != nil {
			// TODO: make the selected-state attribute part of the action;
			// aria-selected is not universal across frameworks.
			selected, _ := best.Attribute(ctx, "aria-selected")
			if selected != "true" {
				if err := best.Click(ctx); err != nil {
					return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
						apperr.MetaReason: "option_click_failed",
					})
				}
			}
		}

		// Click elsewhere so the open dropdown cannot swallow later
		// actions.
		dismiss, err := s.Driver().FindElement(ctx, ports.ByID, s.Config().ActionsConfig.DismissSelector)
		if err != nil {
			return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
				apperr.MetaReason:   "dismiss_target_not_found",
				apperr.MetaSelector: s.Config().ActionsConfig.DismissSelector,
			})
		}

		return dismiss.Click(ctx)
	})
}

func (a SelectFramework) withTarget(t Target) Action {
	a.target = t
	return a
}

func (a SelectFramework) unsetFields() []string {
	return unsetNames(
		fieldState{"value", a.Value.IsSet()},
		fieldState{"option_tag", a.OptionTag.IsSet()},
	)
}

func (a SelectFramework) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		var err error
		switch name {
		case "target":
			err = setTarget(&out.target, a.Kind(), v)
		case "value":
			err = setArg(&out.Value, a.Kind(), name, v)
		case "option_tag":
			err = setArg(&out.OptionTag, a.Kind(), name, v)
		default:
			err = unknownField(a.Kind(), name)
		}
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// ScrollTo scrolls the page to center the target element vertically.
type ScrollTo struct {
	element
}

func NewScrollTo(target Target) ScrollTo {
	return ScrollTo{element{target: target}}
}

func (a ScrollTo) Kind() Kind { return KindScrollTo }

func (a ScrollTo) Execute(ctx context.Context, s Session) error {
	const op = "ScrollTo"

	el, err := resolvedElement(op, a)
	if err != nil {
		return err
	}

	return s.ScrollTo(ctx, el.Bounds)
}

func (a ScrollTo) withTarget(t Target) Action {
	a.target = t
	return a
}

func (a ScrollTo) unsetFields() []string { return nil }

func (a ScrollTo) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		switch name {
		case "target":
			if err := setTarget(&out.target, a.Kind(), v); err != nil {
				return nil, err
			}
		default:
			return nil, unknownField(a.Kind(), name)
		}
	}

	return out, nil
}

// Highlight draws attention to the target element on a drawing surface.
// Viewport chooses between the floating viewport-sized canvas and the
// document canvas; when unset, the session default applies.
type Highlight struct {
	element
	Color    Opt[color.Color]
	Fill     Opt[bool]
	Viewport Opt[bool]
}

func NewHighlight(target Target) Highlight {
	return Highlight{element: element{target: target}}
}

func (a Highlight) Kind() Kind { return KindHighlight }

func (a Highlight) Execute(ctx context.Context, s Session) error {
	sel := a.Selector()
	viewport := a.Viewport.Or(s.Config().DebugConfig.DefaultCanvasViewport)

	return s.Frame(ctx, sel.Iframe, func(ctx context.Context) error {
		return s.Bridge().Highlight(ctx, sel, a.Color.Or(HighlightColor), a.Fill.Or(false), viewport)
	})
}

func (a Highlight) withTarget(t Target) Action {
	a.target = t
	return a
}

func (a Highlight) unsetFields() []string {
	return unsetNames(
		fieldState{"color", a.Color.IsSet()},
		fieldState{"fill", a.Fill.IsSet()},
		fieldState{"viewport", a.Viewport.IsSet()},
	)
}

func (a Highlight) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		var err error
		switch name {
		case "target":
			err = setTarget(&out.target, a.Kind(), v)
		case "color":
			err = setArg(&out.Color, a.Kind(), name, v)
		case "fill":
			err = setArg(&out.Fill, a.Kind(), name, v)
		case "viewport":
			err = setArg(&out.Viewport, a.Kind(), name, v)
		default:
			err = unknownField(a.Kind(), name)
		}
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Remove deletes the target element from the structural tree.
type Remove struct {
	element
}

func NewRemove(target Target) Remove {
	return Remove{element{target: target}}
}

func (a Remove) Kind() Kind { return KindRemove }

func (a Remove) Execute(ctx context.Context, s Session) error {
	sel := a.Selector()

	return s.Frame(ctx, sel.Iframe, func(ctx context.Context) error {
		return s.Bridge().DeleteElement(ctx, sel)
	})
}

func (a Remove) withTarget(t Target) Action {
	a.target = t
	return a
}

func (a Remove) unsetFields() []string { return nil }

func (a Remove) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		switch name {
		case "target":
			if err := setTarget(&out.target, a.Kind(), v); err != nil {
				return nil, err
			}
		default:
			return nil, unknownField(a.Kind(), name)
		}
	}

	return out, nil
}

// AddIframe opens a new rendering surface scoped to the target iframe's
// location. Name and URL are completed once at construction so that
// replaying the action reproduces the same derived name; failures during
// execution are soft.
type AddIframe struct {
	element
	Name string
	URL  string
}

// NewAddIframe derives the surface name from the iframe's src attribute
// plus a randomized suffix, and captures the page URL, both at
// construction time.
func NewAddIframe(el *snapshot.PageElement) AddIframe {
	return AddIframe{
		element: element{target: TargetElement(el)},
		Name:    el.Attribute("src") + "_" + uuid.NewString()[:8],
		URL:     el.Page().URL(),
	}
}

func (a AddIframe) Kind() Kind { return KindAddIframe }

func (a AddIframe) Execute(ctx context.Context, s Session) error {
	const op = "AddIframe"

	window, err := s.CreateWindow(ctx, a.Name+"-window")
	if err != nil {
		s.Logger().Warn("Error creating iframe window",
			zap.String(logg.Window, a.Name), zap.Error(err))

		return softFailure(op, err, map[string]any{
			apperr.MetaReason: "create_window_failed",
		})
	}

	if err := window.CreateTab(ctx, a.Name, a.URL, a.Selector().XPath); err != nil {
		s.Logger().Warn("Error creating iframe tab",
			zap.String(logg.Tab, a.Name), zap.Error(err))

		return softFailure(op, err, map[string]any{
			apperr.MetaReason: "create_tab_failed",
			apperr.MetaURL:    a.URL,
		})
	}

	return nil
}

func (a AddIframe) withTarget(t Target) Action {
	a.target = t
	return a
}

func (a AddIframe) unsetFields() []string { return nil }

func (a AddIframe) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		switch name {
		case "target":
			if err := setTarget(&out.target, a.Kind(), v); err != nil {
				return nil, err
			}
		default:
			return nil, unknownField(a.Kind(), name)
		}
	}

	return out, nil
}

// softFailure wraps a caught best-effort failure. The owning session
// treats it as executed and records the outcome instead of propagating.
func softFailure(op string, err error, meta map[string]any) error {
	if meta == nil {
		meta = map[string]any{}
	}
	meta[apperr.MetaStage] = apperr.StageExecution

	return apperr.Wrap(op, apperr.CodeSoftFailure, err, meta)
}
