package action

import (
	"context"
	"time"

	"github.com/juxbox-org/webtraversallibrary/internal/color"
	"github.com/juxbox-org/webtraversallibrary/internal/geometry"
	"github.com/juxbox-org/webtraversallibrary/internal/selector"
)

// Annotate writes text at a location on a drawing surface.
type Annotate struct {
	Location   Opt[geometry.Point]
	Color      Opt[color.Color]
	Size       Opt[int]
	Text       Opt[string]
	Background Opt[color.Color]
	Viewport   Opt[bool]
}

func NewAnnotate(at geometry.Point, c color.Color, size int, text string) Annotate {
	return Annotate{
		Location: Set(at),
		Color:    Set(c),
		Size:     Set(size),
		Text:     Set(text),
	}
}

func (a Annotate) Kind() Kind { return KindAnnotate }

func (a Annotate) Execute(ctx context.Context, s Session) error {
	viewport := a.Viewport.Or(s.Config().DebugConfig.DefaultCanvasViewport)

	return s.Bridge().Annotate(ctx,
		a.Location.Or(geometry.Point{}),
		a.Color.Or(color.Color{A: 255}),
		a.Size.Or(12),
		a.Text.Or(""),
		a.Background.Or(color.Transparent),
		viewport,
	)
}

func (a Annotate) unsetFields() []string {
	return unsetNames(
		fieldState{"location", a.Location.IsSet()},
		fieldState{"color", a.Color.IsSet()},
		fieldState{"size", a.Size.IsSet()},
		fieldState{"text", a.Text.IsSet()},
		fieldState{"background", a.Background.IsSet()},
		fieldState{"viewport", a.Viewport.IsSet()},
	)
}

func (a Annotate) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		var err error
		switch name {
		case "location":
			err = setArg(&out.Location, a.Kind(), name, v)
		case "color":
			err = setArg(&out.Color, a.Kind(), name, v)
		case "size":
			err = setArg(&out.Size, a.Kind(), name, v)
		case "text":
			err = setArg(&out.Text, a.Kind(), name, v)
		case "background":
			err = setArg(&out.Background, a.Kind(), name, v)
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

// Clear wipes all highlights and annotations from a drawing surface.
type Clear struct {
	Viewport Opt[bool]
}

func (a Clear) Kind() Kind { return KindClear }

func (a Clear) Execute(ctx context.Context, s Session) error {
	viewport := a.Viewport.Or(s.Config().DebugConfig.DefaultCanvasViewport)

	return s.Bridge().ClearHighlights(ctx, viewport)
}

func (a Clear) unsetFields() []string {
	return unsetNames(fieldState{"viewport", a.Viewport.IsSet()})
}

func (a Clear) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		var err error
		switch name {
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

// Navigate loads a URL and waits for the page to finish loading. An
// invalid URL may leave the session on the browser's error page.
type Navigate struct {
	URL Opt[string]
}

func NewNavigate(url string) Navigate {
	return Navigate{URL: Set(url)}
}

func (a Navigate) Kind() Kind { return KindNavigate }

func (a Navigate) Execute(ctx context.Context, s Session) error {
	return s.Navigate(ctx, a.URL.Or(""))
}

func (a Navigate) unsetFields() []string {
	return unsetNames(fieldState{"url", a.URL.IsSet()})
}

func (a Navigate) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		var err error
		switch name {
		case "url":
			err = setArg(&out.URL, a.Kind(), name, v)
		default:
			err = unknownField(a.Kind(), name)
		}
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Revert reconstructs the session at a previous point in time: the
// underlying browser is reset and every recorded action before ViewIndex
// is replayed in original order. ViewIndex 0 performs only the initial
// navigation.
type Revert struct {
	ViewIndex Opt[int]
}

func NewRevert(viewIndex int) Revert {
	return Revert{ViewIndex: Set(viewIndex)}
}

func (a Revert) Kind() Kind { return KindRevert }

func (a Revert) Execute(ctx context.Context, s Session) error {
	return s.ResetTo(ctx, a.ViewIndex.Or(0))
}

func (a Revert) unsetFields() []string {
	return unsetNames(fieldState{"view_index", a.ViewIndex.IsSet()})
}

func (a Revert) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		var err error
		switch name {
		case "view_index":
			err = setArg(&out.ViewIndex, a.Kind(), name, v)
		default:
			err = unknownField(a.Kind(), name)
		}
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Wait suspends execution for a fixed duration. The wait is not
// cancellable; callers needing deadlines must wrap execution.
type Wait struct {
	Seconds Opt[float64]
}

func NewWait(seconds float64) Wait {
	return Wait{Seconds: Set(seconds)}
}

func (a Wait) Kind() Kind { return KindWait }

func (a Wait) Execute(_ context.Context, _ Session) error {
	time.Sleep(time.Duration(a.Seconds.Or(0) * float64(time.Second)))
	return nil
}

func (a Wait) unsetFields() []string {
	return unsetNames(fieldState{"seconds", a.Seconds.IsSet()})
}

func (a Wait) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		var err error
		switch name {
		case "seconds":
			err = setArg(&out.Seconds, a.Kind(), name, v)
		default:
			err = unknownField(a.Kind(), name)
		}
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// WaitForElement polls until the selector matches at least one live
// element, retrying indefinitely at the given interval.
type WaitForElement struct {
	Selector Opt[selector.Selector]
	Seconds  Opt[float64]
}

func NewWaitForElement(sel selector.Selector, seconds float64) WaitForElement {
	return WaitForElement{Selector: Set(sel), Seconds: Set(seconds)}
}

func (a WaitForElement) Kind() Kind { return KindWaitForElement }

func (a WaitForElement) Execute(ctx context.Context, s Session) error {
	sel := a.Selector.Or(selector.Selector{})

	interval := s.Config().ActionsConfig.WaitPoll
	if seconds, ok := a.Seconds.Get(); ok {
		interval = time.Duration(seconds * float64(time.Second))
	}

	for {
		var exists bool
		err := s.Frame(ctx, sel.Iframe, func(ctx context.Context) error {
			var err error
			exists, err = s.Bridge().ElementExists(ctx, sel)
			return err
		})
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		time.Sleep(interval)
	}
}

func (a WaitForElement) unsetFields() []string {
	return unsetNames(
		fieldState{"selector", a.Selector.IsSet()},
		fieldState{"seconds", a.Seconds.IsSet()},
	)
}

func (a WaitForElement) specialize(args Args) (Action, error) {
	out := a
	for name, v := range args {
		var err error
		switch name {
		case "selector":
			err = setArg(&out.Selector, a.Kind(), name, v)
		case "seconds":
			err = setArg(&out.Seconds, a.Kind(), name, v)
		default:
			err = unknownField(a.Kind(), name)
		}
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// WaitForUser suspends until a human confirms continuation.
type WaitForUser struct{}

func (a WaitForUser) Kind() Kind { return KindWaitForUser }

func (a WaitForUser) Execute(ctx context.Context, s Session) error {
	return s.Prompter().Confirm(ctx, "Click [Enter] to continue...")
}

func (a WaitForUser) unsetFields() []string { return nil }

func (a WaitForUser) specialize(args Args) (Action, error) {
	for name := range args {
		return nil, unknownField(a.Kind(), name)
	}

	return a, nil
}

// Refresh reloads the current page. Element identifiers captured before
// the refresh are not guaranteed to map onto the reloaded page.
type Refresh struct{}

func (a Refresh) Kind() Kind { return KindRefresh }

func (a Refresh) Execute(ctx context.Context, s Session) error {
	return s.Refresh(ctx)
}

func (a Refresh) unsetFields() []string { return nil }

func (a Refresh) specialize(args Args) (Action, error) {
	for name := range args {
		return nil, unknownField(a.Kind(), name)
	}

	return a, nil
}

// Abort marks the owning tab as terminated: it will not be snapshotted
// again, and once every tab of the session is aborted the workflow
// stops. When multiple tabs are in play, Abort outranks any other
// pending action.
type Abort struct{}

func (a Abort) Kind() Kind { return KindAbort }

func (a Abort) Execute(ctx context.Context, s Session) error {
	return s.AbortCurrentTab(ctx)
}

func (a Abort) unsetFields() []string { return nil }

func (a Abort) specialize(args Args) (Action, error) {
	for name := range args {
		return nil, unknownField(a.Kind(), name)
	}

	return a, nil
}
