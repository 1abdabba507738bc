// Package ports declares the narrow interfaces the action core consumes
// from its collaborators: the browser driver, the in-page script bridge
// and the human confirmation channel.
package ports

import (
	"context"

	"github.com/juxbox-org/webtraversallibrary/internal/color"
	"github.com/juxbox-org/webtraversallibrary/internal/geometry"
	"github.com/juxbox-org/webtraversallibrary/internal/selector"
)

// By is the locator strategy used by Driver lookups.
type By string

const (
	ByCSS     By = "css"
	ByXPath   By = "xpath"
	ByID      By = "id"
	ByTagName By = "tag"
)

// Driver is the browser session owned by one window. Find and script
// operations run in the currently entered frame; EnterFrame and
// ExitFrame move that context.
type Driver interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	IsReady() bool

	Navigate(ctx context.Context, url string) error
	Refresh(ctx context.Context) error
	CurrentURL(ctx context.Context) (string, error)
	// Reset discards all page state, leaving a blank session.
	Reset(ctx context.Context) error

	FindElement(ctx context.Context, by By, locator string) (WebElement, error)
	FindElements(ctx context.Context, by By, locator string) ([]WebElement, error)
	// SelectByText performs a native dropdown selection, by visible
	// option text, on the <select> at the given XPath.
	SelectByText(ctx context.Context, xpath, text string) error

	// EnterFrame switches script and find operations into the iframe at
	// the given XPath. It fails when the iframe does not exist.
	EnterFrame(ctx context.Context, xpath string) error
	// ExitFrame unconditionally restores the top-level document context.
	ExitFrame(ctx context.Context) error

	ExecuteScript(ctx context.Context, script string) (any, error)
	ScrollTo(ctx context.Context, bounds geometry.Rect) error
}

// WebElement is a live element handle returned by Driver lookups.
type WebElement interface {
	Click(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	TagName(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, error)
	IsDisplayed(ctx context.Context) (bool, error)
	Parent(ctx context.Context) (WebElement, error)
	SetAttribute(ctx context.Context, name, value string) error
}

// ScriptBridge exposes the named in-page operations the actions call.
// Selector-addressed operations run in the currently entered frame.
type ScriptBridge interface {
	ClickElement(ctx context.Context, sel selector.Selector) error
	FillText(ctx context.Context, sel selector.Selector, text string) error
	Highlight(ctx context.Context, sel selector.Selector, c color.Color, fill, viewport bool) error
	Annotate(ctx context.Context, at geometry.Point, c color.Color, size int, text string, background color.Color, viewport bool) error
	ClearHighlights(ctx context.Context, viewport bool) error
	DeleteElement(ctx context.Context, sel selector.Selector) error
	ElementExists(ctx context.Context, sel selector.Selector) (bool, error)
}

// Prompter blocks until a human confirms continuation.
type Prompter interface {
	Confirm(ctx context.Context, prompt string) error
}
