package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/juxbox-org/webtraversallibrary/internal/ports"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
)

// webElement adapts a playwright element handle to the element port.
type webElement struct {
	handle playwright.ElementHandle
}

var _ ports.WebElement = (*webElement)(nil)

func (e *webElement) Click(ctx context.Context) error {
	const op = "Element.Click"

	if err := e.handle.Click(); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaStage: apperr.StageInteraction,
		})
	}

	return nil
}

func (e *webElement) Text(ctx context.Context) (string, error) {
	const op = "Element.Text"

	text, err := e.handle.TextContent()
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeInternal, err, nil)
	}

	return strings.TrimSpace(text), nil
}

func (e *webElement) TagName(ctx context.Context) (string, error) {
	const op = "Element.TagName"

	result, err := e.handle.Evaluate("el => el.tagName.toLowerCase()")
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeInternal, err, nil)
	}

	tag, ok := result.(string)
	if !ok {
		return "", apperr.WrapErrorWithReason(op, apperr.CodeInternal, "unexpected_result_type")
	}

	return tag, nil
}

func (e *webElement) Attribute(ctx context.Context, name string) (string, error) {
	const op = "Element.Attribute"

	value, err := e.handle.GetAttribute(name)
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: fmt.Sprintf("attribute %q", name),
		})
	}

	return value, nil
}

func (e *webElement) IsDisplayed(ctx context.Context) (bool, error) {
	const op = "Element.IsDisplayed"

	visible, err := e.handle.IsVisible()
	if err != nil {
		return false, apperr.Wrap(op, apperr.CodeInternal, err, nil)
	}

	return visible, nil
}

// Parent returns the parent element, or nil at the document root.
func (e *webElement) Parent(ctx context.Context) (ports.WebElement, error) {
	const op = "Element.Parent"

	handle, err := e.handle.QuerySelector("xpath=..")
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, nil)
	}
	if handle == nil {
		return nil, nil
	}

	return &webElement{handle: handle}, nil
}

func (e *webElement) SetAttribute(ctx context.Context, name, value string) error {
	const op = "Element.SetAttribute"

	_, err := e.handle.Evaluate("(el, arg) => el.setAttribute(arg.name, arg.value)", map[string]any{
		"name":  name,
		"value": value,
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: fmt.Sprintf("attribute %q", name),
		})
	}

	return nil
}
