// Package js exposes the named in-page operations the action core
// calls. Each operation is a snippet evaluated through the driver in
// whatever frame context is currently entered.
package js

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/juxbox-org/webtraversallibrary/internal/color"
	"github.com/juxbox-org/webtraversallibrary/internal/geometry"
	"github.com/juxbox-org/webtraversallibrary/internal/ports"
	"github.com/juxbox-org/webtraversallibrary/internal/selector"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
	"github.com/juxbox-org/webtraversallibrary/pkg/logg"
)

const bridgeName = "ScriptBridge"

type Bridge struct {
	driver ports.Driver
	logger *zap.Logger
}

// NewBridge wraps a driver with the named script operations.
func NewBridge(driver ports.Driver, logger *zap.Logger) *Bridge {
	return &Bridge{
		driver: driver,
		logger: logger.With(zap.String(logg.Layer, bridgeName)),
	}
}

var _ ports.ScriptBridge = (*Bridge)(nil)

func (b *Bridge) ClickElement(ctx context.Context, sel selector.Selector) error {
	const op = "ClickElement"
	_, err := b.run(ctx, op, sel.CSS, clickElementScript(sel.CSS))
	return err
}

func (b *Bridge) FillText(ctx context.Context, sel selector.Selector, text string) error {
	const op = "FillText"
	_, err := b.run(ctx, op, sel.CSS, fillTextScript(sel.CSS, text))
	return err
}

func (b *Bridge) Highlight(ctx context.Context, sel selector.Selector, c color.Color, fill, viewport bool) error {
	const op = "Highlight"
	_, err := b.run(ctx, op, sel.CSS, highlightScript(sel.CSS, c, fill, viewport))
	return err
}

func (b *Bridge) Annotate(ctx context.Context, at geometry.Point, c color.Color, size int, text string, background color.Color, viewport bool) error {
	const op = "Annotate"
	_, err := b.run(ctx, op, "", annotateScript(at, c, size, text, background, viewport))
	return err
}

func (b *Bridge) ClearHighlights(ctx context.Context, viewport bool) error {
	const op = "ClearHighlights"
	_, err := b.run(ctx, op, "", clearHighlightsScript(viewport))
	return err
}

func (b *Bridge) DeleteElement(ctx context.Context, sel selector.Selector) error {
	const op = "DeleteElement"
	_, err := b.run(ctx, op, sel.CSS, deleteElementScript(sel.CSS))
	return err
}

func (b *Bridge) ElementExists(ctx context.Context, sel selector.Selector) (bool, error) {
	const op = "ElementExists"

	result, err := b.run(ctx, op, sel.CSS, elementExistsScript(sel.CSS))
	if err != nil {
		return false, err
	}

	exists, _ := result["exists"].(bool)

	return exists, nil
}

// run evaluates a snippet and normalizes its {success, error, ...}
// result envelope.
func (b *Bridge) run(ctx context.Context, op, css, script string) (map[string]any, error) {
	raw, err := b.driver.ExecuteScript(ctx, script)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason:   "evaluate_failed",
			apperr.MetaSelector: css,
		})
	}

	result, ok := raw.(map[string]any)
	if !ok {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeInternal, "unexpected_result_type")
	}

	if success, ok := result["success"].(bool); ok && !success {
		msg, _ := result["error"].(string)
		b.logger.Debug("Script operation reported failure",
			zap.String(logg.Operation, op), zap.String(logg.Selector, css), zap.String("error", msg))

		return nil, apperr.Wrap(op, apperr.CodeActionFailed, fmt.Errorf("script failed: %s", msg), map[string]any{
			apperr.MetaSelector: css,
		})
	}

	return result, nil
}
