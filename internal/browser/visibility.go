package browser

import (
	"context"

	"github.com/juxbox-org/webtraversallibrary/internal/ports"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
)

// forcedVisibleStyle overrides whatever hid the subtree. Inline style
// wins over stylesheet rules, so setting it on the right ancestor is
// enough.
const forcedVisibleStyle = "visibility: visible; display: block"

// RevealElement makes a hidden element renderable before its content is
// used, typically an iframe hidden by an ancestor. It walks up from the
// element until it finds a visible ancestor and forces the child just
// below that ancestor to a visible display state. Reaching the document
// body without finding a visible ancestor is unrecoverable.
func RevealElement(ctx context.Context, el ports.WebElement) error {
	const op = "RevealElement"

	displayed, err := el.IsDisplayed(ctx)
	if err != nil {
		return err
	}
	if displayed {
		return nil
	}

	child := el
	parent, err := child.Parent(ctx)
	if err != nil {
		return err
	}

	for parent != nil {
		displayed, err := parent.IsDisplayed(ctx)
		if err != nil {
			return err
		}

		tag, err := parent.TagName(ctx)
		if err != nil {
			return err
		}

		if displayed || tag == "body" {
			break
		}

		child = parent
		parent, err = child.Parent(ctx)
		if err != nil {
			return err
		}
	}

	if parent == nil {
		return apperr.WrapErrorWithReason(op, apperr.CodeVisibilityRecovery, "document_root_reached")
	}

	if tag, err := parent.TagName(ctx); err != nil {
		return err
	} else if tag == "body" {
		if displayed, err := parent.IsDisplayed(ctx); err != nil {
			return err
		} else if !displayed {
			return apperr.WrapErrorWithReason(op, apperr.CodeVisibilityRecovery, "body_not_displayed")
		}
	}

	return child.SetAttribute(ctx, "style", forcedVisibleStyle)
}
