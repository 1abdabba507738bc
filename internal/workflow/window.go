package workflow

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juxbox-org/webtraversallibrary/internal/action"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
	"github.com/juxbox-org/webtraversallibrary/pkg/logg"
)

// Window is one named rendering surface of the session. Tabs record
// what the surface has shown; the newest open tab is current.
type Window struct {
	id       string
	name     string
	workflow *Workflow
	tabs     []*Tab
}

// Tab records one view a window has opened. A tab scoped to an iframe
// XPath shows only that frame's content.
type Tab struct {
	id      string
	name    string
	url     string
	iframe  string
	aborted bool
	closed  bool
}

func newWindow(w *Workflow, name string) *Window {
	return &Window{
		id:       uuid.NewString(),
		name:     name,
		workflow: w,
	}
}

var _ action.Window = (*Window)(nil)

func (w *Window) Name() string {
	return w.name
}

// CreateTab opens a tab on the given URL, optionally scoped to an
// iframe. A non-empty URL is loaded immediately; a non-empty iframe
// XPath is entered once to verify it resolves.
func (w *Window) CreateTab(ctx context.Context, name, url, iframeXPath string) error {
	const op = "CreateTab"
	logger := w.workflow.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.Window, w.name),
		zap.String(logg.Tab, name),
	)

	if url != "" {
		if err := w.workflow.driver.Navigate(ctx, url); err != nil {
			return err
		}
	}

	if iframeXPath != "" {
		err := w.workflow.Frame(ctx, iframeXPath, func(context.Context) error {
			return nil
		})
		if err != nil {
			return err
		}
	}

	w.tabs = append(w.tabs, &Tab{
		id:     uuid.NewString(),
		name:   name,
		url:    url,
		iframe: iframeXPath,
	})

	logger.Info("Created tab", zap.String(logg.URL, url), zap.String(logg.Iframe, iframeXPath))

	return nil
}

// CloseTab closes the current tab.
func (w *Window) CloseTab(ctx context.Context) error {
	const op = "CloseTab"

	tab := w.currentTab()
	if tab == nil {
		return apperr.WrapErrorWithReason(op, apperr.CodeUsage, "no_open_tab")
	}

	tab.closed = true
	w.workflow.logger.Info("Closed tab",
		zap.String(logg.Window, w.name), zap.String(logg.Tab, tab.name))

	return nil
}

// currentTab returns the newest open tab, or nil when every tab is
// closed.
func (w *Window) currentTab() *Tab {
	for i := len(w.tabs) - 1; i >= 0; i-- {
		if !w.tabs[i].closed {
			return w.tabs[i]
		}
	}

	return nil
}
