// Package browser implements the driver port on top of playwright.
// One Driver owns one browser session; find and script operations run
// in the currently entered frame.
package browser

import (
	"context"
	"fmt"
	"os"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/juxbox-org/webtraversallibrary/internal/config"
	"github.com/juxbox-org/webtraversallibrary/internal/geometry"
	"github.com/juxbox-org/webtraversallibrary/internal/ports"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
	"github.com/juxbox-org/webtraversallibrary/pkg/logg"
	"github.com/juxbox-org/webtraversallibrary/pkg/tracing"
)

const (
	driverName   = "BrowserDriver"
	driverTracer = "browser.driver"
)

type Driver struct {
	config         *config.Config
	logger         *zap.Logger
	tracer         trace.Tracer
	playwright     *playwright.Playwright
	browser        playwright.Browser
	browserContext playwright.BrowserContext
	page           playwright.Page
	// frame is the currently entered iframe; nil means the top-level
	// document.
	frame playwright.Frame
	ready bool
}

type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func NewDriver(params Params) *Driver {
	return &Driver{
		config: params.Config,
		logger: params.Logger.With(zap.String(logg.Layer, driverName)),
		tracer: otel.Tracer(driverTracer),
	}
}

var _ ports.Driver = (*Driver)(nil)

func (m *Driver) Launch(ctx context.Context) (err error) {
	const op = "Launch"
	logger := m.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	logger.Info("Launching browser...")
	step.AddEvent("installing playwright")

	if err = playwright.Install(); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "playwright_install_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	step.AddEvent("starting playwright")

	pw, err := playwright.Run()
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "playwright_start_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.playwright = pw

	if m.config.BrowserConfig.UserDataDir != "" {
		return m.launchPersistent(ctx)
	}

	return m.launchNew(ctx)
}

func (m *Driver) launchPersistent(ctx context.Context) (err error) {
	const op = "launchPersistent"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	logger.Info("Launching persistent browser context")

	userDataDir := m.config.BrowserConfig.UserDataDir

	if err := os.MkdirAll(userDataDir, 0755); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "mkdir_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	options := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:          playwright.Bool(m.config.BrowserConfig.Headless),
		SlowMo:            playwright.Float(float64(m.config.BrowserConfig.SlowMo)),
		Viewport:          &playwright.Size{Width: 1920, Height: 1080},
		AcceptDownloads:   playwright.Bool(true),
		JavaScriptEnabled: playwright.Bool(true),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
		IgnoreHttpsErrors: playwright.Bool(true),
	}

	browserContext, err := m.playwright.Chromium.LaunchPersistentContext(userDataDir, options)
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "launch_persistent_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	m.browserContext = browserContext

	pages := browserContext.Pages()
	if len(pages) > 0 {
		m.page = pages[0]
	} else {
		page, err := browserContext.NewPage()
		if err != nil {
			return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
				apperr.MetaReason: "new_page_failed",
				apperr.MetaStage:  apperr.StageBrowser,
			})
		}
		m.page = page
	}

	m.ready = true
	logger.Info("Browser launched successfully")

	return nil
}

func (m *Driver) launchNew(ctx context.Context) (err error) {
	const op = "launchNew"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	logger.Info("Launching new browser")

	browser, err := m.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.config.BrowserConfig.Headless),
		SlowMo:   playwright.Float(float64(m.config.BrowserConfig.SlowMo)),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
		},
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "browser_launch_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.browser = browser

	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: 1280, Height: 720},
		AcceptDownloads:   playwright.Bool(true),
		JavaScriptEnabled: playwright.Bool(true),
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "context_create_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.browserContext = browserContext

	page, err := browserContext.NewPage()
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "page_create_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.page = page

	m.ready = true
	logger.Info("Browser launched successfully")

	return nil
}

func (m *Driver) Close(ctx context.Context) (err error) {
	const op = "Close"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	logger.Info("Closing connection to browser...")

	if m.browserContext != nil {
		if err := m.browserContext.Close(); err != nil {
			logger.Warn("Failed to close context", zap.Error(err))
		}
	}

	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			logger.Warn("Failed to close browser", zap.Error(err))
		}
	}

	if m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
				apperr.MetaReason: "playwright_stop_failed",
			})
		}
	}

	m.ready = false
	logger.Info("Browser closed")

	return nil
}

func (m *Driver) IsReady() bool {
	return m.ready
}

// target returns the frame all find/script operations currently run in.
func (m *Driver) target() playwright.Frame {
	if m.frame != nil {
		return m.frame
	}

	return m.page.MainFrame()
}

func (m *Driver) checkReady(op string) error {
	if !m.ready {
		return apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	return nil
}

func (m *Driver) Navigate(ctx context.Context, url string) (err error) {
	const op = "Navigate"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	if err = m.checkReady(op); err != nil {
		return err
	}

	step.AddEvent("navigating to URL")

	_, err = m.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(m.config.BrowserConfig.Timeout)),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "goto_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    url,
		})
	}

	step.AddEvent("navigation completed")

	return nil
}

func (m *Driver) Refresh(ctx context.Context) (err error) {
	const op = "Refresh"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if err = m.checkReady(op); err != nil {
		return err
	}

	_, err = m.page.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "reload_failed",
			apperr.MetaStage:  apperr.StageNavigation,
		})
	}

	return nil
}

func (m *Driver) CurrentURL(ctx context.Context) (string, error) {
	const op = "CurrentURL"

	if err := m.checkReady(op); err != nil {
		return "", err
	}

	return m.page.URL(), nil
}

// Reset leaves the session on a blank page with no frame entered, the
// starting point of a replay.
func (m *Driver) Reset(ctx context.Context) (err error) {
	const op = "Reset"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if err = m.checkReady(op); err != nil {
		return err
	}

	m.frame = nil

	_, err = m.page.Goto("about:blank")
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "reset_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	return nil
}

// locatorFor translates a (strategy, locator) pair into a playwright
// selector string.
func locatorFor(by ports.By, locator string) string {
	switch by {
	case ports.ByXPath:
		return "xpath=" + locator
	case ports.ByID:
		return fmt.Sprintf("[id=%q]", locator)
	case ports.ByTagName:
		return locator
	default:
		return locator
	}
}

func (m *Driver) FindElement(ctx context.Context, by ports.By, locator string) (ports.WebElement, error) {
	const op = "FindElement"

	if err := m.checkReady(op); err != nil {
		return nil, err
	}

	handle, err := m.target().QuerySelector(locatorFor(by, locator))
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaSelector: locator,
		})
	}
	if handle == nil {
		return nil, apperr.Wrap(op, apperr.CodeNotFound, fmt.Errorf("no element for %s locator %q", by, locator), map[string]any{
			apperr.MetaSelector: locator,
		})
	}

	return &webElement{handle: handle}, nil
}

func (m *Driver) FindElements(ctx context.Context, by ports.By, locator string) ([]ports.WebElement, error) {
	const op = "FindElements"

	if err := m.checkReady(op); err != nil {
		return nil, err
	}

	handles, err := m.target().QuerySelectorAll(locatorFor(by, locator))
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaSelector: locator,
		})
	}

	out := make([]ports.WebElement, 0, len(handles))
	for _, h := range handles {
		out = append(out, &webElement{handle: h})
	}

	return out, nil
}

func (m *Driver) SelectByText(ctx context.Context, xpath, text string) (err error) {
	const op = "SelectByText"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, xpath))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("selector", xpath))
	defer func() {
		step.End(err)
	}()

	if err = m.checkReady(op); err != nil {
		return err
	}

	_, err = m.target().SelectOption("xpath="+xpath, playwright.SelectOptionValues{
		Labels: &[]string{text},
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason:   "select_failed",
			apperr.MetaStage:    apperr.StageInteraction,
			apperr.MetaSelector: xpath,
		})
	}

	return nil
}

// EnterFrame locates the iframe at the given XPath, repairs its
// visibility if an ancestor hides it, and switches the driver context
// into it.
func (m *Driver) EnterFrame(ctx context.Context, xpath string) (err error) {
	const op = "EnterFrame"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Iframe, xpath))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("iframe", xpath))
	defer func() {
		step.End(err)
	}()

	if err = m.checkReady(op); err != nil {
		return err
	}

	handle, err := m.page.MainFrame().QuerySelector("xpath=" + xpath)
	if err != nil || handle == nil {
		return apperr.Wrap(op, apperr.CodeFrameNotFound,
			fmt.Errorf("found no iframe with xpath %q", xpath), map[string]any{
				apperr.MetaIframe: xpath,
			})
	}

	if err = RevealElement(ctx, &webElement{handle: handle}); err != nil {
		return err
	}

	frame, err := handle.ContentFrame()
	if err != nil || frame == nil {
		return apperr.Wrap(op, apperr.CodeFrameNotFound,
			fmt.Errorf("iframe at %q has no content frame", xpath), map[string]any{
				apperr.MetaIframe: xpath,
			})
	}

	logger.Debug("Entering iframe")
	m.frame = frame

	return nil
}

// ExitFrame restores the top-level document context. It never fails.
func (m *Driver) ExitFrame(ctx context.Context) error {
	if m.frame != nil {
		m.logger.Debug("Exiting iframe")
	}
	m.frame = nil

	return nil
}

func (m *Driver) ExecuteScript(ctx context.Context, script string) (any, error) {
	const op = "ExecuteScript"

	if err := m.checkReady(op); err != nil {
		return nil, err
	}

	result, err := m.target().Evaluate(script)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "evaluate_failed",
		})
	}

	return result, nil
}

func (m *Driver) ScrollTo(ctx context.Context, bounds geometry.Rect) (err error) {
	const op = "ScrollTo"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if err = m.checkReady(op); err != nil {
		return err
	}

	center := bounds.Center()
	script := fmt.Sprintf(
		"window.scrollTo({top: %f - window.innerHeight / 2, left: 0, behavior: 'instant'})",
		center.Y,
	)

	if _, err = m.page.Evaluate(script); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "scroll_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	return nil
}
