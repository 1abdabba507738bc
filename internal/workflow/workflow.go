// Package workflow owns a traversal session: it executes actions against
// the browser, records what ran, and can rebuild any earlier state by
// replaying the record.
package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/juxbox-org/webtraversallibrary/internal/action"
	"github.com/juxbox-org/webtraversallibrary/internal/config"
	"github.com/juxbox-org/webtraversallibrary/internal/geometry"
	"github.com/juxbox-org/webtraversallibrary/internal/ports"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
	"github.com/juxbox-org/webtraversallibrary/pkg/logg"
	"github.com/juxbox-org/webtraversallibrary/pkg/tracing"
)

const (
	workflowName   = "Workflow"
	workflowTracer = "workflow"
)

// Outcome classifies how an executed action ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	// OutcomeSoftFailure marks a best-effort action whose failure was
	// absorbed. The action still counts as executed.
	OutcomeSoftFailure Outcome = "soft_failure"
)

// Result is the record of one executed action.
type Result struct {
	Action  action.Action
	Outcome Outcome
	// Err holds the absorbed error of a soft failure.
	Err error
}

// Workflow drives one browser session. It implements the session surface
// actions execute against.
type Workflow struct {
	config   *config.Config
	logger   *zap.Logger
	tracer   trace.Tracer
	driver   ports.Driver
	bridge   ports.ScriptBridge
	prompter ports.Prompter

	// initialURL is the first URL ever navigated to; replays start from
	// it.
	initialURL string
	history    []action.Action
	replaying  bool

	windows []*Window
	current *Window
}

type Params struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Driver   ports.Driver
	Bridge   ports.ScriptBridge
	Prompter ports.Prompter
}

func New(params Params) *Workflow {
	w := &Workflow{
		config:   params.Config,
		logger:   params.Logger.With(zap.String(logg.Layer, workflowName)),
		tracer:   otel.Tracer(workflowTracer),
		driver:   params.Driver,
		bridge:   params.Bridge,
		prompter: params.Prompter,
	}

	w.resetSurfaces()

	return w
}

// resetSurfaces rebuilds the window bookkeeping to the fresh-session
// state: one main window holding one open tab. Replays re-create any
// further surfaces themselves.
func (w *Workflow) resetSurfaces() {
	main := newWindow(w, "main")
	main.tabs = append(main.tabs, &Tab{id: uuid.NewString(), name: "main"})
	w.windows = []*Window{main}
	w.current = main
}

var _ action.Session = (*Workflow)(nil)

func (w *Workflow) Config() *config.Config     { return w.config }
func (w *Workflow) Logger() *zap.Logger        { return w.logger }
func (w *Workflow) Driver() ports.Driver       { return w.driver }
func (w *Workflow) Bridge() ports.ScriptBridge { return w.bridge }
func (w *Workflow) Prompter() ports.Prompter   { return w.prompter }

// Execute runs one action and records it. Soft failures are absorbed
// into the result and the action is still recorded as executed; hard
// failures propagate and leave the record untouched. Reverts are never
// recorded, they rewrite the record instead.
func (w *Workflow) Execute(ctx context.Context, a action.Action) (result Result, err error) {
	const op = "Execute"
	logger := w.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.Action, string(a.Kind())),
	)

	ctx, step := tracing.StartSpan(ctx, w.tracer, logger, op,
		attribute.String("action", string(a.Kind())))
	defer func() {
		step.End(err)
	}()

	logger.Info("Executing action")

	execErr := a.Execute(ctx, w)
	if execErr != nil && apperr.CodeOf(execErr) != apperr.CodeSoftFailure {
		return Result{}, execErr
	}

	if a.Kind() != action.KindRevert {
		w.history = append(w.history, a)
	}

	if execErr != nil {
		logger.Warn("Action soft-failed", zap.Error(execErr))
		return Result{Action: a, Outcome: OutcomeSoftFailure, Err: execErr}, nil
	}

	return Result{Action: a, Outcome: OutcomeSuccess}, nil
}

// History returns the recorded actions in execution order.
func (w *Workflow) History() []action.Action {
	out := make([]action.Action, len(w.history))
	copy(out, w.history)

	return out
}

// Navigate loads a URL. The first navigation of the session pins the
// URL replays restart from.
func (w *Workflow) Navigate(ctx context.Context, url string) error {
	if w.initialURL == "" {
		w.initialURL = url
	}

	return w.driver.Navigate(ctx, url)
}

func (w *Workflow) Refresh(ctx context.Context) error {
	return w.driver.Refresh(ctx)
}

func (w *Workflow) ScrollTo(ctx context.Context, bounds geometry.Rect) error {
	return w.driver.ScrollTo(ctx, bounds)
}

// ResetTo rebuilds the session as it was after the first viewIndex
// recorded actions: the browser is reset, the initial navigation is
// repeated, and the prefix of the record is replayed in order. The
// record is truncated to that prefix. viewIndex 0 keeps only the
// initial navigation.
func (w *Workflow) ResetTo(ctx context.Context, viewIndex int) (err error) {
	const op = "ResetTo"
	logger := w.logger.With(
		zap.String(logg.Operation, op),
		zap.Int(logg.ViewIndex, viewIndex),
	)

	ctx, step := tracing.StartSpan(ctx, w.tracer, logger, op,
		attribute.Int("view_index", viewIndex))
	defer func() {
		step.End(err)
	}()

	if viewIndex < 0 || viewIndex > len(w.history) {
		return apperr.Wrap(op, apperr.CodeUsage,
			fmt.Errorf("view index %d outside history of length %d", viewIndex, len(w.history)),
			map[string]any{apperr.MetaStage: apperr.StageReplay})
	}

	logger.Info("Reverting session", zap.Int("replay_count", viewIndex))

	if err = w.driver.Reset(ctx); err != nil {
		return err
	}

	// Windows and tabs belong to the discarded timeline; replayed
	// actions re-open theirs.
	w.resetSurfaces()

	if w.initialURL != "" {
		if err = w.driver.Navigate(ctx, w.initialURL); err != nil {
			return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
				apperr.MetaStage: apperr.StageReplay,
				apperr.MetaURL:   w.initialURL,
			})
		}
	}

	replay := make([]action.Action, viewIndex)
	copy(replay, w.history[:viewIndex])

	w.replaying = true
	defer func() { w.replaying = false }()

	for i, a := range replay {
		step.AddEvent(fmt.Sprintf("replaying action %d: %s", i, a.Kind()))

		if replayErr := a.Execute(ctx, w); replayErr != nil &&
			apperr.CodeOf(replayErr) != apperr.CodeSoftFailure {
			return apperr.Wrap(op, apperr.CodeActionFailed, replayErr, map[string]any{
				apperr.MetaStage:  apperr.StageReplay,
				apperr.MetaAction: string(a.Kind()),
			})
		}
	}

	w.history = replay

	return nil
}

// Frame runs fn with the driver switched into the iframe at the given
// XPath, restoring the top-level context on every exit path including
// panics. An empty XPath runs fn directly.
func (w *Workflow) Frame(ctx context.Context, iframe string, fn func(context.Context) error) (err error) {
	if iframe == "" {
		return fn(ctx)
	}

	if err = w.driver.EnterFrame(ctx, iframe); err != nil {
		return err
	}

	defer func() {
		if exitErr := w.driver.ExitFrame(ctx); exitErr != nil && err == nil {
			err = exitErr
		}
	}()

	return fn(ctx)
}

func (w *Workflow) CurrentWindow() action.Window {
	return w.current
}

// CreateWindow opens an additional named rendering surface. The new
// window does not become current.
func (w *Workflow) CreateWindow(ctx context.Context, name string) (action.Window, error) {
	win := newWindow(w, name)
	w.windows = append(w.windows, win)

	w.logger.Info("Created window", zap.String(logg.Window, name))

	return win, nil
}

// AbortCurrentTab marks the current tab terminated and, policy
// permitting, closes it.
func (w *Workflow) AbortCurrentTab(ctx context.Context) error {
	const op = "AbortCurrentTab"

	tab := w.current.currentTab()
	if tab == nil {
		return apperr.WrapErrorWithReason(op, apperr.CodeUsage, "no_open_tab")
	}

	tab.aborted = true
	w.logger.Info("Aborted tab",
		zap.String(logg.Window, w.current.Name()), zap.String(logg.Tab, tab.name))

	if w.config.ActionsConfig.AbortClose && !w.config.DebugConfig.PreserveWindow {
		return w.current.CloseTab(ctx)
	}

	return nil
}

// Aborted reports whether every tab of every window has been aborted or
// closed, i.e. the traversal has nothing left to act on.
func (w *Workflow) Aborted() bool {
	for _, win := range w.windows {
		for _, t := range win.tabs {
			if !t.aborted && !t.closed {
				return false
			}
		}
	}

	return true
}
