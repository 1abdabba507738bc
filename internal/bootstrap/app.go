package bootstrap

import (
	"time"

	"go.uber.org/fx"

	"github.com/juxbox-org/webtraversallibrary/internal/browser"
	"github.com/juxbox-org/webtraversallibrary/internal/config"
	"github.com/juxbox-org/webtraversallibrary/internal/console"
	"github.com/juxbox-org/webtraversallibrary/internal/js"
	"github.com/juxbox-org/webtraversallibrary/internal/ports"
	"github.com/juxbox-org/webtraversallibrary/internal/workflow"
)

func NewApp() *fx.App {
	return fx.New(
		fx.Provide(
			config.GetConfig,
			newLogger,
			newTraceProvider,

			fx.Annotate(browser.NewDriver, fx.As(new(ports.Driver))),
			fx.Annotate(js.NewBridge, fx.As(new(ports.ScriptBridge))),
			fx.Annotate(console.NewPrompter, fx.As(new(ports.Prompter))),

			workflow.New,

			console.NewInterface,
		),

		fx.Invoke(
			runConsole,
		),

		fx.StartTimeout(10*time.Second),
	)
}
