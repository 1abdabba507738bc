// Package console is the interactive front end of a traversal session:
// it parses typed commands into actions and feeds them to the workflow.
package console

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/juxbox-org/webtraversallibrary/internal/action"
	"github.com/juxbox-org/webtraversallibrary/internal/config"
	"github.com/juxbox-org/webtraversallibrary/internal/selector"
	"github.com/juxbox-org/webtraversallibrary/internal/workflow"
	"github.com/juxbox-org/webtraversallibrary/pkg/logg"
)

type Interface struct {
	config   *config.Config
	logger   *zap.Logger
	workflow *workflow.Workflow
	ctx      context.Context
	cancel   context.CancelFunc
	sigChan  chan os.Signal
	stopping bool
}

type Params struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Workflow *workflow.Workflow
}

func NewInterface(params Params) *Interface {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)

	return &Interface{
		config:   params.Config,
		logger:   params.Logger.With(zap.String(logg.Layer, "Console")),
		workflow: params.Workflow,
		ctx:      ctx,
		cancel:   cancel,
		sigChan:  sigChan,
		stopping: false,
	}
}

func (i *Interface) Start() error {
	i.printBanner()
	i.printHelp()

	signal.Notify(i.sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-i.sigChan
		fmt.Println("\n\nInterrupt received, stopping session...")
		i.stopping = true
		i.Stop()
	}()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		if i.stopping {
			break
		}

		fmt.Print("\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())

		if input == "" {
			continue
		}

		if err := i.handleCommand(input); err != nil {
			if err.Error() == "exit" {
				break
			}

			i.logger.Error("Command error", zap.Error(err))
			fmt.Printf("Error: %v\n", err)
		}
	}

	return nil
}

func (i *Interface) Stop() error {
	if i.stopping {
		return nil
	}

	i.stopping = true
	i.logger.Info("Stopping console interface...")

	i.cancel()

	fmt.Println("Goodbye!")
	os.Exit(0)

	return nil
}

func (i *Interface) handleCommand(input string) error {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help", "h":
		i.printHelp()

		return nil
	case "exit", "quit", "q":
		fmt.Println("Shutting down...")

		return fmt.Errorf("exit")
	case "history":
		i.printHistory()

		return nil
	default:
		a, err := i.parseAction(cmd, args)
		if err != nil {
			return err
		}

		return i.execute(a)
	}
}

// parseAction maps one console command onto an action value.
func (i *Interface) parseAction(cmd string, args []string) (action.Action, error) {
	switch cmd {
	case "goto":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: goto <url>")
		}

		return action.NewNavigate(args[0]), nil
	case "click":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: click <css>")
		}

		return action.NewClick(action.TargetSelector(selector.New(args[0]))), nil
	case "fill":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: fill <css> <text>")
		}

		return action.NewFillText(
			action.TargetSelector(selector.New(args[0])),
			strings.Join(args[1:], " "),
		), nil
	case "highlight":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: highlight <css>")
		}

		return action.NewHighlight(action.TargetSelector(selector.New(args[0]))), nil
	case "clear":
		return action.Clear{}, nil
	case "remove":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: remove <css>")
		}

		return action.NewRemove(action.TargetSelector(selector.New(args[0]))), nil
	case "wait":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: wait <seconds>")
		}

		seconds, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", args[0])
		}

		return action.NewWait(seconds), nil
	case "waitfor":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: waitfor <css>")
		}

		return action.NewWaitForElement(selector.New(args[0]), 1), nil
	case "refresh":
		return action.Refresh{}, nil
	case "revert":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: revert <view-index>")
		}

		viewIndex, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid view index %q", args[0])
		}

		return action.NewRevert(viewIndex), nil
	case "pause":
		return action.WaitForUser{}, nil
	case "abort":
		return action.Abort{}, nil
	default:
		return nil, fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
}

func (i *Interface) execute(a action.Action) error {
	result, err := i.workflow.Execute(i.ctx, a)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case workflow.OutcomeSoftFailure:
		fmt.Printf("~ %s finished with a soft failure: %v\n", a.Kind(), result.Err)
	default:
		fmt.Printf("+ %s done\n", a.Kind())
	}

	if i.workflow.Aborted() {
		fmt.Println("All tabs aborted, session finished.")
		return fmt.Errorf("exit")
	}

	return nil
}

func (i *Interface) printHistory() {
	history := i.workflow.History()
	if len(history) == 0 {
		fmt.Println("No actions recorded yet.")
		return
	}

	for idx, a := range history {
		fmt.Printf("%3d  %s\n", idx, a.Kind())
	}
}

func (i *Interface) printBanner() {
	fmt.Println(`
Web Traversal Console
Scripted browser actions with replayable history.`)
}

func (i *Interface) printHelp() {
	help := `
Available commands:
  goto <url>          - Navigate to a URL
  click <css>         - Click the first element matching a CSS selector
  fill <css> <text>   - Fill a text field
  highlight <css>     - Draw a highlight around an element
  clear               - Clear highlights and annotations
  remove <css>        - Delete an element from the page
  wait <seconds>      - Pause for a fixed duration
  waitfor <css>       - Poll until an element exists
  refresh             - Reload the current page
  revert <view-index> - Rebuild the session at an earlier point
  pause               - Wait for [Enter]
  abort               - Abort the current tab
  history             - Show recorded actions
  help, h             - Show this help message
  exit, quit, q       - Exit the application
`
	fmt.Println(help)
}
