package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppConfig     *AppConfig
	BrowserConfig *BrowserConfig
	ActionsConfig *ActionsConfig
	DebugConfig   *DebugConfig
}

type AppConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type BrowserConfig struct {
	Headless    bool   `envconfig:"BROWSER_HEADLESS" default:"true"`
	SlowMo      int    `envconfig:"BROWSER_SLOW_MO" default:"0"`
	Timeout     int    `envconfig:"BROWSER_TIMEOUT" default:"30000"`
	UserDataDir string `envconfig:"BROWSER_USER_DATA_DIR" default:""`
}

type ActionsConfig struct {
	// AbortClose controls whether Abort also closes the owning tab.
	AbortClose bool `envconfig:"ACTIONS_ABORT_CLOSE" default:"true"`
	// DismissSelector is the element id clicked to close a framework
	// dropdown after selection. Pages are expected to provide it.
	DismissSelector string `envconfig:"ACTIONS_DISMISS_SELECTOR" default:"dummy-element"`
	// SelectSettle is how long framework dropdowns get to render their
	// options after being opened.
	SelectSettle time.Duration `envconfig:"ACTIONS_SELECT_SETTLE" default:"1s"`
	// WaitPoll is the default polling interval for WaitForElement.
	WaitPoll time.Duration `envconfig:"ACTIONS_WAIT_POLL" default:"1s"`
}

type DebugConfig struct {
	// DefaultCanvasViewport picks the viewport canvas over the document
	// canvas when a drawing action leaves the choice unset.
	DefaultCanvasViewport bool `envconfig:"DEBUG_DEFAULT_CANVAS_VIEWPORT" default:"false"`
	// PreserveWindow keeps windows open after Abort regardless of the
	// abort-close policy.
	PreserveWindow bool `envconfig:"DEBUG_PRESERVE_WINDOW" default:"false"`
}

func GetConfig() (*Config, error) {
	_ = godotenv.Load()

	var conf Config

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("read config from env vars: %w", err)
	}

	return &conf, nil
}

// Default returns the configuration with every field at its declared
// default, without touching the environment.
func Default() *Config {
	return &Config{
		AppConfig:     &AppConfig{LogLevel: "info"},
		BrowserConfig: &BrowserConfig{Headless: true, Timeout: 30000},
		ActionsConfig: &ActionsConfig{
			AbortClose:      true,
			DismissSelector: "dummy-element",
			SelectSettle:    time.Second,
			WaitPoll:        time.Second,
		},
		DebugConfig: &DebugConfig{},
	}
}
