package js

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/juxbox-org/webtraversallibrary/internal/color"
	"github.com/juxbox-org/webtraversallibrary/internal/geometry"
	"github.com/juxbox-org/webtraversallibrary/internal/ports"
	"github.com/juxbox-org/webtraversallibrary/internal/selector"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
)

// scriptDriver stubs only the script path of the driver port.
type scriptDriver struct {
	ports.Driver

	scripts []string
	result  any
	err     error
}

func (d *scriptDriver) ExecuteScript(_ context.Context, script string) (any, error) {
	d.scripts = append(d.scripts, script)
	if d.err != nil {
		return nil, d.err
	}
	return d.result, nil
}

func newTestBridge(result any, err error) (*Bridge, *scriptDriver) {
	driver := &scriptDriver{result: result, err: err}
	return NewBridge(driver, zap.NewNop()), driver
}

func TestClickElementSuccess(t *testing.T) {
	b, driver := newTestBridge(map[string]any{"success": true}, nil)

	err := b.ClickElement(context.Background(), selector.New(".go"))
	require.NoError(t, err)
	require.Len(t, driver.scripts, 1)
	assert.Contains(t, driver.scripts[0], `".go"`)
}

func TestScriptReportedFailure(t *testing.T) {
	b, _ := newTestBridge(map[string]any{"success": false, "error": "element not found"}, nil)

	err := b.ClickElement(context.Background(), selector.New(".gone"))
	require.Error(t, err)
	assert.Equal(t, apperr.CodeActionFailed, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "element not found")
}

func TestEvaluateFailure(t *testing.T) {
	b, _ := newTestBridge(nil, errors.New("page crashed"))

	err := b.FillText(context.Background(), selector.New("input"), "x")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeActionFailed, apperr.CodeOf(err))
}

func TestUnexpectedResultShape(t *testing.T) {
	b, _ := newTestBridge("just a string", nil)

	err := b.DeleteElement(context.Background(), selector.New("div"))
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}

func TestElementExists(t *testing.T) {
	b, _ := newTestBridge(map[string]any{"success": true, "exists": true}, nil)

	exists, err := b.ElementExists(context.Background(), selector.New("#late"))
	require.NoError(t, err)
	assert.True(t, exists)

	b, _ = newTestBridge(map[string]any{"success": true, "exists": false}, nil)

	exists, err = b.ElementExists(context.Background(), selector.New("#late"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAnnotateQuotesText(t *testing.T) {
	b, driver := newTestBridge(map[string]any{"success": true}, nil)

	// Text containing quotes must survive embedding into the script.
	err := b.Annotate(context.Background(),
		geometry.Point{X: 10, Y: 20},
		color.Color{R: 255, A: 255}, 12, `say "hi"`,
		color.Transparent, false)
	require.NoError(t, err)
	require.Len(t, driver.scripts, 1)
	assert.Contains(t, driver.scripts[0], `\"hi\"`)
}
