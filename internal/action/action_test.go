package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juxbox-org/webtraversallibrary/internal/selector"
	"github.com/juxbox-org/webtraversallibrary/internal/snapshot"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
)

const testMarkup = `<html><body>
<div wtl-uid="1" class="item" wtl-bounds="0,10,100,50">first</div>
<div wtl-uid="2" class="item special">second</div>
<div wtl-uid="3" class="other">third</div>
</body></html>`

func parseTestPage(t *testing.T) *snapshot.Snapshot {
	t.Helper()

	snap, err := snapshot.Parse("https://example.com/page", testMarkup)
	require.NoError(t, err)
	require.Len(t, snap.Elements(), 3)

	return snap
}

func TestSpecializeReturnsNewValue(t *testing.T) {
	original := FillText{element: element{target: TargetSelector(selector.New(".item"))}}

	specialized, err := Specialize(original, Args{"text": "hello"})
	require.NoError(t, err)

	filled, ok := specialized.(FillText)
	require.True(t, ok)
	assert.Equal(t, "hello", filled.Text.Or(""))

	// The original must stay untouched.
	assert.False(t, original.Text.IsSet())
}

func TestSpecializeUnknownField(t *testing.T) {
	_, err := Specialize(Click{}, Args{"volume": 11})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUsage, apperr.CodeOf(err))
}

func TestSpecializeMistypedValue(t *testing.T) {
	_, err := Specialize(FillText{}, Args{"text": 42})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUsage, apperr.CodeOf(err))
}

func TestSpecializeTargetForms(t *testing.T) {
	snap := parseTestPage(t)
	el := snap.Elements()[0]

	t.Run("selector", func(t *testing.T) {
		a, err := Specialize(Click{}, Args{"target": selector.New(".item")})
		require.NoError(t, err)
		assert.Equal(t, ".item", a.(Click).Selector().CSS)
	})

	t.Run("element", func(t *testing.T) {
		a, err := Specialize(Click{}, Args{"target": el})
		require.NoError(t, err)

		bound, ok := a.(Click).Target().Element()
		require.True(t, ok)
		assert.Same(t, el, bound)
	})

	t.Run("mistyped", func(t *testing.T) {
		_, err := Specialize(Click{}, Args{"target": 7})
		require.Error(t, err)
		assert.Equal(t, apperr.CodeUsage, apperr.CodeOf(err))
	})
}

func TestApplySingleUnsetField(t *testing.T) {
	a := FillText{element: element{target: TargetSelector(selector.New(".item"))}}

	specialized, err := Apply(a, "typed")
	require.NoError(t, err)
	assert.Equal(t, "typed", specialized.(FillText).Text.Or(""))
}

func TestApplyAmbiguous(t *testing.T) {
	// SelectFramework has two unset fields, so a positional value cannot
	// be placed.
	_, err := Apply(SelectFramework{}, "x")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUsage, apperr.CodeOf(err))
}

func TestApplyNothingUnset(t *testing.T) {
	a := NewFillText(TargetSelector(selector.New(".item")), "done")

	_, err := Apply(a, "again")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUsage, apperr.CodeOf(err))
}

func TestApplyExplicitZeroValueCountsAsSet(t *testing.T) {
	a, err := Specialize(Wait{}, Args{"seconds": 0.0})
	require.NoError(t, err)

	// The field holds a deliberate zero, so nothing is left to fill.
	_, err = Apply(a, 3.0)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUsage, apperr.CodeOf(err))
}

func TestTransformedToElement(t *testing.T) {
	snap := parseTestPage(t)

	sel := selector.New(".item")
	a := NewClick(TargetSelector(sel))

	bound, err := TransformedToElement(a, snap.Elements())
	require.NoError(t, err)

	el, ok := bound.Target().Element()
	require.True(t, ok)
	assert.Equal(t, 1, el.UID(), "first match in document order wins")
	assert.Equal(t, sel, el.Selector, "binding records the resolving selector")

	// The unresolved original is unchanged.
	_, resolved := a.Target().Element()
	assert.False(t, resolved)
}

func TestTransformedToElementAlreadyResolved(t *testing.T) {
	snap := parseTestPage(t)
	a := NewClick(TargetElement(snap.Elements()[0]))

	_, err := TransformedToElement(a, snap.Elements())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUsage, apperr.CodeOf(err))
}

func TestTransformedToElementNoMatch(t *testing.T) {
	snap := parseTestPage(t)
	a := NewClick(TargetSelector(selector.New(".missing")))

	_, err := TransformedToElement(a, snap.Elements())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeResolution, apperr.CodeOf(err))
}

func TestTargetSelectorOfResolvedElement(t *testing.T) {
	snap := parseTestPage(t)
	el := snap.Elements()[1]

	a := NewClick(TargetElement(el))
	assert.Equal(t, el.Selector, a.Selector())
}
