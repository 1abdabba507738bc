package patches

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juxbox-org/webtraversallibrary/internal/selector"
	"github.com/juxbox-org/webtraversallibrary/internal/snapshot"
)

const pageMarkup = `<html><body>
<button wtl-uid="1" class="btn">one</button>
<button wtl-uid="2" class="btn">two</button>
<button wtl-uid="3" class="btn submit">three</button>
</body></html>`

func parsePage(t *testing.T) *snapshot.Snapshot {
	t.Helper()

	snap, err := snapshot.Parse("https://example.com", pageMarkup)
	require.NoError(t, err)
	require.Len(t, snap.Elements(), 3)

	return snap
}

func TestCheckMostSpecificWins(t *testing.T) {
	snap := parsePage(t)

	o := New()
	o.Add(selector.New(".btn"), "generic")
	o.Add(selector.New(".submit"), "specific")

	// The submit button is hit by both rules; the narrower match set
	// decides.
	v, ok := o.Check(snap, snap.Elements()[2])
	require.True(t, ok)
	assert.Equal(t, "specific", v)

	// The others only match the broad rule.
	v, ok = o.Check(snap, snap.Elements()[0])
	require.True(t, ok)
	assert.Equal(t, "generic", v)
}

func TestCheckRegistrationOrderBreaksTies(t *testing.T) {
	snap := parsePage(t)

	o := New()
	o.Add(selector.New("button"), "first")
	o.Add(selector.New(".btn"), "second")

	// Both rules match all three buttons; earlier registration wins.
	v, ok := o.Check(snap, snap.Elements()[1])
	require.True(t, ok)
	assert.Equal(t, "first", v)
}

func TestCheckDefault(t *testing.T) {
	snap := parsePage(t)

	o := New()
	o.Add(selector.New(".missing"), "never")

	_, ok := o.Check(snap, snap.Elements()[0])
	assert.False(t, ok)

	o.SetDefault("fallback")

	v, ok := o.Check(snap, snap.Elements()[0])
	require.True(t, ok)
	assert.Equal(t, "fallback", v)
}

func TestAddReplacesExistingRule(t *testing.T) {
	snap := parsePage(t)

	o := New()
	o.Add(selector.New(".btn"), "old")
	o.Add(selector.New(".btn"), "new")

	assert.Equal(t, 1, o.Len())

	v, ok := o.Check(snap, snap.Elements()[0])
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestContains(t *testing.T) {
	o := New()
	o.Add(selector.New(".btn"), "x")

	assert.True(t, o.Contains(selector.New(".btn")))
	assert.False(t, o.Contains(selector.New(".other")))
}
