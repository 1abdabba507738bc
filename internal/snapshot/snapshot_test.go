package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juxbox-org/webtraversallibrary/internal/geometry"
	"github.com/juxbox-org/webtraversallibrary/internal/selector"
)

const markup = `<html><body>
<div wtl-uid="1" class="card" wtl-bounds="10,20,300,80">hello <b>world</b></div>
<div class="card"><a wtl-uid="2" href="/next" class="link">next</a></div>
</body></html>`

func parse(t *testing.T) *Snapshot {
	t.Helper()

	snap, err := Parse("https://example.com/start", markup)
	require.NoError(t, err)

	return snap
}

func TestParseStampedElements(t *testing.T) {
	snap := parse(t)

	require.Len(t, snap.Elements(), 2)
	assert.Equal(t, "https://example.com/start", snap.URL())

	first := snap.Elements()[0]
	assert.Equal(t, 1, first.UID())
	assert.Equal(t, "hello world", first.Text())
	assert.Equal(t, "card", first.Attribute("class"))
	assert.Equal(t, geometry.Rect{X: 10, Y: 20, Width: 300, Height: 80}, first.Bounds)

	second := snap.Elements()[1]
	assert.Equal(t, "/next", second.Attribute("href"))
	assert.Equal(t, geometry.Rect{}, second.Bounds, "missing bounds parse as zero")
}

func TestElementSelector(t *testing.T) {
	snap := parse(t)

	first := snap.Elements()[0]
	assert.Equal(t, `[wtl-uid="1"]`, first.Selector.CSS)
	assert.Equal(t, "/html[1]/body[1]/div[1]", first.Selector.XPath)

	second := snap.Elements()[1]
	assert.Equal(t, "/html[1]/body[1]/div[2]/a[1]", second.Selector.XPath)
}

func TestSelect(t *testing.T) {
	snap := parse(t)

	assert.Len(t, snap.Select(".card"), 2)
	assert.Len(t, snap.Select(".link"), 1)
	assert.Empty(t, snap.Select(".missing"))
	assert.Empty(t, snap.Select(""))
}

func TestElementsBySelector(t *testing.T) {
	snap := parse(t)

	// Two nodes carry the class but only one of them is stamped.
	cards := snap.Elements().BySelector(selector.New(".card"))
	require.Len(t, cards, 1)
	assert.Equal(t, 1, cards[0].UID())

	assert.Empty(t, snap.Elements().BySelector(selector.New(".missing")))
	assert.Empty(t, Elements{}.BySelector(selector.New(".card")))
}

func TestElementsByUID(t *testing.T) {
	snap := parse(t)

	el, ok := snap.Elements().ByUID(2)
	require.True(t, ok)
	assert.Equal(t, "next", el.Text())

	_, ok = snap.Elements().ByUID(99)
	assert.False(t, ok)
}

func TestParentStamped(t *testing.T) {
	nested := `<html><body><div wtl-uid="1"><span wtl-uid="2">x</span></div></body></html>`

	snap, err := Parse("https://example.com", nested)
	require.NoError(t, err)
	require.Len(t, snap.Elements(), 2)

	child, ok := snap.Elements().ByUID(2)
	require.True(t, ok)

	parent := child.Parent()
	require.NotNil(t, parent)
	assert.Equal(t, 1, parent.UID())
}

func TestParentDetached(t *testing.T) {
	snap := parse(t)

	link, ok := snap.Elements().ByUID(2)
	require.True(t, ok)

	parent := link.Parent()
	require.NotNil(t, parent)
	assert.Equal(t, UIDUnassigned, parent.UID())
	assert.Equal(t, "/html[1]/body[1]/div[2]", parent.Selector.XPath)
	assert.Equal(t, "card", parent.Attribute("class"))
}

func TestWithSelectorSharesAnnotations(t *testing.T) {
	snap := parse(t)
	el := snap.Elements()[0]

	copied := el.WithSelector(selector.New(".card"))
	assert.Equal(t, ".card", copied.Selector.CSS)
	assert.NotEqual(t, el.Selector, copied.Selector)

	// Scores written through either value are visible through both.
	copied.RawScores["score"] = 0.5
	v, ok := el.RawScore("score")
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
}

func TestNodeXPathSiblingIndexing(t *testing.T) {
	siblings := `<html><body><p wtl-uid="1">a</p><div>x</div><p wtl-uid="2">b</p></body></html>`

	snap, err := Parse("https://example.com", siblings)
	require.NoError(t, err)

	second, ok := snap.Elements().ByUID(2)
	require.True(t, ok)
	assert.Equal(t, "/html[1]/body[1]/p[2]", second.Selector.XPath, "indexing counts same-tag siblings only")
}
