package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juxbox-org/webtraversallibrary/internal/ports"
	"github.com/juxbox-org/webtraversallibrary/pkg/apperr"
)

// fakeNode is an in-memory element tree for the visibility walk.
type fakeNode struct {
	tag       string
	displayed bool
	parent    *fakeNode
	style     string
}

var _ ports.WebElement = (*fakeNode)(nil)

func (n *fakeNode) Click(context.Context) error             { return nil }
func (n *fakeNode) Text(context.Context) (string, error)    { return "", nil }
func (n *fakeNode) TagName(context.Context) (string, error) { return n.tag, nil }

func (n *fakeNode) Attribute(context.Context, string) (string, error) {
	return "", nil
}

func (n *fakeNode) IsDisplayed(context.Context) (bool, error) { return n.displayed, nil }

func (n *fakeNode) Parent(context.Context) (ports.WebElement, error) {
	if n.parent == nil {
		return nil, nil
	}
	return n.parent, nil
}

func (n *fakeNode) SetAttribute(_ context.Context, name, value string) error {
	if name == "style" {
		n.style = value
	}
	return nil
}

func TestRevealElementAlreadyVisible(t *testing.T) {
	el := &fakeNode{tag: "iframe", displayed: true}

	require.NoError(t, RevealElement(context.Background(), el))
	assert.Empty(t, el.style)
}

func TestRevealElementForcesHiddenAncestorChild(t *testing.T) {
	body := &fakeNode{tag: "body", displayed: true}
	outer := &fakeNode{tag: "div", displayed: false, parent: body}
	inner := &fakeNode{tag: "div", displayed: false, parent: outer}
	iframe := &fakeNode{tag: "iframe", displayed: false, parent: inner}

	require.NoError(t, RevealElement(context.Background(), iframe))

	// The subtree root directly under the first visible ancestor is the
	// one that gets forced, not the iframe itself.
	assert.Equal(t, forcedVisibleStyle, outer.style)
	assert.Empty(t, inner.style)
	assert.Empty(t, iframe.style)
}

func TestRevealElementHiddenDirectChildOfBody(t *testing.T) {
	body := &fakeNode{tag: "body", displayed: true}
	iframe := &fakeNode{tag: "iframe", displayed: false, parent: body}

	require.NoError(t, RevealElement(context.Background(), iframe))
	assert.Equal(t, forcedVisibleStyle, iframe.style)
}

func TestRevealElementBodyHidden(t *testing.T) {
	body := &fakeNode{tag: "body", displayed: false}
	div := &fakeNode{tag: "div", displayed: false, parent: body}
	iframe := &fakeNode{tag: "iframe", displayed: false, parent: div}

	err := RevealElement(context.Background(), iframe)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeVisibilityRecovery, apperr.CodeOf(err))
}

func TestRevealElementDetachedNode(t *testing.T) {
	iframe := &fakeNode{tag: "iframe", displayed: false}

	err := RevealElement(context.Background(), iframe)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeVisibilityRecovery, apperr.CodeOf(err))
}
