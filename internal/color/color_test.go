package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHex(t *testing.T) {
	c, err := FromHex("#ffb3c7")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 255, G: 179, B: 199, A: 255}, c)

	c, err = FromHex("#10203040")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 16, G: 32, B: 48, A: 64}, c)
}

func TestFromHexInvalid(t *testing.T) {
	for _, s := range []string{"", "#fff", "red", "#gggggg"} {
		_, err := FromHex(s)
		assert.Error(t, err, s)
	}
}

func TestCSS(t *testing.T) {
	assert.Equal(t, "rgba(255,0,0,1.000)", Color{R: 255, A: 255}.CSS())
	assert.Equal(t, "rgba(0,0,0,0.000)", Transparent.CSS())
}
