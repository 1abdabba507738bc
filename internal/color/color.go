// Package color is the RGBA color value passed to the highlight and
// annotation canvas operations.
package color

import "fmt"

type Color struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// Transparent is the zero color, used as the default annotation background.
var Transparent = Color{}

// FromHex parses "#RRGGBB" or "#RRGGBBAA". The alpha defaults to 255.
func FromHex(s string) (Color, error) {
	var c Color

	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		c.A = 255
	case 9:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A); err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
	default:
		return Color{}, fmt.Errorf("parse color %q: want #RRGGBB or #RRGGBBAA", s)
	}

	return c, nil
}

// MustHex is FromHex for compile-time constants; it panics on bad input.
func MustHex(s string) Color {
	c, err := FromHex(s)
	if err != nil {
		panic(err)
	}

	return c
}

// CSS renders the color as an rgba() expression.
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R, c.G, c.B, float64(c.A)/255)
}
