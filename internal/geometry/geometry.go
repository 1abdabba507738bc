// Package geometry holds the plane primitives shared by scrolling and
// canvas drawing operations.
package geometry

type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned bounding box in page coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r Rect) Center() Point {
	return Point{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}
