// Package geometry maps between screen space (pointer pixels on the input
// surface) and world space (the canvas coordinate system nodes live in).
package geometry

import "math"

// Point is a 2D coordinate. Whether it is a screen or world point depends on
// where it came from.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale multiplies both components by k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Div divides both components by k.
func (p Point) Div(k float64) Point {
	return Point{X: p.X / k, Y: p.Y / k}
}

// ApproxEqual reports whether p and q are within eps on both axes.
func (p Point) ApproxEqual(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// IsFinite reports whether neither component is NaN or infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// ToWorld converts a screen point into world space: (screen - pan) / scale.
func ToWorld(screen, pan Point, scale float64) Point {
	return screen.Sub(pan).Div(scale)
}

// ToScreen converts a world point into screen space: world*scale + pan.
func ToScreen(world, pan Point, scale float64) Point {
	return world.Scale(scale).Add(pan)
}

// Viewport is the visible window onto the canvas.
type Viewport struct {
	Pan    Point
	Scale  float64
	Width  float64
	Height float64
}

// NewViewport returns a viewport of the given surface size with no pan and
// unit scale.
func NewViewport(width, height float64) Viewport {
	return Viewport{Scale: 1, Width: width, Height: height}
}

// ToWorld converts a screen point using this viewport's pan and scale.
func (v Viewport) ToWorld(screen Point) Point {
	return ToWorld(screen, v.Pan, v.scale())
}

// ToScreen converts a world point using this viewport's pan and scale.
func (v Viewport) ToScreen(world Point) Point {
	return ToScreen(world, v.Pan, v.scale())
}

// Center returns the world-space point at the middle of the visible surface.
func (v Viewport) Center() Point {
	return v.ToWorld(Point{X: v.Width / 2, Y: v.Height / 2})
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}
