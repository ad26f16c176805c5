package services

import (
	"fmt"
	"strconv"

	"strategymap/domain/geometry"
)

// Bezier is a cubic Bézier curve from P0 to P3 with control points C1 and C2.
type Bezier struct {
	P0 geometry.Point `json:"p0"`
	C1 geometry.Point `json:"c1"`
	C2 geometry.Point `json:"c2"`
	P3 geometry.Point `json:"p3"`
}

// EdgeCurve builds the parent→child connector. Both control points sit at the
// horizontal midpoint so the curve leaves and enters horizontally.
func EdgeCurve(from, to geometry.Point) Bezier {
	dx := (to.X - from.X) / 2
	return Bezier{
		P0: from,
		C1: geometry.Point{X: from.X + dx, Y: from.Y},
		C2: geometry.Point{X: to.X - dx, Y: to.Y},
		P3: to,
	}
}

// At evaluates the curve at t in [0, 1].
func (b Bezier) At(t float64) geometry.Point {
	u := 1 - t
	a := u * u * u
	c1 := 3 * u * u * t
	c2 := 3 * u * t * t
	d := t * t * t
	return geometry.Point{
		X: a*b.P0.X + c1*b.C1.X + c2*b.C2.X + d*b.P3.X,
		Y: a*b.P0.Y + c1*b.C1.Y + c2*b.C2.Y + d*b.P3.Y,
	}
}

// Map applies f to every point of the curve, e.g. a world→screen transform.
func (b Bezier) Map(f func(geometry.Point) geometry.Point) Bezier {
	return Bezier{P0: f(b.P0), C1: f(b.C1), C2: f(b.C2), P3: f(b.P3)}
}

// SVGPath renders the curve as an SVG path "d" attribute.
func (b Bezier) SVGPath() string {
	return fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
		num(b.P0.X), num(b.P0.Y),
		num(b.C1.X), num(b.C1.Y),
		num(b.C2.X), num(b.C2.Y),
		num(b.P3.X), num(b.P3.Y),
	)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Footprint is the rendered card rectangle of a node centred on its anchor.
func Footprint(anchor geometry.Point, width, height float64) geometry.Rect {
	half := geometry.Point{X: width / 2, Y: height / 2}
	return geometry.NewRect(anchor.Sub(half), anchor.Add(half))
}

// EdgeEndpoints returns where a parent→child connector attaches: the right
// edge of the parent card and the left edge of the child card.
func EdgeEndpoints(parent, child geometry.Point, width float64) (geometry.Point, geometry.Point) {
	return geometry.Point{X: parent.X + width/2, Y: parent.Y},
		geometry.Point{X: child.X - width/2, Y: child.Y}
}
