// Package geom provides the fixed-point 2D/3D vector primitives the
// tool-path core is built on: an IntPoint with an extra extrusion-width
// channel, and the arithmetic the segment and overlap packages need.
package geom

import (
	"fmt"
	"math"
)

// IntPoint is a fixed-point vector in micrometres. Z carries layer height
// for points that have been lifted back onto a print plane; Width carries
// an extrusion-width override for a single point (0 means "use the path
// config width"). Equality for segment-level logic is componentwise on
// X/Y only — Z and Width are annotations, not position.
type IntPoint struct {
	X, Y, Z int64
	Width   int64
}

// New returns a planar point with Z and Width left at zero.
func New(x, y int64) IntPoint {
	return IntPoint{X: x, Y: y}
}

// Equal reports whether p and o occupy the same planar position.
func (p IntPoint) Equal(o IntPoint) bool {
	return p.X == o.X && p.Y == o.Y
}

func (p IntPoint) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns p+o on X/Y; Z is copied from p and Width is not carried.
func (p IntPoint) Add(o IntPoint) IntPoint {
	return IntPoint{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z}
}

// Sub returns p-o on X/Y; Z is copied from p and Width is not carried.
func (p IntPoint) Sub(o IntPoint) IntPoint {
	return IntPoint{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z}
}

// Scale multiplies the planar components by f (integer scale).
func (p IntPoint) Scale(f int64) IntPoint {
	return IntPoint{X: p.X * f, Y: p.Y * f, Z: p.Z}
}

// Mid returns the integer-truncated midpoint of p and o.
func (p IntPoint) Mid(o IntPoint) IntPoint {
	return IntPoint{X: (p.X + o.X) / 2, Y: (p.Y + o.Y) / 2}
}

// Dot returns the planar dot product.
func (p IntPoint) Dot(o IntPoint) int64 {
	return p.X*o.X + p.Y*o.Y
}

// Cross returns the planar (2D) cross product p x o.
func (p IntPoint) Cross(o IntPoint) int64 {
	return p.X*o.Y - p.Y*o.X
}

// LengthSq returns the squared Euclidean length, avoiding a sqrt.
func (p IntPoint) LengthSq() int64 {
	return p.X*p.X + p.Y*p.Y
}

// Length returns the Euclidean length in micrometres.
func (p IntPoint) Length() int64 {
	return int64(math.Sqrt(float64(p.LengthSq())))
}

// LengthMm returns the Euclidean length in millimetres.
func (p IntPoint) LengthMm() float64 {
	return float64(p.Length()) / 1000.0
}

// ShorterThan reports whether p's length is strictly less than d,
// comparing squared magnitudes to avoid a square root.
func (p IntPoint) ShorterThan(d int64) bool {
	return p.LengthSq() < d*d
}

// LongerThan reports whether p's length is strictly greater than d.
func (p IntPoint) LongerThan(d int64) bool {
	return p.LengthSq() > d*d
}

// GetPerpendicularLeft returns p rotated 90 degrees counter-clockwise,
// unnormalised (same length as p).
func (p IntPoint) GetPerpendicularLeft() IntPoint {
	return IntPoint{X: -p.Y, Y: p.X}
}

// GetPerpendicularRight returns p rotated 90 degrees clockwise,
// unnormalised (same length as p).
func (p IntPoint) GetPerpendicularRight() IntPoint {
	return IntPoint{X: p.Y, Y: -p.X}
}

// Normal returns a vector of length d along the same direction as p.
// Returns the zero vector if p has zero length.
func (p IntPoint) Normal(d int64) IntPoint {
	l := p.Length()
	if l == 0 {
		return IntPoint{}
	}
	return IntPoint{X: p.X * d / l, Y: p.Y * d / l}
}

// Polygon is an ordered sequence of points. A polygon may be closed
// (the last point implicitly connects to the first) or open, depending
// on context.
type Polygon []IntPoint

// Polygons is an ordered sequence of polygons, e.g. one outer wall plus
// its holes, or a batch of separate islands.
type Polygons []Polygon

// BoundingBox returns the min and max corners of the polygon.
func (poly Polygon) BoundingBox() (min, max IntPoint) {
	if len(poly) == 0 {
		return IntPoint{}, IntPoint{}
	}
	min, max = poly[0], poly[0]
	for _, p := range poly[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}
