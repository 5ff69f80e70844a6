package boundary

import (
	"testing"

	"github.com/tpplan/toolpath/internal/geom"
)

func square() Polygon {
	return Polygon{Outer: geom.Polygon{
		{X: 0, Y: 0}, {X: 10000, Y: 0}, {X: 10000, Y: 10000}, {X: 0, Y: 10000},
	}}
}

func TestPointIsInside_Inside(t *testing.T) {
	b := square()
	if !b.PointIsInside(geom.IntPoint{X: 5000, Y: 5000}) {
		t.Errorf("expected centre point to be inside")
	}
}

func TestPointIsInside_Outside(t *testing.T) {
	b := square()
	if b.PointIsInside(geom.IntPoint{X: 20000, Y: 5000}) {
		t.Errorf("expected far point to be outside")
	}
}

func TestPointIsInside_RejectsInsideHole(t *testing.T) {
	b := Polygon{
		Outer: geom.Polygon{{X: 0, Y: 0}, {X: 10000, Y: 0}, {X: 10000, Y: 10000}, {X: 0, Y: 10000}},
		Holes: []geom.Polygon{
			{{X: 4000, Y: 4000}, {X: 6000, Y: 4000}, {X: 6000, Y: 6000}, {X: 4000, Y: 6000}},
		},
	}
	if b.PointIsInside(geom.IntPoint{X: 5000, Y: 5000}) {
		t.Errorf("expected point inside a hole to be reported outside the boundary")
	}
}

func TestCreatePathInside_StraightLineWhenUnobstructed(t *testing.T) {
	b := square()
	path, ok := b.CreatePathInside(geom.IntPoint{X: 1000, Y: 1000}, geom.IntPoint{X: 9000, Y: 9000})
	if !ok {
		t.Fatalf("expected a path to be found")
	}
	if len(path) != 2 {
		t.Errorf("expected a direct 2-point path when unobstructed, got %d points", len(path))
	}
}

func TestMovePointInside_OutsidePointMovesTowardBoundary(t *testing.T) {
	b := square()
	p := geom.IntPoint{X: 10500, Y: 5000}
	inside := b.MovePointInside(&p, 1000)
	if !inside {
		t.Errorf("expected the point to be moved inside the boundary")
	}
	if p.X >= 10000 {
		t.Errorf("expected the point to be moved inward of the right edge, got X=%d", p.X)
	}
}
