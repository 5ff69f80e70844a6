package layerio

import (
	"testing"

	"github.com/tpplan/toolpath/internal/geom"
)

func TestMmToUm(t *testing.T) {
	cases := []struct {
		mm   float64
		want int64
	}{
		{0, 0},
		{1, 1000},
		{12.345, 12345},
		{-2.5, -2500},
	}
	for _, c := range cases {
		if got := mmToUm(c.mm); got != c.want {
			t.Errorf("mmToUm(%v) = %d, want %d", c.mm, got, c.want)
		}
	}
}

func umSquare(sideUm int64) []edge {
	a := geom.IntPoint{X: 0, Y: 0}
	b := geom.IntPoint{X: sideUm, Y: 0}
	c := geom.IntPoint{X: sideUm, Y: sideUm}
	d := geom.IntPoint{X: 0, Y: sideUm}
	return []edge{
		{a: a, b: b},
		{a: b, b: c},
		{a: c, b: d},
		{a: d, b: a},
	}
}

func TestChainEdges_ClosesASquare(t *testing.T) {
	rings := chainEdges(umSquare(10000), 10)
	if len(rings) != 1 {
		t.Fatalf("expected 1 closed ring, got %d", len(rings))
	}
	if len(rings[0]) != 4 {
		t.Errorf("expected the closing duplicate stripped to 4 points, got %d", len(rings[0]))
	}
}

func TestChainEdges_LeavesOpenChainUnclosed(t *testing.T) {
	edges := umSquare(10000)[:2]
	rings := chainEdges(edges, 10)
	if len(rings) != 0 {
		t.Errorf("expected an open 2-edge chain to produce no closed ring, got %d", len(rings))
	}
}

func TestChainEdges_SnapsWithinToleranceGrid(t *testing.T) {
	edges := []edge{
		{a: geom.IntPoint{X: 0, Y: 0}, b: geom.IntPoint{X: 10000, Y: 0}},
		// endpoint offset by 4um, inside a 10um tolerance grid cell
		{a: geom.IntPoint{X: 10004, Y: 0}, b: geom.IntPoint{X: 10000, Y: 10000}},
		{a: geom.IntPoint{X: 10000, Y: 10000}, b: geom.IntPoint{X: 0, Y: 10000}},
		{a: geom.IntPoint{X: 0, Y: 10000}, b: geom.IntPoint{X: 0, Y: 0}},
	}

	rings := chainEdges(edges, 10)
	if len(rings) != 1 {
		t.Fatalf("expected the near-matching endpoints to still chain into 1 ring, got %d", len(rings))
	}
}

func TestRingArea_UnitSquare(t *testing.T) {
	square := geom.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	if area := ringArea(square); area != 100 {
		t.Errorf("expected area 100, got %v", area)
	}
}

func TestRingBounds(t *testing.T) {
	ring := geom.Polygon{{X: 1, Y: 2}, {X: -3, Y: 5}, {X: 4, Y: -1}}
	lo, hi := ringBounds(ring)
	if lo.X != -3 || lo.Y != -1 || hi.X != 4 || hi.Y != 5 {
		t.Errorf("got bounds lo=%v hi=%v", lo, hi)
	}
}

func TestBulgeArc_SemicircleMidpointIsPerpendicularToChord(t *testing.T) {
	// a bulge of 1.0 is a semicircle: the chord is the diameter, so the
	// center sits exactly on the chord's midpoint and the sampled arc's
	// midpoint sits one radius away from it, perpendicular to the chord.
	p1 := geom.IntPoint{X: 0, Y: 0}
	p2 := geom.IntPoint{X: 10000, Y: 0}
	frame := bulgeArc(p1, p2, 1.0)

	if diff := frame.centerX - 5000; diff < -1 || diff > 1 {
		t.Errorf("expected arc center X near 5000um, got %v", frame.centerX)
	}
	if diff := frame.centerY; diff < -1 || diff > 1 {
		t.Errorf("expected arc center Y near 0um, got %v", frame.centerY)
	}

	samples := frame.sample(2)
	mid := samples[1]

	const tolUm = 50
	if diff := mid.X - 5000; diff < -tolUm || diff > tolUm {
		t.Errorf("expected midpoint X near 5000um, got %d", mid.X)
	}
	if diff := mid.Y + 5000; diff < -tolUm || diff > tolUm {
		t.Errorf("expected midpoint Y near -5000um, got %d", mid.Y)
	}
}
