package cleaner

import (
	"testing"

	"github.com/tpplan/toolpath/internal/geom"
)

func pt(x, y int64) geom.IntPoint { return geom.IntPoint{X: x, Y: y} }

func TestCleanPolygons_DropsNearCollinearVertex(t *testing.T) {
	ring := geom.Polygon{pt(0, 0), pt(5000, 10), pt(10000, 0), pt(10000, 10000), pt(0, 10000)}
	c := DouglasPeucker{}
	out := c.CleanPolygons(geom.Polygons{ring}, 50)
	if len(out) != 1 {
		t.Fatalf("expected one polygon, got %d", len(out))
	}
	for _, v := range out[0] {
		if v.Equal(pt(5000, 10)) {
			t.Errorf("expected the near-collinear vertex to be dropped, got %v", out[0])
		}
	}
	if len(out[0]) != 4 {
		t.Errorf("expected 4 vertices after simplification, got %d: %v", len(out[0]), out[0])
	}
}

func TestCleanPolygons_KeepsSignificantVertex(t *testing.T) {
	ring := geom.Polygon{pt(0, 0), pt(5000, 5000), pt(10000, 0), pt(10000, 10000), pt(0, 10000)}
	c := DouglasPeucker{}
	out := c.CleanPolygons(geom.Polygons{ring}, 50)
	found := false
	for _, v := range out[0] {
		if v.Equal(pt(5000, 5000)) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a significant vertex far from the chord to survive, got %v", out[0])
	}
}

func TestCleanPolygons_RemovesDuplicateVertices(t *testing.T) {
	ring := geom.Polygon{pt(0, 0), pt(0, 0), pt(10000, 0), pt(10000, 10000), pt(0, 10000)}
	c := DouglasPeucker{}
	out := c.CleanPolygons(geom.Polygons{ring}, 50)
	if len(out[0]) != 4 {
		t.Errorf("expected duplicate vertex removed, got %d vertices: %v", len(out[0]), out[0])
	}
}

func TestCleanPolygons_ZeroToleranceIsNoOp(t *testing.T) {
	ring := geom.Polygon{pt(0, 0), pt(5000, 10), pt(10000, 0)}
	c := DouglasPeucker{}
	out := c.CleanPolygons(geom.Polygons{ring}, 0)
	if len(out[0]) != len(ring) {
		t.Errorf("expected zero tolerance to leave the ring untouched, got %v", out[0])
	}
}

func TestCleanPolygons_DropsDegenerateRing(t *testing.T) {
	ring := geom.Polygon{pt(0, 0), pt(10, 0)}
	c := DouglasPeucker{}
	out := c.CleanPolygons(geom.Polygons{ring}, 50)
	if len(out) != 0 {
		t.Errorf("expected a 2-point ring to be dropped entirely, got %v", out)
	}
}
