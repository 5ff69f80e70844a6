package planner

import (
	"testing"

	"github.com/tpplan/toolpath/internal/cleaner"
	"github.com/tpplan/toolpath/internal/geom"
	"github.com/tpplan/toolpath/internal/pathqueue"
)

// move records one WriteMove call.
type move struct {
	point     geom.IntPoint
	speed     float64
	widthUm   int64
}

// fakeWriter is a minimal in-memory stand-in for gcodewriter.Writer,
// recording every call so tests can assert on the emission pass's
// output without parsing G-code text.
type fakeWriter struct {
	position      geom.IntPoint
	extruderIndex int
	currentZ      int64

	moves       []move
	retractions int
	fanCalls    []int
	comments    []string
	switches    []int
}

func (w *fakeWriter) GetPosition() geom.IntPoint   { return w.position }
func (w *fakeWriter) GetPositionXY() geom.IntPoint { return geom.IntPoint{X: w.position.X, Y: w.position.Y} }
func (w *fakeWriter) GetPositionZ() int64          { return w.position.Z }
func (w *fakeWriter) GetExtruderIndex() int        { return w.extruderIndex }
func (w *fakeWriter) CurrentZ() int64              { return w.currentZ }
func (w *fakeWriter) SetCurrentZ(z int64)          { w.currentZ = z }
func (w *fakeWriter) SwitchExtruder(idx int) {
	w.switches = append(w.switches, idx)
	w.extruderIndex = idx
}
func (w *fakeWriter) WriteRetraction()         { w.retractions++ }
func (w *fakeWriter) WriteFanCommand(pct int)  { w.fanCalls = append(w.fanCalls, pct) }
func (w *fakeWriter) WriteComment(text string) { w.comments = append(w.comments, text) }
func (w *fakeWriter) WriteMove(point geom.IntPoint, speedMmPerS float64, widthUm int64) {
	w.moves = append(w.moves, move{point: point, speed: speedMmPerS, widthUm: widthUm})
	w.position = point
}
func (w *fakeWriter) UpdateTotalPrintTime() {}

func rectConfig() pathqueue.Config {
	return pathqueue.Config{Speed: 60, LineWidthUm: 400, GCodeComment: "WALL-OUTER", ClosedLoop: true}
}

func TestScenario1_RectangleNoOverlap(t *testing.T) {
	w := &fakeWriter{}
	p := New(w, 120, 1500, 0.15, true)
	p.SetPolygonCleaner(cleaner.DouglasPeucker{})

	rect := geom.Polygon{{X: 0, Y: 0}, {X: 10000, Y: 0}, {X: 10000, Y: 10000}, {X: 0, Y: 10000}}
	p.QueuePolygon(rect, 0, rectConfig())
	p.WriteQueuedGCode(200, 100, -1)

	extrusions := 0
	for _, m := range w.moves {
		if m.widthUm != 0 {
			extrusions++
		}
	}
	if extrusions != 4 {
		t.Errorf("expected 4 extrusion moves (3 edges + close-back), got %d", extrusions)
	}
}

func TestWriteQueuedGCode_NoCleanerFallsBackToDefaultEmission(t *testing.T) {
	// Thin-line detection is exercised directly against internal/overlap
	// in that package's own tests; here we confirm the planner's overlap-merge step degrades
	// gracefully (returns false, falls through to default emission) when
	// no cleaner is wired.
	w := &fakeWriter{}
	p := New(w, 120, 1500, 1.0, true)

	rect := geom.Polygon{{X: 0, Y: 0}, {X: 10000, Y: 0}, {X: 10000, Y: 10000}, {X: 0, Y: 10000}}
	p.QueuePolygon(rect, 0, rectConfig())
	p.WriteQueuedGCode(200, 100, -1)

	if len(w.moves) == 0 {
		t.Fatalf("expected default emission to still produce moves without a cleaner")
	}
}

func TestQueuePolygon_TwoPointClosedLoopSkipsCloseDuplicate(t *testing.T) {
	w := &fakeWriter{}
	p := New(w, 120, 1500, 1.0, false)

	line := geom.Polygon{{X: 0, Y: 0}, {X: 10000, Y: 0}}
	config := pathqueue.Config{Speed: 60, LineWidthUm: 400, ClosedLoop: true}
	p.QueuePolygon(line, 0, config)

	path := p.Queue().Last()
	if len(path.Points) != 1 {
		t.Errorf("expected no closing duplicate on a 2-point closed polygon, got %d points: %v", len(path.Points), path.Points)
	}
}

func TestSpiralise_RampsZLinearly(t *testing.T) {
	w := &fakeWriter{}
	w.currentZ = 0
	p := New(w, 120, 1500, 1.0, false)

	n := 10
	config := pathqueue.Config{Speed: 60, LineWidthUm: 400, Spiralize: true}
	var path geom.Polygon
	for i := 0; i < n; i++ {
		path = append(path, geom.IntPoint{X: int64(i) * 1000, Y: 0})
	}
	p.QueuePolygon(path, 0, config)
	p.WriteQueuedGCode(200, 100, -1)

	moves := w.moves
	if len(moves) != n-1 {
		// QueuePolygon's open-polygon forward walk emits n-1 extrusion
		// moves when startIndex == 0 (the first vertex is only a travel
		// target, not re-emitted).
		t.Fatalf("expected %d spiral moves, got %d", n-1, len(moves))
	}
	if moves[0].point.Z < 0 || moves[len(moves)-1].point.Z > 200 {
		t.Errorf("expected Z to ramp within [0,200], got first=%d last=%d", moves[0].point.Z, moves[len(moves)-1].point.Z)
	}
	if moves[len(moves)-1].point.Z <= moves[0].point.Z {
		t.Errorf("expected Z to rise across the spiral, got first=%d last=%d", moves[0].point.Z, moves[len(moves)-1].point.Z)
	}
}

func TestTrimPerimeter_FullRatioIsNoOp(t *testing.T) {
	path := &pathqueue.Path{
		Config: pathqueue.Config{LineWidthUm: 400},
		Points: geom.Polygon{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 2000, Y: 0}},
	}
	trimmed := TrimPerimeter(path, 1.0)
	if len(trimmed.Points) != len(path.Points) {
		t.Errorf("expected ratio=1.0 to leave the path unchanged, got %d points, want %d", len(trimmed.Points), len(path.Points))
	}
	for i := range path.Points {
		if trimmed.Points[i] != path.Points[i] {
			t.Errorf("expected point %d unchanged, got %v want %v", i, trimmed.Points[i], path.Points[i])
		}
	}
}

func TestTrimPerimeter_DoesNotMutateOriginal(t *testing.T) {
	path := &pathqueue.Path{
		Config: pathqueue.Config{LineWidthUm: 1000},
		Points: geom.Polygon{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 2000, Y: 0}},
	}
	original := make(geom.Polygon, len(path.Points))
	copy(original, path.Points)

	_ = TrimPerimeter(path, 0.0)

	for i := range path.Points {
		if path.Points[i] != original[i] {
			t.Errorf("original path mutated at index %d: got %v want %v", i, path.Points[i], original[i])
		}
	}
}

func TestForceMinimumLayerTime_SlowsExtrusionDown(t *testing.T) {
	w := &fakeWriter{}
	p := New(w, 120, 1500, 1.0, false)

	extrudeConfig := pathqueue.Config{Speed: 60, LineWidthUm: 400, GCodeComment: "WALL-OUTER"}
	travelConfig := pathqueue.Config{Speed: 120}

	extrudePath := p.Queue().GetLatestPathWithConfig(extrudeConfig, 0)
	extrudePath.Append(geom.IntPoint{X: 2000, Y: 0})
	p.Queue().ForceNewPathStart()

	travelPath := p.Queue().GetLatestPathWithConfig(travelConfig, 0)
	travelPath.Append(geom.IntPoint{X: 3000, Y: 0})

	total := p.ForceMinimumLayerTime(10, 5)
	if total <= 0 {
		t.Fatalf("expected a positive total print time, got %f", total)
	}
	if p.GetExtrudeSpeedFactor() >= 100 {
		t.Errorf("expected extrude speed factor to drop below 100 to hit the minimum layer time, got %f", p.GetExtrudeSpeedFactor())
	}
}

func TestForceMinimumLayerTime_FastLayerLeavesFactorAlone(t *testing.T) {
	w := &fakeWriter{}
	p := New(w, 120, 1500, 1.0, false)

	extrudeConfig := pathqueue.Config{Speed: 60, LineWidthUm: 400, GCodeComment: "WALL-OUTER"}
	path := p.Queue().GetLatestPathWithConfig(extrudeConfig, 0)
	path.Append(geom.IntPoint{X: 100, Y: 0})

	p.ForceMinimumLayerTime(0.001, 5)
	if p.GetExtrudeSpeedFactor() != 100 {
		t.Errorf("expected a fast layer to leave the speed factor at 100, got %f", p.GetExtrudeSpeedFactor())
	}
}

func TestMoveInsideTheOuterPerimeter_NoBoundaryIsNoOp(t *testing.T) {
	w := &fakeWriter{}
	p := New(w, 120, 1500, 1.0, false)
	p.MoveInsideTheOuterPerimeter(1000)
	if len(w.moves) != 0 {
		t.Errorf("expected no moves without a boundary helper, got %d", len(w.moves))
	}
}
