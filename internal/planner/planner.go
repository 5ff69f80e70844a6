package planner

import (
	"log"

	"github.com/google/uuid"

	"github.com/tpplan/toolpath/internal/geom"
	"github.com/tpplan/toolpath/internal/pathqueue"
)

// NewJobID returns a fresh job identifier, the way model.NewPart stamps
// every part with a uuid.New() identity in the teacher.
func NewJobID() string {
	return uuid.New().String()
}

// Planner is single-threaded and synchronous: it owns its PathQueue
// exclusively from construction through emission, and the external
// writer is a serial stateful sink with no reentrancy (§5).
type Planner struct {
	writer GCodeWriter
	queue  pathqueue.Queue

	boundary       BoundaryHelper
	avoidCrossing  bool
	cleaner        PolygonCleaner
	forceRetraction bool
	alwaysRetract  bool

	travelSpeed                  float64
	retractionMinimumDistanceUm  int64
	perimeterStartEndOverlapRatio float64
	mergeOverlappingLines        bool

	extruderIndex      int
	extrudeSpeedFactor float64 // percent, >= 1
	travelSpeedFactor  float64 // percent, >= 1

	lastPosition   geom.IntPoint
	totalPrintTime float64
}

// New constructs a Planner. travelSpeed is mm/s; retractionMinimumDistanceUm
// gates when a travel gets a retraction; perimeterStartEndOverlap is the
// ratio TrimPerimeter subtracts from a closed perimeter's start/end overlap
// before the overlap-merge emission step runs.
func New(writer GCodeWriter, travelSpeed float64, retractionMinimumDistanceUm int64, perimeterStartEndOverlap float64, mergeOverlappingLines bool) *Planner {
	return &Planner{
		writer:                        writer,
		travelSpeed:                   travelSpeed,
		retractionMinimumDistanceUm:   retractionMinimumDistanceUm,
		perimeterStartEndOverlapRatio: perimeterStartEndOverlap,
		mergeOverlappingLines:         mergeOverlappingLines,
		extrudeSpeedFactor:            100,
		travelSpeedFactor:             100,
	}
}

// SetBoundaryHelper wires the boundary-crossing collaborator. A nil
// helper (the default) makes QueueTravel fall back to the alwaysRetract
// distance gate and MoveInsideTheOuterPerimeter a no-op.
func (p *Planner) SetBoundaryHelper(helper BoundaryHelper) {
	p.boundary = helper
}

// SetPolygonCleaner wires the polygon-cleanup collaborator the overlap-
// merge emission step needs. Without one, overlap merging never runs
// even if mergeOverlappingLines is set.
func (p *Planner) SetPolygonCleaner(c PolygonCleaner) {
	p.cleaner = c
}

// SetOuterPerimetersToAvoidCrossing toggles whether QueueTravel consults
// the boundary helper at all (it still requires one to be set via
// SetBoundaryHelper).
func (p *Planner) SetOuterPerimetersToAvoidCrossing(avoid bool) {
	p.avoidCrossing = avoid
}

// ForceRetract marks the next QueueTravel call to retract unconditionally.
func (p *Planner) ForceRetract() {
	p.forceRetraction = true
}

// SetAlwaysRetract sets the fallback retraction gate used when no
// boundary helper is configured.
func (p *Planner) SetAlwaysRetract(always bool) {
	p.alwaysRetract = always
}

// GetExtruder returns the extruder index new paths are created under.
func (p *Planner) GetExtruder() int { return p.extruderIndex }

// SetExtruder changes the extruder index new paths are created under.
func (p *Planner) SetExtruder(idx int) { p.extruderIndex = idx }

// GetExtrudeSpeedFactor returns the current extrusion speed percentage.
func (p *Planner) GetExtrudeSpeedFactor() float64 { return p.extrudeSpeedFactor }

// SetExtrudeSpeedFactor sets the extrusion speed percentage; values below
// 1 are clamped, preserving the "always >= 1" invariant (§8).
func (p *Planner) SetExtrudeSpeedFactor(factor float64) {
	if factor < 1 {
		factor = 1
	}
	p.extrudeSpeedFactor = factor
}

// GetTravelSpeedFactor returns the current travel speed percentage.
func (p *Planner) GetTravelSpeedFactor() float64 { return p.travelSpeedFactor }

// SetTravelSpeedFactor sets the travel speed percentage; values below 1
// are clamped.
func (p *Planner) SetTravelSpeedFactor(factor float64) {
	if factor < 1 {
		factor = 1
	}
	p.travelSpeedFactor = factor
}

// TotalPrintTime returns the print time computed by the last
// ForceMinimumLayerTime call.
func (p *Planner) TotalPrintTime() float64 { return p.totalPrintTime }

// Queue exposes the underlying queue for inspection (tests, reporting).
func (p *Planner) Queue() *pathqueue.Queue { return &p.queue }

// samePlanar compares X/Y only, ignoring Z — the "starting vertex
// differs from LastPosition (planar)" test in QueuePolygon.
func samePlanar(a, b geom.IntPoint) bool {
	return a.X == b.X && a.Y == b.Y
}

func polygonLength(path geom.Polygon) int64 {
	var total int64
	for i := 1; i < len(path); i++ {
		total += path[i].Sub(path[i-1]).Length()
	}
	return total
}

// QueueExtrusionMove appends dst (at the writer's current Z, keeping
// dst's Width annotation) to the current-config path.
func (p *Planner) QueueExtrusionMove(dst geom.IntPoint, config pathqueue.Config) {
	path := p.queue.GetLatestPathWithConfig(config, p.extruderIndex)
	point := geom.IntPoint{X: dst.X, Y: dst.Y, Z: p.writer.CurrentZ(), Width: dst.Width}
	path.Append(point)
	p.lastPosition = point
}

// innerWaypoints strips the from/to endpoints a boundary route carries,
// leaving only the interior detour points QueueTravel appends before the
// final move to dst.
func innerWaypoints(route geom.Polygon) geom.Polygon {
	if len(route) <= 2 {
		return nil
	}
	return route[1 : len(route)-1]
}

// QueueTravel appends a non-extruding move to dst, deciding whether it
// needs a retraction and, if a boundary helper is active, routing through
// waypoints that stay inside the boundary (§4.4).
func (p *Planner) QueueTravel(dst geom.IntPoint) {
	travelConfig := pathqueue.Config{Speed: p.travelSpeed}
	path := p.queue.GetLatestPathWithConfig(travelConfig, p.extruderIndex)

	switch {
	case p.forceRetraction:
		p.forceRetraction = false
		path.Retract = true

	case p.boundary != nil && p.avoidCrossing:
		route, ok := p.boundary.CreatePathInside(p.lastPosition, dst)
		if ok {
			for _, wp := range innerWaypoints(route) {
				point := geom.IntPoint{X: wp.X, Y: wp.Y, Z: p.writer.CurrentZ()}
				path.Append(point)
			}
			if polygonLength(route) > p.retractionMinimumDistanceUm {
				path.Retract = true
			}
		} else {
			log.Printf("planner: no interior route found to %v, falling back to straight-line travel", dst)
			if p.lastPosition.Sub(dst).Length() > p.retractionMinimumDistanceUm {
				path.Retract = true
			}
		}

	case p.alwaysRetract:
		if p.lastPosition.Sub(dst).Length() > p.retractionMinimumDistanceUm {
			path.Retract = true
		}
	}

	final := geom.IntPoint{X: dst.X, Y: dst.Y, Z: p.writer.CurrentZ()}
	path.Append(final)
	p.lastPosition = final
}

// QueuePolygon queues one polygon under config, starting from
// polygon[startIndex]. It no-ops on an empty polygon (§7).
func (p *Planner) QueuePolygon(polygon geom.Polygon, startIndex int, config pathqueue.Config) {
	n := len(polygon)
	if n == 0 {
		return
	}

	start := polygon[startIndex]
	if !config.Spiralize && !samePlanar(p.lastPosition, start) {
		p.QueueTravel(start)
	}

	if config.ClosedLoop {
		for i := 1; i < n; i++ {
			idx := (startIndex + i) % n
			p.QueueExtrusionMove(polygon[idx], config)
		}
		if n > 2 {
			p.QueueExtrusionMove(polygon[startIndex], config)
		}
		return
	}

	if startIndex == 0 {
		for i := 1; i < n; i++ {
			p.QueueExtrusionMove(polygon[i], config)
		}
		return
	}

	for i := n - 1; i >= 1; i-- {
		p.QueueExtrusionMove(polygon[i], config)
	}
}

// QueuePolygons queues each polygon in order under config, starting
// every one from its own vertex 0.
func (p *Planner) QueuePolygons(polygons geom.Polygons, config pathqueue.Config) {
	for _, poly := range polygons {
		p.QueuePolygon(poly, 0, config)
	}
}

// QueuePolygonsByOptimizer hands the batch to optimizer, then queues
// each polygon in the reported island order from its reported start
// index. No-ops on an empty batch (§7).
func (p *Planner) QueuePolygonsByOptimizer(optimizer PathOrderOptimizer, polygons geom.Polygons, closed bool, config pathqueue.Config) {
	if len(polygons) == 0 {
		return
	}

	optimizer.AddPolygons(polygons, closed)
	optimizer.Optimize(p.lastPosition)

	order := optimizer.BestIslandOrder()
	starts := optimizer.StartIndexInPolygon()
	for _, idx := range order {
		p.QueuePolygon(optimizer.Polygon(idx), starts[idx], config)
	}
}

// MoveInsideTheOuterPerimeter pushes LastPosition back inside the
// boundary (two nudges, to escape a tight 90-degree corner) when it
// currently lies outside, then travels there and forces a new path start
// so a pending retraction is emitted after this correction. No-ops when
// already inside or when no boundary helper is configured (§7).
func (p *Planner) MoveInsideTheOuterPerimeter(distance int64) {
	if p.boundary == nil || p.boundary.PointIsInside(p.lastPosition) {
		return
	}

	moved := p.lastPosition
	inside := p.boundary.MovePointInside(&moved, distance)
	if !inside {
		inside = p.boundary.MovePointInside(&moved, distance)
	}
	if !inside {
		return
	}

	p.QueueTravel(moved)
	p.queue.ForceNewPathStart()
}
