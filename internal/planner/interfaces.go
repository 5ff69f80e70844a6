// Package planner is the tool-path planning core: it owns a PathQueue,
// accumulates extrusion and travel moves against a set of external
// collaborators, and performs the single-pass emission that turns the
// queue into G-code writer calls.
package planner

import (
	"github.com/tpplan/toolpath/internal/geom"
	"github.com/tpplan/toolpath/internal/overlap"
)

// GCodeWriter is the external G-code writer collaborator (§6): a serial,
// stateful sink the emission pass drives in path order, with no
// reentrancy. gcodewriter.Writer implements this.
type GCodeWriter interface {
	GetPosition() geom.IntPoint
	GetPositionXY() geom.IntPoint
	GetPositionZ() int64
	GetExtruderIndex() int
	CurrentZ() int64
	SetCurrentZ(z int64)
	SwitchExtruder(idx int)
	WriteRetraction()
	WriteFanCommand(pct int)
	WriteComment(text string)
	WriteMove(point geom.IntPoint, speedMmPerS float64, widthUm int64)
	UpdateTotalPrintTime()
}

// BoundaryHelper is the external boundary-crossing collaborator (§6).
// boundary.Polygon implements this.
type BoundaryHelper interface {
	PointIsInside(p geom.IntPoint) bool
	MovePointInside(p *geom.IntPoint, distance int64) bool
	CreatePathInside(from, to geom.IntPoint) (geom.Polygon, bool)
}

// PathOrderOptimizer is the external path-order optimiser collaborator
// (§6): given a polygon batch it reports an island visiting order and
// each island's start vertex. toolorder.NearestNeighbourOptimizer and
// toolorder.GeneticOptimizer both implement this.
type PathOrderOptimizer interface {
	AddPolygons(polygons geom.Polygons, closed bool)
	Optimize(start geom.IntPoint)
	BestIslandOrder() []int
	StartIndexInPolygon() []int
	Polygon(i int) geom.Polygon
	Len() int
}

// PolygonCleaner is the external polygon-cleanup collaborator (§6).
// cleaner.DouglasPeucker implements this; it is the same interface
// overlap.MergePerimeterOverlaps already consumes.
type PolygonCleaner = overlap.PolygonCleaner
