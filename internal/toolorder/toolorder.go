// Package toolorder implements the "path-order optimiser" external
// collaborator the planner asks for island order and per-island start
// vertices when queueing a polygon batch (spec §4.4
// QueuePolygonsByOptimizer, §6).
package toolorder

import (
	"math"

	"github.com/tpplan/toolpath/internal/geom"
)

// island is one polygon plus the bookkeeping the optimisers share: its
// centre (for ordering heuristics) and, once chosen, its start index.
type island struct {
	polygon    geom.Polygon
	closed     bool
	centre     geom.IntPoint
	startIndex int
}

func centreOf(p geom.Polygon) geom.IntPoint {
	if len(p) == 0 {
		return geom.IntPoint{}
	}
	var sx, sy int64
	for _, v := range p {
		sx += v.X
		sy += v.Y
	}
	n := int64(len(p))
	return geom.IntPoint{X: sx / n, Y: sy / n}
}

// nearestVertexIndex returns the index of the polygon vertex closest to
// from — the shared start-point heuristic both optimisers use once
// they've settled on an island order.
func nearestVertexIndex(from geom.IntPoint, polygon geom.Polygon) int {
	best := 0
	bestDistSq := int64(math.MaxInt64)
	for i, v := range polygon {
		d := v.Sub(from).LengthSq()
		if d < bestDistSq {
			bestDistSq = d
			best = i
		}
	}
	return best
}

// totalRapidDistance sums the straight-line travel distance a cursor
// walking islands in order [0..n) would need, starting from start and
// visiting each island's chosen start vertex.
func totalRapidDistance(start geom.IntPoint, islands []island, order []int) int64 {
	cur := start
	var total int64
	for _, idx := range order {
		p := islands[idx].polygon[islands[idx].startIndex]
		total += p.Sub(cur).Length()
		cur = p
	}
	return total
}
