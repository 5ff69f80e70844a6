package toolorder

import "github.com/tpplan/toolpath/internal/geom"

// NearestNeighbourOptimizer orders islands by repeatedly choosing the
// nearest not-yet-visited island to the running cursor, generalising
// the teacher's sheet-placement nearest-neighbour heuristic from
// placement centres to arbitrary closed/open polygon islands.
type NearestNeighbourOptimizer struct {
	islands    []island
	bestOrder  []int
	startIndex []int
}

// AddPolygons registers one batch of islands to be ordered. closed
// marks whether these polygons are closed loops; it is stored per island,
// and neither the order nor the start index Optimize reports depends on it.
func (o *NearestNeighbourOptimizer) AddPolygons(polygons geom.Polygons, closed bool) {
	for _, p := range polygons {
		if len(p) == 0 {
			continue
		}
		o.islands = append(o.islands, island{polygon: p, closed: closed, centre: centreOf(p)})
	}
}

// Optimize computes the island visiting order and each island's start
// vertex, starting the tour from start.
func (o *NearestNeighbourOptimizer) Optimize(start geom.IntPoint) {
	n := len(o.islands)
	visited := make([]bool, n)
	order := make([]int, 0, n)
	cur := start

	for len(order) < n {
		bestIdx := -1
		var bestDistSq int64
		for i, isl := range o.islands {
			if visited[i] {
				continue
			}
			d := isl.centre.Sub(cur).LengthSq()
			if bestIdx == -1 || d < bestDistSq {
				bestIdx = i
				bestDistSq = d
			}
		}
		visited[bestIdx] = true
		order = append(order, bestIdx)

		si := nearestVertexIndex(cur, o.islands[bestIdx].polygon)
		o.islands[bestIdx].startIndex = si
		cur = o.islands[bestIdx].polygon[si]
	}

	o.bestOrder = order
	o.startIndex = make([]int, n)
	for i, isl := range o.islands {
		o.startIndex[i] = isl.startIndex
	}
}

// BestIslandOrder returns the island visiting order computed by Optimize.
func (o *NearestNeighbourOptimizer) BestIslandOrder() []int {
	return o.bestOrder
}

// StartIndexInPolygon returns, per island (not per order position), the
// vertex index chosen as that island's start point.
func (o *NearestNeighbourOptimizer) StartIndexInPolygon() []int {
	return o.startIndex
}

// Polygon returns the i'th registered island's polygon, so a caller can
// map order/start-index results back onto concrete polygons.
func (o *NearestNeighbourOptimizer) Polygon(i int) geom.Polygon {
	return o.islands[i].polygon
}

// Len reports how many islands have been registered.
func (o *NearestNeighbourOptimizer) Len() int {
	return len(o.islands)
}
