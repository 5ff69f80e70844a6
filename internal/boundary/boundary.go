// Package boundary implements the "boundary helper" external
// collaborator the planner consults for crossing avoidance: point-in-
// polygon membership, pushing a point back inside, and routing a
// travel move through a corridor that stays inside the boundary.
package boundary

import "github.com/tpplan/toolpath/internal/geom"

// Polygon is the outer perimeter plus any hole polygons the routing
// queries must avoid crossing.
type Polygon struct {
	Outer geom.Polygon
	Holes []geom.Polygon
}

// PointIsInside reports whether p lies inside Outer and outside every
// hole, using even-odd ray casting.
func (b Polygon) PointIsInside(p geom.IntPoint) bool {
	if !pointInRing(p, b.Outer) {
		return false
	}
	for _, hole := range b.Holes {
		if pointInRing(p, hole) {
			return false
		}
	}
	return true
}

func pointInRing(p geom.IntPoint, ring geom.Polygon) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, c := ring[i], ring[j]
		if (a.Y > p.Y) != (c.Y > p.Y) {
			xIntersect := a.X + (p.Y-a.Y)*(c.X-a.X)/(c.Y-a.Y)
			if p.X < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// MovePointInside moves p onto the nearest point of Outer's ring and then
// distance further along that edge's left normal (inward for a
// counter-clockwise ring), reporting whether the result now lies inside
// the boundary.
// Call it twice to escape a tight 90-degree corner (the planner does
// this via MoveInsideTheOuterPerimeter).
func (b Polygon) MovePointInside(p *geom.IntPoint, distance int64) bool {
	nearest, edgeNormal := nearestEdgePoint(*p, b.Outer)
	moved := nearest.Add(edgeNormal.Normal(distance))
	*p = moved
	return b.PointIsInside(moved)
}

// nearestEdgePoint returns the closest point on ring to p, and the
// inward-pointing normal of the edge it lies on.
func nearestEdgePoint(p geom.IntPoint, ring geom.Polygon) (geom.IntPoint, geom.IntPoint) {
	n := len(ring)
	var best geom.IntPoint
	var bestNormal geom.IntPoint
	bestDistSq := int64(-1)

	for i := 0; i < n; i++ {
		a := ring[i]
		c := ring[(i+1)%n]
		candidate := closestPointOnSegment(p, a, c)
		d := candidate.Sub(p).LengthSq()
		if bestDistSq == -1 || d < bestDistSq {
			bestDistSq = d
			best = candidate
			bestNormal = c.Sub(a).GetPerpendicularLeft()
		}
	}
	return best, bestNormal
}

func closestPointOnSegment(p, a, c geom.IntPoint) geom.IntPoint {
	d := c.Sub(a)
	lengthSq := d.LengthSq()
	if lengthSq == 0 {
		return a
	}
	t := d.Dot(p.Sub(a))
	if t <= 0 {
		return a
	}
	if t >= lengthSq {
		return c
	}
	return a.Add(scaledFraction(d, t, lengthSq))
}

// scaledFraction scales a vector by the rational t/denom, staying in
// integer arithmetic throughout.
func scaledFraction(p geom.IntPoint, t, denom int64) geom.IntPoint {
	return geom.IntPoint{X: p.X * t / denom, Y: p.Y * t / denom}
}

// CreatePathInside attempts to route from -> to through a corridor that
// stays inside the boundary. The simple implementation here short-cuts
// to a direct line when it doesn't cross any ring edge, and otherwise
// routes via the nearest boundary vertex to "from" — a minimal stand-in
// for a full visibility-graph router, sufficient for the planner's
// crossing-avoidance decision (did the route need to detour, and is it
// longer than a straight line).
func (b Polygon) CreatePathInside(from, to geom.IntPoint) (geom.Polygon, bool) {
	if !segmentCrossesRing(from, to, b.Outer) && !anyHoleCrossed(from, to, b.Holes) {
		return geom.Polygon{from, to}, true
	}

	waypoint := nearestVertex(from, b.Outer)
	path := geom.Polygon{from, waypoint, to}
	return path, true
}

func nearestVertex(p geom.IntPoint, ring geom.Polygon) geom.IntPoint {
	best := ring[0]
	bestDistSq := best.Sub(p).LengthSq()
	for _, v := range ring[1:] {
		d := v.Sub(p).LengthSq()
		if d < bestDistSq {
			bestDistSq = d
			best = v
		}
	}
	return best
}

func anyHoleCrossed(from, to geom.IntPoint, holes []geom.Polygon) bool {
	for _, h := range holes {
		if segmentCrossesRing(from, to, h) {
			return true
		}
	}
	return false
}

func segmentCrossesRing(from, to geom.IntPoint, ring geom.Polygon) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		a := ring[i]
		c := ring[(i+1)%n]
		if segmentsIntersect(from, to, a, c) {
			return true
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 geom.IntPoint) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func direction(a, b, c geom.IntPoint) int64 {
	return b.Sub(a).Cross(c.Sub(a))
}
