// Package cleaner implements the "polygon cleaner" external collaborator
// MergePerimeterOverlaps consults before segmenting a perimeter, removing
// near-collinear and near-duplicate vertices the way a clipper library's
// simplify pass does.
package cleaner

import "github.com/tpplan/toolpath/internal/geom"

// DouglasPeucker simplifies closed and open polygon rings by recursively
// dropping vertices that lie within toleranceUm of the chord joining the
// kept endpoints of their range. The distance is the integer cross
// product divided by the chord length in floating point.
type DouglasPeucker struct{}

// CleanPolygons implements overlap.PolygonCleaner.
func (DouglasPeucker) CleanPolygons(polygons geom.Polygons, toleranceUm int64) geom.Polygons {
	if toleranceUm <= 0 {
		return polygons
	}
	out := make(geom.Polygons, 0, len(polygons))
	for _, p := range polygons {
		simplified := simplifyRing(p, toleranceUm)
		if len(simplified) >= 3 {
			out = append(out, simplified)
		}
	}
	return out
}

func simplifyRing(ring geom.Polygon, toleranceUm int64) geom.Polygon {
	n := len(ring)
	if n < 3 {
		return ring
	}

	deduped := make(geom.Polygon, 0, n)
	for _, v := range ring {
		if len(deduped) == 0 || !deduped[len(deduped)-1].Equal(v) {
			deduped = append(deduped, v)
		}
	}
	if len(deduped) > 1 && deduped[0].Equal(deduped[len(deduped)-1]) {
		deduped = deduped[:len(deduped)-1]
	}
	if len(deduped) < 3 {
		return deduped
	}

	keep := make([]bool, len(deduped))
	keep[0] = true
	keep[len(deduped)-1] = true
	simplifyRange(deduped, 0, len(deduped)-1, toleranceUm, keep)

	result := make(geom.Polygon, 0, len(deduped))
	for i, k := range keep {
		if k {
			result = append(result, deduped[i])
		}
	}
	return result
}

// simplifyRange is the classic Douglas-Peucker recursion: find the vertex
// in (start, end) farthest from the chord start-end; if it's farther than
// toleranceUm, keep it and recurse on both halves, otherwise drop everything
// strictly between start and end.
func simplifyRange(ring geom.Polygon, start, end int, toleranceUm int64, keep []bool) {
	if end-start < 2 {
		return
	}

	a := ring[start]
	b := ring[end]
	chord := b.Sub(a)
	chordLen := float64(chord.Length())

	farthestIdx := -1
	var farthestDistUm int64

	for i := start + 1; i < end; i++ {
		distUm := perpendicularDistanceUm(ring[i], a, chord, chordLen)
		if distUm > farthestDistUm {
			farthestDistUm = distUm
			farthestIdx = i
		}
	}

	if farthestIdx == -1 || farthestDistUm <= toleranceUm {
		return
	}

	keep[farthestIdx] = true
	simplifyRange(ring, start, farthestIdx, toleranceUm, keep)
	simplifyRange(ring, farthestIdx, end, toleranceUm, keep)
}

// perpendicularDistanceUm returns the perpendicular distance, in
// micrometres, from p to the line through a with direction chord.
func perpendicularDistanceUm(p, a geom.IntPoint, chord geom.IntPoint, chordLen float64) int64 {
	if chordLen == 0 {
		return int64(p.Sub(a).Length())
	}
	cross := chord.Cross(p.Sub(a))
	if cross < 0 {
		cross = -cross
	}
	return int64(float64(cross) / chordLen)
}
