// Package segment converts polygons into directed segments and provides
// the vertex-driven subdivision primitive the overlap engine depends on
// to make near-parallel, opposite-direction segments pairwise mergeable.
package segment

import "github.com/tpplan/toolpath/internal/geom"

// Segment is a directed pair of points. Start and End are independent —
// mutating one through overlap-merging does not affect the other.
type Segment struct {
	Start, End geom.IntPoint
}

// ToSegments converts a single polygon into its segment list. A closed
// polygon yields len(polygon) segments (the last wraps to the first); an
// open polygon yields len(polygon)-1.
func ToSegments(polygon geom.Polygon, closed bool) []Segment {
	n := len(polygon)
	if n == 0 {
		return nil
	}
	count := n
	if !closed {
		count = n - 1
	}
	if count <= 0 {
		return nil
	}
	segments := make([]Segment, 0, count)
	for i := 0; i < count; i++ {
		segments = append(segments, Segment{Start: polygon[i], End: polygon[(i+1)%n]})
	}
	return segments
}

// ToSegmentsMulti flattens every polygon in the batch into one segment list.
func ToSegmentsMulti(polygons geom.Polygons, closed bool) []Segment {
	var out []Segment
	for _, p := range polygons {
		out = append(out, ToSegments(p, closed)...)
	}
	return out
}

// ConvertPathToSegments behaves like ToSegments but stamps every endpoint's
// Z with zHeight, lifting a planar intermediate result back onto a layer.
func ConvertPathToSegments(path geom.Polygon, zHeight int64, closed bool) []Segment {
	segments := ToSegments(path, closed)
	for i := range segments {
		segments[i].Start.Z = zHeight
		segments[i].End.Z = zHeight
	}
	return segments
}

// splitHit is one accepted vertex projected onto the segment's line,
// keyed by its distance along the segment so the chain can be emitted
// in monotonically advancing order.
type splitHit struct {
	along int64
	point geom.IntPoint
}

// GetSplitSegmentForVertecies subdivides seg at every vertex in
// splitPoints that lies closer than maxDistance micrometres to the
// segment's infinite line and projects strictly inside the open segment.
// It returns the open chain of sub-segments that results, or nil if no
// vertex qualified — callers use the nil return to detect "no change".
//
// maxDistance is an absolute distance: the line-side test compares the
// unnormalised perpendicular projection (distance*length) against
// maxDistance*length, which avoids normalising the perpendicular.
func GetSplitSegmentForVertecies(seg Segment, splitPoints []geom.IntPoint, maxDistance float64) []Segment {
	s, e := seg.Start, seg.End
	d := e.Sub(s)
	lengthSq := d.LengthSq()
	if lengthSq == 0 {
		return nil
	}
	length := d.Length()
	if length == 0 {
		return nil
	}
	nr := d.GetPerpendicularRight() // unnormalised, length == |d|
	threshold := int64(maxDistance * float64(length))

	hits := make(map[int64]geom.IntPoint)
	order := make([]int64, 0)

	for _, v := range splitPoints {
		u := v.Sub(s)

		side := nr.Dot(u)
		if side < 0 {
			side = -side
		}
		if side >= threshold {
			continue
		}

		along := d.Dot(u)
		if along <= 0 || along >= lengthSq {
			continue
		}

		t := along / length
		if _, exists := hits[t]; exists {
			continue // first insertion wins
		}
		hits[t] = s.Add(d.Normal(t))
		order = append(order, t)
	}

	if len(hits) == 0 {
		return nil
	}

	if _, ok := hits[0]; !ok {
		hits[0] = s
		order = append(order, 0)
	}
	if _, ok := hits[length]; !ok {
		hits[length] = e
		order = append(order, length)
	}

	sortInt64s(order)

	chain := make([]Segment, 0, len(order)-1)
	for i := 0; i+1 < len(order); i++ {
		a := hits[order[i]]
		b := hits[order[i+1]]
		a.Z, b.Z = s.Z, s.Z
		chain = append(chain, Segment{Start: a, End: b})
	}
	return chain
}

// sortInt64s is an insertion sort over the small split-point lists this
// function handles per segment; a polygon's own vertex count rarely
// exceeds a few dozen per segment, so this beats pulling in sort for a
// handful of comparisons.
func sortInt64s(a []int64) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}
