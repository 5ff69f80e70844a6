// Package overlap implements thin-line discovery and perimeter-overlap
// merging: the pair of segment-level algorithms that identify a path
// doubling back on itself within less than one extrusion width and
// collapse the overlap into a single variable-width stroke.
//
// Every entry point here is a pure function over its inputs; nothing is
// retained between calls.
package overlap

import (
	"github.com/tpplan/toolpath/internal/geom"
	"github.com/tpplan/toolpath/internal/segment"
)

// PolygonCleaner is the external polygon clipping/cleaning collaborator.
// MergePerimeterOverlaps runs one pass of this before segmenting a
// perimeter, the way a geometry library's clipper simplifies near-
// collinear or near-duplicate points.
type PolygonCleaner interface {
	CleanPolygons(polygons geom.Polygons, toleranceUm int64) geom.Polygons
}

// tag classifies a segment during the merge pass.
type tag int

const (
	tagNone tag = iota
	tagMerged
	tagRemove
)

// MakeCloseSegmentsMergable subdivides every segment of target at the
// vertices of splitOn that lie within d of its line, so that a long
// segment on one side of a doubled-back path gets split to match the
// shorter segments on the opposite side. Replacement happens in place,
// iterating backwards so indices already visited stay stable.
func MakeCloseSegmentsMergable(target geom.Polygon, splitOn []geom.IntPoint, d float64, closed bool) geom.Polygon {
	segs := segment.ToSegments(target, closed)
	for i := len(segs) - 1; i >= 0; i-- {
		chain := segment.GetSplitSegmentForVertecies(segs[i], splitOn, d)
		if chain == nil {
			continue
		}
		segs = append(segs[:i], append(chain, segs[i+1:]...)...)
	}
	return segmentsToPolygon(segs, closed)
}

// MakeCloseSegmentsMergablePolygons splits every polygon in the batch
// against every polygon in the batch (including itself — self-splitting
// subdivides a perimeter at its own vertices when it doubles back).
func MakeCloseSegmentsMergablePolygons(polygons geom.Polygons, d float64, closed bool) geom.Polygons {
	out := make(geom.Polygons, len(polygons))
	copy(out, polygons)
	for i, target := range out {
		var allVertices []geom.IntPoint
		for _, other := range polygons {
			allVertices = append(allVertices, other...)
		}
		out[i] = MakeCloseSegmentsMergable(target, allVertices, d, closed)
	}
	return out
}

func segmentsToPolygon(segs []segment.Segment, closed bool) geom.Polygon {
	if len(segs) == 0 {
		return nil
	}
	poly := make(geom.Polygon, 0, len(segs)+1)
	for _, s := range segs {
		poly = append(poly, s.Start)
	}
	if !closed {
		poly = append(poly, segs[len(segs)-1].End)
	}
	return poly
}

// FindThinLines discovers back-on-itself overlaps across polygons and
// collapses each mergeable pair into a single variable-width centreline.
// Only merged centrelines are returned — unmerged material is dropped,
// since this is a discovery pass for thin cores, not a full-path pass.
func FindThinLines(polygons geom.Polygons, mergeD, minWidth int64, closed bool) (hasMerge bool, merged geom.Polygons) {
	prepped := MakeCloseSegmentsMergablePolygons(polygons, float64(mergeD), closed)
	segs := segment.ToSegmentsMulti(prepped, closed)
	tags := make([]tag, len(segs))

	for i := 0; i < len(segs); i++ {
		if tags[i] != tagNone {
			continue
		}
		for j := i + 1; j < len(segs); j++ {
			if tags[j] != tagNone {
				continue
			}
			if mergePair(segs, tags, i, j, mergeD, minWidth, 0, false) {
				hasMerge = true
				break
			}
		}
	}

	kept := make([]segment.Segment, 0, len(segs))
	for i, s := range segs {
		if tags[i] == tagMerged {
			kept = append(kept, s)
		}
	}
	return hasMerge, reconstructPolygons(kept)
}

// MergePerimeterOverlaps is FindThinLines's sibling for a single closed
// (or open) perimeter: it keeps the whole path, not just merged cores,
// so the result is a full path with a variable extrusion width — the
// merged regions wider, the untouched regions at the nominal lineWidth.
func MergePerimeterOverlaps(cleaner PolygonCleaner, perimeter geom.Polygon, lineWidth int64, closed bool) (optimised bool, result geom.Polygons) {
	cleaned := cleaner.CleanPolygons(geom.Polygons{perimeter}, lineWidth/40)
	if len(cleaned) == 0 || len(cleaned[0]) == 0 {
		return false, nil
	}

	seeded := make(geom.Polygon, len(cleaned[0]))
	for i, p := range cleaned[0] {
		p.Width = lineWidth
		seeded[i] = p
	}

	prepped := MakeCloseSegmentsMergable(seeded, seeded, float64(lineWidth), closed)
	// Split points inserted by the subdivision carry no width; seed them too.
	for i := range prepped {
		prepped[i].Width = lineWidth
	}
	segs := segment.ToSegments(prepped, closed)
	tags := make([]tag, len(segs))

	for i := 0; i < len(segs); i++ {
		if tags[i] != tagNone {
			continue
		}
		for j := i + 1; j < len(segs); j++ {
			if tags[j] != tagNone {
				continue
			}
			if mergePair(segs, tags, i, j, lineWidth, 0, lineWidth, true) {
				optimised = true
				break
			}
		}
	}

	kept := make([]segment.Segment, 0, len(segs))
	for i, s := range segs {
		if tags[i] != tagRemove {
			kept = append(kept, s)
		}
	}
	return optimised, reconstructPolygons(kept)
}

// mergePair evaluates whether segs[i] and segs[j] form a mergeable
// overlap pair and, if so, overwrites segs[i] with the merged centreline
// and tags both segments. widthBonus is added to the merged width for
// the perimeter-overlap variant (covers both original strokes plus the
// gap); requireOpposedDirection additionally gates on segs[i] and
// segs[j] pointing in genuinely opposite directions, which the thin-line
// variant does not require (it only checks endpoint proximity).
func mergePair(segs []segment.Segment, tags []tag, i, j int, mergeD, minWidth, widthBonus int64, requireOpposedDirection bool) bool {
	si, sj := segs[i], segs[j]

	startDelta := si.Start.Sub(sj.End)
	if !startDelta.ShorterThan(mergeD) {
		return false
	}
	endDelta := si.End.Sub(sj.Start)
	if !endDelta.ShorterThan(mergeD) {
		return false
	}

	startD := startDelta.Length()
	endD := endDelta.Length()
	width := startD
	if endD < width {
		width = endD
	}
	if width <= minWidth {
		return false
	}

	if requireOpposedDirection {
		di := si.End.Sub(si.Start)
		dj := sj.End.Sub(sj.Start)
		if di.Dot(dj) >= 0 {
			return false
		}
	}

	p := geom.IntPoint{X: (si.Start.X + sj.End.X) / 2, Y: (si.Start.Y + sj.End.Y) / 2}
	nl := si.End.Sub(si.Start).GetPerpendicularLeft()
	delta := p.Sub(si.Start)
	if nl.Dot(delta) <= 0 {
		return false
	}

	mergedWidth := width + widthBonus
	newStart := geom.IntPoint{X: (si.Start.X + sj.End.X) / 2, Y: (si.Start.Y + sj.End.Y) / 2, Width: mergedWidth}
	newEnd := geom.IntPoint{X: (si.End.X + sj.Start.X) / 2, Y: (si.End.Y + sj.Start.Y) / 2, Width: mergedWidth}

	segs[i] = segment.Segment{Start: newStart, End: newEnd}
	tags[i] = tagMerged
	tags[j] = tagRemove
	return true
}

// reconstructPolygons rebuilds open chains from a filtered segment list:
// a new polygon starts whenever consecutive segments are not end-to-end
// equal. Each segment contributes its Start; the first segment of a
// chain additionally contributes nothing extra, and the final segment
// of a chain contributes its End.
func reconstructPolygons(segs []segment.Segment) geom.Polygons {
	var out geom.Polygons
	var current geom.Polygon

	for i, s := range segs {
		if i == 0 || !segs[i-1].End.Equal(s.Start) {
			if len(current) > 0 {
				out = append(out, current)
			}
			current = geom.Polygon{s.Start}
		}
		current = append(current, s.End)
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}
