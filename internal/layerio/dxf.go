// Package layerio imports layer outlines from CAD interchange formats
// into the fixed-point polygons the tool-path core operates on. It is
// never imported by internal/planner: a layer is fully resolved to
// geom.Polygons before planning ever sees it.
package layerio

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/tpplan/toolpath/internal/geom"
)

// ImportResult carries the polygons recovered from a DXF file plus any
// non-fatal warnings about entities that were skipped.
type ImportResult struct {
	Polygons geom.Polygons
	Warnings []string
}

// edge is a directed micrometre-scale segment awaiting chaining into a
// closed ring. Unlike LWPOLYLINE/CIRCLE entities (already one closed
// shape each), LINE and ARC entities arrive as loose edges that only
// become a ring once their endpoints are linked up.
type edge struct {
	a, b geom.IntPoint
}

// ImportDXFLayer reads a DXF file (assumed to be drawn in millimetres)
// and returns every closed shape as a geom.Polygon in micrometres.
// LWPOLYLINE and CIRCLE entities become polygons directly; LINE and ARC
// entities are linked by shared endpoints into closed rings.
func ImportDXFLayer(path string) (ImportResult, error) {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		return result, fmt.Errorf("layerio: cannot open DXF file: %w", err)
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		return result, fmt.Errorf("layerio: DXF file contains no entities")
	}

	var rings []geom.Polygon
	var loose []edge

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			ring := lwPolylineRing(e)
			if len(ring) >= 3 {
				rings = append(rings, ring)
			} else {
				result.Warnings = append(result.Warnings, "skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			rings = append(rings, circleRing(e, 64))

		case *entity.Arc:
			loose = append(loose, toEdges(arcPoints(e, 32))...)

		case *entity.Line:
			loose = append(loose, edge{
				a: geom.IntPoint{X: mmToUm(e.Start[0]), Y: mmToUm(e.Start[1])},
				b: geom.IntPoint{X: mmToUm(e.End[0]), Y: mmToUm(e.End[1])},
			})

		default:
			// Unsupported entity types are silently skipped.
		}
	}

	// 10um endpoint-matching tolerance: fine enough to link intentional
	// joins, coarse enough to absorb DXF export rounding.
	rings = append(rings, chainEdges(loose, 10)...)

	if len(rings) == 0 {
		return result, fmt.Errorf("layerio: no closed shapes found in DXF file")
	}

	for _, ring := range rings {
		lo, hi := ringBounds(ring)
		width, height := hi.X-lo.X, hi.Y-lo.Y
		if width < 10 || height < 10 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"skipped degenerate shape (%.3f x %.3f mm)", float64(width)/1000, float64(height)/1000))
			continue
		}
		result.Polygons = append(result.Polygons, ring)
	}

	return result, nil
}

func mmToUm(mm float64) int64 {
	return int64(math.Round(mm * 1000))
}

func mmToUmFloat(mm float64) float64 {
	return mm * 1000
}

// lwPolylineRing walks a LWPOLYLINE's vertices directly into a
// micrometre-scale ring, expanding any bulge-tagged vertex into an
// interpolated arc in the same pass rather than staging an
// intermediate float outline first.
func lwPolylineRing(lw *entity.LwPolyline) geom.Polygon {
	n := len(lw.Vertices)
	var ring geom.Polygon

	for i := 0; i < n; i++ {
		v := lw.Vertices[i]
		current := geom.IntPoint{X: mmToUm(v[0]), Y: mmToUm(v[1])}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) <= 1e-9 {
			ring = append(ring, current)
			continue
		}

		nv := lw.Vertices[(i+1)%n]
		next := geom.IntPoint{X: mmToUm(nv[0]), Y: mmToUm(nv[1])}
		frame := bulgeArc(current, next, bulge)
		// drop the sampled closing point; the next loop iteration (or
		// wraparound) supplies it.
		samples := frame.sample(32)
		ring = append(ring, samples[:len(samples)-1]...)
	}

	return ring
}

// arcFrame is a circular arc described in micrometre-scale floating
// point, sampled into fixed-point points only at the end.
type arcFrame struct {
	centerX, centerY, radius float64
	angleStart, angleEnd     float64
}

func (f arcFrame) sample(segments int) []geom.IntPoint {
	pts := make([]geom.IntPoint, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		angle := f.angleStart + t*(f.angleEnd-f.angleStart)
		pts[i] = geom.IntPoint{
			X: int64(math.Round(f.centerX + f.radius*math.Cos(angle))),
			Y: int64(math.Round(f.centerY + f.radius*math.Sin(angle))),
		}
	}
	return pts
}

// bulgeArc recovers the circular arc a DXF bulge factor encodes between
// two already-converted micrometre points. The bulge is the tangent of
// one quarter the arc's included angle; radius follows from the chord
// and that angle directly (law of sines) rather than via a sagitta
// construction.
func bulgeArc(p1, p2 geom.IntPoint, bulge float64) arcFrame {
	x1, y1 := float64(p1.X), float64(p1.Y)
	x2, y2 := float64(p2.X), float64(p2.Y)

	halfChord := math.Hypot(x2-x1, y2-y1) / 2
	if halfChord < 1e-6 {
		return arcFrame{centerX: x1, centerY: y1}
	}

	includedAngle := 4 * math.Atan(math.Abs(bulge))
	radius := halfChord / math.Sin(includedAngle/2)
	// signed chord-midpoint-to-centre distance: negative past a half circle
	apothem := halfChord / math.Tan(includedAngle/2)

	midX, midY := (x1+x2)/2, (y1+y2)/2
	normalX, normalY := -(y2-y1)/(2*halfChord), (x2-x1)/(2*halfChord)
	if bulge < 0 {
		normalX, normalY = -normalX, -normalY
	}
	centerX, centerY := midX+normalX*apothem, midY+normalY*apothem

	angleStart := math.Atan2(y1-centerY, x1-centerX)
	angleEnd := math.Atan2(y2-centerY, x2-centerX)
	switch {
	case bulge < 0 && angleEnd > angleStart:
		angleEnd -= 2 * math.Pi
	case bulge > 0 && angleEnd < angleStart:
		angleEnd += 2 * math.Pi
	}

	return arcFrame{centerX: centerX, centerY: centerY, radius: radius, angleStart: angleStart, angleEnd: angleEnd}
}

// circleRing approximates a circle as a regular polygon directly in
// micrometres.
func circleRing(c *entity.Circle, segments int) geom.Polygon {
	frame := arcFrame{
		centerX: mmToUmFloat(c.Center[0]),
		centerY: mmToUmFloat(c.Center[1]),
		radius:  mmToUmFloat(c.Radius),
		angleEnd: 2 * math.Pi,
	}
	return geom.Polygon(frame.sample(segments)[:segments])
}

// arcPoints samples a DXF ARC entity into micrometre points.
func arcPoints(a *entity.Arc, segments int) []geom.IntPoint {
	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}
	frame := arcFrame{
		centerX:    mmToUmFloat(a.Circle.Center[0]),
		centerY:    mmToUmFloat(a.Circle.Center[1]),
		radius:     mmToUmFloat(a.Circle.Radius),
		angleStart: startRad,
		angleEnd:   endRad,
	}
	return frame.sample(segments)
}

func toEdges(pts []geom.IntPoint) []edge {
	edges := make([]edge, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		edges = append(edges, edge{a: pts[i], b: pts[i+1]})
	}
	return edges
}

// gridKey buckets a point to a tolerance-sized grid cell.
type gridKey struct{ x, y int64 }

func keyOf(p geom.IntPoint, toleranceUm int64) gridKey {
	if toleranceUm < 1 {
		toleranceUm = 1
	}
	return gridKey{x: p.X / toleranceUm, y: p.Y / toleranceUm}
}

type endpointRef struct {
	edgeIdx int
	atStart bool
}

// chainEdges links loose edges whose endpoints fall in the same
// toleranceUm-sized grid cell into closed rings; chains that do not close
// are dropped. Endpoints are indexed into grid buckets up front,
// so extending a chain is a lookup into the handful of edges sharing a
// bucket rather than a scan over every still-unconsumed edge.
func chainEdges(edges []edge, toleranceUm int64) []geom.Polygon {
	if len(edges) == 0 {
		return nil
	}

	buckets := make(map[gridKey][]endpointRef)
	for i, e := range edges {
		buckets[keyOf(e.a, toleranceUm)] = append(buckets[keyOf(e.a, toleranceUm)], endpointRef{i, true})
		buckets[keyOf(e.b, toleranceUm)] = append(buckets[keyOf(e.b, toleranceUm)], endpointRef{i, false})
	}

	consumed := make([]bool, len(edges))
	popNext := func(p geom.IntPoint) (geom.IntPoint, bool) {
		for _, ref := range buckets[keyOf(p, toleranceUm)] {
			if consumed[ref.edgeIdx] {
				continue
			}
			consumed[ref.edgeIdx] = true
			if ref.atStart {
				return edges[ref.edgeIdx].b, true
			}
			return edges[ref.edgeIdx].a, true
		}
		return geom.IntPoint{}, false
	}

	var rings []geom.Polygon
	for start := range edges {
		if consumed[start] {
			continue
		}
		consumed[start] = true
		chain := geom.Polygon{edges[start].a, edges[start].b}

		for {
			next, ok := popNext(chain[len(chain)-1])
			if !ok {
				break
			}
			chain = append(chain, next)
		}

		if len(chain) >= 4 && withinTolerance(chain[0], chain[len(chain)-1], toleranceUm) {
			rings = append(rings, chain[:len(chain)-1])
		}
	}

	sort.Slice(rings, func(i, j int) bool {
		return ringArea(rings[i]) > ringArea(rings[j])
	})
	return rings
}

func withinTolerance(a, b geom.IntPoint, toleranceUm int64) bool {
	return a.Sub(b).LengthSq() <= toleranceUm*toleranceUm
}

// ringArea computes a polygon's absolute area via the shoelace formula.
func ringArea(ring geom.Polygon) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += float64(ring[i].X)*float64(ring[j].Y) - float64(ring[j].X)*float64(ring[i].Y)
	}
	return math.Abs(area) / 2
}

func ringBounds(ring geom.Polygon) (lo, hi geom.IntPoint) {
	lo, hi = ring[0], ring[0]
	for _, p := range ring[1:] {
		if p.X < lo.X {
			lo.X = p.X
		}
		if p.Y < lo.Y {
			lo.Y = p.Y
		}
		if p.X > hi.X {
			hi.X = p.X
		}
		if p.Y > hi.Y {
			hi.Y = p.Y
		}
	}
	return lo, hi
}
