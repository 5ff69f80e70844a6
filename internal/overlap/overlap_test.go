package overlap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpplan/toolpath/internal/geom"
)

// identityCleaner is a no-op PolygonCleaner stand-in for the external
// geometry library's CleanPolygons, used to isolate overlap-merge tests
// from cleaning behaviour.
type identityCleaner struct{}

func (identityCleaner) CleanPolygons(polygons geom.Polygons, toleranceUm int64) geom.Polygons {
	return polygons
}

func pt(x, y int64) geom.IntPoint { return geom.IntPoint{X: x, Y: y} }

func TestMergePerimeterOverlaps_RectangleNoOverlap(t *testing.T) {
	rect := geom.Polygon{pt(0, 0), pt(10000, 0), pt(10000, 10000), pt(0, 10000)}
	optimised, result := MergePerimeterOverlaps(identityCleaner{}, rect, 400, true)
	assert.False(t, optimised, "a plain rectangle has no self-overlap to merge")
	assert.Len(t, result, 1, "the unmerged perimeter comes back whole, as one chain")
}

func TestMergePerimeterOverlaps_Hairpin(t *testing.T) {
	hairpin := geom.Polygon{pt(0, 0), pt(10000, 0), pt(10000, 200), pt(0, 200)}
	optimised, result := MergePerimeterOverlaps(identityCleaner{}, hairpin, 400, false)
	require.True(t, optimised, "the two long near-parallel legs should merge")
	require.NotEmpty(t, result)

	var mergedStroke geom.Polygon
	for _, poly := range result {
		if len(poly) == 2 && poly[0].X == 0 && poly[1].X == 10000 {
			mergedStroke = poly
		}
	}
	require.NotNil(t, mergedStroke, "expected a merged stroke from (0,*) to (10000,*)")
	assert.InDelta(t, 100, mergedStroke[0].Y, 1)
	assert.InDelta(t, 100, mergedStroke[1].Y, 1)
	assert.Equal(t, int64(600), mergedStroke[0].Width, "min(200,200)+lineWidth(400)")

	for _, poly := range result {
		for _, p := range poly {
			assert.Greater(t, p.Width, int64(0), "every output endpoint carries a positive width")
		}
	}
}

func TestMergePerimeterOverlaps_EmptyCleanedPolygonNoOps(t *testing.T) {
	optimised, result := MergePerimeterOverlaps(emptyCleaner{}, geom.Polygon{pt(0, 0), pt(1, 1)}, 400, true)
	assert.False(t, optimised)
	assert.Nil(t, result)
}

type emptyCleaner struct{}

func (emptyCleaner) CleanPolygons(polygons geom.Polygons, toleranceUm int64) geom.Polygons {
	return nil
}

func TestFindThinLines_AntiParallelPair(t *testing.T) {
	polygons := geom.Polygons{
		{pt(0, 0), pt(10000, 0)},
		{pt(10000, 50), pt(0, 50)},
	}
	hasMerge, merged := FindThinLines(polygons, 200, 10, false)
	require.True(t, hasMerge)
	require.Len(t, merged, 1)
	chain := merged[0]
	require.Len(t, chain, 2)
	assert.InDelta(t, 0, chain[0].X, 1)
	assert.InDelta(t, 25, chain[0].Y, 1)
	assert.InDelta(t, 10000, chain[1].X, 1)
	assert.InDelta(t, 25, chain[1].Y, 1)
	assert.Equal(t, int64(50), chain[0].Width)
}

func TestFindThinLines_NoPairWithinMergeD_ReturnsEmpty(t *testing.T) {
	polygons := geom.Polygons{
		{pt(0, 0), pt(10000, 0)},
		{pt(10000, 5000), pt(0, 5000)},
	}
	hasMerge, merged := FindThinLines(polygons, 200, 10, false)
	assert.False(t, hasMerge)
	assert.Empty(t, merged)
}

func TestFindThinLines_RejectsOutsideCurveMatch(t *testing.T) {
	// Mirror image of TestFindThinLines_AntiParallelPair: proximity and
	// width checks pass, but the candidate centreline falls on the wrong
	// side of segment A's direction, so the left-normal gate must reject
	// it (the merged curve would manufacture a phantom stroke outside
	// the existing path instead of inside it).
	polygons := geom.Polygons{
		{pt(0, 0), pt(10000, 0)},
		{pt(10000, -50), pt(0, -50)},
	}
	hasMerge, merged := FindThinLines(polygons, 200, 10, false)
	assert.False(t, hasMerge)
	assert.Empty(t, merged)
}

func TestMakeCloseSegmentsMergable_Idempotent(t *testing.T) {
	rect := geom.Polygon{pt(0, 0), pt(10000, 0), pt(10000, 10000), pt(0, 10000)}
	once := MakeCloseSegmentsMergable(rect, rect, 100, true)
	twice := MakeCloseSegmentsMergable(once, once, 100, true)
	assert.Equal(t, once, twice, "a second pass should not introduce new subdivisions")
}
