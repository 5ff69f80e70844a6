package toolorder

import "github.com/tpplan/toolpath/internal/geom"

// Optimizer is the shared surface both island-order strategies implement,
// matching the path-order-optimiser collaborator the planner depends on.
type Optimizer interface {
	AddPolygons(polygons geom.Polygons, closed bool)
	Optimize(start geom.IntPoint)
	BestIslandOrder() []int
	StartIndexInPolygon() []int
	Polygon(i int) geom.Polygon
	Len() int
}

// ComparisonResult holds one strategy's outcome plus the rapid-travel
// distance it produced, so callers can report what the choice cost or saved.
type ComparisonResult struct {
	Name           string
	Order          []int
	StartIndex     []int
	RapidDistanceU int64
}

// CompareStrategies runs both the nearest-neighbour and genetic optimizers
// over the same polygon batch and reports each one's resulting order and
// total rapid-travel distance, so a caller can pick the better one or log
// the trade-off.
func CompareStrategies(polygons geom.Polygons, closed bool, start geom.IntPoint, gaConfig GeneticConfig, seed int64) []ComparisonResult {
	nn := &NearestNeighbourOptimizer{}
	nn.AddPolygons(polygons, closed)
	nn.Optimize(start)

	ga := NewGeneticOptimizer(gaConfig, seed)
	ga.AddPolygons(polygons, closed)
	ga.Optimize(start)

	return []ComparisonResult{
		{
			Name:           "NearestNeighbour",
			Order:          nn.BestIslandOrder(),
			StartIndex:     nn.StartIndexInPolygon(),
			RapidDistanceU: totalRapidDistance(start, nn.islands, nn.BestIslandOrder()),
		},
		{
			Name:           "Genetic",
			Order:          ga.BestIslandOrder(),
			StartIndex:     ga.StartIndexInPolygon(),
			RapidDistanceU: totalRapidDistance(start, ga.islands, ga.BestIslandOrder()),
		},
	}
}

// ChooseBestOrder picks one of the two built-in strategies by batch size:
// nearest-neighbour for at most smallBatchThreshold islands, the genetic
// search otherwise. It runs only the chosen strategy and does not compare
// the two strategies' rapid-travel distances.
func ChooseBestOrder(polygons geom.Polygons, closed bool, start geom.IntPoint) (Optimizer, ComparisonResult) {
	if len(polygons) <= smallBatchThreshold {
		nn := &NearestNeighbourOptimizer{}
		nn.AddPolygons(polygons, closed)
		nn.Optimize(start)
		return nn, ComparisonResult{
			Name:           "NearestNeighbour",
			Order:          nn.BestIslandOrder(),
			StartIndex:     nn.StartIndexInPolygon(),
			RapidDistanceU: totalRapidDistance(start, nn.islands, nn.BestIslandOrder()),
		}
	}

	ga := NewGeneticOptimizer(DefaultGeneticConfig(), 42)
	ga.AddPolygons(polygons, closed)
	ga.Optimize(start)
	return ga, ComparisonResult{
		Name:           "Genetic",
		Order:          ga.BestIslandOrder(),
		StartIndex:     ga.StartIndexInPolygon(),
		RapidDistanceU: totalRapidDistance(start, ga.islands, ga.BestIslandOrder()),
	}
}

// smallBatchThreshold is the island count at or below which nearest-neighbour's
// greedy result is close enough to optimal that the genetic search's extra
// compute isn't worth it.
const smallBatchThreshold = 12
