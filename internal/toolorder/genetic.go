package toolorder

import (
	"math/rand"
	"sort"

	"github.com/tpplan/toolpath/internal/geom"
)

// GeneticConfig holds parameters for the genetic island-order search.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
}

// DefaultGeneticConfig returns sensible default parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
	}
}

// chromosome is a candidate visiting order: a permutation of island indices.
type chromosome struct {
	order   []int
	fitness float64
}

// GeneticOptimizer generalises the teacher's population/mutation/crossover
// loop from sheet layout search to island-order permutation search. It is
// selected over NearestNeighbourOptimizer when a polygon batch exceeds a
// size threshold, where the greedy heuristic's myopia costs more rapid
// travel than the GA's extra compute buys back.
type GeneticOptimizer struct {
	islands    []island
	config     GeneticConfig
	rng        *rand.Rand
	start      geom.IntPoint
	bestOrder  []int
	startIndex []int
}

// NewGeneticOptimizer builds a GeneticOptimizer with the given config and
// a deterministic seed, so repeated runs over the same layer are reproducible.
func NewGeneticOptimizer(config GeneticConfig, seed int64) *GeneticOptimizer {
	return &GeneticOptimizer{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// AddPolygons registers one batch of islands to be ordered.
func (g *GeneticOptimizer) AddPolygons(polygons geom.Polygons, closed bool) {
	for _, p := range polygons {
		if len(p) == 0 {
			continue
		}
		g.islands = append(g.islands, island{polygon: p, closed: closed, centre: centreOf(p)})
	}
}

// Optimize runs the genetic search for the island visiting order, then
// picks each island's start vertex via the shared nearest-vertex heuristic.
func (g *GeneticOptimizer) Optimize(start geom.IntPoint) {
	g.start = start
	n := len(g.islands)
	if n == 0 {
		return
	}
	if n == 1 {
		g.islands[0].startIndex = nearestVertexIndex(start, g.islands[0].polygon)
		g.bestOrder = []int{0}
		g.startIndex = []int{g.islands[0].startIndex}
		return
	}

	config := g.config
	if config.PopulationSize == 0 {
		config = DefaultGeneticConfig()
	}
	if n > 20 {
		config.Generations += 50
	}

	population := g.initPopulation(n, config)
	for i := range population {
		population[i].fitness = g.evaluate(population[i])
	}

	for gen := 0; gen < config.Generations; gen++ {
		sort.Slice(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		newPop := make([]chromosome, 0, config.PopulationSize)
		eliteCount := config.EliteCount
		if eliteCount > len(population) {
			eliteCount = len(population)
		}
		for i := 0; i < eliteCount; i++ {
			newPop = append(newPop, copyChromosome(population[i]))
		}

		for len(newPop) < config.PopulationSize {
			p1 := g.tournamentSelect(population, config.TournamentSize)
			p2 := g.tournamentSelect(population, config.TournamentSize)
			child := g.orderCrossover(p1, p2)
			g.mutate(&child, config.MutationRate)
			child.fitness = g.evaluate(child)
			newPop = append(newPop, child)
		}

		population = newPop
	}

	sort.Slice(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})

	g.applyOrder(population[0].order)
}

// applyOrder commits the winning permutation: sets each island's start
// vertex in visiting order and records the final index slices.
func (g *GeneticOptimizer) applyOrder(order []int) {
	cur := g.start
	for _, idx := range order {
		si := nearestVertexIndex(cur, g.islands[idx].polygon)
		g.islands[idx].startIndex = si
		cur = g.islands[idx].polygon[si]
	}
	g.bestOrder = order
	g.startIndex = make([]int, len(g.islands))
	for i, isl := range g.islands {
		g.startIndex[i] = isl.startIndex
	}
}

func (g *GeneticOptimizer) initPopulation(n int, config GeneticConfig) []chromosome {
	population := make([]chromosome, config.PopulationSize)
	for i := range population {
		population[i] = chromosome{order: g.rng.Perm(n)}
	}
	if config.PopulationSize > 0 {
		nn := make([]int, n)
		for i := range nn {
			nn[i] = i
		}
		sort.Slice(nn, func(a, b int) bool {
			return g.islands[nn[a]].centre.X < g.islands[nn[b]].centre.X
		})
		population[0] = chromosome{order: nn}
	}
	return population
}

// evaluate converts total rapid distance into a fitness where higher is
// better, mirroring the teacher's efficiency-as-fitness convention.
func (g *GeneticOptimizer) evaluate(c chromosome) float64 {
	dist := totalRapidDistance(g.start, g.islands, c.order)
	return 1.0 / (1.0 + float64(dist))
}

func (g *GeneticOptimizer) tournamentSelect(population []chromosome, size int) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < size; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return copyChromosome(best)
}

// orderCrossover implements Order Crossover (OX1): the child inherits a
// contiguous slice from parent1 verbatim and fills the remaining positions
// with parent2's islands in their relative order.
func (g *GeneticOptimizer) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.order)
	if n <= 2 {
		return copyChromosome(parent1)
	}

	point1 := g.rng.Intn(n)
	point2 := g.rng.Intn(n)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	child := chromosome{order: make([]int, n)}
	inSegment := make(map[int]bool, n)
	for i := point1; i <= point2; i++ {
		child.order[i] = parent1.order[i]
		inSegment[parent1.order[i]] = true
	}

	childIdx := (point2 + 1) % n
	for _, idx := range parent2.order {
		if !inSegment[idx] {
			child.order[childIdx] = idx
			childIdx = (childIdx + 1) % n
		}
	}

	return child
}

// mutate applies swap, rotation-order-swap and inversion mutations, each
// gated independently by the mutation rate.
func (g *GeneticOptimizer) mutate(c *chromosome, rate float64) {
	n := len(c.order)
	if n < 2 {
		return
	}

	if g.rng.Float64() < rate {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		c.order[i], c.order[j] = c.order[j], c.order[i]
	}

	if g.rng.Float64() < rate {
		i := g.rng.Intn(n)
		j := (i + 1 + g.rng.Intn(n-1)) % n
		c.order[i], c.order[j] = c.order[j], c.order[i]
	}

	if g.rng.Float64() < rate*0.5 {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for i < j {
			c.order[i], c.order[j] = c.order[j], c.order[i]
			i++
			j--
		}
	}
}

func copyChromosome(c chromosome) chromosome {
	order := make([]int, len(c.order))
	copy(order, c.order)
	return chromosome{order: order, fitness: c.fitness}
}

// BestIslandOrder returns the island visiting order found by Optimize.
func (g *GeneticOptimizer) BestIslandOrder() []int {
	return g.bestOrder
}

// StartIndexInPolygon returns, per island, the vertex index chosen as
// that island's start point.
func (g *GeneticOptimizer) StartIndexInPolygon() []int {
	return g.startIndex
}

// Polygon returns the i'th registered island's polygon.
func (g *GeneticOptimizer) Polygon(i int) geom.Polygon {
	return g.islands[i].polygon
}

// Len reports how many islands have been registered.
func (g *GeneticOptimizer) Len() int {
	return len(g.islands)
}
