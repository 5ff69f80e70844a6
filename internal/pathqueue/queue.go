// Package pathqueue holds the append-only queue of grouped machine
// moves a layer accumulates before the emission pass walks it once.
package pathqueue

import "github.com/tpplan/toolpath/internal/geom"

// Config is an immutable per-layer record describing one kind of move:
// its nominal speed, extrusion width (0 means travel), and the
// semantically-loaded comment tag. closedLoop marks a perimeter that
// closes back on its start point; Spiralize marks a path eligible for
// the single-path Z ramp in the emission pass.
type Config struct {
	Speed        float64 // mm/s
	LineWidthUm  int64   // 0 => travel
	GCodeComment string  // "WALL-OUTER", "WALL-INNER", "BRIDGE", or free-form
	ClosedLoop   bool
	Spiralize    bool
}

// IsTravel reports whether this config represents a non-extruding move.
func (c Config) IsTravel() bool {
	return c.LineWidthUm == 0
}

// Path is one grouped move: an ordered run of destinations sharing a
// single Config. Points may only be appended while Done is false, and
// only when the queue's current tail is this same path.
type Path struct {
	Config        Config
	ExtruderIndex int
	Done          bool
	Retract       bool
	Points        geom.Polygon
}

// Length returns the sum of this path's segment lengths, plus the
// closing edge back to the first point when Config.ClosedLoop is set.
func (p *Path) Length() int64 {
	if len(p.Points) < 2 {
		return 0
	}
	var total int64
	for i := 1; i < len(p.Points); i++ {
		total += p.Points[i].Sub(p.Points[i-1]).Length()
	}
	if p.Config.ClosedLoop {
		total += p.Points[0].Sub(p.Points[len(p.Points)-1]).Length()
	}
	return total
}

// Append adds a destination to the path.
func (p *Path) Append(dst geom.IntPoint) {
	p.Points = append(p.Points, dst)
}

// Queue is the ordered list of Paths built up over one layer. No two
// adjacent open paths ever share the same Config at the moment of
// lookup — GetLatestPathWithConfig enforces the grouping rule on every call.
type Queue struct {
	paths []*Path
}

// Paths returns the queue's current contents for read-only traversal
// by the emission pass.
func (q *Queue) Paths() []*Path {
	return q.paths
}

// Len reports the number of paths queued so far.
func (q *Queue) Len() int {
	return len(q.paths)
}

// Last returns the most recently appended path, or nil if the queue is
// empty.
func (q *Queue) Last() *Path {
	if len(q.paths) == 0 {
		return nil
	}
	return q.paths[len(q.paths)-1]
}

// GetLatestPathWithConfig returns the tail path if it exists, carries
// this exact config, and is not yet Done; otherwise it appends and
// returns a fresh path under the given extruder.
func (q *Queue) GetLatestPathWithConfig(config Config, extruderIndex int) *Path {
	if last := q.Last(); last != nil && !last.Done && last.Config == config {
		return last
	}
	p := &Path{Config: config, ExtruderIndex: extruderIndex}
	q.paths = append(q.paths, p)
	return p
}

// ForceNewPathStart marks the tail Done so the next append allocates a
// fresh path, guaranteeing a pending retraction is emitted after the
// current sequence rather than folded into it.
func (q *Queue) ForceNewPathStart() {
	if last := q.Last(); last != nil {
		last.Done = true
	}
}
