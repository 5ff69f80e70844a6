package planner

import (
	"github.com/tpplan/toolpath/internal/geom"
	"github.com/tpplan/toolpath/internal/pathqueue"
)

// TrimPerimeter removes trailing points from a copy of path until the
// removed tail length reaches lineWidth*(1-ratio), interpolating a new
// final point on the edge where the target distance falls unless that
// target is at or below 50 um (skipping interpolation to avoid
// truncation noise on already-tiny perimeters). The original path is
// never mutated.
func TrimPerimeter(path *pathqueue.Path, ratio float64) *pathqueue.Path {
	result := &pathqueue.Path{
		Config:        path.Config,
		ExtruderIndex: path.ExtruderIndex,
		Done:          path.Done,
		Retract:       path.Retract,
	}
	result.Points = make(geom.Polygon, len(path.Points))
	copy(result.Points, path.Points)

	target := int64(float64(path.Config.LineWidthUm) * (1 - ratio))
	if target <= 0 {
		return result
	}

	var removed int64
	for len(result.Points) >= 2 {
		n := len(result.Points)
		last := result.Points[n-1]
		prev := result.Points[n-2]
		currentDistance := last.Sub(prev).Length()
		remaining := target - removed

		if currentDistance <= remaining {
			removed += currentDistance
			result.Points = result.Points[:n-1]
			continue
		}

		if target > 50 {
			dir := last.Sub(prev)
			t := currentDistance - remaining
			result.Points[n-1] = geom.IntPoint{
				X:     prev.X + dir.X*t/currentDistance,
				Y:     prev.Y + dir.Y*t/currentDistance,
				Z:     prev.Z,
				Width: last.Width,
			}
		} else {
			result.Points = result.Points[:n-1]
		}
		break
	}

	return result
}
