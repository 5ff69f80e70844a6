package planner

import (
	"github.com/tpplan/toolpath/internal/geom"
	"github.com/tpplan/toolpath/internal/overlap"
	"github.com/tpplan/toolpath/internal/pathqueue"
)

// WriteQueuedGCode performs the single forward traversal that turns the
// queue into writer calls: extruder switching and retraction, config
// transitions and fan control, per-move effective speed, small-move
// coalescing, spiralise, overlap-merge emission, and default emission
// (§4.5). Call it once per layer boundary.
func (p *Planner) WriteQueuedGCode(layerThicknessUm int64, fanPct, bridgeFanPct int) {
	paths := p.queue.Paths()
	var prevConfig *pathqueue.Config

	for i := 0; i < len(paths); i++ {
		path := paths[i]
		if len(path.Points) == 0 {
			continue
		}

		p.emitExtruderSwitchOrRetraction(path)
		p.emitConfigTransition(path, prevConfig, fanPct, bridgeFanPct)
		speed := p.effectiveSpeed(path.Config)

		if !path.Config.IsTravel() && len(path.Points) == 1 && p.isSmallMove(path.Points[0], path.Config.LineWidthUm) {
			i = p.emitCoalescedRun(paths, i, speed)
			cfg := path.Config
			prevConfig = &cfg
			continue
		}

		if path.Config.Spiralize && !anyLaterSpiralizes(paths, i) {
			p.emitSpiral(path, layerThicknessUm, speed)
			cfg := path.Config
			prevConfig = &cfg
			continue
		}

		if p.mergeOverlappingLines && isWallComment(path.Config.GCodeComment) {
			if p.emitOverlapMerged(path, speed) {
				cfg := path.Config
				prevConfig = &cfg
				continue
			}
		}

		p.emitDefault(path, speed)
		cfg := path.Config
		prevConfig = &cfg
	}

	p.writer.UpdateTotalPrintTime()
}

func isWallComment(comment string) bool {
	return comment == "WALL-OUTER" || comment == "WALL-INNER"
}

// step 1: extruder switch / retraction.
func (p *Planner) emitExtruderSwitchOrRetraction(path *pathqueue.Path) {
	if path.ExtruderIndex != p.writer.GetExtruderIndex() {
		p.writer.SwitchExtruder(path.ExtruderIndex)
	} else if path.Retract {
		p.writer.WriteRetraction()
	}
}

// step 2: config transition (fan control + TYPE comment).
func (p *Planner) emitConfigTransition(path *pathqueue.Path, prevConfig *pathqueue.Config, fanPct, bridgeFanPct int) {
	if path.Config.IsTravel() {
		return
	}
	if prevConfig != nil && *prevConfig == path.Config {
		return
	}

	if path.Config.GCodeComment == "BRIDGE" && bridgeFanPct != -1 {
		p.writer.WriteFanCommand(bridgeFanPct)
	}
	if prevConfig != nil && prevConfig.GCodeComment == "BRIDGE" {
		p.writer.WriteFanCommand(fanPct)
	}
	p.writer.WriteComment("TYPE:" + path.Config.GCodeComment)
}

// step 3: effective speed for this path's config.
func (p *Planner) effectiveSpeed(config pathqueue.Config) float64 {
	switch {
	case config.IsTravel():
		return config.Speed * p.travelSpeedFactor / 100
	case config.GCodeComment == "BRIDGE":
		return config.Speed
	default:
		return config.Speed * p.extrudeSpeedFactor / 100
	}
}

func (p *Planner) isSmallMove(pt geom.IntPoint, lineWidthUm int64) bool {
	cur := p.writer.GetPositionXY()
	planar := geom.IntPoint{X: pt.X, Y: pt.Y}
	return planar.Sub(cur).Length() < 2*lineWidthUm
}

func anyLaterSpiralizes(paths []*pathqueue.Path, i int) bool {
	for j := i + 1; j < len(paths); j++ {
		if paths[j].Config.Spiralize {
			return true
		}
	}
	return false
}

// step 4: small-move coalescing. Scans forward from start for a run of
// single-point, non-travel paths each within 2*lineWidth of the last
// accepted point. With fewer than 3, falls back to default emission of
// just the starting path. Returns the index of the last path consumed.
func (p *Planner) emitCoalescedRun(paths []*pathqueue.Path, start int, speed float64) int {
	lineWidth := paths[start].Config.LineWidthUm
	last := paths[start].Points[0]

	run := []int{start}
	for j := start + 1; j < len(paths); j++ {
		cand := paths[j]
		if cand.Config.IsTravel() || len(cand.Points) != 1 {
			break
		}
		pt := cand.Points[0]
		planarLast := geom.IntPoint{X: last.X, Y: last.Y}
		planarPt := geom.IntPoint{X: pt.X, Y: pt.Y}
		if planarPt.Sub(planarLast).Length() >= 2*lineWidth {
			break
		}
		run = append(run, j)
		last = pt
	}

	if len(run) < 3 {
		p.emitDefault(paths[start], speed)
		return start
	}

	points := make([]geom.IntPoint, len(run))
	for k, idx := range run {
		points[k] = paths[idx].Points[0]
	}

	runningPos := p.writer.GetPositionXY()
	for k := 0; k < len(points)-1; k++ {
		x := points[k]
		mid := x.Mid(points[k+1])
		oldLen := x.Sub(runningPos).Length()
		newLen := mid.Sub(runningPos).Length()
		if newLen == 0 {
			continue
		}
		width := lineWidth * oldLen / newLen
		p.writer.WriteMove(geom.IntPoint{X: mid.X, Y: mid.Y, Z: p.writer.CurrentZ()}, speed, width)
		runningPos = mid
	}

	lastPt := points[len(points)-1]
	finalWidth := lineWidth
	if lastPt.Width != 0 {
		finalWidth = lastPt.Width
	}
	p.writer.WriteMove(geom.IntPoint{X: lastPt.X, Y: lastPt.Y, Z: p.writer.CurrentZ()}, speed, finalWidth)

	return run[len(run)-1]
}

// step 5: spiralise — ramps Z linearly across the single path by
// planar-distance progress.
func (p *Planner) emitSpiral(path *pathqueue.Path, layerThicknessUm int64, speed float64) {
	pts := path.Points
	if len(pts) == 0 {
		return
	}

	var total int64
	for i := 1; i < len(pts); i++ {
		total += pts[i].Sub(pts[i-1]).Length()
	}

	z0 := p.writer.CurrentZ()
	var cumulative int64
	for i, pt := range pts {
		if i > 0 {
			cumulative += pt.Sub(pts[i-1]).Length()
		}
		var progress float64
		if total > 0 {
			progress = float64(cumulative) / float64(total)
		}
		z := z0 + int64(float64(layerThicknessUm)*progress)

		width := path.Config.LineWidthUm
		if pt.Width != 0 {
			width = pt.Width
		}
		p.writer.WriteMove(geom.IntPoint{X: pt.X, Y: pt.Y, Z: z}, speed, width)
	}
}

// step 6: overlap-merge emission for WALL-OUTER/WALL-INNER paths.
// Returns false when no cleaner is wired, or the merge pass produced
// nothing, so the caller falls through to default emission.
func (p *Planner) emitOverlapMerged(path *pathqueue.Path, speed float64) bool {
	if p.cleaner == nil {
		return false
	}

	working := path
	closed := path.Config.ClosedLoop
	if p.perimeterStartEndOverlapRatio < 1 {
		working = TrimPerimeter(path, p.perimeterStartEndOverlapRatio)
		closed = false // TrimPerimeter opens a closed loop (§4.5 step 6)
	}

	if working.Config.LineWidthUm <= 0 || len(working.Points) <= 2 {
		return false
	}

	perimeter := make(geom.Polygon, 0, len(working.Points)+1)
	perimeter = append(perimeter, p.writer.GetPositionXY())
	perimeter = append(perimeter, working.Points...)

	optimised, result := overlap.MergePerimeterOverlaps(p.cleaner, perimeter, working.Config.LineWidthUm, closed)
	if !optimised || len(result) == 0 {
		return false
	}

	travelSpeed := p.travelSpeed * p.travelSpeedFactor / 100

	for _, poly := range result {
		if len(poly) == 0 {
			continue
		}
		if len(poly) == 2 {
			cur := p.writer.GetPositionXY()
			d0 := poly[0].Sub(cur).LengthSq()
			d1 := poly[1].Sub(cur).LengthSq()
			if d1 < d0 {
				poly[0], poly[1] = poly[1], poly[0]
			}
		}

		p.writer.WriteMove(geom.IntPoint{X: poly[0].X, Y: poly[0].Y, Z: p.writer.CurrentZ()}, travelSpeed, 0)
		for i := 1; i < len(poly); i++ {
			width := poly[i-1].Width
			p.writer.WriteMove(geom.IntPoint{X: poly[i].X, Y: poly[i].Y, Z: p.writer.CurrentZ()}, speed, width)
		}
	}

	return true
}

// step 7: default emission.
func (p *Planner) emitDefault(path *pathqueue.Path, speed float64) {
	for _, pt := range path.Points {
		width := path.Config.LineWidthUm
		if pt.Width != 0 {
			width = pt.Width
		}
		p.writer.WriteMove(geom.IntPoint{X: pt.X, Y: pt.Y, Z: p.writer.CurrentZ()}, speed, width)
	}
}
