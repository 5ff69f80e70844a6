package planner

import "math"

// ForceMinimumLayerTime walks every queued path, summing travel and
// extrusion time from the writer's pre-layer position (§9: this
// intentionally differs from the queue's own LastPosition bookkeeping,
// a divergence the design notes call out and this preserves rather than
// silently reconciles). If the layer would finish faster than minTime it
// slows extrusion down, never below minSpeed, and records the resulting
// total print time.
func (p *Planner) ForceMinimumLayerTime(minTime, minSpeed float64) float64 {
	cursor := p.writer.GetPosition()

	var extrudeTime, travelTime float64
	for _, path := range p.queue.Paths() {
		if len(path.Points) == 0 {
			continue
		}
		var lengthUm int64
		for _, pt := range path.Points {
			lengthUm += pt.Sub(cursor).Length()
			cursor = pt
		}
		seconds := float64(lengthUm) / 1000.0 / path.Config.Speed

		if path.Config.IsTravel() {
			travelTime += seconds
		} else {
			extrudeTime += seconds
		}
	}

	total := extrudeTime + travelTime
	if total >= minTime || extrudeTime <= 0 {
		p.totalPrintTime = total
		return p.totalPrintTime
	}

	minExtrude := math.Max(1, minTime-travelTime)
	factor := extrudeTime / minExtrude

	// The loop below recomputes factor per extrusion path but only the
	// final value is kept — preserved as documented (§9 design notes).
	for _, path := range p.queue.Paths() {
		if path.Config.IsTravel() {
			continue
		}
		if path.Config.Speed*factor < minSpeed {
			factor = minSpeed / path.Config.Speed
		}
	}

	if factor*100 < p.extrudeSpeedFactor {
		p.extrudeSpeedFactor = factor * 100
	} else {
		factor = p.extrudeSpeedFactor / 100
	}

	// extraTime is reserved for a future "circle around" behaviour and
	// deliberately not emitted (§4.4).
	_ = minTime - extrudeTime/factor - travelTime

	p.totalPrintTime = extrudeTime/factor + travelTime
	return p.totalPrintTime
}
