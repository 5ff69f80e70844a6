// Package gcodewriter is the external "G-code writer" collaborator the
// planner emits moves into: it tracks machine position, Z, extruder
// index and accumulated print time, and renders each move as text in
// the configured firmware dialect.
package gcodewriter

import (
	"fmt"
	"strings"

	"github.com/tpplan/toolpath/internal/geom"
)

// RetractionSettings controls the text emitted by WriteRetraction.
type RetractionSettings struct {
	DistanceMm float64
	SpeedMmS   float64
}

// Writer is the concrete G-code writer: it owns the output buffer plus
// the position/Z/extruder/time state the planner's external interface
// (§6) requires. One Writer is used per print job; WriteHeader/
// WriteFooter bracket one call to the planner's WriteQueuedGCode per
// layer in between.
type Writer struct {
	profile    Profile
	retraction RetractionSettings

	b strings.Builder

	position      geom.IntPoint
	extruderIndex int
	currentZ      int64
	lastE         float64 // total extruded filament length in mm, for relative-E dialects this is informational only

	totalPrintTime float64 // seconds
	fanPercent     int
}

// New returns a Writer configured for the given firmware profile.
func New(profile Profile, retraction RetractionSettings) *Writer {
	return &Writer{profile: profile, retraction: retraction}
}

// String returns everything written so far.
func (w *Writer) String() string {
	return w.b.String()
}

// GetPosition returns the last planar+Z position written.
func (w *Writer) GetPosition() geom.IntPoint {
	return w.position
}

// GetPositionXY returns the last planar position written, Z zeroed.
func (w *Writer) GetPositionXY() geom.IntPoint {
	return geom.IntPoint{X: w.position.X, Y: w.position.Y}
}

// GetPositionZ returns the last Z height written.
func (w *Writer) GetPositionZ() int64 {
	return w.position.Z
}

// GetExtruderIndex returns the currently active extruder.
func (w *Writer) GetExtruderIndex() int {
	return w.extruderIndex
}

// CurrentZ returns the layer height new moves should be written at.
func (w *Writer) CurrentZ() int64 {
	return w.currentZ
}

// SetCurrentZ sets the layer height subsequent moves are written at.
func (w *Writer) SetCurrentZ(z int64) {
	w.currentZ = z
}

// SwitchExtruder emits a tool-change command and updates the tracked
// extruder index.
func (w *Writer) SwitchExtruder(idx int) {
	w.writeComment(fmt.Sprintf("switch to extruder %d", idx))
	fmt.Fprintf(&w.b, "T%d\n", idx)
	w.extruderIndex = idx
}

// WriteRetraction emits a retraction move at the configured distance
// and speed.
func (w *Writer) WriteRetraction() {
	if w.retraction.DistanceMm <= 0 {
		return
	}
	if w.profile.RetractMove != "" {
		w.b.WriteString(w.profile.RetractMove + "\n")
		return
	}
	fmt.Fprintf(&w.b, "%s E%s F%s\n", w.profile.FeedMove,
		w.format(-w.retraction.DistanceMm), w.format(w.retraction.SpeedMmS*60))
}

// WriteFanCommand emits a fan-speed command. pct is 0-100; 0 turns the
// fan off using the profile's FanOff command.
func (w *Writer) WriteFanCommand(pct int) {
	if pct <= 0 {
		if w.profile.FanOff != "" {
			w.b.WriteString(w.profile.FanOff + "\n")
		}
		w.fanPercent = 0
		return
	}
	if w.profile.FanOn == "" {
		return
	}
	speed := pct * 255 / 100
	fmt.Fprintf(&w.b, w.profile.FanOn+"\n", speed)
	w.fanPercent = pct
}

// WriteComment emits a profile-delimited comment line.
func (w *Writer) WriteComment(text string) {
	w.writeComment(text)
}

func (w *Writer) writeComment(text string) {
	w.b.WriteString(w.profile.CommentPrefix + " " + text + w.profile.CommentSuffix + "\n")
}

// WriteMove emits a move to point at speedMmPerS, with an extrusion
// amount proportional to widthUm (0 => a travel, no E term). Position
// and Z are updated to point.
func (w *Writer) WriteMove(point geom.IntPoint, speedMmPerS float64, widthUm int64) {
	cmd := w.profile.RapidMove
	var extrudeTerm string
	if widthUm != 0 {
		cmd = w.profile.FeedMove
		length := point.Sub(w.position).LengthMm()
		// crude constant-height*width extrusion volume -> filament length
		// model, matching the level of detail a planning core needs: the
		// material flow calculation itself belongs to a slicer, not here.
		area := float64(widthUm) / 1000.0 * float64(w.currentZ) / 1000.0
		deltaE := length * area
		w.lastE += deltaE
		e := w.lastE
		if w.profile.ExtruderMode == "M83" {
			e = deltaE
		}
		extrudeTerm = fmt.Sprintf(" E%s", w.format(e))
	}
	fmt.Fprintf(&w.b, "%s X%s Y%s%s F%s\n", cmd,
		w.format(mmFromUm(point.X)), w.format(mmFromUm(point.Y)), extrudeTerm, w.format(speedMmPerS*60))

	if point.Z != w.position.Z {
		fmt.Fprintf(&w.b, "%s Z%s\n", w.profile.RapidMove, w.format(mmFromUm(point.Z)))
	}
	w.position = point
}

// UpdateTotalPrintTime is called once the emission pass has finished
// walking a layer's queue. It is a no-op: the planner keeps the print
// time itself (Planner.TotalPrintTime) and the writer records nothing.
func (w *Writer) UpdateTotalPrintTime() {
}

// WriteHeader emits the profile's startup codes.
func (w *Writer) WriteHeader(headerComment string) {
	w.writeComment(headerComment)
	for _, code := range w.profile.StartCode {
		w.b.WriteString(code + "\n")
	}
	if w.profile.AbsoluteMode != "" {
		w.b.WriteString(w.profile.AbsoluteMode + "\n")
	}
	if w.profile.ExtruderMode != "" {
		w.b.WriteString(w.profile.ExtruderMode + "\n")
	}
}

// WriteFooter emits the profile's shutdown codes, substituting the
// [SafeZ] placeholder.
func (w *Writer) WriteFooter(safeZMm float64) {
	w.writeComment("job complete")
	for _, code := range w.profile.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", w.format(safeZMm))
		w.b.WriteString(code + "\n")
	}
}

func (w *Writer) format(v float64) string {
	return fmt.Sprintf("%.*f", w.profile.DecimalPlaces, v)
}

func mmFromUm(um int64) float64 {
	return float64(um) / 1000.0
}
