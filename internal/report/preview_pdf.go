// Package report is an external-to-the-core consumer: it reads a
// finished PathQueue and renders human-facing artifacts (a PDF toolpath
// preview, an Excel per-layer report, a QR job label). Nothing here
// feeds back into planning.
package report

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/tpplan/toolpath/internal/pathqueue"
)

// wallColor mirrors the teacher's partColors scheme, keyed by
// GCodeComment instead of part index.
type wallColor struct{ R, G, B int }

var commentColors = map[string]wallColor{
	"WALL-OUTER": {R: 33, G: 150, B: 243},  // blue
	"WALL-INNER": {R: 76, G: 175, B: 80},   // green
	"BRIDGE":     {R: 255, G: 152, B: 0},   // orange
}

var defaultColor = wallColor{R: 156, G: 39, B: 176} // purple, anything else

func colorFor(comment string) wallColor {
	if c, ok := commentColors[comment]; ok {
		return c
	}
	return defaultColor
}

// Page layout constants (A4 landscape in mm), matching the teacher's
// sheet-page layout.
const (
	pageWidth   = 297.0
	pageHeight  = 210.0
	marginLeft  = 15.0
	marginRight = 15.0
	marginTop   = 15.0
	statsHeight = 12.0
	drawAreaTop = marginTop + statsHeight + 5.0
)

// WritePreviewPDF renders queue as a print preview: travels dashed,
// extrusions solid, coloured by GCodeComment, scaled to fit one A4
// landscape page the way ExportPDF scales a sheet to its page.
func WritePreviewPDF(path string, queue *pathqueue.Queue, jobID string) error {
	paths := queue.Paths()
	if len(paths) == 0 {
		return fmt.Errorf("report: no paths to preview")
	}

	minX, minY, maxX, maxY := boundingBoxMm(paths)
	if maxX <= minX || maxY <= minY {
		// Degenerate bounds (a single point, or nothing moved): pad out
		// to a 10mm square so the scale math below stays finite.
		minX, minY = minX-5, minY-5
		maxX, maxY = maxX+5, maxY+5
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginTop)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 8, "Toolpath Preview: "+jobID, "", 0, "L", false, 0, "")

	extrusionLen, travelLen := 0.0, 0.0
	for _, p := range paths {
		mm := float64(p.Length()) / 1000.0
		if p.Config.IsTravel() {
			travelLen += mm
		} else {
			extrusionLen += mm
		}
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+8)
	stats := fmt.Sprintf("Paths: %d | Extrusion: %.1f mm | Travel: %.1f mm", len(paths), extrusionLen, travelLen)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginTop

	scaleX := drawWidth / (maxX - minX)
	scaleY := drawHeight / (maxY - minY)
	scale := math.Min(scaleX, scaleY)

	canvasW := (maxX - minX) * scale
	canvasH := (maxY - minY) * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	project := func(xMm, yMm float64) (float64, float64) {
		// Flip Y: print-plane Y grows up, PDF Y grows down.
		return offsetX + (xMm-minX)*scale, offsetY + canvasH - (yMm-minY)*scale
	}

	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.2)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "D")

	seen := map[string]bool{}
	var legendOrder []string

	var cursorX, cursorY float64
	haveCursor := false

	for _, p := range paths {
		if len(p.Points) == 0 {
			continue
		}

		if p.Config.IsTravel() {
			pdf.SetDrawColor(180, 180, 180)
			pdf.SetLineWidth(0.15)
			pdf.SetDashPattern([]float64{1.5, 1.5}, 0)
		} else {
			col := colorFor(p.Config.GCodeComment)
			pdf.SetDrawColor(col.R, col.G, col.B)
			pdf.SetLineWidth(0.35)
			pdf.SetDashPattern(nil, 0)
			if !seen[p.Config.GCodeComment] {
				seen[p.Config.GCodeComment] = true
				legendOrder = append(legendOrder, p.Config.GCodeComment)
			}
		}

		for _, pt := range p.Points {
			x, y := project(float64(pt.X)/1000.0, float64(pt.Y)/1000.0)
			if haveCursor {
				pdf.Line(cursorX, cursorY, x, y)
			}
			cursorX, cursorY = x, y
			haveCursor = true
		}
	}
	pdf.SetDashPattern(nil, 0)

	drawLegend(pdf, legendOrder, offsetY+canvasH+4)

	return pdf.OutputFileAndClose(path)
}

func boundingBoxMm(paths []*pathqueue.Path) (minX, minY, maxX, maxY float64) {
	first := true
	for _, p := range paths {
		for _, pt := range p.Points {
			x, y := float64(pt.X)/1000.0, float64(pt.Y)/1000.0
			if first {
				minX, maxX, minY, maxY = x, x, y, y
				first = false
				continue
			}
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}
	return
}

func drawLegend(pdf *fpdf.Fpdf, comments []string, y float64) {
	if len(comments) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(20, 4, "Legend:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 22
	for _, comment := range comments {
		col := colorFor(comment)
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, y+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, y)
		w := pdf.GetStringWidth(comment) + 2
		pdf.CellFormat(w, 4, comment, "", 0, "L", false, 0, "")
		xPos += w + 8
	}
}
