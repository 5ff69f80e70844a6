package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tpplan/toolpath/internal/pathqueue"
)

const layerReportSheet = "Paths"

var layerReportHeaders = []string{
	"Index", "Type", "Extruder", "Speed (mm/s)", "Line Width (um)", "Closed", "Retract", "Points", "Length (mm)",
}

// WriteLayerReport writes one row per queued path: its config,
// extruder, and measured length, the way the teacher tabulates one row
// per sheet in its summary page but as a spreadsheet instead of a PDF
// table.
func WriteLayerReport(path string, queue *pathqueue.Queue) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", layerReportSheet); err != nil {
		return fmt.Errorf("report: failed to name sheet: %w", err)
	}

	for col, header := range layerReportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(layerReportSheet, cell, header); err != nil {
			return fmt.Errorf("report: failed to write header %q: %w", header, err)
		}
	}

	for i, p := range queue.Paths() {
		row := i + 2
		comment := p.Config.GCodeComment
		if p.Config.IsTravel() {
			comment = "TRAVEL"
		}

		values := []interface{}{
			i,
			comment,
			p.ExtruderIndex,
			p.Config.Speed,
			p.Config.LineWidthUm,
			p.Config.ClosedLoop,
			p.Retract,
			len(p.Points),
			float64(p.Length()) / 1000.0,
		}

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(layerReportSheet, cell, v); err != nil {
				return fmt.Errorf("report: failed to write row %d: %w", i, err)
			}
		}
	}

	if err := f.SetColWidth(layerReportSheet, "A", "I", 14); err != nil {
		return fmt.Errorf("report: failed to set column widths: %w", err)
	}

	return f.SaveAs(path)
}
