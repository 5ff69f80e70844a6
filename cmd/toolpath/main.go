// Command toolpath is a demonstration CLI driving the planning core
// end to end over one synthetic layer: it builds an outer wall with a
// deliberate hairpin thin-line finger, an inner wall, and a bridge
// segment, plans them, and writes the G-code plus preview artifacts.
//
// Build:
//
//	go build -o toolpath ./cmd/toolpath
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/tpplan/toolpath/internal/cleaner"
	"github.com/tpplan/toolpath/internal/gcodewriter"
	"github.com/tpplan/toolpath/internal/geom"
	"github.com/tpplan/toolpath/internal/layerio"
	"github.com/tpplan/toolpath/internal/pathqueue"
	"github.com/tpplan/toolpath/internal/planner"
	"github.com/tpplan/toolpath/internal/report"
)

func main() {
	profileName := flag.String("profile", "Marlin", "firmware profile: "+profileNames())
	outDir := flag.String("out", ".", "directory to write job artifacts into")
	dxfPath := flag.String("dxf", "", "optional DXF file to source the outer wall polygon from")
	layerThicknessUm := flag.Int64("layer-thickness", 200, "layer thickness in micrometres")
	flag.Parse()

	if err := run(*profileName, *outDir, *dxfPath, *layerThicknessUm); err != nil {
		log.Fatalf("toolpath: %v", err)
	}
}

func profileNames() string {
	names := gcodewriter.GetProfileNames()
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += n
	}
	return s
}

func run(profileName, outDir, dxfPath string, layerThicknessUm int64) error {
	jobID := planner.NewJobID()

	writer := gcodewriter.New(gcodewriter.GetProfile(profileName), gcodewriter.RetractionSettings{
		DistanceMm: 1.0,
		SpeedMmS:   40,
	})

	p := planner.New(writer, 150, 1500, 0.15, true)
	p.SetPolygonCleaner(cleaner.DouglasPeucker{})

	outer, inner, bridge, err := demoLayer(dxfPath)
	if err != nil {
		return fmt.Errorf("building demo layer: %w", err)
	}

	writer.SetCurrentZ(layerThicknessUm)
	writer.WriteHeader("job " + jobID)

	outerConfig := pathqueue.Config{Speed: 60, LineWidthUm: 400, GCodeComment: "WALL-OUTER", ClosedLoop: true}
	innerConfig := pathqueue.Config{Speed: 60, LineWidthUm: 400, GCodeComment: "WALL-INNER", ClosedLoop: true}
	bridgeConfig := pathqueue.Config{Speed: 25, LineWidthUm: 400, GCodeComment: "BRIDGE", ClosedLoop: false}

	p.QueuePolygon(outer, 0, outerConfig)
	p.QueuePolygon(inner, 0, innerConfig)
	p.QueuePolygon(bridge, 0, bridgeConfig)

	p.ForceMinimumLayerTime(2.0, 10)
	p.WriteQueuedGCode(layerThicknessUm, 100, -1)
	writer.WriteFooter(5.0)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	gcodePath := filepath.Join(outDir, jobID+".gcode")
	if err := os.WriteFile(gcodePath, []byte(writer.String()), 0o644); err != nil {
		return fmt.Errorf("writing gcode: %w", err)
	}

	pdfPath := filepath.Join(outDir, jobID+".pdf")
	if err := report.WritePreviewPDF(pdfPath, p.Queue(), jobID); err != nil {
		return fmt.Errorf("writing preview pdf: %w", err)
	}

	xlsxPath := filepath.Join(outDir, jobID+".xlsx")
	if err := report.WriteLayerReport(xlsxPath, p.Queue()); err != nil {
		return fmt.Errorf("writing layer report: %w", err)
	}

	extrusionMm, travelMm := 0.0, 0.0
	for _, path := range p.Queue().Paths() {
		mm := float64(path.Length()) / 1000.0
		if path.Config.IsTravel() {
			travelMm += mm
		} else {
			extrusionMm += mm
		}
	}

	labelPath := filepath.Join(outDir, jobID+"-label.png")
	labelInfo := report.JobLabelInfo{
		JobID:          jobID,
		PathCount:      p.Queue().Len(),
		ExtrusionMm:    extrusionMm,
		TravelMm:       travelMm,
		LayerThickness: layerThicknessUm,
	}
	if err := report.JobLabelPNG(labelPath, labelInfo); err != nil {
		return fmt.Errorf("writing job label: %w", err)
	}

	fmt.Printf("job %s: %d paths, %.1fmm extrusion, %.1fmm travel, %.2fs print time\n",
		jobID, p.Queue().Len(), extrusionMm, travelMm, p.TotalPrintTime())
	fmt.Printf("wrote %s, %s, %s, %s\n", gcodePath, pdfPath, xlsxPath, labelPath)
	return nil
}

// demoLayer builds the outer wall (optionally sourced from a DXF file),
// inner wall, and bridge segment for one synthetic layer. The outer
// wall carries a deliberate hairpin finger — a narrow out-and-back
// detour under one extrusion width — so the overlap-merge emission
// step has something to collapse.
func demoLayer(dxfPath string) (outer, inner, bridge geom.Polygon, err error) {
	if dxfPath != "" {
		result, ierr := layerio.ImportDXFLayer(dxfPath)
		if ierr != nil {
			return nil, nil, nil, ierr
		}
		if len(result.Polygons) == 0 {
			return nil, nil, nil, fmt.Errorf("DXF file %q produced no polygons", dxfPath)
		}
		outer = result.Polygons[0]
	} else {
		outer = geom.Polygon{
			{X: 0, Y: 0},
			{X: 40000, Y: 0},
			{X: 40000, Y: 15000},
			{X: 50000, Y: 15000}, // hairpin finger out
			{X: 50000, Y: 15150}, // finger shoulder
			{X: 40000, Y: 15150}, // finger back in, ~150um from the outbound leg
			{X: 40000, Y: 40000},
			{X: 0, Y: 40000},
		}
	}

	inner = geom.Polygon{
		{X: 5000, Y: 5000},
		{X: 35000, Y: 5000},
		{X: 35000, Y: 35000},
		{X: 5000, Y: 35000},
	}

	bridge = geom.Polygon{
		{X: 10000, Y: 20000},
		{X: 30000, Y: 20000},
	}

	return outer, inner, bridge, nil
}
