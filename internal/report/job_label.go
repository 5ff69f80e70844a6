package report

import (
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// JobLabelInfo is the payload encoded into a job's QR label, the way
// LabelInfo carries part metadata into a part label's QR code.
type JobLabelInfo struct {
	JobID          string  `json:"job_id"`
	PathCount      int     `json:"path_count"`
	ExtrusionMm    float64 `json:"extrusion_mm"`
	TravelMm       float64 `json:"travel_mm"`
	LayerThickness int64   `json:"layer_thickness_um"`
}

// JobLabelPNG writes a QR code PNG encoding info as JSON, the size of
// one label (256px square, matching the teacher's part-label QR size).
func JobLabelPNG(path string, info JobLabelInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("report: failed to marshal job label info: %w", err)
	}

	return qrcode.WriteFile(string(data), qrcode.Medium, 256, path)
}
