package analyzer

import (
	"fmt"
	"image"

	"github.com/ironsheep/calcpitch-mcp/internal/geometry"
	"github.com/ironsheep/calcpitch-mcp/internal/imaging"
	"github.com/ironsheep/calcpitch-mcp/internal/pitch"
)

// Heel sides.
const (
	HeelLeft  = "left"
	HeelRight = "right"
)

// Result is a successful measurement.
type Result struct {
	// Path is the source file, set by AnalyzeFile.
	Path string `json:"path,omitempty"`

	Angle     float64         `json:"angle"`
	Diagnosis pitch.Diagnosis `json:"diagnosis"`
	Color     string          `json:"color"`

	// Lines holds the calcaneus line (A to B) followed by the ground line.
	Lines [2]geometry.Segment `json:"lines"`

	// HeelSide is "left" or "right".
	HeelSide string `json:"heel_side"`

	// Side is the detected L/R marker, empty when unknown.
	Side string `json:"side,omitempty"`

	// Annotated is the review raster, present when annotation is enabled.
	Annotated *image.RGBA `json:"-"`
}

func newResult(m pitch.Measurement, l geometry.Landmarks) *Result {
	heel := HeelRight
	if l.HeelLeft {
		heel = HeelLeft
	}
	return &Result{
		Angle:     m.Angle,
		Diagnosis: m.Diagnosis,
		Color:     m.Color,
		Lines:     [2]geometry.Segment{l.Calcaneus(), l.Ground},
		HeelSide:  heel,
	}
}

// Points returns the heel point A and toe point B from Lines.
func (r *Result) Points() (a, b image.Point) {
	return r.Lines[0].P1, r.Lines[0].P2
}

// Overlay describes the review drawing for r.
func (r *Result) Overlay() imaging.Overlay {
	a, b := r.Points()
	return imaging.Overlay{
		A:        a,
		B:        b,
		Ground:   r.Lines[1],
		Label:    fmt.Sprintf("%.1f deg", r.Angle),
		LabelHex: "#ffffff",
	}
}
