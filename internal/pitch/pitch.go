package pitch

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/calcpitch-mcp/internal/geometry"
)

// Diagnosis is the category assigned to a pitch angle.
type Diagnosis string

const (
	PesPlanus  Diagnosis = "Pes Planus"
	Borderline Diagnosis = "Borderline"
	Normal     Diagnosis = "Normal"
	PesCavus   Diagnosis = "Pes Cavus"
)

var diagnosisColors = map[Diagnosis]string{
	PesPlanus:  "#ff0000",
	Borderline: "#ffae00",
	Normal:     "#00ff00",
	PesCavus:   "#ff0000",
}

// Hex returns the display colour of d as "#rrggbb". Unknown values are gray.
func (d Diagnosis) Hex() string {
	if hex, ok := diagnosisColors[d]; ok {
		return hex
	}
	return "#808080"
}

// Color returns the display colour of d.
func (d Diagnosis) Color() colorful.Color {
	c, err := colorful.Hex(d.Hex())
	if err != nil {
		return colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	}
	return c
}

// Measurement is a classified pitch angle.
type Measurement struct {
	Angle     float64   `json:"angle"`
	Diagnosis Diagnosis `json:"diagnosis"`
	Color     string    `json:"color"`
}

// Angle returns the pitch angle between a and b in degrees, rounded to one
// decimal.
func Angle(a, b image.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 {
		return 90
	}
	deg := math.Atan(math.Abs(float64(dy))/math.Abs(float64(dx))) * 180 / math.Pi
	return round(deg, 1)
}

// Classify maps an angle to its diagnosis.
func Classify(angle float64) Diagnosis {
	switch {
	case angle < 15:
		return PesPlanus
	case angle < 20:
		return Borderline
	case angle <= 30:
		return Normal
	default:
		return PesCavus
	}
}

// Measure computes and classifies the angle from a to b.
func Measure(a, b image.Point) Measurement {
	angle := Angle(a, b)
	d := Classify(angle)
	return Measurement{Angle: angle, Diagnosis: d, Color: d.Hex()}
}

// Recompute re-derives the measurement from edited overlay lines. lines[0]
// is the calcaneus line (A to B) and lines[1] the ground line; the ground
// line must be horizontal since it carries no angle of its own.
func Recompute(lines [2]geometry.Segment) (Measurement, error) {
	ground := lines[1]
	if ground.P1.Y != ground.P2.Y {
		return Measurement{}, fmt.Errorf("ground line must be horizontal, got y=%d and y=%d",
			ground.P1.Y, ground.P2.Y)
	}
	return Measure(lines[0].P1, lines[0].P2), nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
