package pitch

import (
	"math"

	"github.com/ironsheep/calcpitch-mcp/internal/geometry"
)

// MearyGrade is the category of a Meary (talus to first metatarsal) angle.
type MearyGrade string

const (
	MearyNormal       MearyGrade = "Normal"
	MearyMildPlanus   MearyGrade = "Mild Pes Planus"
	MearySeverePlanus MearyGrade = "Severe Pes Planus"
	MearyDeformity    MearyGrade = "Deformity / Error"
)

var mearyColors = map[MearyGrade]string{
	MearyNormal:       "#55efc4",
	MearyMildPlanus:   "#ffeaa7",
	MearySeverePlanus: "#ff7675",
	MearyDeformity:    "#fab1a0",
}

// Hex returns the display colour of g.
func (g MearyGrade) Hex() string {
	if hex, ok := mearyColors[g]; ok {
		return hex
	}
	return "#b2bec3"
}

// LineAngle returns the angle between the direction vectors of l1 and l2 in
// degrees, in [0, 180], rounded to two decimals. A zero-length line gives 0.
func LineAngle(l1, l2 geometry.Segment) float64 {
	v1x := float64(l1.P2.X - l1.P1.X)
	v1y := float64(l1.P2.Y - l1.P1.Y)
	v2x := float64(l2.P2.X - l2.P1.X)
	v2y := float64(l2.P2.Y - l2.P1.Y)

	mag1 := math.Hypot(v1x, v1y)
	mag2 := math.Hypot(v2x, v2y)
	if mag1 == 0 || mag2 == 0 {
		return 0
	}

	cos := (v1x*v2x + v1y*v2y) / (mag1 * mag2)
	cos = math.Max(-1, math.Min(1, cos))
	return round(math.Acos(cos)*180/math.Pi, 2)
}

// MearyDeviation folds a line angle into its deviation from a straight
// axis: lines drawn head to tail measure near 180 and are folded back.
func MearyDeviation(angle float64) float64 {
	if angle > 90 {
		return math.Abs(180 - angle)
	}
	return angle
}

// GradeMeary classifies a Meary angle given as a LineAngle result.
func GradeMeary(angle float64) MearyGrade {
	dev := MearyDeviation(angle)
	switch {
	case dev <= 4:
		return MearyNormal
	case dev <= 15:
		return MearyMildPlanus
	case dev <= 30:
		return MearySeverePlanus
	default:
		return MearyDeformity
	}
}
