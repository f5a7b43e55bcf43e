package geometry

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/calcpitch-mcp/internal/mask"
)

// DefaultGroundLength is how far, in pixels, the ground line is drawn from
// the heel toward the toe.
const DefaultGroundLength = 250

// Landmarks is the oriented landmark pair with its ground reference.
type Landmarks struct {
	// A is the posterior (heel) point.
	A image.Point `json:"a"`

	// B is the anterior-inferior (toe side) point.
	B image.Point `json:"b"`

	// HeelLeft is true when the heel lies in the left half of the image.
	HeelLeft bool `json:"heel_left"`

	// Ground is the horizontal reference through A, drawn toward B.
	Ground Segment `json:"ground"`
}

// Calcaneus returns the segment from A to B.
func (l Landmarks) Calcaneus() Segment {
	return Segment{P1: l.A, P2: l.B}
}

// Deepest returns the lowest point (maximum y) of pts. When several points
// share that y, their x coordinates are averaged so the landmark sits in the
// middle of a flat edge instead of on one of its ends. A mean exactly
// halfway between two pixels is rounded toward the toe, which keeps the
// landmark of a mirrored image the mirror of the original. ok is false for
// an empty set.
func Deepest(pts []image.Point, toeRight bool) (p image.Point, ok bool) {
	if len(pts) == 0 {
		return image.Point{}, false
	}
	maxY := pts[0].Y
	for _, q := range pts[1:] {
		if q.Y > maxY {
			maxY = q.Y
		}
	}

	xs := make([]float64, 0, 2)
	for _, q := range pts {
		if q.Y == maxY {
			xs = append(xs, float64(q.X))
		}
	}
	mean := stat.Mean(xs, nil)
	x := math.Ceil(mean - 0.5)
	if toeRight {
		x = math.Floor(mean + 0.5)
	}
	return image.Point{X: int(x), Y: maxY}, true
}

// Orient resolves heel and toe from the two halves and builds the ground
// line. width is the image width used to clamp the ground line; length is
// the ground line length in pixels.
//
// The half whose deepest point has the larger y is the heel; on a tie the
// left half is the heel. The toe point is re-selected from the other half
// as the anterior-inferior corner: maximum x+y when the toe is on the right,
// minimum x-y when it is on the left.
func Orient(h Halves, width, length int) (Landmarks, error) {
	left, okL := Deepest(h.Left, true)
	right, okR := Deepest(h.Right, false)
	if !okL || !okR {
		return Landmarks{}, ErrAmbiguousGeometry
	}

	var l Landmarks
	if left.Y >= right.Y {
		l.HeelLeft = true
		l.A = left
		l.B = toePoint(h.Right, true)
	} else {
		l.A = right
		l.B = toePoint(h.Left, false)
	}

	l.Ground = GroundLine(l.A, l.HeelLeft, width, length)
	return l, nil
}

// toePoint returns the point of pts furthest along (1, 1) when the toe is on
// the right, or along (-1, 1) when it is on the left. Equal scores go to
// the lower point; two points with the same score and y are the same point.
func toePoint(pts []image.Point, toeRight bool) image.Point {
	sx := -1
	if toeRight {
		sx = 1
	}
	best := pts[0]
	for _, p := range pts[1:] {
		s, bs := sx*p.X+p.Y, sx*best.X+best.Y
		if s > bs || (s == bs && p.Y > best.Y) {
			best = p
		}
	}
	return best
}

// GroundLine returns the horizontal reference segment at heel.Y. It starts
// at the heel and extends length pixels toward the toe, clamped to
// [0, width]. The segment is always ordered left to right.
func GroundLine(heel image.Point, heelLeft bool, width, length int) Segment {
	if heelLeft {
		return Segment{
			P1: image.Point{X: heel.X, Y: heel.Y},
			P2: image.Point{X: min(width, heel.X+length), Y: heel.Y},
		}
	}
	return Segment{
		P1: image.Point{X: max(0, heel.X-length), Y: heel.Y},
		P2: image.Point{X: heel.X, Y: heel.Y},
	}
}

// Locate runs hull, split and orientation on a cleaned contour.
func Locate(c mask.Contour, policy SplitPolicy, width, length int) (Landmarks, error) {
	hull := ConvexHull(c.Points)
	halves, err := Split(hull, SplitX(c, policy))
	if err != nil {
		return Landmarks{}, err
	}
	return Orient(halves, width, length)
}
