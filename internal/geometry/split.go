package geometry

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/calcpitch-mcp/internal/mask"
)

// ErrAmbiguousGeometry is returned when the hull cannot be split into a
// non-empty left and right half.
var ErrAmbiguousGeometry = errors.New("ambiguous geometry")

// SplitPolicy selects where the vertical boundary between the two halves
// of the bone is drawn.
type SplitPolicy string

const (
	// SplitBoundingBox splits at the horizontal midpoint of the contour's
	// bounding box: minX + width/2.
	SplitBoundingBox SplitPolicy = "bbox"

	// SplitCentroid splits at the x coordinate of the contour's area
	// centroid. Falls back to SplitBoundingBox for zero-area contours.
	SplitCentroid SplitPolicy = "centroid"
)

// ParseSplitPolicy validates a policy name. An empty name selects
// SplitBoundingBox.
func ParseSplitPolicy(s string) (SplitPolicy, error) {
	switch SplitPolicy(s) {
	case "", SplitBoundingBox:
		return SplitBoundingBox, nil
	case SplitCentroid:
		return SplitCentroid, nil
	default:
		return "", fmt.Errorf("unknown split policy: %q", s)
	}
}

// Halves holds hull vertices on either side of the split boundary, each in
// hull order.
type Halves struct {
	SplitX int
	Left   []image.Point
	Right  []image.Point
}

// SplitX computes the split boundary of a contour for the given policy.
func SplitX(c mask.Contour, policy SplitPolicy) int {
	b := c.Bounds()
	mid := b.Min.X + b.Dx()/2
	if policy == SplitCentroid {
		if x, _, ok := c.Centroid(); ok {
			return int(math.Floor(x))
		}
	}
	return mid
}

// Split partitions hull into points with x < splitX (left) and x >= splitX
// (right). Either side being empty yields ErrAmbiguousGeometry.
func Split(hull []image.Point, splitX int) (Halves, error) {
	h := Halves{SplitX: splitX}
	for _, p := range hull {
		if p.X < splitX {
			h.Left = append(h.Left, p)
		} else {
			h.Right = append(h.Right, p)
		}
	}
	if len(h.Left) == 0 || len(h.Right) == 0 {
		return h, fmt.Errorf("%w: split at x=%d leaves %d left and %d right hull points",
			ErrAmbiguousGeometry, splitX, len(h.Left), len(h.Right))
	}
	return h, nil
}
