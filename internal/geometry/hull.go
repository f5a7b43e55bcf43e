package geometry

import (
	"image"
	"sort"

	"gocv.io/x/gocv"
)

// Segment is a line segment between two pixel points.
type Segment struct {
	P1 image.Point `json:"p1"`
	P2 image.Point `json:"p2"`
}

// ConvexHull returns the convex hull of pts, computed by OpenCV.
//
// The result starts at the leftmost (then topmost) point, runs clockwise on
// screen and contains no duplicate or collinear vertices. Inputs with fewer
// than three distinct points, or with all points on one line, are reduced
// to their distinct extremes. The input slice is not modified.
func ConvexHull(pts []image.Point) []image.Point {
	uniq := distinct(pts)
	if len(uniq) < 3 {
		return uniq
	}
	if allCollinear(uniq) {
		return []image.Point{uniq[0], uniq[len(uniq)-1]}
	}

	pv := gocv.NewPointVectorFromPoints(uniq)
	defer pv.Close()
	idx := gocv.NewMat()
	defer idx.Close()
	gocv.ConvexHull(pv, &idx, false, false)

	hull := make([]image.Point, 0, idx.Rows())
	for i := 0; i < idx.Rows(); i++ {
		hull = append(hull, uniq[idx.GetIntAt(i, 0)])
	}
	return normalizeHull(hull)
}

// distinct returns pts sorted by x then y without duplicates.
func distinct(pts []image.Point) []image.Point {
	sorted := make([]image.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	uniq := make([]image.Point, 0, len(sorted))
	for _, p := range sorted {
		if len(uniq) == 0 || p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	return uniq
}

func allCollinear(pts []image.Point) bool {
	for _, p := range pts[2:] {
		if cross(pts[0], pts[1], p) != 0 {
			return false
		}
	}
	return true
}

// normalizeHull rotates a hull to start at its leftmost-topmost vertex,
// orients it clockwise in y-down coordinates and drops collinear vertices.
func normalizeHull(hull []image.Point) []image.Point {
	n := len(hull)
	start := 0
	for i, p := range hull {
		s := hull[start]
		if p.X < s.X || (p.X == s.X && p.Y < s.Y) {
			start = i
		}
	}

	var area int
	for i, p := range hull {
		q := hull[(i+1)%n]
		area += p.X*q.Y - q.X*p.Y
	}
	step := 1
	if area < 0 {
		step = n - 1
	}

	ordered := make([]image.Point, n)
	for i := range ordered {
		ordered[i] = hull[(start+i*step)%n]
	}

	// ordered[0] is a lexicographic extreme, so it is always a true vertex
	out := make([]image.Point, 1, n)
	out[0] = ordered[0]
	for i := 1; i < n; i++ {
		if cross(out[len(out)-1], ordered[i], ordered[(i+1)%n]) != 0 {
			out = append(out, ordered[i])
		}
	}
	return out
}

// cross is the z component of (a->b) x (a->c).
func cross(a, b, c image.Point) int {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
