package mask

import (
	"errors"
	"image"
	"image/color"
	"sort"

	"gocv.io/x/gocv"
)

// ErrNoContour is returned when a mask has no foreground component left to
// trace.
var ErrNoContour = errors.New("no contour found in mask")

// Contour is the ordered external boundary of one 8-connected component.
type Contour struct {
	// Points are every boundary pixel in tracing order (image coordinates),
	// starting at the component's first pixel in raster order.
	Points []image.Point

	// Area is the polygon area enclosed by Points.
	Area float64

	// Pixels is the number of pixels inside the boundary, holes included.
	Pixels int
}

// Bounds returns the bounding rectangle of the contour (Max exclusive).
func (c Contour) Bounds() image.Rectangle {
	if len(c.Points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c.Points[0], Max: c.Points[0].Add(image.Pt(1, 1))}
	for _, p := range c.Points[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}

// Centroid returns the area centroid of the contour polygon. ok is false
// when the polygon has zero area.
func (c Contour) Centroid() (x, y float64, ok bool) {
	n := len(c.Points)
	var a, cx, cy float64
	for i := 0; i < n; i++ {
		p := c.Points[i]
		q := c.Points[(i+1)%n]
		cross := float64(p.X*q.Y - q.X*p.Y)
		a += cross
		cx += float64(p.X+q.X) * cross
		cy += float64(p.Y+q.Y) * cross
	}
	if a == 0 {
		return 0, 0, false
	}
	a /= 2
	return cx / (6 * a), cy / (6 * a), true
}

// ExternalContours traces the outer boundary of every 8-connected component
// in m with OpenCV. Contours are returned in raster order of their first
// pixel.
func ExternalContours(m *Mask) ([]Contour, error) {
	if m.Empty() {
		return nil, nil
	}
	src, err := m.toMat()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	found := gocv.FindContours(src, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer found.Close()

	filled := gocv.NewMatWithSize(m.Height, m.Width, gocv.MatTypeCV8U)
	defer filled.Close()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		pv := found.At(i)

		filled.SetTo(gocv.NewScalar(0, 0, 0, 0))
		gocv.DrawContours(&filled, found, i, white, -1)

		contours = append(contours, Contour{
			Points: pv.ToPoints(),
			Area:   gocv.ContourArea(pv),
			Pixels: gocv.CountNonZero(filled),
		})
	}

	sort.SliceStable(contours, func(i, j int) bool {
		a, b := contours[i].Points[0], contours[j].Points[0]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return contours, nil
}

// Largest picks the contour with the largest enclosed area. Ties go to the
// component with more pixels, then to the earlier contour.
func Largest(contours []Contour) (Contour, error) {
	if len(contours) == 0 {
		return Contour{}, ErrNoContour
	}
	best := 0
	for i := 1; i < len(contours); i++ {
		c, b := contours[i], contours[best]
		if c.Area > b.Area || (c.Area == b.Area && c.Pixels > b.Pixels) {
			best = i
		}
	}
	return contours[best], nil
}

// Clean opens the mask with a kernelSize square and returns the largest
// external contour of what remains.
func Clean(m *Mask, kernelSize int) (Contour, error) {
	opened, err := Open(m, kernelSize)
	if err != nil {
		return Contour{}, err
	}
	contours, err := ExternalContours(opened)
	if err != nil {
		return Contour{}, err
	}
	return Largest(contours)
}
