package mask

import (
	"errors"
	"image"
	"testing"
)

func mustContours(t *testing.T, m *Mask) []Contour {
	t.Helper()
	contours, err := ExternalContours(m)
	if err != nil {
		t.Fatalf("ExternalContours failed: %v", err)
	}
	return contours
}

func TestExternalContours_Rectangle(t *testing.T) {
	m := newRectMask(20, 20, image.Rect(3, 4, 9, 10)) // 6x6 block

	contours := mustContours(t, m)
	if len(contours) != 1 {
		t.Fatalf("got %d contours, want 1", len(contours))
	}
	c := contours[0]

	if c.Points[0] != image.Pt(3, 4) {
		t.Errorf("contour should start at first raster pixel, got %v", c.Points[0])
	}
	// boundary of a 6x6 block has 20 pixels
	if len(c.Points) != 20 {
		t.Errorf("boundary length: got %d, want 20", len(c.Points))
	}
	if c.Area != 25 {
		t.Errorf("area: got %v, want 25", c.Area)
	}
	if c.Pixels != 36 {
		t.Errorf("pixels: got %d, want 36", c.Pixels)
	}
	if got, want := c.Bounds(), image.Rect(3, 4, 9, 10); got != want {
		t.Errorf("bounds: got %v, want %v", got, want)
	}

	seen := make(map[image.Point]bool)
	for _, p := range c.Points {
		if seen[p] {
			t.Errorf("point %v traced twice on a convex block", p)
		}
		seen[p] = true
		if !m.At(p.X, p.Y) {
			t.Errorf("contour point %v is not foreground", p)
		}
	}
}

func TestExternalContours_IgnoresHoles(t *testing.T) {
	m := newRectMask(30, 30, image.Rect(5, 5, 25, 25))
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			m.Set(x, y, false)
		}
	}

	contours := mustContours(t, m)
	if len(contours) != 1 {
		t.Fatalf("got %d contours, want 1 (holes are not traced)", len(contours))
	}
	if got := contours[0].Pixels; got != 400 {
		t.Errorf("pixels inside the boundary: got %d, want 400", got)
	}
	for _, p := range contours[0].Points {
		if p.X > 5 && p.X < 24 && p.Y > 5 && p.Y < 24 {
			t.Errorf("point %v belongs to the inner hole boundary", p)
		}
	}
}

func TestExternalContours_SinglePixelAndLine(t *testing.T) {
	m := New(10, 10)
	m.Set(1, 1, true)
	fillRect(m, image.Rect(4, 6, 8, 7))

	contours := mustContours(t, m)
	if len(contours) != 2 {
		t.Fatalf("got %d contours, want 2", len(contours))
	}
	if len(contours[0].Points) != 1 || contours[0].Area != 0 {
		t.Errorf("single pixel contour: got %v area %v", contours[0].Points, contours[0].Area)
	}
	if contours[1].Area != 0 {
		t.Errorf("one-pixel-high line should enclose no area, got %v", contours[1].Area)
	}
}

func TestLargest(t *testing.T) {
	m := newRectMask(60, 60,
		image.Rect(2, 2, 10, 10),
		image.Rect(20, 20, 50, 40),
		image.Rect(2, 45, 12, 55),
	)

	c, err := Largest(mustContours(t, m))
	if err != nil {
		t.Fatalf("Largest failed: %v", err)
	}
	if got, want := c.Bounds(), image.Rect(20, 20, 50, 40); got != want {
		t.Errorf("largest bounds: got %v, want %v", got, want)
	}
}

func TestLargest_Empty(t *testing.T) {
	_, err := Largest(nil)
	if !errors.Is(err, ErrNoContour) {
		t.Errorf("got %v, want ErrNoContour", err)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name    string
		mask    *Mask
		wantErr bool
		bounds  image.Rectangle
	}{
		{
			name:    "empty mask",
			mask:    New(40, 40),
			wantErr: true,
		},
		{
			name:    "only speckle",
			mask:    newRectMask(40, 40, image.Rect(3, 3, 5, 5), image.Rect(30, 30, 33, 33)),
			wantErr: true,
		},
		{
			name:   "bone with noise",
			mask:   newRectMask(80, 80, image.Rect(10, 20, 70, 50), image.Rect(2, 2, 4, 4)),
			bounds: image.Rect(10, 20, 70, 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Clean(tt.mask, DefaultKernelSize)
			if tt.wantErr {
				if !errors.Is(err, ErrNoContour) {
					t.Fatalf("got err %v, want ErrNoContour", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Clean failed: %v", err)
			}
			if got := c.Bounds(); got != tt.bounds {
				t.Errorf("bounds: got %v, want %v", got, tt.bounds)
			}
		})
	}
}

func TestContour_Centroid(t *testing.T) {
	m := newRectMask(40, 40, image.Rect(10, 10, 21, 31))
	c, err := Largest(mustContours(t, m))
	if err != nil {
		t.Fatal(err)
	}
	x, y, ok := c.Centroid()
	if !ok {
		t.Fatal("centroid of a rectangle should exist")
	}
	if x != 15 || y != 20 {
		t.Errorf("centroid: got (%v,%v), want (15,20)", x, y)
	}

	line := Contour{Points: []image.Point{{0, 0}, {5, 0}}}
	if _, _, ok := line.Centroid(); ok {
		t.Error("zero-area contour should report no centroid")
	}
}

func TestExternalContours_RasterOrder(t *testing.T) {
	m := newRectMask(50, 50,
		image.Rect(30, 30, 40, 40),
		image.Rect(5, 30, 10, 35),
		image.Rect(20, 2, 25, 8),
	)
	contours := mustContours(t, m)
	want := []image.Point{{20, 2}, {5, 30}, {30, 30}}
	if len(contours) != len(want) {
		t.Fatalf("got %d contours, want %d", len(contours), len(want))
	}
	for i, c := range contours {
		if c.Points[0] != want[i] {
			t.Errorf("contour %d starts at %v, want %v", i, c.Points[0], want[i])
		}
	}
}
