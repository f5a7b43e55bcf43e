// Package masktest builds synthetic bone masks for tests, the way
// net/http/httptest builds servers.
package masktest

import (
	"image"

	"github.com/ironsheep/calcpitch-mcp/internal/mask"
)

// Fill marks every pixel of rects, clipped to m, as foreground.
func Fill(m *mask.Mask, rects ...image.Rectangle) {
	bounds := image.Rect(0, 0, m.Width, m.Height)
	for _, r := range rects {
		r = r.Intersect(bounds)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				m.Set(x, y, true)
			}
		}
	}
}

// Rects returns a w x h mask with rects filled in.
func Rects(w, h int, rects ...image.Rectangle) *mask.Mask {
	m := mask.New(w, h)
	Fill(m, rects...)
	return m
}
