package masktest

import (
	"image"
	"testing"
)

func TestRects_Clipped(t *testing.T) {
	m := Rects(10, 10, image.Rect(8, 8, 20, 20), image.Rect(0, 0, 2, 1))
	if got := m.Count(); got != 4+2 {
		t.Errorf("Count: got %d, want 6", got)
	}
	if !m.At(9, 9) || m.At(7, 9) {
		t.Error("rectangle not clipped to the mask")
	}
}
