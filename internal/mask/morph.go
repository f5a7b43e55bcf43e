package mask

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DefaultKernelSize is the side of the square structuring element used by
// Clean.
const DefaultKernelSize = 5

// Open applies a morphological opening (erosion followed by dilation) with a
// size x size rectangular structuring element. OpenCV's default morphology
// border keeps pixels outside the mask out of both passes, so shapes
// touching the border are not eroded from the outside. A size below 2
// returns an unchanged copy.
func Open(m *Mask, size int) (*Mask, error) {
	if size < 2 || m.Empty() {
		return m.Clone(), nil
	}

	src, err := m.toMat()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(size, size))
	defer kernel.Close()

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(src, &opened, gocv.MorphOpen, kernel)

	return fromMat(opened)
}

// toMat copies m into a single-channel 8-bit Mat, 255 for foreground.
func (m *Mask) toMat() (gocv.Mat, error) {
	buf := make([]byte, len(m.Pix))
	for i, v := range m.Pix {
		if v {
			buf[i] = 255
		}
	}
	view, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8UC1, buf)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to convert %dx%d mask: %w", m.Width, m.Height, err)
	}
	defer view.Close()
	// view borrows buf; the clone owns its pixels
	return view.Clone(), nil
}

// fromMat reads a single-channel 8-bit Mat back into a Mask. Any non-zero
// pixel is foreground.
func fromMat(mat gocv.Mat) (*Mask, error) {
	if mat.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("unexpected mat type %v", mat.Type())
	}
	data := mat.ToBytes()
	out := New(mat.Cols(), mat.Rows())
	if len(data) != len(out.Pix) {
		return nil, fmt.Errorf("mat holds %d bytes for %dx%d", len(data), out.Width, out.Height)
	}
	for i, v := range data {
		out.Pix[i] = v != 0
	}
	return out, nil
}
