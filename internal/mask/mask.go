package mask

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/segment"
)

// DefaultLevel is the gray level at or above which a raster pixel counts as
// foreground when converting an image into a Mask.
const DefaultLevel = 128

// Mask is a binary image where true marks bone tissue.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// New returns an empty (all background) mask of the given size.
func New(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// At reports whether (x, y) is foreground. Out-of-range coordinates are
// background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set marks (x, y) as foreground or background. Out-of-range coordinates
// are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Empty reports whether the mask has no foreground pixels.
func (m *Mask) Empty() bool {
	for _, v := range m.Pix {
		if v {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	c := New(m.Width, m.Height)
	copy(c.Pix, m.Pix)
	return c
}

// FlipH returns the mask mirrored left to right.
func (m *Mask) FlipH() *Mask {
	out := New(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		row := y * m.Width
		for x := 0; x < m.Width; x++ {
			out.Pix[row+m.Width-1-x] = m.Pix[row+x]
		}
	}
	return out
}

// ToImage renders the mask as an 8-bit gray image (255 = foreground).
func (m *Mask) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v {
			img.Pix[(i/m.Width)*img.Stride+i%m.Width] = 255
		}
	}
	return img
}

// FromImage binarises img with bild's threshold: pixels whose luminance is
// at least level become foreground. The mask origin is moved to (0,0).
func FromImage(img image.Image, level uint8) *Mask {
	bounds := img.Bounds()
	bin := segment.Threshold(img, level)
	m := New(bounds.Dx(), bounds.Dy())
	bb := bin.Bounds()
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if bin.GrayAt(bb.Min.X+x, bb.Min.Y+y) == (color.Gray{Y: 255}) {
				m.Pix[y*m.Width+x] = true
			}
		}
	}
	return m
}
