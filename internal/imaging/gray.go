package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"

	"github.com/disintegration/imaging"
)

// ErrUnreadable is returned when a file cannot be opened or decoded as an
// image.
var ErrUnreadable = errors.New("unreadable image")

// Window maps raw 16-bit intensities onto the 8-bit display range.
//
// Values below Center-Width/2 become 0 and values above Center+Width/2
// become 255. A zero Width selects min-max normalisation over the image.
type Window struct {
	Center float64 `json:"center" yaml:"center"`
	Width  float64 `json:"width" yaml:"width"`
}

// LoadGray decodes the file at path and converts it to 8-bit grayscale.
// 16-bit grayscale sources are normalised with w.
func LoadGray(path string, w Window) (*image.Gray, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return ToGray(img, w), nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	return img, nil
}

// ToGray returns an 8-bit grayscale copy of img with its origin at (0, 0).
// The source is never modified.
func ToGray(img image.Image, w Window) *image.Gray {
	switch src := img.(type) {
	case *image.Gray16:
		return window16(src, w)
	case *image.Gray:
		b := src.Bounds()
		dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return dst
	}

	g := imaging.Grayscale(img)
	dst := image.NewGray(image.Rect(0, 0, g.Rect.Dx(), g.Rect.Dy()))
	for i := range dst.Pix {
		dst.Pix[i] = g.Pix[i*4]
	}
	return dst
}

func window16(src *image.Gray16, w Window) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	lo, hi := w.Center-w.Width/2, w.Center+w.Width/2
	if w.Width <= 0 {
		lo, hi = math.Inf(1), math.Inf(-1)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				v := float64(src.Gray16At(x, y).Y)
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
		}
	}
	if hi <= lo {
		return dst
	}

	span := hi - lo
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			// scale after multiplying so a window centre lands on 127.5 exactly
			v := (float64(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y) - lo) * 255 / span
			dst.Pix[y*dst.Stride+x] = uint8(math.Round(math.Max(0, math.Min(255, v))))
		}
	}
	return dst
}
