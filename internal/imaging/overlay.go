package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"

	"github.com/ironsheep/calcpitch-mcp/internal/geometry"
)

// Palette of the measurement overlay.
var (
	GroundColor    = colorful.Color{R: 0, G: 1, B: 1}
	CalcaneusColor = colorful.Color{R: 1, G: 0, B: 1}
	HeelColor      = colorful.Color{R: 1, G: 0, B: 0}
	ToeColor       = colorful.Color{R: 0, G: 1, B: 0}
)

const (
	labelFont      = gocv.FontHersheySimplex
	labelScale     = 0.5
	labelThickness = 1
	labelPad       = 8
)

// Overlay describes what Annotate draws.
type Overlay struct {
	A, B   image.Point
	Ground geometry.Segment

	// Label is drawn next to the midpoint of A-B. Empty skips the label.
	Label string

	// LabelHex is the label text colour as "#rrggbb". Empty or invalid
	// values draw white text.
	LabelHex string
}

// Annotate returns an RGBA copy of img with the ground line, the calcaneus
// line, both landmark points and the label drawn on top with OpenCV. img is
// not modified and the result's origin is (0, 0).
func Annotate(img image.Image, o Overlay) (*image.RGBA, error) {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	if b.Empty() {
		return dst, nil
	}

	src, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, dst.Pix)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	canvas := gocv.NewMat()
	defer canvas.Close()
	gocv.CvtColor(src, &canvas, gocv.ColorRGBAToBGR)
	src.Close()

	gocv.Line(&canvas, o.Ground.P1, o.Ground.P2, rgba(GroundColor), 2)
	gocv.Line(&canvas, o.A, o.B, rgba(CalcaneusColor), 3)

	white := color.RGBA{255, 255, 255, 255}
	for _, p := range []struct {
		at image.Point
		c  colorful.Color
	}{{o.A, HeelColor}, {o.B, ToeColor}} {
		gocv.Circle(&canvas, p.at, 10, white, 2)
		gocv.Circle(&canvas, p.at, 8, rgba(p.c), -1)
	}

	if o.Label != "" {
		fg := white
		if c, err := colorful.Hex(o.LabelHex); err == nil {
			fg = rgba(c)
		}
		mid := image.Pt((o.A.X+o.B.X)/2+15, (o.A.Y+o.B.Y)/2)
		drawLabel(&canvas, mid, o.Label, fg, color.RGBA{0, 0, 0, 255})
	}

	out := gocv.NewMat()
	defer out.Close()
	gocv.CvtColor(canvas, &out, gocv.ColorBGRToRGBA)
	copy(dst.Pix, out.ToBytes())
	return dst, nil
}

// EncodePNGBase64 encodes img as PNG and returns it base64 encoded.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawLabel puts text on a filled box whose left baseline corner is at.
func drawLabel(canvas *gocv.Mat, at image.Point, text string, fg, bg color.RGBA) {
	size := gocv.GetTextSize(text, labelFont, labelScale, labelThickness)
	box := image.Rect(at.X-5, at.Y-size.Y-5, at.X+size.X+5, at.Y+labelPad)
	gocv.Rectangle(canvas, box, bg, -1)
	gocv.PutText(canvas, text, at, labelFont, labelScale, fg, labelThickness)
}
