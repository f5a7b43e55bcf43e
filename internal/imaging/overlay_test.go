package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/ironsheep/calcpitch-mcp/internal/geometry"
)

func TestAnnotate(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 400, 300))
	o := Overlay{
		A:        image.Pt(50, 250),
		B:        image.Pt(300, 200),
		Ground:   geometry.Segment{P1: image.Pt(50, 250), P2: image.Pt(300, 250)},
		Label:    "11.3 deg",
		LabelHex: "#ff0000",
	}

	out, err := Annotate(src, o)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", out.Bounds(), src.Bounds())
	}

	tests := []struct {
		name string
		at   image.Point
		want color.RGBA
	}{
		{"heel dot", image.Pt(50, 250), rgba(HeelColor)},
		{"toe dot", image.Pt(300, 200), rgba(ToeColor)},
		{"ground line", image.Pt(200, 250), rgba(GroundColor)},
		{"calcaneus line", image.Pt(150, 230), rgba(CalcaneusColor)},
		{"untouched", image.Pt(5, 5), color.RGBA{0, 0, 0, 255}},
	}
	for _, tt := range tests {
		if got := out.RGBAAt(tt.at.X, tt.at.Y); got != tt.want {
			t.Errorf("%s at %v: got %v, want %v", tt.name, tt.at, got, tt.want)
		}
	}

	for i, v := range src.Pix {
		if v != 0 {
			t.Fatalf("source modified at %d", i)
		}
	}
}

func TestAnnotate_ClipsAtBorder(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 20, 20))
	o := Overlay{
		A:      image.Pt(0, 19),
		B:      image.Pt(19, 0),
		Ground: geometry.Segment{P1: image.Pt(0, 19), P2: image.Pt(20, 19)},
		Label:  "45.0 deg",
	}
	// must not fail when shapes run off the canvas
	out, err := Annotate(src, o)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if out.Bounds().Dx() != 20 {
		t.Errorf("width = %d", out.Bounds().Dx())
	}
}

func TestAnnotate_LabelBox(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 300, 200))
	for i := range src.Pix {
		src.Pix[i] = 128
	}
	o := Overlay{
		A:        image.Pt(20, 180),
		B:        image.Pt(220, 20),
		Ground:   geometry.Segment{P1: image.Pt(20, 180), P2: image.Pt(270, 180)},
		Label:    "38.7 deg",
		LabelHex: "#00ff00",
	}
	out, err := Annotate(src, o)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	// label baseline starts at the midpoint shifted 15 px right; the box
	// reaches labelPad below the baseline
	at := image.Pt(135, 100)
	if got := out.RGBAAt(at.X-3, at.Y+labelPad-1); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("label box corner: got %v, want black", got)
	}
	var text int
	for y := at.Y - 15; y < at.Y; y++ {
		for x := at.X; x < at.X+60; x++ {
			if out.RGBAAt(x, y) == (color.RGBA{0, 255, 0, 255}) {
				text++
			}
		}
	}
	if text == 0 {
		t.Error("no label text drawn in the label colour")
	}
}

func TestAnnotate_SubImageOrigin(t *testing.T) {
	full := image.NewGray(image.Rect(0, 0, 200, 200))
	sub := full.SubImage(image.Rect(50, 50, 150, 150))
	o := Overlay{
		A:      image.Pt(10, 90),
		B:      image.Pt(90, 60),
		Ground: geometry.Segment{P1: image.Pt(10, 90), P2: image.Pt(100, 90)},
	}
	out, err := Annotate(sub, o)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 100, 100) {
		t.Fatalf("bounds = %v, want origin at (0,0)", out.Bounds())
	}
	if got := out.RGBAAt(10, 90); got != rgba(HeelColor) {
		t.Errorf("heel dot at (10,90): got %v", got)
	}
}

func TestEncodePNGBase64(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 7, 3))
	s, err := EncodePNGBase64(img)
	if err != nil {
		t.Fatalf("EncodePNGBase64 failed: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	decoded, err := png.Decode(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatalf("invalid png: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}
