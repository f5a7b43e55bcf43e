package ocr

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// Marker sides.
const (
	Left  = "L"
	Right = "R"
)

const (
	// DefaultMinConfidence is the lowest word confidence considered.
	DefaultMinConfidence = 0.3

	// DefaultMaxWidth is the width above which images are downscaled
	// before OCR.
	DefaultMaxWidth = 1200

	markerPadding   = 20
	markerThreshold = 180
)

var sideTokens = map[string]string{
	"L": Left, "LT": Left, "LEFT": Left, "SOL": Left, "L.": Left,
	"R": Right, "RT": Right, "RIGHT": Right, "SAG": Right, "SAĞ": Right, "R.": Right,
}

// MatchSide maps a recognised token to Left or Right, or "" when the token
// is not a side marker.
func MatchSide(text string) string {
	return sideTokens[strings.ToUpper(strings.TrimSpace(text))]
}

// SideReader detects the L/R marker of a radiograph.
type SideReader struct {
	Language      string
	MinConfidence float64
	MaxWidth      int

	recognize Recognizer
	log       logrus.FieldLogger
}

// SideOption configures a SideReader.
type SideOption func(*SideReader)

// WithRecognizer replaces the Tesseract backend.
func WithRecognizer(r Recognizer) SideOption {
	return func(s *SideReader) { s.recognize = r }
}

// WithLogger sets the logger used for per-variant diagnostics.
func WithLogger(l logrus.FieldLogger) SideOption {
	return func(s *SideReader) { s.log = l }
}

// WithMinConfidence overrides DefaultMinConfidence.
func WithMinConfidence(c float64) SideOption {
	return func(s *SideReader) { s.MinConfidence = c }
}

// NewSideReader creates a reader backed by Tesseract.
func NewSideReader(opts ...SideOption) *SideReader {
	s := &SideReader{
		Language:      "eng",
		MinConfidence: DefaultMinConfidence,
		MaxWidth:      DefaultMaxWidth,
		recognize:     Tesseract,
		log:           logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DetectSide returns Left, Right or "" for img. The left window is searched
// before the right one and the first matching variant wins.
func (s *SideReader) DetectSide(img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("empty image")
	}

	var lastErr error
	failures := 0
	total := 0
	for _, roi := range MarkerRegions(img, s.MaxWidth) {
		for _, v := range variants(roi) {
			total++
			words, err := s.recognize(v.img, s.Language)
			if err != nil {
				failures++
				lastErr = err
				s.log.WithError(err).WithField("variant", v.name).Debug("marker OCR failed")
				continue
			}
			for _, w := range words {
				if w.Confidence < s.MinConfidence {
					continue
				}
				if side := MatchSide(w.Text); side != "" {
					s.log.WithFields(logrus.Fields{
						"variant":    v.name,
						"text":       w.Text,
						"confidence": w.Confidence,
					}).Debug("side marker found")
					return side, nil
				}
			}
		}
	}

	if failures == total && lastErr != nil {
		return "", fmt.Errorf("side marker OCR failed: %w", lastErr)
	}
	return "", nil
}

// MarkerRegions returns the padded top-left and top-right search windows
// of img, after downscaling it to at most maxWidth pixels wide.
func MarkerRegions(img image.Image, maxWidth int) []image.Image {
	var gray image.Image = imaging.Grayscale(img)
	if w := gray.Bounds().Dx(); maxWidth > 0 && w > maxWidth {
		gray = imaging.Resize(gray, maxWidth, 0, imaging.Box)
	}

	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	roiH := int(float64(h) * 0.40)
	if roiH < 1 {
		roiH = 1
	}

	left := imaging.Crop(gray, image.Rect(0, 0, int(float64(w)*0.60), roiH))
	right := imaging.Crop(gray, image.Rect(int(float64(w)*0.40), 0, w, roiH))
	return []image.Image{pad(left), pad(right)}
}

func pad(img image.Image) image.Image {
	b := img.Bounds()
	canvas := imaging.New(b.Dx()+2*markerPadding, b.Dy()+2*markerPadding, color.Black)
	return imaging.Paste(canvas, img, image.Pt(markerPadding, markerPadding))
}

type variant struct {
	name string
	img  image.Image
}

func variants(roi image.Image) []variant {
	fixed := segment.Threshold(roi, markerThreshold)
	up := imaging.Resize(roi, roi.Bounds().Dx()*2, roi.Bounds().Dy()*2, imaging.Linear)
	return []variant{
		{"original", roi},
		{"inverted", imaging.Invert(roi)},
		{"fixed", fixed},
		{"fixed-inverted", imaging.Invert(fixed)},
		{"upscaled", up},
		{"upscaled-inverted", imaging.Invert(up)},
	}
}
