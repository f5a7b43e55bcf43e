package analyzer

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/calcpitch-mcp/internal/geometry"
	"github.com/ironsheep/calcpitch-mcp/internal/imaging"
	"github.com/ironsheep/calcpitch-mcp/internal/mask"
	"github.com/ironsheep/calcpitch-mcp/internal/pitch"
	"github.com/ironsheep/calcpitch-mcp/internal/segment"
)

// Segmenter produces a bone mask at the resolution of img.
type Segmenter interface {
	Segment(img image.Image) (*mask.Mask, error)
}

// SideDetector reads the L/R marker of a radiograph. An empty side means
// no marker was found.
type SideDetector interface {
	DetectSide(img image.Image) (string, error)
}

// Analyzer measures the calcaneal pitch angle of lateral foot radiographs.
// It is safe for concurrent use when its Segmenter and SideDetector are.
type Analyzer struct {
	seg          Segmenter
	side         SideDetector
	policy       geometry.SplitPolicy
	kernel       int
	groundLength int
	annotate     bool
	window       imaging.Window
	log          logrus.FieldLogger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSplitPolicy selects how the hull is divided into heel and toe halves.
func WithSplitPolicy(p geometry.SplitPolicy) Option {
	return func(a *Analyzer) { a.policy = p }
}

// WithKernelSize sets the opening kernel edge length.
func WithKernelSize(k int) Option {
	return func(a *Analyzer) { a.kernel = k }
}

// WithGroundLength sets the ground line length in pixels.
func WithGroundLength(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.groundLength = n
		}
	}
}

// WithAnnotation enables the annotated raster in results.
func WithAnnotation(on bool) Option {
	return func(a *Analyzer) { a.annotate = on }
}

// WithWindow sets the window applied to 16-bit files in AnalyzeFile.
func WithWindow(w imaging.Window) Option {
	return func(a *Analyzer) { a.window = w }
}

// WithSideDetector attaches an optional side-marker reader.
func WithSideDetector(d SideDetector) Option {
	return func(a *Analyzer) { a.side = d }
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Analyzer) { a.log = l }
}

// New creates an Analyzer around seg. seg may be nil; Analyze then fails
// with KindModelUnavailable while AnalyzeMask and Recompute keep working.
func New(seg Segmenter, opts ...Option) *Analyzer {
	a := &Analyzer{
		seg:          seg,
		policy:       geometry.SplitBoundingBox,
		kernel:       mask.DefaultKernelSize,
		groundLength: geometry.DefaultGroundLength,
		log:          logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeFile loads the radiograph at path and analyzes it.
func (a *Analyzer) AnalyzeFile(path string) (*Result, error) {
	img, err := imaging.LoadGray(path, a.window)
	if err != nil {
		return nil, newError(KindInput, fmt.Sprintf("cannot read %s", path), err)
	}
	res, err := a.Analyze(img)
	if err != nil {
		return nil, err
	}
	res.Path = path
	return res, nil
}

// Analyze segments img and measures the pitch angle.
func (a *Analyzer) Analyze(img image.Image) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, newError(KindInput, "image is empty", segment.ErrInvalidImage)
	}
	if a.seg == nil {
		return nil, wrap(segment.ErrModelUnavailable)
	}

	start := time.Now()
	m, err := a.seg.Segment(img)
	if err != nil {
		if errors.Is(err, segment.ErrModelUnavailable) || errors.Is(err, segment.ErrInvalidImage) {
			return nil, wrap(err)
		}
		return nil, newError(KindModelUnavailable, "segmentation failed", err)
	}
	a.log.WithFields(logrus.Fields{
		"width":    m.Width,
		"height":   m.Height,
		"bone_px":  m.Count(),
		"duration": time.Since(start).String(),
	}).Debug("segmentation complete")

	return a.AnalyzeMask(img, m)
}

// AnalyzeMask measures the angle on an existing mask. img is the radiograph
// the mask belongs to; it is used for annotation and side detection and may
// be nil, in which case the mask itself is annotated.
func (a *Analyzer) AnalyzeMask(img image.Image, m *mask.Mask) (*Result, error) {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return nil, newError(KindInput, "mask is empty", segment.ErrInvalidImage)
	}
	if img != nil {
		if b := img.Bounds(); b.Dx() != m.Width || b.Dy() != m.Height {
			return nil, newError(KindInput,
				fmt.Sprintf("mask is %dx%d but image is %dx%d", m.Width, m.Height, b.Dx(), b.Dy()), nil)
		}
	}

	contour, err := mask.Clean(m, a.kernel)
	if err != nil {
		return nil, wrap(err)
	}
	l, err := geometry.Locate(contour, a.policy, m.Width, a.groundLength)
	if err != nil {
		a.log.WithError(err).Debug("landmark selection failed")
		return nil, wrap(err)
	}

	res := newResult(pitch.Measure(l.A, l.B), l)

	if a.annotate {
		base := img
		if base == nil {
			base = m.ToImage()
		}
		annotated, err := imaging.Annotate(base, res.Overlay())
		if err != nil {
			a.log.WithError(err).Warn("annotation failed")
		}
		res.Annotated = annotated
	}

	if a.side != nil && img != nil {
		side, err := a.side.DetectSide(img)
		if err != nil {
			a.log.WithError(err).Warn("side marker detection failed")
		}
		res.Side = side
	}

	a.log.WithFields(logrus.Fields{
		"angle":     res.Angle,
		"diagnosis": res.Diagnosis,
		"heel":      res.HeelSide,
		"a":         l.A,
		"b":         l.B,
	}).Info("pitch measured")
	return res, nil
}

// Recompute re-derives angle and diagnosis from edited overlay lines. The
// segmentation model is not involved.
func Recompute(lines [2]geometry.Segment) (*Result, error) {
	m, err := pitch.Recompute(lines)
	if err != nil {
		return nil, newError(KindInput, "invalid overlay lines", err)
	}
	heel := HeelLeft
	if lines[0].P2.X < lines[0].P1.X {
		heel = HeelRight
	}
	return &Result{
		Angle:     m.Angle,
		Diagnosis: m.Diagnosis,
		Color:     m.Color,
		Lines:     lines,
		HeelSide:  heel,
	}, nil
}
