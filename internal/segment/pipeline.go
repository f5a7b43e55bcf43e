package segment

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/calcpitch-mcp/internal/mask"
)

const (
	// InputSize is the square edge length the model expects.
	InputSize = 512

	// DefaultThreshold is the probability above which a pixel is bone.
	DefaultThreshold = 0.5
)

var (
	// ErrModelUnavailable is returned when no model is loaded.
	ErrModelUnavailable = errors.New("segmentation model unavailable")

	// ErrInvalidImage is returned for nil or empty input images.
	ErrInvalidImage = errors.New("invalid input image")
)

// Model predicts a foreground probability for every pixel of a size x size
// single-channel input laid out row by row.
type Model interface {
	Predict(input []float32, size int) ([]float32, error)
}

// Pipeline runs preprocessing, inference and postprocessing around a Model.
type Pipeline struct {
	mu        sync.Mutex
	model     Model
	size      int
	threshold float32
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithInputSize overrides the model input edge length.
func WithInputSize(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.size = size
		}
	}
}

// WithThreshold overrides the foreground probability threshold.
func WithThreshold(t float64) Option {
	return func(p *Pipeline) {
		if t > 0 && t < 1 {
			p.threshold = float32(t)
		}
	}
}

// NewPipeline creates a pipeline that owns model. A nil model is allowed;
// Segment then reports ErrModelUnavailable.
func NewPipeline(model Model, opts ...Option) *Pipeline {
	p := &Pipeline{
		model:     model,
		size:      InputSize,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Available reports whether a model is loaded.
func (p *Pipeline) Available() bool {
	return p != nil && p.model != nil
}

// Segment returns the bone mask of img at img's resolution.
func (p *Pipeline) Segment(img image.Image) (*mask.Mask, error) {
	if !p.Available() {
		return nil, ErrModelUnavailable
	}
	if img == nil || img.Bounds().Empty() {
		return nil, ErrInvalidImage
	}

	input := Preprocess(img, p.size)

	p.mu.Lock()
	probs, err := p.model.Predict(input, p.size)
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	b := img.Bounds()
	return Postprocess(probs, p.size, b.Dx(), b.Dy(), p.threshold)
}

// Preprocess converts img into the model's input tensor: grayscale, resized
// to size x size, scaled to [0, 1] when any sample exceeds 1.
func Preprocess(img image.Image, size int) []float32 {
	gray := imaging.Resize(imaging.Grayscale(img), size, size, imaging.Linear)

	data := make([]float32, size*size)
	var peak float32
	for y := 0; y < size; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < size; x++ {
			v := float32(row[x*4])
			data[y*size+x] = v
			if v > peak {
				peak = v
			}
		}
	}
	if peak > 1 {
		for i := range data {
			data[i] /= 255
		}
	}
	return data
}

// Postprocess thresholds a size x size probability map and scales it to
// width x height with nearest-neighbour sampling.
func Postprocess(probs []float32, size, width, height int, threshold float32) (*mask.Mask, error) {
	if len(probs) != size*size {
		return nil, fmt.Errorf("model returned %d values, expected %d", len(probs), size*size)
	}

	small := image.NewGray(image.Rect(0, 0, size, size))
	for i, p := range probs {
		if p > threshold {
			small.Pix[i] = 255
		}
	}

	if width == size && height == size {
		return mask.FromImage(small, mask.DefaultLevel), nil
	}
	scaled := imaging.Resize(small, width, height, imaging.NearestNeighbor)
	return mask.FromImage(scaled, mask.DefaultLevel), nil
}
