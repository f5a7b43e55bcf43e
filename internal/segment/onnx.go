package segment

import (
	"fmt"
	"math"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// OnnxConfig describes how to load a segmentation network.
type OnnxConfig struct {
	// LibraryPath is the onnxruntime shared library. Empty uses the
	// runtime's platform default.
	LibraryPath string

	// ModelPath is the exported .onnx weights file.
	ModelPath string

	InputName  string
	OutputName string

	// Size is the square input edge length. Zero means InputSize.
	Size int

	// Sigmoid applies a logistic function to raw logits.
	Sigmoid bool

	// Threads limits intra-op parallelism. Zero leaves the runtime default.
	Threads int
}

// OnnxModel is a Model backed by an onnxruntime session with pre-allocated
// 1x1xSxS input and output tensors.
type OnnxModel struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	size    int
	sigmoid bool
}

var (
	envOnce sync.Once
	envErr  error
)

func initEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		if ort.IsInitialized() {
			return
		}
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		envErr = ort.InitializeEnvironment()
	})
	return envErr
}

// LoadONNX opens cfg.ModelPath and prepares a session. Any failure is
// wrapped in ErrModelUnavailable.
func LoadONNX(cfg OnnxConfig) (*OnnxModel, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("%w: no model path configured", ErrModelUnavailable)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if cfg.Size <= 0 {
		cfg.Size = InputSize
	}
	if cfg.InputName == "" {
		cfg.InputName = "input"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "output"
	}

	if err := initEnvironment(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: onnxruntime init: %v", ErrModelUnavailable, err)
	}

	n := int64(cfg.Size)
	input, err := ort.NewTensor(ort.NewShape(1, 1, n, n), make([]float32, cfg.Size*cfg.Size))
	if err != nil {
		return nil, fmt.Errorf("%w: input tensor: %v", ErrModelUnavailable, err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, n, n))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("%w: output tensor: %v", ErrModelUnavailable, err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("%w: session options: %v", ErrModelUnavailable, err)
	}
	defer options.Destroy()
	if cfg.Threads > 0 {
		options.SetIntraOpNumThreads(cfg.Threads)
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.Value{input},
		[]ort.Value{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	return &OnnxModel{
		session: session,
		input:   input,
		output:  output,
		size:    cfg.Size,
		sigmoid: cfg.Sigmoid,
	}, nil
}

// Predict implements Model. The returned slice is a copy and stays valid
// after the next call.
func (m *OnnxModel) Predict(input []float32, size int) ([]float32, error) {
	if m == nil || m.session == nil {
		return nil, ErrModelUnavailable
	}
	if size != m.size || len(input) != size*size {
		return nil, fmt.Errorf("input is %d values at size %d, model expects %dx%d",
			len(input), size, m.size, m.size)
	}

	copy(m.input.GetData(), input)
	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	out := make([]float32, len(input))
	copy(out, m.output.GetData())
	if m.sigmoid {
		for i, v := range out {
			out[i] = float32(1 / (1 + math.Exp(-float64(v))))
		}
	}
	return out, nil
}

// Close releases the session and its tensors.
func (m *OnnxModel) Close() error {
	if m == nil || m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.input.Destroy()
	m.output.Destroy()
	m.session = nil
	return err
}
