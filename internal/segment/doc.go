// Package segment produces a binary calcaneus mask from a radiograph.
//
// # Pipeline
//
// Pipeline wraps exactly one Model and turns an arbitrary image into a mask
// at the source resolution:
//
//  1. Convert to grayscale and resize to the model input size (512x512,
//     bilinear).
//  2. Scale samples to [0, 1] when the maximum exceeds 1.
//  3. Run the model, which returns a per-pixel foreground probability.
//  4. Threshold the probabilities (> 0.5 is bone).
//  5. Resize the mask back to the source size with nearest-neighbour so no
//     intermediate grey levels appear, then binarise.
//
// # Models
//
// Model is a small interface so the pipeline can be driven by the ONNX
// runtime in production and by fakes in tests. OnnxModel loads an exported
// segmentation network through onnxruntime_go; a missing weights file is
// reported as ErrModelUnavailable and is not fatal to the caller.
//
// # Thread Safety
//
// Inference is serialised per Pipeline: at most one Predict call is in
// flight for a given model instance. Create one Pipeline per model and
// share it.
package segment
