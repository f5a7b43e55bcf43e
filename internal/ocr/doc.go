// Package ocr reads the L/R side marker burned into a radiograph using
// Tesseract (via gosseract/v2).
//
// # Prerequisites
//
// Tesseract and its English language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Side Detection
//
// Technicians place a lead "L" or "R" marker near the top of a lateral
// view. SideReader looks only at the top 40% of the image, split into two
// overlapping windows (0-60% and 40-100% of the width), each padded with a
// 20 px black border. Every window is tried in several renditions until a
// token matches:
//
//   - original and inverted (markers are usually white on dark)
//   - fixed threshold at 180 and its inverse
//   - 2x bilinear upscale and its inverse
//
// Accepted tokens, case-insensitive:
//
//	L  LT  LEFT  SOL  L.        -> "L"
//	R  RT  RIGHT SAG  SAĞ  R.   -> "R"
//
// Words below the minimum confidence (default 0.3) are ignored. When nothing
// matches the result is "" with a nil error.
//
// # Performance Considerations
//
// OCR is expensive and runs up to twelve times per image. Images wider
// than 1200 px are downscaled first. The reader is off the measurement's
// critical path: callers log its errors and carry on.
package ocr
