// Package imaging loads radiographs and draws the measurement overlay.
//
// Sources are decoded once and kept in an ImageCache keyed by path. PNG,
// JPEG, GIF, BMP and TIFF files are supported; 16-bit grayscale sources are
// reduced to 8 bits with a Window (centre/width), or by min-max scaling when
// no window is configured. Every analysis stage downstream works on the
// resulting *image.Gray.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// Images returned by ToGray and Annotate always start at (0, 0) regardless
// of the source bounds, so landmark coordinates can be used directly.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Grayscale conversion and
// annotation allocate new images and never touch the cached source.
//
// # Overlay
//
// Annotate draws the ground line in cyan, the calcaneus line in magenta,
// the heel point in red and the toe point in green, with the angle label
// next to the calcaneus line. Drawing goes through OpenCV on a BGR copy of
// the image. EncodePNGBase64 turns the result into the form returned by
// MCP tools.
//
// # Error Handling
//
// Decoding failures wrap ErrUnreadable:
//
//	img, err := cache.LoadGray(path, imaging.Window{})
//	if errors.Is(err, imaging.ErrUnreadable) {
//	    // missing, truncated or unsupported file
//	}
package imaging
