// Package mask holds the binary bone mask produced by segmentation and the
// cleaning steps applied to it before any geometry runs.
//
// # Coordinate System
//
// Masks use the same coordinates as the source image: (0,0) is the top-left
// pixel, X grows to the right and Y grows downward. A mask always has the
// dimensions of the image it was produced for.
//
// # Cleaning
//
// Clean performs the two steps the landmark search depends on, both with
// OpenCV through gocv:
//
//  1. Morphological opening with a rectangular structuring element (5x5 by
//     default). Speckles smaller than the element disappear, while the
//     external silhouette of anything at least as thick as the element is
//     left exactly where it was.
//  2. External contour extraction over 8-connected components
//     (RETR_EXTERNAL, no chain approximation), keeping the contour that
//     encloses the largest area.
//
// Holes inside a component are never traced. If nothing survives the
// opening, Clean returns ErrNoContour.
//
// # Thread Safety
//
// A Mask is a plain value with no internal locking. Cleaning copies the mask
// into a fresh Mat and never mutates its input, so a mask may be read from
// several goroutines at once.
package mask
