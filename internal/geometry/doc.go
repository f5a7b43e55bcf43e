// Package geometry turns the cleaned calcaneus contour into the two
// landmark points and the ground reference used for the pitch angle.
//
// The steps, in order:
//
//   - ConvexHull bridges concave notches so only real corners of the bone
//     silhouette are candidates.
//   - Split partitions hull vertices into a left and a right set around a
//     vertical boundary chosen by a SplitPolicy.
//   - Deepest picks the lowest point (largest y) of each set; several
//     points on the same row are merged into their mean x.
//   - Orient decides which side is the heel, re-selects the toe point as the
//     anterior-inferior corner and builds the horizontal ground line.
//
// All coordinates are integer pixels in image space (y grows downward).
package geometry
