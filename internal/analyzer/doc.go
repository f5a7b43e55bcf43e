// Package analyzer is the entry point of the calcaneal pitch measurement.
//
// An Analyzer chains the stages for one radiograph:
//
//	load -> segment -> clean -> hull/split -> landmarks -> angle -> result
//
// and returns exactly one of a *Result or an *Error. Nothing is retried and
// nothing runs concurrently within a call; the segmentation model is the
// only shared resource and is injected at construction.
//
// # Errors
//
// Every failure is an *Error with a Kind:
//
//	input_error         unreadable file or invalid image
//	model_unavailable   no model loaded, or it failed to load
//	no_bone_detected    mask is empty after cleaning
//	ambiguous_geometry  the hull cannot be split into two halves
//
// errors.Is also matches the lower-level sentinels the Error wraps
// (segment.ErrModelUnavailable, mask.ErrNoContour and so on). Angles outside
// the clinical range are not errors.
//
// # Editing
//
// Result.Lines carries the calcaneus line and the ground line in that fixed
// order. Recompute re-derives the angle and diagnosis from edited lines
// without touching the model.
package analyzer
