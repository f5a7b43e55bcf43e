package analyzer

import (
	"errors"
	"fmt"

	"github.com/ironsheep/calcpitch-mcp/internal/geometry"
	"github.com/ironsheep/calcpitch-mcp/internal/imaging"
	"github.com/ironsheep/calcpitch-mcp/internal/mask"
	"github.com/ironsheep/calcpitch-mcp/internal/segment"
)

// Kind classifies an analysis failure.
type Kind string

const (
	KindInput             Kind = "input_error"
	KindModelUnavailable  Kind = "model_unavailable"
	KindNoBoneDetected    Kind = "no_bone_detected"
	KindAmbiguousGeometry Kind = "ambiguous_geometry"
)

// Error is the structured failure returned by every Analyzer method.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind, so callers can test with
// errors.Is(err, &analyzer.Error{Kind: analyzer.KindNoBoneDetected}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == ""
}

// KindOf returns the Kind of err, or "" when err is not an analysis error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// wrap converts a stage error into an *Error, picking the Kind from the
// sentinel it carries.
func wrap(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, segment.ErrModelUnavailable):
		return newError(KindModelUnavailable, "segmentation model is not loaded", err)
	case errors.Is(err, segment.ErrInvalidImage), errors.Is(err, imaging.ErrUnreadable):
		return newError(KindInput, "image could not be read", err)
	case errors.Is(err, mask.ErrNoContour):
		return newError(KindNoBoneDetected, "no calcaneus found in the segmentation mask", err)
	case errors.Is(err, geometry.ErrAmbiguousGeometry):
		return newError(KindAmbiguousGeometry, "bone outline cannot be split into heel and toe halves", err)
	default:
		return newError(KindInput, "analysis failed", err)
	}
}
