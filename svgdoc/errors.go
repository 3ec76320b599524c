package svgdoc

import "errors"

var (
	// ErrOperandCount is returned by SetData when the number
	// of operands does not match the transform kind.
	ErrOperandCount = errors.New("svgdoc: wrong number of transform operands")

	// ErrDuplicateID is returned when an id is already registered
	// in the target fragment.
	ErrDuplicateID = errors.New("svgdoc: duplicate id")

	ErrGradientCycle = errors.New("svgdoc: cyclic gradient link")
	ErrDanglingLink  = errors.New("svgdoc: dangling gradient link")

	// ErrEmptyBoundingBox is returned by Create for a bounding box
	// gradient used on a shape with no width or no height:
	// nothing should be painted.
	ErrEmptyBoundingBox = errors.New("svgdoc: empty bounding box")

	// ErrNotContainer is returned when appending to an element
	// which can't hold children.
	ErrNotContainer = errors.New("svgdoc: element is not a container")
)
