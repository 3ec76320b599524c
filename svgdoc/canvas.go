package svgdoc

import "github.com/benoitkugler/svgpaint/svgpath"

// Canvas is the graphic context the document is painted on.
// Paths are given in user space: the implementation maps them
// with its current transform.
type Canvas interface {
	Transform() Matrix2D
	SetTransform(m Matrix2D)

	// SetAlpha sets a global opacity, combined with the
	// opacity of every paint.
	SetAlpha(alpha float64)
	SetFillRule(rule FillRule)

	Fill(path svgpath.Path, paint Paint)
	Stroke(path svgpath.Path, options StrokeOptions, paint Paint)
}

// PatternCreator is an optional capability of a Canvas,
// used to paint gradients.
type PatternCreator interface {
	// CreatePattern returns a pattern valid with the current transform
	// of the canvas, or nil if the gradient is not supported.
	CreatePattern(spec PatternSpec) Pattern
}

// Pattern is a paint resource created by a canvas,
// which must be released after use.
type Pattern interface {
	Dispose()
}

// Paint is either a solid color or a pattern.
type Paint struct {
	Color   Color
	Opacity float64
	Pattern Pattern // if not nil, Color is ignored
}

type StrokeOptions struct {
	Width      float64
	Cap        CapMode
	Join       JoinMode
	MiterLimit float64
	Dashes     []float64 // nil or empty for a solid line
	DashOffset float64
}

// PatternSpec describes a gradient to realize.
type PatternSpec struct {
	Radial bool
	// x1, y1, x2, y2 for linear gradients,
	// cx, cy, fx, fy, r for radial ones, in gradient space
	Points [5]float64
	Stops  []*GradientStop // at least two
	Spread SpreadMethod

	// Matrix maps user space (the space of the painted path)
	// to gradient space.
	Matrix Matrix2D

	// Reference is the shape bounding box or the
	// viewport, in user space.
	Reference Bounds
}
