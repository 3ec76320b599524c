package svgraster

import (
	"github.com/benoitkugler/svgpaint/svgdoc"
	"github.com/srwiley/rasterx"
)

// gradientPattern wraps a rasterx gradient, expressed in device space.
type gradientPattern struct {
	grad rasterx.Gradient
	// set for linear gradients with a null length,
	// painted with the last stop
	degenerated bool
}

// CreatePattern supports every gradient: the pattern is
// bound to the current transform.
func (rd *Renderer) CreatePattern(spec svgdoc.PatternSpec) svgdoc.Pattern {
	stops := make([]rasterx.GradStop, len(spec.Stops))
	for i, s := range spec.Stops {
		stops[i] = rasterx.GradStop{StopColor: s.Color, Offset: s.Offset, Opacity: s.Opacity}
	}
	pts := spec.Points
	return &gradientPattern{
		grad: rasterx.Gradient{
			Points:   pts,
			Stops:    stops,
			Spread:   rasterx.SpreadMethod(spec.Spread), // same ordering
			Units:    rasterx.UserSpaceOnUse,
			Matrix:   rasterx.Matrix2D(rd.ctm.Mult(spec.Matrix.Invert())), // gradient to device space
			IsRadial: spec.Radial,
		},
		degenerated: !spec.Radial && pts[0] == pts[2] && pts[1] == pts[3],
	}
}

// Dispose is a no-op: the pattern holds no resource.
func (*gradientPattern) Dispose() {}

// color returns a rasterx.ColorFunc, or a plain color
// when the gradient can't vary.
func (p *gradientPattern) color(opacity float64) interface{} {
	if p.degenerated {
		last := p.grad.Stops[len(p.grad.Stops)-1]
		return rasterx.ApplyOpacity(last.StopColor, last.Opacity*opacity)
	}
	return p.grad.GetColorFunction(opacity)
}
