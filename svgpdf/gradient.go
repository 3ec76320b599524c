package svgpdf

import (
	"math"

	"github.com/benoitkugler/svgpaint/svgdoc"
	"github.com/benoitkugler/svgpaint/svgpath"
)

// gradientPattern is a two colors PDF shading, clipped by the filled path
type gradientPattern struct {
	spec svgdoc.PatternSpec
	// maps page coordinates to gradient space
	device svgdoc.Matrix2D
}

// CreatePattern returns nil for the gradients PDF shadings
// built by fpdf cannot express: more than two stops, stops with
// different opacities, spread methods other than pad, and radial
// gradients deformed into ellipses.
func (rd *Renderer) CreatePattern(spec svgdoc.PatternSpec) svgdoc.Pattern {
	if len(spec.Stops) != 2 || spec.Spread != svgdoc.SpreadPad {
		return nil
	}
	s0, s1 := spec.Stops[0], spec.Stops[1]
	if s0.Opacity != s1.Opacity || s1.Offset <= s0.Offset {
		return nil
	}
	device := spec.Matrix.Mult(rd.ctm.Invert())
	if spec.Radial && (s0.Offset != 0 || s1.Offset != 1 || !isConformal(device)) {
		return nil
	}
	return &gradientPattern{spec: spec, device: device}
}

// isConformal returns true if `m` maps circles to circles
func isConformal(m svgdoc.Matrix2D) bool {
	eps := 1e-6 * (math.Abs(m.A) + math.Abs(m.B) + math.Abs(m.C) + math.Abs(m.D))
	if m.Det() == 0 {
		return false
	}
	return (math.Abs(m.A-m.D) <= eps && math.Abs(m.B+m.C) <= eps) ||
		(math.Abs(m.A+m.D) <= eps && math.Abs(m.B-m.C) <= eps)
}

// Dispose is a no-op: the shading is written with the path.
func (*gradientPattern) Dispose() {}

// fallback is the color used when the shading can't be drawn
func (p *gradientPattern) fallback() svgdoc.Color {
	return p.spec.Stops[len(p.spec.Stops)-1].Color
}

// unitSquare is the square with top left corner at the
// top left of `bb`, containing `bb`. fpdf shadings use
// coordinates relative to this square.
func unitSquare(bb svgdoc.Bounds) svgdoc.Bounds {
	side := math.Max(bb.W, bb.H)
	return svgdoc.Bounds{X: bb.X, Y: bb.Y, W: side, H: side}
}

// normalized returns the coordinates of the page point (x, y)
// relative to `sq`, with the y axis going up
func normalized(sq svgdoc.Bounds, x, y float64) (float64, float64) {
	return (x - sq.X) / sq.W, 1 - (y - sq.Y)/sq.H
}

// fill paints the shading clipped by `dev`, given in page coordinates.
// It returns false if the gradient is degenerated.
func (p *gradientPattern) fill(rd *Renderer, dev svgpath.Path, opacity float64) bool {
	sq := unitSquare(dev.Bounds())
	if sq.Empty() {
		return true // nothing visible
	}
	var (
		coords [5]float64
		ok     bool
	)
	if p.spec.Radial {
		coords, ok = p.radialCoords(sq)
	} else {
		coords, ok = p.linearCoords(sq)
	}
	if !ok {
		return false
	}

	s0, s1 := p.spec.Stops[0], p.spec.Stops[1]
	r1, g1, b1 := s0.Color.RGB()
	r2, g2, b2 := s1.Color.RGB()

	rd.pdf.TransformBegin() // saves the graphic state
	rd.writePath(dev)
	if rd.evenOdd {
		rd.rawOp("W* n")
	} else {
		rd.rawOp("W n")
	}
	rd.setAlpha(opacity * s0.Opacity)
	if p.spec.Radial {
		rd.pdf.RadialGradient(sq.X, sq.Y, sq.W, sq.H, int(r1), int(g1), int(b1), int(r2), int(g2), int(b2),
			coords[0], coords[1], coords[2], coords[3], coords[4])
	} else {
		rd.pdf.LinearGradient(sq.X, sq.Y, sq.W, sq.H, int(r1), int(g1), int(b1), int(r2), int(g2), int(b2),
			coords[0], coords[1], coords[2], coords[3])
	}
	rd.pdf.TransformEnd()
	return true
}

// linearCoords returns the axis of the shading, relative to `sq`.
// The gradient parameter is an affine function of the page
// coordinates, whose gradient gives the shading direction.
func (p *gradientPattern) linearCoords(sq svgdoc.Bounds) (out [5]float64, ok bool) {
	pts, m := p.spec.Points, p.device
	vx, vy := pts[2]-pts[0], pts[3]-pts[1]
	l2 := vx*vx + vy*vy
	if l2 == 0 {
		return out, false
	}
	// t = gx * x + gy * y + c, in page coordinates
	gx, gy := (m.A*vx+m.B*vy)/l2, (m.C*vx+m.D*vy)/l2
	c := ((m.E-pts[0])*vx + (m.F-pts[1])*vy) / l2

	// map the stop offsets to 0 and 1
	o0, o1 := p.spec.Stops[0].Offset, p.spec.Stops[1].Offset
	gx, gy, c = gx/(o1-o0), gy/(o1-o0), (c-o0)/(o1-o0)

	// in normalized coordinates : t = ux * nx + uy * ny + cn
	ux, uy := gx*sq.W, -gy*sq.H
	cn := gx*sq.X + gy*(sq.Y+sq.H) + c
	u2 := ux*ux + uy*uy
	if u2 == 0 {
		return out, false
	}
	x1, y1 := -cn*ux/u2, -cn*uy/u2
	return [5]float64{x1, y1, x1 + ux/u2, y1 + uy/u2}, true
}

// radialCoords returns the focus and the circle of the shading,
// relative to `sq`. The focus is moved inside the circle if needed.
func (p *gradientPattern) radialCoords(sq svgdoc.Bounds) (out [5]float64, ok bool) {
	pts, inv := p.spec.Points, p.device.Invert()
	scale := math.Sqrt(math.Abs(p.device.Det()))
	cx, cy := inv.Transform(pts[0], pts[1])
	fx, fy := inv.Transform(pts[2], pts[3])
	r := pts[4] / scale
	if r <= 0 {
		return out, false
	}
	if l := math.Hypot(fx-cx, fy-cy); l >= r {
		k := r * 0.999 / l
		fx, fy = cx+(fx-cx)*k, cy+(fy-cy)*k
	}
	nfx, nfy := normalized(sq, fx, fy)
	ncx, ncy := normalized(sq, cx, cy)
	return [5]float64{nfx, nfy, ncx, ncy, r / sq.W}, true
}
