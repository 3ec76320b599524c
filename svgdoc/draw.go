package svgdoc

import (
	"errors"

	"golang.org/x/exp/slog"
)

// Draw paints every fragment of the document in `target`, which
// is expressed in the current coordinates of the canvas.
// Errors met while painting (dangling links, cyclic gradients,
// unsupported gradients) are logged and the paint degrades.
func (d *Document) Draw(c Canvas, target Bounds, opacity float64) {
	base := c.Transform()
	defer c.SetTransform(base)
	c.SetAlpha(opacity)
	for _, f := range d.fragments {
		d.drawFragment(c, f, target, base)
	}
}

func (d *Document) drawFragment(c Canvas, f *Fragment, target Bounds, base Matrix2D) {
	f.Apply(target)
	defer f.Reset()
	for _, child := range f.children {
		d.drawElement(c, child, base)
	}
}

func (d *Document) drawElement(c Canvas, e Element, base Matrix2D) {
	switch e.Kind() {
	case KindFragment:
		nested := e.(*Fragment)
		target := Bounds{X: nested.X, Y: nested.Y, W: nested.Width, H: nested.Height}
		if !nested.HasSize { // fill the parent viewport
			if parent := NearestFragment(nested.parent); parent != nil {
				vp := parent.Viewport()
				target.W, target.H = vp.W, vp.H
			}
		}
		d.drawFragment(c, nested, target, base)
	case KindGraphic:
		g := e.(*Graphic)
		if g.Hidden {
			return
		}
		d.drawGraphic(c, g, base)
		for _, child := range g.children {
			d.drawElement(c, child, base)
		}
	case KindGradient, KindStop, KindStyle:
		// not rendered
	default:
		panic(unexpectedKind(e))
	}
}

// drawGraphic fills then strokes the path of `g`
func (d *Document) drawGraphic(c Canvas, g *Graphic, base Matrix2D) {
	if len(g.Path) == 0 {
		return
	}
	ancestry := Ancestry(g)
	c.SetTransform(ComposeTransform(base, ancestry))
	factor := OpacityFactor(ancestry)

	if fill := ResolveFill(ancestry); fill.Type != PaintNone {
		c.SetFillRule(fill.Rule)
		d.paint(c, g, fill.Type, fill.Color, factor*fill.Opacity, fill.LinkID, func(p Paint) {
			c.Fill(g.Path, p)
		})
	}

	if stroke := ResolveStroke(ancestry); stroke.Type != PaintNone {
		options := StrokeOptions{
			Width:      stroke.Width,
			Cap:        stroke.Cap,
			Join:       stroke.Join,
			MiterLimit: stroke.MiterLimit,
			Dashes:     stroke.Dashes,
			DashOffset: stroke.DashOffset,
		}
		d.paint(c, g, stroke.Type, stroke.Color, factor*stroke.Opacity, stroke.LinkID, func(p Paint) {
			c.Stroke(g.Path, options, p)
		})
	}
}

// paint resolves the paint server if needed and calls `do`.
// A realized pattern is released before returning.
func (d *Document) paint(c Canvas, shape *Graphic, kind PaintType, color Color, opacity float64,
	linkID string, do func(Paint),
) {
	switch kind {
	case PaintNone:
	case PaintColor:
		do(Paint{Color: color, Opacity: opacity})
	case PaintServer:
		grad, _ := Lookup(shape, linkID).(*Gradient)
		if grad == nil {
			d.logger().Warn("paint server not found", slog.String("id", linkID))
			return
		}
		stops, err := grad.ResolveStops()
		if err != nil {
			d.logger().Warn("invalid gradient stops", slog.String("id", linkID), slog.Any("err", err))
		}
		switch len(stops) {
		case 0:
			return
		case 1:
			do(Paint{Color: stops[0].Color, Opacity: opacity * stops[0].Opacity})
			return
		}

		pattern, err := grad.Create(shape, c)
		defer grad.Dispose()
		if errors.Is(err, ErrEmptyBoundingBox) {
			d.logger().Debug("gradient on an empty bounding box, skipping", slog.String("id", linkID))
			return
		}
		if err != nil {
			// stops are already resolved, so this is not expected
			d.logger().Error("creating gradient", slog.String("id", linkID), slog.Any("err", err))
			return
		}
		if pattern == nil {
			last := stops[len(stops)-1]
			d.logger().Warn("gradient not supported, using the last stop color",
				slog.String("id", linkID), slog.String("color", last.Color.String()))
			do(Paint{Color: last.Color, Opacity: opacity * last.Opacity})
			return
		}
		do(Paint{Pattern: pattern, Opacity: opacity})
	}
}

