package svgload

import (
	"fmt"
	"math"
	"strings"

	"github.com/benoitkugler/svgpaint/svgdoc"
	"github.com/benoitkugler/svgpaint/svgpath"
)

// svgFunc builds the element for one tag. It may return
// a nil element when nothing is added to the tree.
type svgFunc func(c *cursor, n *xmlNode, props map[string]string) (svgdoc.Element, error)

var elementFuncs map[string]svgFunc

func init() {
	// avoids cyclical static declaration
	elementFuncs = map[string]svgFunc{
		"svg":            svgF,
		"g":              gF,
		"defs":           defsF,
		"use":            useF,
		"line":           lineF,
		"rect":           rectF,
		"circle":         circleF,
		"ellipse":        circleF, // circleF handles ellipse also
		"polyline":       polylineF,
		"polygon":        polygonF,
		"path":           pathF,
		"title":          titleF,
		"desc":           descF,
		"style":          styleF,
		"linearGradient": linearGradientF,
		"radialGradient": radialGradientF,
		"stop":           stopF,
	}
}

// attributes handled by readPaintAttrs, in processing order
var paintAttrs = [...]string{
	"fill", "fill-opacity", "fill-rule",
	"stroke", "stroke-opacity", "stroke-width", "stroke-linecap", "stroke-linejoin",
	"stroke-miterlimit", "stroke-dasharray", "stroke-dashoffset",
	"opacity", "transform",
}

func hasPaintAttrs(props map[string]string) bool {
	for _, k := range paintAttrs {
		if _, ok := props[k]; ok {
			return true
		}
	}
	return false
}

// readPaintAttrs sets the fill, stroke and transform of `g`.
// Only the declared attributes are set, so that the other
// ones are inherited.
func readPaintAttrs(g *svgdoc.Graphic, props map[string]string) error {
	var (
		fill                     svgdoc.Fill
		stroke                   svgdoc.Stroke
		hasFill, hasStroke       bool
		fillOp, strokeOp, global *float64
	)
	for _, k := range paintAttrs {
		v, ok := props[k]
		v = strings.TrimSpace(v)
		if !ok || v == "" || v == "inherit" {
			continue
		}
		var err error
		switch k {
		case "fill", "stroke":
			var p paint
			if p, err = parsePaint(v); err != nil {
				break
			}
			target := &fill.Type
			color, link := &fill.Color, &fill.LinkID
			hasFill = hasFill || k == "fill"
			if k == "stroke" {
				target, color, link = &stroke.Type, &stroke.Color, &stroke.LinkID
				hasStroke = true
			}
			*target = svgdoc.Ptr(p.kind)
			switch p.kind {
			case svgdoc.PaintColor:
				*color = svgdoc.Ptr(p.color)
			case svgdoc.PaintServer:
				*link = svgdoc.Ptr(p.linkID)
			}
		case "fill-opacity", "stroke-opacity", "opacity":
			var op float64
			if op, err = readFraction(v); err != nil {
				break
			}
			op = math.Max(0, math.Min(1, op))
			switch k {
			case "fill-opacity":
				fillOp = &op
			case "stroke-opacity":
				strokeOp = &op
			default:
				global = &op
			}
		case "fill-rule":
			hasFill = true
			switch v {
			case "nonzero":
				fill.Rule = svgdoc.Ptr(svgdoc.NonZero)
			case "evenodd":
				fill.Rule = svgdoc.Ptr(svgdoc.EvenOdd)
			default:
				err = fmt.Errorf("invalid value %q", v)
			}
		case "stroke-width":
			var w float64
			if w, err = parseFloat(v); err == nil {
				stroke.Width, hasStroke = &w, true
			}
		case "stroke-linecap":
			hasStroke = true
			switch v {
			case "butt":
				stroke.Cap = svgdoc.Ptr(svgdoc.CapFlat)
			case "round":
				stroke.Cap = svgdoc.Ptr(svgdoc.CapRound)
			case "square":
				stroke.Cap = svgdoc.Ptr(svgdoc.CapSquare)
			default:
				err = fmt.Errorf("invalid value %q", v)
			}
		case "stroke-linejoin":
			hasStroke = true
			switch v {
			case "miter", "miter-clip", "arcs":
				stroke.Join = svgdoc.Ptr(svgdoc.JoinMiter)
			case "round":
				stroke.Join = svgdoc.Ptr(svgdoc.JoinRound)
			case "bevel":
				stroke.Join = svgdoc.Ptr(svgdoc.JoinBevel)
			default:
				err = fmt.Errorf("invalid value %q", v)
			}
		case "stroke-miterlimit":
			var l float64
			if l, err = parseFloat(v); err == nil {
				stroke.MiterLimit, hasStroke = &l, true
			}
		case "stroke-dasharray":
			hasStroke = true
			stroke.Dashes = []float64{} // explicit solid line
			if v == "none" {
				break
			}
			for _, dstr := range splitOnCommaOrSpace(v) {
				var d float64
				if d, err = parseFloat(dstr); err != nil {
					break
				}
				stroke.Dashes = append(stroke.Dashes, d)
			}
		case "stroke-dashoffset":
			var o float64
			if o, err = parseFloat(v); err == nil {
				stroke.DashOffset, hasStroke = &o, true
			}
		case "transform":
			var t *svgdoc.AffineTransform
			if t, err = parseTransform(v); err == nil {
				g.Transform = t
			}
		}
		if err != nil {
			return fmt.Errorf("attribute %s: %w", k, err)
		}
	}

	if global != nil {
		g.Opacity = global
	}
	if fillOp != nil {
		fill.Opacity, hasFill = fillOp, true
	}
	if strokeOp != nil {
		stroke.Opacity, hasStroke = strokeOp, true
	}
	if hasFill {
		g.Fill = &fill
	}
	if hasStroke {
		g.Stroke = &stroke
	}
	return nil
}

func (c *cursor) newGraphic(props map[string]string) (*svgdoc.Graphic, error) {
	id, err := c.checkID(props["id"])
	if err != nil {
		return nil, err
	}
	g := svgdoc.NewGraphic(id)
	g.Class = strings.Fields(props["class"])
	err = readPaintAttrs(g, props)
	return g, err
}

// readLengths parses the given length attributes, missing
// ones being zero
func (c *cursor) readLengths(props map[string]string, names []string, refs []percentageReference) ([]float64, error) {
	out := make([]float64, len(names))
	vp := c.viewport()
	for i, name := range names {
		v, ok := props[name]
		if !ok {
			continue
		}
		var err error
		out[i], err = parseUnit(v, refs[i], vp)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
	}
	return out, nil
}

func svgF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	f := svgdoc.NewFragment(props["id"]) // fragments are not registered
	if vb, ok := props["viewBox"]; ok {
		points, err := svgpath.ParsePoints(vb)
		if err != nil {
			return nil, err
		}
		if len(points) != 4 {
			return nil, errParamMismatch
		}
		f.ViewBox = &svgdoc.Bounds{X: points[0], Y: points[1], W: points[2], H: points[3]}
	}
	l, err := c.readLengths(props, []string{"x", "y", "width", "height"},
		[]percentageReference{widthPercentage, heightPercentage, widthPercentage, heightPercentage})
	if err != nil {
		return nil, err
	}
	f.X, f.Y, f.Width, f.Height = l[0], l[1], l[2], l[3]
	_, hasW := props["width"]
	_, hasH := props["height"]
	if vb := f.ViewBox; vb != nil && vb.W > 0 && vb.H > 0 {
		// complete with the aspect ratio of the view box
		switch {
		case hasW && !hasH:
			f.Height, hasH = f.Width*vb.H/vb.W, true
		case hasH && !hasW:
			f.Width, hasW = f.Height*vb.W/vb.H, true
		}
	}
	f.HasSize = hasW && hasH && f.Width > 0 && f.Height > 0
	return f, nil
}

// fragmentContent returns the container for the children of `f`:
// an anonymous group carrying the paint attributes of the <svg>
// element if it declares some, or `f` itself.
func (c *cursor) fragmentContent(f *svgdoc.Fragment, props map[string]string) (svgdoc.Element, error) {
	if !hasPaintAttrs(props) {
		return f, nil
	}
	g := svgdoc.NewGraphic("")
	if err := readPaintAttrs(g, props); err != nil {
		return nil, fmt.Errorf("<svg>: %w", err)
	}
	return g, svgdoc.Append(f, g)
}

func gF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	return c.newGraphic(props)
}

func defsF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	g, err := c.newGraphic(props)
	if err != nil {
		return nil, err
	}
	g.Hidden = true
	return g, nil
}

func rectF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	g, err := c.newGraphic(props)
	if err != nil {
		return nil, err
	}
	l, err := c.readLengths(props, []string{"x", "y", "width", "height", "rx", "ry"},
		[]percentageReference{widthPercentage, heightPercentage, widthPercentage, heightPercentage, widthPercentage, heightPercentage})
	if err != nil {
		return nil, err
	}
	x, y, w, h, rx, ry := l[0], l[1], l[2], l[3], l[4], l[5]
	_, hasRx := props["rx"]
	_, hasRy := props["ry"]
	if hasRx && !hasRy {
		ry = rx
	} else if hasRy && !hasRx {
		rx = ry
	}
	if w == 0 || h == 0 { // not drawn, but not an error
		return g, nil
	}
	g.Path.AddRoundRect(x, y, x+w, y+h, rx, ry, 0)
	return g, nil
}

func circleF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	g, err := c.newGraphic(props)
	if err != nil {
		return nil, err
	}
	l, err := c.readLengths(props, []string{"cx", "cy", "r", "rx", "ry"},
		[]percentageReference{widthPercentage, heightPercentage, diagPercentage, widthPercentage, heightPercentage})
	if err != nil {
		return nil, err
	}
	cx, cy, rx, ry := l[0], l[1], l[3], l[4]
	if _, ok := props["r"]; ok {
		rx, ry = l[2], l[2]
	} else if _, hasRy := props["ry"]; !hasRy {
		ry = rx
	} else if _, hasRx := props["rx"]; !hasRx {
		rx = ry
	}
	if rx == 0 || ry == 0 { // not drawn, but not an error
		return g, nil
	}
	g.Path.AddEllipse(cx, cy, rx, ry)
	return g, nil
}

func lineF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	g, err := c.newGraphic(props)
	if err != nil {
		return nil, err
	}
	l, err := c.readLengths(props, []string{"x1", "y1", "x2", "y2"},
		[]percentageReference{widthPercentage, heightPercentage, widthPercentage, heightPercentage})
	if err != nil {
		return nil, err
	}
	g.Path.AddPolyline(l, false)
	return g, nil
}

func readPolyline(c *cursor, props map[string]string, closeLoop bool) (svgdoc.Element, error) {
	g, err := c.newGraphic(props)
	if err != nil {
		return nil, err
	}
	points, err := svgpath.ParsePoints(props["points"])
	if err != nil {
		return nil, err
	}
	if len(points)%2 != 0 {
		return nil, fmt.Errorf("polygon has odd number of points")
	}
	g.Path.AddPolyline(points, closeLoop)
	return g, nil
}

func polylineF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	return readPolyline(c, props, false)
}

func polygonF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	return readPolyline(c, props, true)
}

func pathF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	g, err := c.newGraphic(props)
	if err != nil {
		return nil, err
	}
	g.Path, err = svgpath.CompilePath(props["d"])
	return g, err
}

func titleF(c *cursor, n *xmlNode, _ map[string]string) (svgdoc.Element, error) {
	if g, ok := c.parent.(*svgdoc.Graphic); ok {
		g.Title = strings.TrimSpace(n.text.String())
	}
	return nil, nil
}

func descF(c *cursor, n *xmlNode, _ map[string]string) (svgdoc.Element, error) {
	if g, ok := c.parent.(*svgdoc.Graphic); ok {
		g.Desc = strings.TrimSpace(n.text.String())
	}
	return nil, nil
}

func styleF(c *cursor, n *xmlNode, props map[string]string) (svgdoc.Element, error) {
	id, err := c.checkID(props["id"])
	if err != nil {
		return nil, err
	}
	// the rules are already loaded in the cursor stylesheet
	return svgdoc.NewStyle(id, n.text.String()), nil
}

// useF creates a group, translated by (x, y), which will
// receive a copy of the referenced graphic
func useF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	href := strings.TrimSpace(props["href"])
	if href == "" {
		return nil, c.handleError("%s", errNoHref)
	}
	if !strings.HasPrefix(href, "#") {
		return nil, c.handleError("only the ID CSS selector is supported in use (got %q)", href)
	}
	if len(href) == 1 {
		return nil, errZeroLengthID
	}
	g, err := c.newGraphic(props)
	if err != nil {
		return nil, err
	}
	l, err := c.readLengths(props, []string{"x", "y"}, []percentageReference{widthPercentage, heightPercentage})
	if err != nil {
		return nil, err
	}
	if l[0] != 0 || l[1] != 0 {
		tr := svgdoc.NewAffineTransform()
		if err = tr.SetData(svgdoc.TransformTranslate, l[0], l[1]); err != nil {
			return nil, err
		}
		if g.Transform == nil {
			g.Transform = tr
		} else {
			g.Transform.Append(tr)
		}
	}
	c.uses = append(c.uses, pendingUse{group: g, href: href[1:]})
	return g, nil
}

// newGradient reads the attributes common to linear and radial gradients
func (c *cursor) newGradient(props map[string]string) (*svgdoc.Gradient, error) {
	id, err := c.checkID(props["id"])
	if err != nil {
		return nil, err
	}
	grad := svgdoc.NewGradient(id)
	switch strings.TrimSpace(props["gradientUnits"]) {
	case "userSpaceOnUse":
		grad.UserSpace = true
	case "objectBoundingBox", "":
	default:
		return nil, fmt.Errorf("invalid gradientUnits %q", props["gradientUnits"])
	}
	switch strings.TrimSpace(props["spreadMethod"]) {
	case "pad", "":
		grad.Spread = svgdoc.SpreadPad
	case "reflect":
		grad.Spread = svgdoc.SpreadReflect
	case "repeat":
		grad.Spread = svgdoc.SpreadRepeat
	default:
		return nil, fmt.Errorf("invalid spreadMethod %q", props["spreadMethod"])
	}
	if v, ok := props["gradientTransform"]; ok {
		if grad.Transform, err = parseTransform(v); err != nil {
			return nil, fmt.Errorf("attribute gradientTransform: %w", err)
		}
	}
	if href := strings.TrimSpace(props["href"]); href != "" {
		if !strings.HasPrefix(href, "#") || len(href) == 1 {
			if err = c.handleError("invalid gradient reference %q", href); err != nil {
				return nil, err
			}
		} else {
			grad.LinkID = href[1:]
		}
	}
	return grad, nil
}

// readGradPoints reads the coordinates of a gradient: fractions
// of the bounding box, or lengths in user space
func (c *cursor) readGradPoints(grad *svgdoc.Gradient, props map[string]string, names []string,
	refs []percentageReference, defaults []float64,
) ([]float64, error) {
	out := append([]float64(nil), defaults...)
	vp := c.viewport()
	if grad.UserSpace { // defaults are percentages of the viewport
		for i, ref := range refs {
			out[i] = ref.of(defaults[i], vp)
		}
	}
	for i, name := range names {
		v, ok := props[name]
		if !ok {
			continue
		}
		var err error
		if grad.UserSpace {
			out[i], err = parseUnit(v, refs[i], vp)
		} else {
			out[i], err = readFraction(v)
		}
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
	}
	return out, nil
}

func linearGradientF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	grad, err := c.newGradient(props)
	if err != nil {
		return nil, err
	}
	grad.Points, err = c.readGradPoints(grad, props, []string{"x1", "y1", "x2", "y2"},
		[]percentageReference{widthPercentage, heightPercentage, widthPercentage, heightPercentage},
		[]float64{0, 0, 1, 0})
	return grad, err
}

func radialGradientF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	grad, err := c.newGradient(props)
	if err != nil {
		return nil, err
	}
	grad.Points, err = c.readGradPoints(grad, props, []string{"cx", "cy", "fx", "fy", "r"},
		[]percentageReference{widthPercentage, heightPercentage, widthPercentage, heightPercentage, diagPercentage},
		[]float64{0.5, 0.5, 0.5, 0.5, 0.5})
	if err != nil {
		return nil, err
	}
	if _, ok := props["fx"]; !ok { // set fx to cx by default
		grad.Points[2] = grad.Points[0]
	}
	if _, ok := props["fy"]; !ok { // set fy to cy by default
		grad.Points[3] = grad.Points[1]
	}
	return grad, nil
}

func stopF(c *cursor, _ *xmlNode, props map[string]string) (svgdoc.Element, error) {
	if _, inGrad := c.parent.(*svgdoc.Gradient); !inGrad {
		return nil, c.handleError("stop outside of a gradient")
	}
	var (
		err             error
		offset, opacity float64 = 0, 1
		color           svgdoc.Color
	)
	if v, ok := props["offset"]; ok {
		if offset, err = readFraction(v); err != nil {
			return nil, fmt.Errorf("attribute offset: %w", err)
		}
		offset = math.Max(0, math.Min(1, offset))
	}
	if v, ok := props["stop-color"]; ok {
		if color, err = parseSVGColor(v); err != nil {
			return nil, fmt.Errorf("attribute stop-color: %w", err)
		}
	}
	if v, ok := props["stop-opacity"]; ok {
		if opacity, err = readFraction(v); err != nil {
			return nil, fmt.Errorf("attribute stop-opacity: %w", err)
		}
		opacity = math.Max(0, math.Min(1, opacity))
	}
	return svgdoc.NewGradientStop(offset, color, opacity), nil
}
