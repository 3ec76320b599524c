package svgdoc

// ResolvedFill is a fill paint descriptor, after
// inheritance and defaults.
type ResolvedFill struct {
	Type    PaintType
	Color   Color
	Opacity float64
	LinkID  string
	Rule    FillRule
}

// ResolvedStroke is a stroke paint descriptor, after
// inheritance and defaults. When Type is PaintNone,
// the other fields are left zero.
type ResolvedStroke struct {
	Type       PaintType
	Color      Color
	Opacity    float64
	LinkID     string
	Width      float64
	Cap        CapMode
	Join       JoinMode
	MiterLimit float64
	Dashes     []float64
	DashOffset float64
}

// default values, applied after inheritance
const (
	defaultOpacity    = 1.
	defaultLineWidth  = 1.
	defaultMiterLimit = 4.
)

// ResolveFill merges, field by field, the fill attributes of the graphics
// found in `ancestry` (root first): a field set closer to the leaf wins.
// Unset fields get the defaults: black color, opacity 1, even-odd rule.
func ResolveFill(ancestry []Element) ResolvedFill {
	var acc Fill
	for _, e := range ancestry {
		switch e.Kind() {
		case KindGraphic:
			f := e.(*Graphic).Fill
			if f == nil {
				continue
			}
			if f.Type != nil {
				acc.Type = f.Type
			}
			if f.Color != nil {
				acc.Color = f.Color
			}
			if f.Opacity != nil {
				acc.Opacity = f.Opacity
			}
			if f.LinkID != nil {
				acc.LinkID = f.LinkID
			}
			if f.Rule != nil {
				acc.Rule = f.Rule
			}
		case KindFragment, KindGradient, KindStop, KindStyle:
		default:
			panic(unexpectedKind(e))
		}
	}

	out := ResolvedFill{Type: PaintColor, Opacity: defaultOpacity, Rule: EvenOdd}
	if acc.Type != nil {
		out.Type = *acc.Type
	}
	if acc.Color != nil {
		out.Color = *acc.Color
	}
	if acc.Opacity != nil {
		out.Opacity = *acc.Opacity
	}
	if acc.LinkID != nil {
		out.LinkID = *acc.LinkID
	}
	if acc.Rule != nil {
		out.Rule = *acc.Rule
	}
	return out
}

// ResolveStroke is the same as ResolveFill, for stroke attributes.
// The type defaults to PaintNone; the other defaults (black, opacity 1,
// width 1, flat cap, miter join, miter limit 4) are only applied
// when the resolved type is not PaintNone.
func ResolveStroke(ancestry []Element) ResolvedStroke {
	var acc Stroke
	for _, e := range ancestry {
		switch e.Kind() {
		case KindGraphic:
			s := e.(*Graphic).Stroke
			if s == nil {
				continue
			}
			if s.Type != nil {
				acc.Type = s.Type
			}
			if s.Color != nil {
				acc.Color = s.Color
			}
			if s.Opacity != nil {
				acc.Opacity = s.Opacity
			}
			if s.LinkID != nil {
				acc.LinkID = s.LinkID
			}
			if s.Width != nil {
				acc.Width = s.Width
			}
			if s.Cap != nil {
				acc.Cap = s.Cap
			}
			if s.Join != nil {
				acc.Join = s.Join
			}
			if s.MiterLimit != nil {
				acc.MiterLimit = s.MiterLimit
			}
			if s.Dashes != nil {
				acc.Dashes = s.Dashes
			}
			if s.DashOffset != nil {
				acc.DashOffset = s.DashOffset
			}
		case KindFragment, KindGradient, KindStop, KindStyle:
		default:
			panic(unexpectedKind(e))
		}
	}

	if acc.Type == nil || *acc.Type == PaintNone {
		return ResolvedStroke{Type: PaintNone}
	}

	out := ResolvedStroke{
		Type:       *acc.Type,
		Opacity:    defaultOpacity,
		Width:      defaultLineWidth,
		Cap:        CapFlat,
		Join:       JoinMiter,
		MiterLimit: defaultMiterLimit,
	}
	if acc.Color != nil {
		out.Color = *acc.Color
	}
	if acc.Opacity != nil {
		out.Opacity = *acc.Opacity
	}
	if acc.LinkID != nil {
		out.LinkID = *acc.LinkID
	}
	if acc.Width != nil {
		out.Width = *acc.Width
	}
	if acc.Cap != nil {
		out.Cap = *acc.Cap
	}
	if acc.Join != nil {
		out.Join = *acc.Join
	}
	if acc.MiterLimit != nil {
		out.MiterLimit = *acc.MiterLimit
	}
	if len(acc.Dashes) != 0 {
		out.Dashes = append([]float64(nil), acc.Dashes...)
	}
	if acc.DashOffset != nil {
		out.DashOffset = *acc.DashOffset
	}
	return out
}

// ComposeTransform returns the transform used to paint the last
// element of `ancestry`: `base` is applied last, preceded, from the root
// to the leaf, by the bounds transforms of the fragments and the
// transform chains of the graphics.
func ComposeTransform(base Matrix2D, ancestry []Element) Matrix2D {
	m := base
	for _, e := range ancestry {
		switch e.Kind() {
		case KindFragment:
			m = m.Mult(e.(*Fragment).bounds)
		case KindGraphic:
			if t := e.(*Graphic).Transform; t != nil {
				m = m.Mult(t.Chain())
			}
		case KindGradient, KindStop, KindStyle:
		default:
			panic(unexpectedKind(e))
		}
	}
	return m
}
