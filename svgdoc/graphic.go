package svgdoc

import (
	"fmt"

	"github.com/benoitkugler/svgpaint/svgpath"
)

// Color is a packed 0xRRGGBB value. It implements color.Color
// as an opaque color: opacities are kept apart.
type Color uint32

// NewColor packs the given components.
func NewColor(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

// RGB unpacks the color.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

func (c Color) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.RGB()
	r, g, b = uint32(r8), uint32(g8), uint32(b8)
	return r | r<<8, g | g<<8, b | b<<8, 0xffff
}

func (c Color) String() string { return fmt.Sprintf("#%06x", uint32(c)) }

// PaintType is the kind of paint used to fill or stroke.
type PaintType uint8

const (
	PaintNone PaintType = iota
	PaintColor
	PaintServer // link to a gradient
)

func (p PaintType) String() string {
	switch p {
	case PaintNone:
		return "None"
	case PaintColor:
		return "Color"
	case PaintServer:
		return "PaintServer"
	default:
		return fmt.Sprintf("<unknown PaintType %d>", p)
	}
}

type FillRule uint8

const (
	EvenOdd FillRule = iota
	NonZero
)

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	CapFlat CapMode = iota // butt
	CapRound
	CapSquare
)

// JoinMode defines how stroke segments bridge the gap at a join
type JoinMode uint8

const (
	JoinMiter JoinMode = iota
	JoinRound
	JoinBevel
)

// Fill holds the fill attributes declared on one graphic.
// A nil field is not specified and is inherited from
// the ancestors.
type Fill struct {
	Type    *PaintType
	Color   *Color
	Opacity *float64
	LinkID  *string // gradient id, for PaintServer
	Rule    *FillRule
}

// Stroke holds the stroke attributes declared on one graphic.
// As for Fill, nil fields are inherited.
type Stroke struct {
	Type       *PaintType
	Color      *Color
	Opacity    *float64
	LinkID     *string
	Width      *float64
	Cap        *CapMode
	Join       *JoinMode
	MiterLimit *float64
	Dashes     []float64 // nil to inherit
	DashOffset *float64
}

// Ptr returns a pointer to a copy of v, convenient
// to build Fill and Stroke attributes.
func Ptr[T any](v T) *T { return &v }

// Graphic is a shape, or a group when Path is nil.
// Graphics may hold other graphics as children.
type Graphic struct {
	container

	Title, Desc string
	Class       []string // CSS class names

	Fill      *Fill
	Stroke    *Stroke
	Transform *AffineTransform // chain, may be nil

	Path svgpath.Path // nil for groups

	// Opacity is the value of the opacity attribute, nil meaning 1.
	// It is not inherited: it multiplies the fill and stroke
	// opacities of the graphic and of all its descendants.
	Opacity *float64

	// Hidden graphics and their children are not painted,
	// as the content of <defs>.
	Hidden bool
}

func NewGraphic(id string) *Graphic {
	return &Graphic{container: container{node: node{id: id}}}
}

func (*Graphic) Kind() Kind { return KindGraphic }

// Copy returns a deep copy of the graphic and its
// descendant graphics, detached from any container.
// Ids are not copied, and other kinds of children are skipped.
func (g *Graphic) Copy() *Graphic {
	out := &Graphic{
		Title:     g.Title,
		Desc:      g.Desc,
		Class:     append([]string(nil), g.Class...),
		Transform: g.Transform.Copy(),
		Path:      g.Path.Copy(),
		Hidden:    g.Hidden,
	}
	if g.Opacity != nil {
		out.Opacity = Ptr(*g.Opacity)
	}
	if g.Fill != nil {
		f := *g.Fill
		out.Fill = &f
	}
	if g.Stroke != nil {
		s := *g.Stroke
		if g.Stroke.Dashes != nil {
			s.Dashes = append(make([]float64, 0, len(g.Stroke.Dashes)), g.Stroke.Dashes...)
		}
		out.Stroke = &s
	}
	for _, child := range g.children {
		if cg, ok := child.(*Graphic); ok {
			c := cg.Copy()
			c.parent = out
			out.children = append(out.children, c)
		}
	}
	return out
}

// OpacityFactor returns the product of the Opacity of
// the graphics in `ancestry`.
func OpacityFactor(ancestry []Element) float64 {
	factor := 1.
	for _, e := range ancestry {
		if g, ok := e.(*Graphic); ok && g.Opacity != nil {
			factor *= *g.Opacity
		}
	}
	return factor
}
