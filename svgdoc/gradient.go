package svgdoc

import "fmt"

type SpreadMethod uint8

const (
	SpreadPad SpreadMethod = iota
	SpreadReflect
	SpreadRepeat
)

// GradientStop is a color stop of a gradient.
type GradientStop struct {
	node
	Offset  float64 // in [0, 1]
	Color   Color
	Opacity float64
}

func NewGradientStop(offset float64, color Color, opacity float64) *GradientStop {
	return &GradientStop{Offset: offset, Color: color, Opacity: opacity}
}

func (*GradientStop) Kind() Kind { return KindStop }

// Gradient is a linear or radial gradient, which
// may inherit its stops from another gradient.
type Gradient struct {
	container

	// Points are x1, y1, x2, y2 for a linear gradient,
	// cx, cy, fx, fy, r for a radial one.
	Points []float64
	LinkID string
	Spread SpreadMethod
	// UserSpace is true for userSpaceOnUse units: Points are then
	// absolute coordinates instead of fractions of the shape bounding box.
	UserSpace bool
	Transform *AffineTransform // may be nil

	pattern Pattern
}

func NewGradient(id string) *Gradient {
	return &Gradient{container: container{node: node{id: id}}}
}

func (*Gradient) Kind() Kind { return KindGradient }

// IsRadial returns true if the gradient has more than 4 points.
func (g *Gradient) IsRadial() bool { return len(g.Points) > 4 }

// Stops returns the stops declared by the gradient itself.
func (g *Gradient) Stops() []*GradientStop {
	var out []*GradientStop
	for _, child := range g.children {
		if s, ok := child.(*GradientStop); ok {
			out = append(out, s)
		}
	}
	return out
}

// ResolveStops returns the own stops of the gradient if any,
// or the stops of the gradient it links to, transitively.
// The links are resolved in the fragment of each gradient.
func (g *Gradient) ResolveStops() ([]*GradientStop, error) {
	visited := map[*Gradient]bool{}
	for cur := g; ; {
		if stops := cur.Stops(); len(stops) != 0 {
			return stops, nil
		}
		if cur.LinkID == "" {
			return nil, nil
		}
		visited[cur] = true
		next, _ := Lookup(cur, cur.LinkID).(*Gradient)
		if next == nil {
			return nil, fmt.Errorf("%q: %w", cur.LinkID, ErrDanglingLink)
		}
		if visited[next] {
			return nil, fmt.Errorf("%q: %w", cur.LinkID, ErrGradientCycle)
		}
		cur = next
	}
}

// Create realizes the gradient as a pattern for painting `shape` on `c`.
// A nil pattern (with a nil error) is returned when the canvas does not
// support gradients. ErrEmptyBoundingBox is returned when the bounding
// box of the shape is degenerated and the gradient is relative to it.
// The pattern is kept until Dispose is called, and a previous
// pattern is released.
func (g *Gradient) Create(shape *Graphic, c Canvas) (Pattern, error) {
	g.Dispose()

	stops, err := g.ResolveStops()
	if err != nil {
		return nil, err
	}

	gradT := g.Transform.Chain()
	var ref Bounds
	var m Matrix2D
	if g.UserSpace {
		if f := NearestFragment(shape); f != nil {
			ref = f.Viewport()
		}
		m = gradT.Invert()
	} else {
		ref = shape.Path.Bounds()
		if ref.Empty() {
			return nil, ErrEmptyBoundingBox
		}
		m = Identity.Translate(ref.X, ref.Y).Scale(ref.W, ref.H).Mult(gradT).Invert()
	}

	creator, ok := c.(PatternCreator)
	if !ok {
		return nil, nil
	}
	spec := PatternSpec{
		Radial:    g.IsRadial(),
		Stops:     stops,
		Spread:    g.Spread,
		Matrix:    m,
		Reference: ref,
	}
	copy(spec.Points[:], g.Points)
	g.pattern = creator.CreatePattern(spec)
	if g.pattern == nil {
		return nil, nil
	}
	return g.pattern, nil
}

// Pattern returns the pattern realized by the last Create,
// or nil after Dispose.
func (g *Gradient) Pattern() Pattern { return g.pattern }

// Dispose releases the realized pattern, if any.
func (g *Gradient) Dispose() {
	if g.pattern != nil {
		g.pattern.Dispose()
		g.pattern = nil
	}
}
