package svgdoc

// Fragment is an <svg> element, either outermost or nested.
// It owns the id namespace of the elements it contains.
type Fragment struct {
	container

	// X, Y position a nested fragment in its parent viewport.
	X, Y float64

	// Width and Height are meaningful only when HasSize is true.
	Width, Height float64
	HasSize       bool

	ViewBox *Bounds // optional

	elements map[string]Element

	// set by Apply for the duration of one paint call
	bounds         Matrix2D
	scaleX, scaleY float64
}

func NewFragment(id string) *Fragment {
	return &Fragment{
		container: container{node: node{id: id}},
		elements:  make(map[string]Element),
		bounds:    Identity,
		scaleX:    1,
		scaleY:    1,
	}
}

func (*Fragment) Kind() Kind { return KindFragment }

// GetElement returns the element registered with `id`
// in this fragment, or nil.
func (f *Fragment) GetElement(id string) Element {
	return f.elements[id]
}

// Outermost returns true if the fragment has no container.
func (f *Fragment) Outermost() bool { return f.parent == nil }

// Viewport returns the intrinsic rectangle of the fragment:
// its view box if declared, else its size, else an empty rectangle.
func (f *Fragment) Viewport() Bounds {
	if f.ViewBox != nil {
		return *f.ViewBox
	}
	if f.HasSize {
		return Bounds{W: f.Width, H: f.Height}
	}
	return Bounds{}
}

// Apply computes the bounds transform mapping the fragment
// onto `target`. The scale is target / view box if one is declared,
// target / (width, height) otherwise, or 1 if neither is known.
// X and Y factors are independent.
func (f *Fragment) Apply(target Bounds) {
	f.scaleX, f.scaleY = 1, 1
	var origin Bounds
	switch {
	case target.Empty():
	case f.ViewBox != nil && !f.ViewBox.Empty():
		origin = *f.ViewBox
		f.scaleX, f.scaleY = target.W/f.ViewBox.W, target.H/f.ViewBox.H
	case f.HasSize && f.Width > 0 && f.Height > 0:
		f.scaleX, f.scaleY = target.W/f.Width, target.H/f.Height
	}
	f.bounds = Identity.Translate(target.X, target.Y).Scale(f.scaleX, f.scaleY).Translate(-origin.X, -origin.Y)
}

// Scale returns the factors computed by the last Apply.
func (f *Fragment) Scale() (sx, sy float64) { return f.scaleX, f.scaleY }

// BoundsTransform returns the transform computed by the last Apply.
func (f *Fragment) BoundsTransform() Matrix2D { return f.bounds }

// Reset restores the identity bounds transform.
func (f *Fragment) Reset() {
	f.bounds = Identity
	f.scaleX, f.scaleY = 1, 1
}
