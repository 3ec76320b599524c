package svgdoc

import (
	"fmt"
	"math"

	"github.com/benoitkugler/svgpaint/svgpath"
)

// Matrix2D is the affine matrix used across the document.
type Matrix2D = svgpath.Matrix2D

// Bounds defines a rectangle, such as a viewport or a path extent.
type Bounds = svgpath.Bounds

// Identity is the transformation leaving points unchanged.
var Identity = svgpath.Identity

// TransformKind is the operation declared in a transform attribute.
type TransformKind uint8

const (
	TransformMatrix TransformKind = iota
	TransformTranslate
	TransformScale
	TransformRotate
	TransformSkewX
	TransformSkewY
)

func (k TransformKind) String() string {
	switch k {
	case TransformMatrix:
		return "matrix"
	case TransformTranslate:
		return "translate"
	case TransformScale:
		return "scale"
	case TransformRotate:
		return "rotate"
	case TransformSkewX:
		return "skewX"
	case TransformSkewY:
		return "skewY"
	default:
		return fmt.Sprintf("<unknown TransformKind %d>", k)
	}
}

// AffineTransform is one node of a transform chain.
// A graphic declaring several operations in its transform attribute
// holds them linked through Next, in declaration order.
type AffineTransform struct {
	Kind     TransformKind
	Operands []float64
	Matrix2D

	Next *AffineTransform
}

// NewAffineTransform returns an identity transform.
func NewAffineTransform() *AffineTransform {
	return &AffineTransform{Matrix2D: Identity}
}

// SetData resets the transform to identity, then applies
// the operation described by `kind` and `operands`.
// Angles are in degrees.
func (t *AffineTransform) SetData(kind TransformKind, operands ...float64) error {
	t.Kind, t.Operands, t.Matrix2D = kind, nil, Identity
	l := len(operands)
	switch kind {
	case TransformMatrix:
		if l != 6 {
			return fmt.Errorf("%s: %w (got %d)", kind, ErrOperandCount, l)
		}
		t.Matrix2D = Matrix2D{A: operands[0], B: operands[1], C: operands[2], D: operands[3], E: operands[4], F: operands[5]}
	case TransformTranslate:
		switch l {
		case 1:
			t.Matrix2D = Identity.Translate(operands[0], 0)
		case 2:
			t.Matrix2D = Identity.Translate(operands[0], operands[1])
		default:
			return fmt.Errorf("%s: %w (got %d)", kind, ErrOperandCount, l)
		}
	case TransformScale:
		switch l {
		case 1:
			t.Matrix2D = Identity.Scale(operands[0], operands[0])
		case 2:
			t.Matrix2D = Identity.Scale(operands[0], operands[1])
		default:
			return fmt.Errorf("%s: %w (got %d)", kind, ErrOperandCount, l)
		}
	case TransformRotate:
		switch l {
		case 1:
			t.Matrix2D = Identity.Rotate(operands[0] * math.Pi / 180)
		case 3:
			cx, cy := operands[1], operands[2]
			t.Matrix2D = Identity.Translate(cx, cy).Rotate(operands[0]*math.Pi/180).Translate(-cx, -cy)
		default:
			return fmt.Errorf("%s: %w (got %d)", kind, ErrOperandCount, l)
		}
	case TransformSkewX:
		if l != 1 {
			return fmt.Errorf("%s: %w (got %d)", kind, ErrOperandCount, l)
		}
		t.Matrix2D = Identity.SkewX(operands[0] * math.Pi / 180)
	case TransformSkewY:
		if l != 1 {
			return fmt.Errorf("%s: %w (got %d)", kind, ErrOperandCount, l)
		}
		t.Matrix2D = Identity.SkewY(operands[0] * math.Pi / 180)
	default:
		return fmt.Errorf("unknown transform kind %d", kind)
	}
	t.Operands = append([]float64(nil), operands...)
	return nil
}

// Apply maps the point (x, y) through this node only,
// whatever its kind.
func (t *AffineTransform) Apply(x, y float64) (float64, float64) {
	return t.Matrix2D.Transform(x, y)
}

// IsIdentity is an exact comparison with [1 0 0 1 0 0].
// A nil transform is the identity.
func (t *AffineTransform) IsIdentity() bool {
	return t == nil || t.Matrix2D.IsIdentity()
}

// Chain returns the composition of the node and its successors,
// so that the last declared operation is applied first to the points,
// as in transform="translate(10) scale(2)".
func (t *AffineTransform) Chain() Matrix2D {
	m := Identity
	for ; t != nil; t = t.Next {
		m = m.Mult(t.Matrix2D)
	}
	return m
}

// Append links `next` at the end of the chain started by t.
func (t *AffineTransform) Append(next *AffineTransform) {
	for t.Next != nil {
		t = t.Next
	}
	t.Next = next
}

// Copy returns a deep copy of the chain.
func (t *AffineTransform) Copy() *AffineTransform {
	if t == nil {
		return nil
	}
	out := *t
	out.Operands = append([]float64(nil), t.Operands...)
	out.Next = t.Next.Copy()
	return &out
}
