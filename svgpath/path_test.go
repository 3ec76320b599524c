package svgpath

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"
)

func randPoint(xMax, yMax int) fixed.Point26_6 {
	return fixed.Point26_6{
		X: fixed.Int26_6(rand.Intn(xMax * 64)),
		Y: fixed.Int26_6(rand.Intn(yMax * 64)),
	}
}

func TestParsePoints(t *testing.T) {
	for _, test := range []struct {
		input    string
		expected []float64
	}{
		{"", []float64{}},
		{"1 2", []float64{1, 2}},
		{"1,2 3,4", []float64{1, 2, 3, 4}},
		{"-1-2+3", []float64{-1, -2, 3}},
		{"0.5.5", []float64{0.5, 0.5}},
		{"1e2,3.5E-1", []float64{100, 0.35}},
	} {
		got, err := ParsePoints(test.input)
		require.NoError(t, err)
		assert.Equal(t, test.expected, got, test.input)
	}
}

func TestCompilePath(t *testing.T) {
	p, err := CompilePath("M10 10 L20 10 H30 V20 Z")
	require.NoError(t, err)
	assert.Equal(t, "M10.000,10.000 L20.000,10.000 L30.000,10.000 L30.000,20.000 Z", p.ToSVGPath())

	rel, err := CompilePath("m10 10 l10 0 h10 v10 z")
	require.NoError(t, err)
	assert.Equal(t, p, rel)

	p, err = CompilePath("M0 0 C 10 0 20 10 20 20 S 30 40 40 40")
	require.NoError(t, err)
	require.Len(t, p, 3)
	second := p[2].(CubicTo)
	// the first control point is the reflection of (10, 10) around (20, 20)
	assert.Equal(t, toFixedP(20, 30), second[0])

	p, err = CompilePath("M0 0 Q 10 10 20 0 T 40 0")
	require.NoError(t, err)
	require.Len(t, p, 3)
	assert.Equal(t, toFixedP(30, -10), p[2].(QuadTo)[0])

	p, err = CompilePath("M0 0 10 0 10 10")
	require.NoError(t, err)
	assert.Equal(t, Path{MoveTo(toFixedP(0, 0)), LineTo(toFixedP(10, 0)), LineTo(toFixedP(10, 10))}, p)
}

func TestCompilePathErrors(t *testing.T) {
	for _, d := range []string{
		"M10",
		"M0 0 L1",
		"M0 0 C1 2 3 4",
		"M0 0 Z 1",
		"M0 0 A 1 1",
	} {
		_, err := CompilePath(d)
		assert.ErrorIs(t, err, errParamMismatch, d)
	}
	_, err := CompilePath("M0 0 X 3")
	assert.Error(t, err)
}

func TestArc(t *testing.T) {
	p, err := CompilePath("M0 0 A 10 10 0 0 1 20 0")
	require.NoError(t, err)
	require.Greater(t, len(p), 2)
	last := p[len(p)-1].(CubicTo)
	assert.Equal(t, toFixedP(20, 0), last[2])

	// half circle through (10, 10) or (10, -10)
	bb := p.Bounds()
	assert.InDelta(t, 20, bb.W, 0.1)
	assert.InDelta(t, 10, bb.H, 0.1)

	// zero radius is a straight line
	p, err = CompilePath("M0 0 A 0 10 0 0 1 20 0")
	require.NoError(t, err)
	assert.Equal(t, Path{MoveTo(toFixedP(0, 0)), LineTo(toFixedP(20, 0))}, p)
}

func TestArcFlags(t *testing.T) {
	compact, err := CompilePath("M0 0 a5 5 0 105 5")
	require.NoError(t, err)
	spaced, err := CompilePath("M0 0 a5 5 0 1 0 5 5")
	require.NoError(t, err)
	assert.Equal(t, spaced, compact)
	last := compact[len(compact)-1].(CubicTo)
	assert.Equal(t, toFixedP(5, 5), last[2])

	got, err := parseArcPoints("1,1 0 0,1 2 3 4 4 0 11.5.5")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0, 0, 1, 2, 3, 4, 4, 0, 1, 1, .5, .5}, got)

	_, err = CompilePath("M0 0 A 5 5 0 2 0 5 5")
	assert.Error(t, err)
}

func TestShapes(t *testing.T) {
	var p Path
	p.AddRect(0, 0, 10, 5, 0)
	assert.Equal(t, Bounds{X: 0, Y: 0, W: 10, H: 5}, p.Bounds())

	p.Clear()
	p.AddRect(0, 0, 10, 10, 90)
	bb := p.Bounds()
	assert.InDelta(t, 0, bb.X, 0.05)
	assert.InDelta(t, 10, bb.W, 0.05)

	p.Clear()
	p.AddEllipse(10, 10, 5, 3)
	bb = p.Bounds()
	assert.InDelta(t, 5, bb.X, 0.05)
	assert.InDelta(t, 7, bb.Y, 0.05)
	assert.InDelta(t, 10, bb.W, 0.05)
	assert.InDelta(t, 6, bb.H, 0.05)

	p.Clear()
	p.AddRoundRect(0, 0, 20, 10, 50, 2, 0)
	bb = p.Bounds()
	assert.InDelta(t, 20, bb.W, 0.05)
	assert.InDelta(t, 10, bb.H, 0.05)
	_, isClose := p[len(p)-1].(Close)
	assert.True(t, isClose)

	p.Clear()
	p.AddPolyline([]float64{0, 0, 5}, true)
	assert.Empty(t, p)
	p.AddPolyline([]float64{0, 0, 5, 5, 0, 5}, false)
	assert.Len(t, p, 3)
}

func TestBoundingBoxContainsPoints(t *testing.T) {
	for range [20]int{} {
		var p Path
		p.Start(randPoint(40, 40))
		p.Line(randPoint(40, 40))
		p.QuadBezier(randPoint(35, 35), randPoint(45, 45))
		p.CubeBezier(randPoint(35, 35), randPoint(45, 45), randPoint(30, 30))
		p.Stop(true)

		bb := p.Bounds()
		var current fixed.Point26_6
		for _, op := range p {
			var end fixed.Point26_6
			switch op := op.(type) {
			case MoveTo:
				end = fixed.Point26_6(op)
			case LineTo:
				end = fixed.Point26_6(op)
			case QuadTo:
				end = op[1]
			case CubicTo:
				end = op[2]
			default:
				continue
			}
			current = end
			x, y := fixedTof(current)
			assert.True(t, bb.X-1e-9 <= x && x <= bb.X+bb.W+1e-9)
			assert.True(t, bb.Y-1e-9 <= y && y <= bb.Y+bb.H+1e-9)
		}
	}
}

func TestBoundingBoxCurve(t *testing.T) {
	var p Path
	p.Start(toFixedP(0, 0))
	p.CubeBezier(toFixedP(0, 10), toFixedP(10, 10), toFixedP(10, 0))
	bb := p.Bounds()
	// the extremum is reached at t = 0.5 : 3/4 * 10
	assert.InDelta(t, 7.5, bb.H, 0.01)
	assert.Equal(t, Bounds{}, Path(nil).Bounds())
}

func TestMatrix(t *testing.T) {
	m := Identity.Translate(10, 5).Scale(2, 3).Rotate(math.Pi / 3).SkewX(0.2)
	assert.True(t, Identity.Mult(m) == m)
	assert.True(t, m.Mult(Identity) == m)

	inv := m.Mult(m.Invert())
	assert.InDelta(t, 1, inv.A, 1e-9)
	assert.InDelta(t, 0, inv.B, 1e-9)
	assert.InDelta(t, 0, inv.C, 1e-9)
	assert.InDelta(t, 1, inv.D, 1e-9)
	assert.InDelta(t, 0, inv.E, 1e-9)
	assert.InDelta(t, 0, inv.F, 1e-9)

	assert.Equal(t, Identity, Matrix2D{}.Invert())
	assert.False(t, Matrix2D{1, 0, 0, 1, 0, 1e-12}.IsIdentity())

	x, y := Identity.Translate(1, 2).Scale(2, 2).Transform(1, 1)
	assert.Equal(t, 3., x)
	assert.Equal(t, 4., y)
}

func TestAddTo(t *testing.T) {
	var p, out Path
	p.AddRect(0, 0, 1, 1, 0)
	p.AddTo(&out, Identity.Scale(2, 2))
	assert.Equal(t, Bounds{W: 2, H: 2}, out.Bounds())

	cp := p.Copy()
	cp[0] = MoveTo(toFixedP(5, 5))
	assert.NotEqual(t, cp[0], p[0])
}
