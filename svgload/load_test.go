package svgload

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/svgpaint/svgdoc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func readString(t *testing.T, content string, mode ErrorMode) (*svgdoc.Document, error) {
	t.Helper()
	return Read(strings.NewReader(content), Options{ErrorMode: mode})
}

func mustRead(t *testing.T, content string) (*svgdoc.Document, *svgdoc.Fragment) {
	t.Helper()
	doc, err := readString(t, content, StrictErrorMode)
	require.NoError(t, err)
	require.Len(t, doc.Fragments(), 1)
	return doc, doc.Fragments()[0]
}

func graphic(t *testing.T, f *svgdoc.Fragment, id string) *svgdoc.Graphic {
	t.Helper()
	g, ok := f.GetElement(id).(*svgdoc.Graphic)
	require.True(t, ok, "missing graphic %q", id)
	return g
}

func TestReadFragment(t *testing.T) {
	doc, f := mustRead(t, `<svg xmlns="http://www.w3.org/2000/svg" id="root" width="100" height="50" viewBox="0 0 200 100">
		<rect id="r" x="10" y="10" width="20" height="30" fill="red"/>
	</svg>`)
	assert.Equal(t, "root", f.ID())
	assert.True(t, f.HasSize)
	assert.Equal(t, [2]float64{100, 50}, [2]float64{f.Width, f.Height})
	assert.Equal(t, &svgdoc.Bounds{W: 200, H: 100}, f.ViewBox)
	assert.Equal(t, svgdoc.Bounds{W: 200, H: 100}, doc.Viewport())

	r := graphic(t, f, "r")
	assert.Equal(t, svgdoc.PaintColor, *r.Fill.Type)
	assert.Equal(t, svgdoc.Color(0xff0000), *r.Fill.Color)
	assert.Equal(t, svgdoc.Bounds{X: 10, Y: 10, W: 20, H: 30}, r.Path.Bounds())
	assert.Nil(t, r.Stroke)
}

func TestReadSizeFromViewBox(t *testing.T) {
	_, f := mustRead(t, `<svg width="50" viewBox="0 0 200 100"></svg>`)
	assert.True(t, f.HasSize)
	assert.Equal(t, 25., f.Height)

	_, f = mustRead(t, `<svg viewBox="0 0 200 100"></svg>`)
	assert.False(t, f.HasSize)

	_, err := readString(t, `<svg viewBox="0 0 200"></svg>`, IgnoreErrorMode)
	assert.Error(t, err)
}

func TestReadShapes(t *testing.T) {
	_, f := mustRead(t, `<svg viewBox="0 0 200 100">
		<circle id="c" cx="50" cy="50" r="10"/>
		<ellipse id="e" cx="50" cy="50" rx="20" ry="10"/>
		<line id="l" x1="0" y1="0" x2="10" y2="20"/>
		<polyline id="pl" points="0,0 10,0 10,10"/>
		<polygon id="pg" points="0 0 10 0 10 10"/>
		<path id="p" d="M 0 0 L 10 10 H 20 Z"/>
		<rect id="pct" width="50%" height="50%"/>
		<rect id="empty" width="0" height="10"/>
	</svg>`)

	bounds := func(id string) svgdoc.Bounds { return graphic(t, f, id).Path.Bounds() }
	c := bounds("c")
	assert.InDelta(t, 40, c.X, 0.05)
	assert.InDelta(t, 20, c.W, 0.05)
	e := bounds("e")
	assert.InDelta(t, 40, e.W, 0.05)
	assert.InDelta(t, 20, e.H, 0.05)
	assert.Equal(t, svgdoc.Bounds{W: 10, H: 20}, bounds("l"))
	assert.Equal(t, svgdoc.Bounds{W: 10, H: 10}, bounds("pl"))
	assert.Equal(t, svgdoc.Bounds{W: 20, H: 10}, bounds("p"))
	assert.Equal(t, svgdoc.Bounds{W: 100, H: 50}, bounds("pct"))
	assert.Empty(t, graphic(t, f, "empty").Path)

	pl, pg := graphic(t, f, "pl").Path, graphic(t, f, "pg").Path
	assert.Len(t, pg, len(pl)+1) // closing operation
}

func TestReadPaintAttributes(t *testing.T) {
	_, f := mustRead(t, `<svg>
		<g id="g" opacity="0.5" fill-opacity="0.5" stroke="url(#grad)" stroke-width="3"
			stroke-linecap="round" stroke-linejoin="bevel" stroke-miterlimit="2"
			stroke-dasharray="1, 2 3" stroke-dashoffset="1" fill-rule="nonzero"
			transform="translate(5 6) scale(2)">
			<rect id="solid" stroke-dasharray="none" fill="inherit"/>
		</g>
	</svg>`)
	g := graphic(t, f, "g")
	assert.Equal(t, svgdoc.Ptr(0.5), g.Opacity)
	expectedFill := &svgdoc.Fill{Opacity: svgdoc.Ptr(0.5), Rule: svgdoc.Ptr(svgdoc.NonZero)}
	if diff := cmp.Diff(expectedFill, g.Fill); diff != "" {
		t.Errorf("unexpected fill (-want +got):\n%s", diff)
	}
	expectedStroke := &svgdoc.Stroke{
		Type:       svgdoc.Ptr(svgdoc.PaintServer),
		LinkID:     svgdoc.Ptr("grad"),
		Width:      svgdoc.Ptr(3.),
		Cap:        svgdoc.Ptr(svgdoc.CapRound),
		Join:       svgdoc.Ptr(svgdoc.JoinBevel),
		MiterLimit: svgdoc.Ptr(2.),
		Dashes:     []float64{1, 2, 3},
		DashOffset: svgdoc.Ptr(1.),
	}
	if diff := cmp.Diff(expectedStroke, g.Stroke); diff != "" {
		t.Errorf("unexpected stroke (-want +got):\n%s", diff)
	}
	assert.Equal(t, svgdoc.Identity.Translate(5, 6).Scale(2, 2), g.Transform.Chain())

	solid := graphic(t, f, "solid")
	assert.Nil(t, solid.Fill)
	require.NotNil(t, solid.Stroke)
	assert.NotNil(t, solid.Stroke.Dashes)
	assert.Empty(t, solid.Stroke.Dashes)

	stroke := svgdoc.ResolveStroke(svgdoc.Ancestry(solid))
	assert.Empty(t, stroke.Dashes)
	assert.Equal(t, 3., stroke.Width)
}

func TestReadGroupOpacity(t *testing.T) {
	_, f := mustRead(t, `<svg>
		<g id="g" opacity="0.5">
			<rect id="r" width="1" height="1" fill-opacity="0.8" opacity="150%"/>
		</g>
	</svg>`)
	r := graphic(t, f, "r")
	assert.Equal(t, svgdoc.Ptr(1.), r.Opacity)
	ancestry := svgdoc.Ancestry(r)
	assert.Equal(t, 0.8, svgdoc.ResolveFill(ancestry).Opacity)
	assert.Equal(t, 0.5, svgdoc.OpacityFactor(ancestry))
}

func TestReadFragmentPaint(t *testing.T) {
	_, f := mustRead(t, `<svg fill="none" stroke="black"><rect id="r" width="1" height="1"/></svg>`)
	require.Len(t, f.Children(), 1)
	wrapper, ok := f.Children()[0].(*svgdoc.Graphic)
	require.True(t, ok)
	assert.Equal(t, svgdoc.PaintNone, *wrapper.Fill.Type)

	r := graphic(t, f, "r")
	assert.Equal(t, svgdoc.PaintNone, svgdoc.ResolveFill(svgdoc.Ancestry(r)).Type)
	assert.Equal(t, svgdoc.PaintColor, svgdoc.ResolveStroke(svgdoc.Ancestry(r)).Type)
}

func TestReadTitle(t *testing.T) {
	_, f := mustRead(t, `<svg><g id="g"><title> Logo </title><desc>A small logo</desc></g></svg>`)
	g := graphic(t, f, "g")
	assert.Equal(t, "Logo", g.Title)
	assert.Equal(t, "A small logo", g.Desc)
	assert.Empty(t, g.Children())
}

func TestReadCSS(t *testing.T) {
	_, f := mustRead(t, `<svg>
		<style>
			rect { fill: blue; stroke-width: 4 }
			.thin { stroke-width: 1 }
			#second { fill: green }
			@media print { rect { fill: black } }
		</style>
		<rect id="first" fill="red"/>
		<rect id="second" class="thin" fill="red"/>
		<rect id="third" class="thin" style="fill: #010203; stroke-width: 7"/>
	</svg>`)
	resolved := func(id string) (svgdoc.Color, float64) {
		g := graphic(t, f, id)
		return *g.Fill.Color, *g.Stroke.Width
	}

	col, w := resolved("first") // stylesheet wins over attributes
	assert.Equal(t, svgdoc.Color(0x0000ff), col)
	assert.Equal(t, 4., w)

	col, w = resolved("second") // more specific selectors win
	assert.Equal(t, svgdoc.Color(0x008000), col)
	assert.Equal(t, 1., w)

	col, w = resolved("third") // style attribute wins over everything
	assert.Equal(t, svgdoc.Color(0x010203), col)
	assert.Equal(t, 7., w)

	styles := 0
	for _, child := range f.Children() {
		if child.Kind() == svgdoc.KindStyle {
			styles++
		}
	}
	assert.Equal(t, 1, styles)
}

func TestReadUnsupportedSelector(t *testing.T) {
	content := `<svg><style>g > rect { fill: red }</style><rect/></svg>`
	_, err := readString(t, content, StrictErrorMode)
	assert.ErrorContains(t, err, "unsupported CSS selector")

	_, err = readString(t, content, IgnoreErrorMode)
	assert.NoError(t, err)
}

func TestReadUse(t *testing.T) {
	_, f := mustRead(t, `<svg>
		<defs id="defs"><circle id="dot" r="5" fill="red"/></defs>
		<use id="u" href="#dot" x="10" y="20" transform="scale(2)"/>
		<use id="u2" xlink:href="#dot" xmlns:xlink="http://www.w3.org/1999/xlink"/>
	</svg>`)
	assert.True(t, graphic(t, f, "defs").Hidden)

	u := graphic(t, f, "u")
	assert.Equal(t, svgdoc.Identity.Scale(2, 2).Translate(10, 20), u.Transform.Chain())
	require.Len(t, u.Children(), 1)
	cp := u.Children()[0].(*svgdoc.Graphic)
	assert.Equal(t, "", cp.ID())
	assert.False(t, cp.Hidden)
	assert.Equal(t, graphic(t, f, "dot").Path, cp.Path)
	assert.NotSame(t, graphic(t, f, "dot"), cp)

	u2 := graphic(t, f, "u2")
	assert.Nil(t, u2.Transform)
	assert.Len(t, u2.Children(), 1)
}

func TestReadUseNested(t *testing.T) {
	_, f := mustRead(t, `<svg>
		<use id="u1" href="#grp"/>
		<defs>
			<g id="grp"><use id="u2" href="#dot"/></g>
			<circle id="dot" r="5"/>
		</defs>
	</svg>`)
	u2 := graphic(t, f, "u2")
	require.Len(t, u2.Children(), 1)

	u1 := graphic(t, f, "u1")
	require.Len(t, u1.Children(), 1)
	grp := u1.Children()[0].(*svgdoc.Graphic)
	require.Len(t, grp.Children(), 1)
	innerUse := grp.Children()[0].(*svgdoc.Graphic)
	require.Len(t, innerUse.Children(), 1)
	dot := innerUse.Children()[0].(*svgdoc.Graphic)
	assert.Equal(t, graphic(t, f, "dot").Path, dot.Path)
}

func TestReadUseErrors(t *testing.T) {
	for _, content := range []string{
		`<svg><use href="#missing"/></svg>`,
		`<svg><g id="loop"><use href="#loop"/></g></svg>`,
		`<svg><g id="a"><use href="#b"/></g><g id="b"><use href="#a"/></g></svg>`,
		`<svg><use/></svg>`,
		`<svg><use href="other.svg#a"/></svg>`,
		`<svg><linearGradient id="lg"/><use href="#lg"/></svg>`,
	} {
		_, err := readString(t, content, StrictErrorMode)
		assert.Error(t, err, content)

		_, err = readString(t, content, IgnoreErrorMode)
		assert.NoError(t, err, content)
	}
}

func TestReadGradients(t *testing.T) {
	_, f := mustRead(t, `<svg viewBox="0 0 200 100">
		<defs>
			<linearGradient id="lin" gradientUnits="userSpaceOnUse" y1="10%" gradientTransform="rotate(45)">
				<stop offset="0" stop-color="red"/>
				<stop offset="150%" stop-color="#00f" stop-opacity="0.5"/>
			</linearGradient>
			<linearGradient id="frac" x1="50%" x2="0.75"/>
			<radialGradient id="rad" cx="25%" r=".4" href="#lin" spreadMethod="reflect"/>
		</defs>
	</svg>`)
	lin := f.GetElement("lin").(*svgdoc.Gradient)
	assert.True(t, lin.UserSpace)
	assert.Equal(t, []float64{0, 10, 200, 0}, lin.Points)
	assert.Equal(t, svgdoc.TransformRotate, lin.Transform.Kind)
	stops := lin.Stops()
	require.Len(t, stops, 2)
	assert.Equal(t, 0., stops[0].Offset)
	assert.Equal(t, svgdoc.Color(0xff0000), stops[0].Color)
	assert.Equal(t, 1., stops[0].Opacity)
	assert.Equal(t, 1., stops[1].Offset)
	assert.Equal(t, 0.5, stops[1].Opacity)

	frac := f.GetElement("frac").(*svgdoc.Gradient)
	assert.False(t, frac.UserSpace)
	assert.Equal(t, []float64{0.5, 0, 0.75, 0}, frac.Points)

	rad := f.GetElement("rad").(*svgdoc.Gradient)
	assert.True(t, rad.IsRadial())
	assert.Equal(t, []float64{0.25, 0.5, 0.25, 0.5, 0.4}, rad.Points)
	assert.Equal(t, svgdoc.SpreadReflect, rad.Spread)
	assert.Equal(t, "lin", rad.LinkID)
	linked, err := rad.ResolveStops()
	require.NoError(t, err)
	assert.Equal(t, stops, linked)
}

func TestReadStopOpacityClamped(t *testing.T) {
	_, f := mustRead(t, `<svg viewBox="0 0 10 10">
		<defs>
			<linearGradient id="g">
				<stop offset="0" stop-opacity="-0.5"/>
				<stop offset="0.5" stop-opacity="2"/>
				<stop offset="1" stop-opacity="300%"/>
			</linearGradient>
		</defs>
	</svg>`)
	stops := f.GetElement("g").(*svgdoc.Gradient).Stops()
	require.Len(t, stops, 3)
	assert.Equal(t, 0., stops[0].Opacity)
	assert.Equal(t, 1., stops[1].Opacity)
	assert.Equal(t, 1., stops[2].Opacity)
}

func TestReadStopOutsideGradient(t *testing.T) {
	_, err := readString(t, `<svg><stop offset="0"/></svg>`, StrictErrorMode)
	assert.Error(t, err)

	doc, err := readString(t, `<svg><stop offset="0"/></svg>`, IgnoreErrorMode)
	require.NoError(t, err)
	assert.Empty(t, doc.Fragments()[0].Children())
}

func TestReadNestedFragment(t *testing.T) {
	_, f := mustRead(t, `<svg viewBox="0 0 100 100">
		<rect id="a"/>
		<svg id="inner" x="10" y="10" width="50%" height="20">
			<rect id="a"/>
		</svg>
	</svg>`)
	require.Len(t, f.Children(), 2)
	inner := f.Children()[1].(*svgdoc.Fragment)
	assert.False(t, inner.Outermost())
	assert.Equal(t, [4]float64{10, 10, 50, 20}, [4]float64{inner.X, inner.Y, inner.Width, inner.Height})
	assert.NotSame(t, f.GetElement("a"), inner.GetElement("a"))
	assert.Nil(t, f.GetElement("inner"))
}

func TestErrorModes(t *testing.T) {
	content := `<svg><foo/><rect id="r"/><rect id="r"/></svg>`

	_, err := readString(t, content, StrictErrorMode)
	assert.ErrorContains(t, err, "foo")

	doc, err := readString(t, content, IgnoreErrorMode)
	require.NoError(t, err)
	assert.Len(t, doc.Fragments()[0].Children(), 2)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	doc, err = Read(strings.NewReader(content), Options{ErrorMode: WarnErrorMode, Logger: logger})
	require.NoError(t, err)
	assert.Same(t, logger, doc.Logger)
	assert.Contains(t, buf.String(), "cannot process svg element foo")
	assert.Contains(t, buf.String(), `duplicate id \"r\"`)
}

func TestMalformedInput(t *testing.T) {
	for _, content := range []string{
		``,
		`<svg><rect></svg>`,
		`<g/>`,
		`<svg><path d="M 1"/></svg>`,
		`<svg><rect fill="notacolor"/></svg>`,
		`<svg><rect width="abc"/></svg>`,
		`<svg><rect transform="spin(2)"/></svg>`,
		`<svg><polygon points="1 2 3"/></svg>`,
		`<svg><linearGradient spreadMethod="bounce"/></svg>`,
	} {
		// always an error, whatever the mode
		_, err := readString(t, content, IgnoreErrorMode)
		assert.Error(t, err, content)
	}
}

func TestErrorModeText(t *testing.T) {
	var mode ErrorMode
	require.NoError(t, mode.UnmarshalText([]byte("Strict")))
	assert.Equal(t, StrictErrorMode, mode)
	text, err := WarnErrorMode.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warn", string(text))
	assert.Error(t, mode.UnmarshalText([]byte("loud")))
}

func TestReadFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "icon.svg")
	require.NoError(t, os.WriteFile(name, []byte(`<?xml version="1.0" encoding="ISO-8859-1"?>
<svg viewBox="0 0 10 10"><title>caf`+"\xe9"+`</title><g id="g"><title>caf`+"\xe9"+`</title></g></svg>`), 0o644))
	doc, err := ReadFile(name, Options{})
	require.NoError(t, err)
	g := graphic(t, doc.Fragments()[0], "g")
	assert.Equal(t, "café", g.Title)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.svg"), Options{})
	assert.Error(t, err)
}
