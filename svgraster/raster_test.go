package svgraster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/svgpaint/svgload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveToPngFile(t *testing.T, m image.Image) {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, m))
	require.NoError(t, os.WriteFile(filepath.Join(t.TempDir(), "out.png"), b.Bytes(), os.ModePerm))
}

func render(t *testing.T, content string, w, h int) *image.RGBA {
	t.Helper()
	img, err := RasterSVGToImage(strings.NewReader(content), w, h, svgload.Options{ErrorMode: svgload.StrictErrorMode})
	require.NoError(t, err)
	saveToPngFile(t, img)
	return img
}

var (
	red         = color.RGBA{255, 0, 0, 255}
	blue        = color.RGBA{0, 0, 255, 255}
	transparent = color.RGBA{}
)

func TestFillRect(t *testing.T) {
	const content = `<svg viewBox="0 0 10 10"><rect x="2" y="2" width="6" height="6" fill="red"/></svg>`
	img := render(t, content, 0, 0)
	assert.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())
	assert.Equal(t, red, img.RGBAAt(5, 5))
	assert.Equal(t, transparent, img.RGBAAt(0, 0))
	assert.Equal(t, transparent, img.RGBAAt(9, 9))

	// scaled to the target size
	img = render(t, content, 20, 20)
	assert.Equal(t, red, img.RGBAAt(15, 15))
	assert.Equal(t, transparent, img.RGBAAt(17, 17))
	assert.Equal(t, transparent, img.RGBAAt(2, 2))
}

func TestStroke(t *testing.T) {
	img := render(t, `<svg viewBox="0 0 10 10">
		<line x1="0" y1="5" x2="10" y2="5" stroke="blue" stroke-width="2" fill="none"/>
	</svg>`, 20, 20)
	// the stroke width is scaled as well
	for _, y := range []int{8, 9, 10, 11} {
		assert.Equal(t, blue, img.RGBAAt(10, y), "row %d", y)
	}
	assert.Equal(t, transparent, img.RGBAAt(10, 6))
	assert.Equal(t, transparent, img.RGBAAt(10, 13))
}

func TestDashes(t *testing.T) {
	img := render(t, `<svg viewBox="0 0 20 4">
		<line x1="0" y1="2" x2="20" y2="2" stroke="blue" stroke-width="2" stroke-dasharray="4"/>
	</svg>`, 0, 0)
	assert.Equal(t, blue, img.RGBAAt(1, 2))
	assert.Equal(t, transparent, img.RGBAAt(6, 2))
	assert.Equal(t, blue, img.RGBAAt(9, 2))
}

func TestOpacity(t *testing.T) {
	img := render(t, `<svg viewBox="0 0 10 10"><rect width="10" height="10" fill="red" fill-opacity="0.5"/></svg>`, 0, 0)
	c := img.RGBAAt(5, 5)
	assert.InDelta(t, 127, int(c.A), 2)
	assert.InDelta(t, 127, int(c.R), 2)
	assert.Zero(t, c.G)
}

func TestHiddenDefs(t *testing.T) {
	img := render(t, `<svg viewBox="0 0 10 10">
		<defs><rect id="r" width="10" height="10" fill="red"/></defs>
		<use href="#r" x="5"/>
	</svg>`, 0, 0)
	assert.Equal(t, transparent, img.RGBAAt(2, 5))
	assert.Equal(t, red, img.RGBAAt(7, 5))
}

func TestLinearGradient(t *testing.T) {
	img := render(t, `<svg viewBox="0 0 100 10">
		<linearGradient id="g">
			<stop offset="0" stop-color="red"/>
			<stop offset="1" stop-color="blue"/>
		</linearGradient>
		<rect width="100" height="10" fill="url(#g)"/>
	</svg>`, 0, 0)
	left, middle, right := img.RGBAAt(2, 5), img.RGBAAt(50, 5), img.RGBAAt(97, 5)
	assert.Greater(t, left.R, uint8(240))
	assert.Less(t, left.B, uint8(15))
	assert.InDelta(t, 128, int(middle.R), 4)
	assert.InDelta(t, 128, int(middle.B), 4)
	assert.Greater(t, right.B, uint8(240))
	assert.Equal(t, uint8(255), middle.A)
}

func TestRadialGradient(t *testing.T) {
	img := render(t, `<svg viewBox="0 0 100 100">
		<radialGradient id="g" gradientUnits="userSpaceOnUse" cx="50" cy="50" r="50">
			<stop offset="0" stop-color="red"/>
			<stop offset="1" stop-color="blue"/>
		</radialGradient>
		<rect width="100" height="100" fill="url(#g)"/>
	</svg>`, 0, 0)
	center, corner := img.RGBAAt(50, 50), img.RGBAAt(2, 2)
	assert.Greater(t, center.R, uint8(240))
	assert.Equal(t, blue, corner) // padded
}

func TestLinearGradientSpread(t *testing.T) {
	img := render(t, `<svg viewBox="0 0 100 10">
		<linearGradient id="g" gradientUnits="userSpaceOnUse" x1="0" x2="50" spreadMethod="repeat">
			<stop offset="0" stop-color="red"/>
			<stop offset="1" stop-color="blue"/>
		</linearGradient>
		<rect width="100" height="10" fill="url(#g)"/>
	</svg>`, 0, 0)
	// the second half repeats the first one
	first, second := img.RGBAAt(10, 5), img.RGBAAt(60, 5)
	assert.InDelta(t, int(first.R), int(second.R), 2)
	assert.InDelta(t, int(first.B), int(second.B), 2)
	assert.Greater(t, first.R, first.B)
}

func TestLinearGradientDegenerated(t *testing.T) {
	img := render(t, `<svg viewBox="0 0 10 10">
		<linearGradient id="g" x1="0.5" x2="0.5">
			<stop offset="0" stop-color="red"/>
			<stop offset="1" stop-color="blue"/>
		</linearGradient>
		<rect width="10" height="10" fill="url(#g)"/>
	</svg>`, 0, 0)
	assert.Equal(t, blue, img.RGBAAt(2, 5))
}

func TestRenderSize(t *testing.T) {
	_, err := RasterSVGToImage(strings.NewReader(`<svg><rect width="2" height="2"/></svg>`), 0, 0, svgload.Options{})
	assert.ErrorIs(t, err, errNoSize)

	img, err := RasterSVGToImage(strings.NewReader(`<svg width="12" height="8"></svg>`), 0, 0, svgload.Options{})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 8), img.Bounds())

	_, err = RasterSVGToImage(strings.NewReader(`<svg><rect`), 10, 10, svgload.Options{})
	assert.Error(t, err)
}
