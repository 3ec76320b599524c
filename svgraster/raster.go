// Implements a raster backend to render SVG documents,
// by wrapping rasterx.
package svgraster

import (
	"errors"
	"image"
	"image/draw"
	"io"
	"math"

	"github.com/benoitkugler/svgpaint/svgdoc"
	"github.com/benoitkugler/svgpaint/svgload"
	"github.com/benoitkugler/svgpaint/svgpath"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

var (
	_ svgdoc.Canvas         = (*Renderer)(nil) // assert interface conformance
	_ svgdoc.PatternCreator = (*Renderer)(nil)
)

// Renderer is a canvas drawing with rasterx.
// Paths are flattened in device space, so that the current
// transform also applies to stroke widths and dashes.
type Renderer struct {
	dasher *rasterx.Dasher // to avoid shared state
	filler *rasterx.Filler // we use separated instance

	ctm   svgdoc.Matrix2D
	alpha float64
}

// NewRenderer returns a renderer with default values.
// In addition to rasterizing lines like a Scanner,
// it can also rasterize quadratic and cubic bezier curves.
func NewRenderer(width, height int, scanner rasterx.Scanner) *Renderer {
	return &Renderer{
		dasher: rasterx.NewDasher(width, height, scanner),
		filler: rasterx.NewFiller(width, height, scanner),
		ctm:    svgdoc.Identity,
		alpha:  1,
	}
}

// NewImageRenderer returns a renderer drawing on `img`
// with a rasterx.ScannerGV.
func NewImageRenderer(img draw.Image) *Renderer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	return NewRenderer(w, h, rasterx.NewScannerGV(w, h, img, b))
}

var errNoSize = errors.New("svgraster: unknown image size")

// Render draws `doc` on a new image of the given size, scaling
// it to fit. If width or height is not positive, the size
// of the document is used.
func Render(doc *svgdoc.Document, width, height int, opacity float64) (*image.RGBA, error) {
	vp := doc.Viewport()
	if width <= 0 {
		width = int(math.Ceil(vp.W))
	}
	if height <= 0 {
		height = int(math.Ceil(vp.H))
	}
	if width <= 0 || height <= 0 {
		return nil, errNoSize
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	doc.Draw(NewImageRenderer(img), svgdoc.Bounds{W: float64(width), H: float64(height)}, opacity)
	return img, nil
}

// RasterSVGToImage reads the SVG content and renders
// it into an image of the given size (see Render).
func RasterSVGToImage(stream io.Reader, width, height int, opts svgload.Options) (*image.RGBA, error) {
	doc, err := svgload.Read(stream, opts)
	if err != nil {
		return nil, err
	}
	return Render(doc, width, height, 1)
}

func (rd *Renderer) Clear() {
	rd.dasher.Clear()
	rd.filler.Clear()
}

func (rd *Renderer) SetWinding(useNonZeroWinding bool) {
	rd.dasher.SetWinding(useNonZeroWinding)
	rd.filler.SetWinding(useNonZeroWinding)
}

func (rd *Renderer) Transform() svgdoc.Matrix2D { return rd.ctm }

func (rd *Renderer) SetTransform(m svgdoc.Matrix2D) { rd.ctm = m }

func (rd *Renderer) SetAlpha(alpha float64) { rd.alpha = alpha }

// SetFillRule only applies to fills: strokes always use the non-zero rule.
// Note that rasterx.ScannerGV only supports the non-zero rule.
func (rd *Renderer) SetFillRule(rule svgdoc.FillRule) {
	rd.filler.SetWinding(rule == svgdoc.NonZero)
}

// resolve the paint color
func (rd *Renderer) setColor(scanner rasterx.Scanner, paint svgdoc.Paint) {
	opacity := paint.Opacity * rd.alpha
	if pattern, ok := paint.Pattern.(*gradientPattern); ok {
		scanner.SetColor(pattern.color(opacity))
		return
	}
	scanner.SetColor(rasterx.ApplyOpacity(paint.Color, opacity))
}

func (rd *Renderer) Fill(path svgpath.Path, paint svgdoc.Paint) {
	rd.filler.Clear()
	rd.setColor(rd.filler.Scanner, paint)
	path.AddTo(rd.filler, rd.ctm)
	rd.filler.Draw()
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgdoc.JoinMiter: rasterx.Miter,
		svgdoc.JoinRound: rasterx.Round,
		svgdoc.JoinBevel: rasterx.Bevel,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgdoc.CapFlat:   rasterx.ButtCap,
		svgdoc.CapSquare: rasterx.SquareCap,
		svgdoc.CapRound:  rasterx.RoundCap,
	}
)

// deviceScale is the mean scale factor of the current transform,
// applied to lengths such as the stroke width.
func (rd *Renderer) deviceScale() float64 {
	return math.Sqrt(math.Abs(rd.ctm.Det()))
}

func (rd *Renderer) Stroke(path svgpath.Path, options svgdoc.StrokeOptions, paint svgdoc.Paint) {
	scale := rd.deviceScale()
	var dashes []float64
	if len(options.Dashes) != 0 {
		dashes = make([]float64, len(options.Dashes))
		for i, d := range options.Dashes {
			dashes[i] = d * scale
		}
	}
	rd.dasher.SetStroke(
		fixed.Int26_6(options.Width*scale*64), fixed.Int26_6(options.MiterLimit*64),
		capToFunc[options.Cap], capToFunc[options.Cap], rasterx.FlatGap,
		joinToJoin[options.Join], dashes, options.DashOffset*scale,
	)
	rd.dasher.Clear()
	rd.dasher.SetWinding(true)
	rd.setColor(rd.dasher.Scanner, paint)
	path.AddTo(rd.dasher, rd.ctm)
	rd.dasher.Draw()
}
