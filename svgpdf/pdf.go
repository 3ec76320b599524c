// Implements a PDF backend to render SVG documents,
// by wrapping codeberg.org/go-pdf/fpdf.
package svgpdf

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"codeberg.org/go-pdf/fpdf"
	"github.com/benoitkugler/svgpaint/svgdoc"
	"github.com/benoitkugler/svgpaint/svgload"
	"github.com/benoitkugler/svgpaint/svgpath"
	"golang.org/x/image/math/fixed"
)

// assert interface conformance
var (
	_ svgdoc.Canvas         = (*Renderer)(nil)
	_ svgdoc.PatternCreator = (*Renderer)(nil)
	_ svgpath.Adder         = (*pather)(nil)
)

// Renderer is a canvas writing to one page of a PDF document.
// Paths are written in page coordinates (the current transform
// is applied to the points), so that no PDF transformation is needed.
type Renderer struct {
	pdf     *fpdf.Fpdf
	ctm     svgdoc.Matrix2D
	alpha   float64
	evenOdd bool
}

// NewRenderer return a renderer which will
// write to the current page of `pdf`.
func NewRenderer(pdf *fpdf.Fpdf) *Renderer {
	return &Renderer{pdf: pdf, ctm: svgdoc.Identity, alpha: 1, evenOdd: true}
}

// NewPage returns a PDF document with one page of the given size,
// in points.
func NewPage(width, height float64) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.AddPage()
	return pdf
}

var errNoSize = errors.New("svgpdf: unknown page size")

// Render draws `doc` on a page of the given size, in points, scaling
// it to fit, and writes the PDF to `output`.
// If width or height is not positive, the size of the document is used.
func Render(doc *svgdoc.Document, output io.Writer, width, height, opacity float64) error {
	vp := doc.Viewport()
	if width <= 0 {
		width = vp.W
	}
	if height <= 0 {
		height = vp.H
	}
	if width <= 0 || height <= 0 {
		return errNoSize
	}
	pdf := NewPage(width, height)
	doc.Draw(NewRenderer(pdf), svgdoc.Bounds{W: width, H: height}, opacity)
	return pdf.Output(output)
}

// RenderSVGToPDF reads the SVG content and renders
// it into the given file, using the size of the document.
func RenderSVGToPDF(stream io.Reader, pdfName string, opts svgload.Options) error {
	doc, err := svgload.Read(stream, opts)
	if err != nil {
		return err
	}
	out, err := os.Create(pdfName)
	if err != nil {
		return err
	}
	if err = Render(doc, out, 0, 0, 1); err != nil {
		out.Close()
		return fmt.Errorf("rendering %s: %w", pdfName, err)
	}
	return out.Close()
}

func (rd *Renderer) Transform() svgdoc.Matrix2D { return rd.ctm }

func (rd *Renderer) SetTransform(m svgdoc.Matrix2D) { rd.ctm = m }

func (rd *Renderer) SetAlpha(alpha float64) { rd.alpha = alpha }

func (rd *Renderer) SetFillRule(rule svgdoc.FillRule) { rd.evenOdd = rule == svgdoc.EvenOdd }

// setAlpha applies the global opacity, clamped
// to the range accepted by fpdf
func (rd *Renderer) setAlpha(opacity float64) {
	rd.pdf.SetAlpha(math.Max(0, math.Min(1, opacity*rd.alpha)), "Normal")
}

// rawOp writes an operator with no fpdf equivalent:
// DrawPath outputs unknown styles verbatim.
func (rd *Renderer) rawOp(op string) { rd.pdf.DrawPath(op) }

// devicePath applies the current transform to `path`
func (rd *Renderer) devicePath(path svgpath.Path) svgpath.Path {
	var dev svgpath.Path
	path.AddTo(&dev, rd.ctm)
	return dev
}

func (rd *Renderer) writePath(dev svgpath.Path) {
	dev.AddTo(&pather{pdf: rd.pdf}, svgdoc.Identity)
}

func (rd *Renderer) Fill(path svgpath.Path, paint svgdoc.Paint) {
	dev := rd.devicePath(path)
	color := paint.Color
	if pattern, ok := paint.Pattern.(*gradientPattern); ok {
		if pattern.fill(rd, dev, paint.Opacity) {
			return
		}
		color = pattern.fallback()
	}

	r, g, b := color.RGB()
	rd.pdf.SetFillColor(int(r), int(g), int(b))
	rd.setAlpha(paint.Opacity)
	rd.writePath(dev)
	if rd.evenOdd {
		rd.pdf.DrawPath("f*")
	} else {
		rd.pdf.DrawPath("f")
	}
}

var (
	capStyles  = [...]string{svgdoc.CapFlat: "butt", svgdoc.CapRound: "round", svgdoc.CapSquare: "square"}
	joinStyles = [...]string{svgdoc.JoinMiter: "miter", svgdoc.JoinRound: "round", svgdoc.JoinBevel: "bevel"}
)

// deviceScale is the mean scale factor of the current transform,
// applied to lengths such as the stroke width.
func (rd *Renderer) deviceScale() float64 {
	return math.Sqrt(math.Abs(rd.ctm.Det()))
}

// Stroke draws the outline of `path`. Gradients are not
// supported for strokes, which use the last stop color instead.
func (rd *Renderer) Stroke(path svgpath.Path, options svgdoc.StrokeOptions, paint svgdoc.Paint) {
	color := paint.Color
	if pattern, ok := paint.Pattern.(*gradientPattern); ok {
		color = pattern.fallback()
	}
	scale := rd.deviceScale()
	dashes := make([]float64, len(options.Dashes))
	for i, d := range options.Dashes {
		dashes[i] = d * scale
	}

	r, g, b := color.RGB()
	rd.pdf.SetDrawColor(int(r), int(g), int(b))
	rd.setAlpha(paint.Opacity)
	rd.pdf.SetLineWidth(options.Width * scale)
	rd.pdf.SetLineCapStyle(capStyles[options.Cap])
	rd.pdf.SetLineJoinStyle(joinStyles[options.Join])
	rd.rawOp(fmt.Sprintf("%.2f M", math.Max(1, options.MiterLimit)))
	rd.pdf.SetDashPattern(dashes, options.DashOffset*scale)
	rd.writePath(rd.devicePath(path))
	rd.pdf.DrawPath("S")
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

// pather writes the path commands, given in page coordinates
type pather struct {
	pdf      *fpdf.Fpdf
	a, start fixed.Point26_6 // current point, needed to convert quadratic curves
}

func (p *pather) Start(a fixed.Point26_6) {
	p.pdf.MoveTo(fixedTof(a))
	p.a, p.start = a, a
}

func (p *pather) Line(b fixed.Point26_6) {
	p.pdf.LineTo(fixedTof(b))
	p.a = b
}

// QuadBezier is written as the equivalent cubic curve, since
// the PDF 'v' operator used by fpdf.CurveTo is not quadratic
func (p *pather) QuadBezier(b fixed.Point26_6, c fixed.Point26_6) {
	x0, y0 := fixedTof(p.a)
	cx, cy := fixedTof(b)
	x, y := fixedTof(c)
	p.pdf.CurveBezierCubicTo(x0+2./3*(cx-x0), y0+2./3*(cy-y0), x+2./3*(cx-x), y+2./3*(cy-y), x, y)
	p.a = c
}

func (p *pather) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
	p.a = d
}

func (p *pather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.ClosePath()
		p.a = p.start
	}
}
