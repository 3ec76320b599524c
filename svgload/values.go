package svgload

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/svgpaint/svgdoc"
	"github.com/benoitkugler/svgpaint/svgpath"
	"golang.org/x/image/colornames"
)

var (
	errParamMismatch = errors.New("param mismatch")
	errZeroLengthID  = errors.New("zero length id")
)

// unit suffixes are dropped: lengths are taken as user units
var unitSuffixes = [...]string{"cm", "mm", "px", "pt"}

// trimSuffixes removes unitSuffixes from any number that is not just numeric
func trimSuffixes(a string) (b string) {
	if a == "" || (a[len(a)-1] >= '0' && a[len(a)-1] <= '9') {
		return a
	}
	b = a
	for _, v := range unitSuffixes {
		b = strings.TrimSuffix(b, v)
	}
	return
}

// parseFloat is a helper function that strips suffixes before passing to strconv.ParseFloat
func parseFloat(s string) (float64, error) {
	val := trimSuffixes(strings.TrimSpace(s))
	return strconv.ParseFloat(val, 64)
}

// readFraction reads a number, which may be given as a percentage
func readFraction(v string) (f float64, err error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err = parseFloat(v)
	f /= d
	return
}

type percentageReference uint8

const (
	widthPercentage percentageReference = iota
	heightPercentage
	diagPercentage
)

// parseUnit reads a length, resolving percentages against
// the given viewport
func parseUnit(s string, asPerc percentageReference, viewport svgdoc.Bounds) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return parseFloat(s)
	}
	v, err := readFraction(s)
	if err != nil {
		return 0, err
	}
	return asPerc.of(v, viewport), nil
}

// of returns the fraction `v` of the viewport dimension
func (asPerc percentageReference) of(v float64, viewport svgdoc.Bounds) float64 {
	switch asPerc {
	case widthPercentage:
		return v * viewport.W
	case heightPercentage:
		return v * viewport.H
	default:
		return v * math.Sqrt(viewport.W*viewport.W+viewport.H*viewport.H) / math.Sqrt2
	}
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
}

// paint is the result of reading a fill or stroke attribute
type paint struct {
	kind   svgdoc.PaintType
	color  svgdoc.Color
	linkID string
}

// parsePaint reads a color, "none" or an "url(#id)" reference
func parsePaint(v string) (paint, error) {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "url(") {
		id := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(v, "url("), ")"))
		id = strings.Trim(id, `'"`)
		if !strings.HasPrefix(id, "#") || len(id) == 1 {
			return paint{}, fmt.Errorf("unsupported paint reference %s", v)
		}
		return paint{kind: svgdoc.PaintServer, linkID: id[1:]}, nil
	}
	switch strings.ToLower(v) {
	case "none":
		return paint{kind: svgdoc.PaintNone}, nil
	case "currentcolor": // no color property: default to black
		return paint{kind: svgdoc.PaintColor}, nil
	}
	c, err := parseSVGColor(v)
	if err != nil {
		return paint{}, err
	}
	return paint{kind: svgdoc.PaintColor, color: c}, nil
}

// parseSVGColorNum reads the SVG color string e.g. #FBD9BD
func parseSVGColorNum(colorStr string) (r, g, b uint8, err error) {
	colorStr = strings.TrimPrefix(colorStr, "#")
	switch len(colorStr) {
	case 6:
	case 3:
		// SVG specs say duplicate characters in case of 3 digit hex number
		colorStr = string([]byte{colorStr[0], colorStr[0],
			colorStr[1], colorStr[1], colorStr[2], colorStr[2]})
	default:
		return 0, 0, 0, fmt.Errorf("invalid hex color #%s", colorStr)
	}
	var t uint64
	for _, v := range []struct {
		c *uint8
		s string
	}{
		{&r, colorStr[0:2]},
		{&g, colorStr[2:4]},
		{&b, colorStr[4:6]},
	} {
		t, err = strconv.ParseUint(v.s, 16, 8)
		if err != nil {
			return
		}
		*v.c = uint8(t)
	}
	return
}

func parseColorValue(v string) (uint8, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		n, err := strconv.ParseFloat(strings.TrimSpace(v[:len(v)-1]), 64)
		if err != nil {
			return 0, err
		}
		return uint8(math.Round(math.Max(0, math.Min(100, n)) * 0xFF / 100)), nil
	}
	n, err := strconv.Atoi(v)
	if n > 255 {
		n = 255
	} else if n < 0 {
		n = 0
	}
	return uint8(n), err
}

// parseSVGColor parses an SVG color string in all forms
// including all SVG1.1 names, obtained from the colornames package
func parseSVGColor(colorStr string) (svgdoc.Color, error) {
	v := strings.ToLower(strings.TrimSpace(colorStr))
	if v == "" {
		return 0, errors.New("empty color")
	}
	if cn, ok := colornames.Map[v]; ok {
		return svgdoc.NewColor(cn.R, cn.G, cn.B), nil
	}
	if cStr := strings.TrimPrefix(v, "rgb("); cStr != v {
		cStr = strings.TrimSuffix(cStr, ")")
		vals := strings.Split(cStr, ",")
		if len(vals) != 3 {
			return 0, errParamMismatch
		}
		var cvals [3]uint8
		var err error
		for i := range cvals {
			cvals[i], err = parseColorValue(vals[i])
			if err != nil {
				return 0, err
			}
		}
		return svgdoc.NewColor(cvals[0], cvals[1], cvals[2]), nil
	}
	if cStr := strings.TrimPrefix(v, "hsl("); cStr != v {
		return parseHSL(strings.TrimSuffix(cStr, ")"))
	}
	if v[0] == '#' {
		r, g, b, err := parseSVGColorNum(v)
		if err != nil {
			return 0, err
		}
		return svgdoc.NewColor(r, g, b), nil
	}
	return 0, fmt.Errorf("invalid color %q", colorStr)
}

func parseHSL(s string) (svgdoc.Color, error) {
	vals := strings.Split(s, ",")
	if len(vals) != 3 {
		return 0, errParamMismatch
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hue in hsl: '%s' (%s)", vals[0], err)
	}
	sat, err := readFraction(vals[1])
	if err != nil {
		return 0, fmt.Errorf("invalid saturation in hsl: '%s' (%s)", vals[1], err)
	}
	l, err := readFraction(vals[2])
	if err != nil {
		return 0, fmt.Errorf("invalid lightness in hsl: '%s' (%s)", vals[2], err)
	}
	h = math.Mod(math.Mod(h, 360)+360, 360)

	c := (1 - math.Abs(2*l-1)) * sat
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var rp, gp, bp float64
	switch {
	case h < 60:
		rp, gp, bp = c, x, 0
	case h < 120:
		rp, gp, bp = x, c, 0
	case h < 180:
		rp, gp, bp = 0, c, x
	case h < 240:
		rp, gp, bp = 0, x, c
	case h < 300:
		rp, gp, bp = x, 0, c
	default:
		rp, gp, bp = c, 0, x
	}
	toByte := func(f float64) uint8 { return uint8(math.Min(255, math.Round((f+m)*255))) }
	return svgdoc.NewColor(toByte(rp), toByte(gp), toByte(bp)), nil
}

var transformKinds = map[string]svgdoc.TransformKind{
	"matrix":    svgdoc.TransformMatrix,
	"translate": svgdoc.TransformTranslate,
	"scale":     svgdoc.TransformScale,
	"rotate":    svgdoc.TransformRotate,
	"skewx":     svgdoc.TransformSkewX,
	"skewy":     svgdoc.TransformSkewY,
}

// parseTransform reads a transform list, returning one
// node per operation, chained in declaration order.
// An empty list returns nil.
func parseTransform(v string) (*svgdoc.AffineTransform, error) {
	var first *svgdoc.AffineTransform
	for _, t := range strings.Split(v, ")") {
		t = strings.TrimSpace(strings.TrimLeft(t, ", "))
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return nil, errParamMismatch // badly formed transformation
		}
		name := strings.ToLower(strings.TrimSpace(d[0]))
		kind, ok := transformKinds[name]
		if !ok {
			return nil, fmt.Errorf("unknown transform %q", name)
		}
		points, err := svgpath.ParsePoints(d[1])
		if err != nil {
			return nil, err
		}
		node := svgdoc.NewAffineTransform()
		if err = node.SetData(kind, points...); err != nil {
			return nil, err
		}
		if first == nil {
			first = node
		} else {
			first.Append(node)
		}
	}
	return first, nil
}
