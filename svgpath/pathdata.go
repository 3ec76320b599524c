package svgpath

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var errParamMismatch = errors.New("svgpath: wrong number of parameters")

var (
	numRe        = regexp.MustCompile(`[-+]?(?:[0-9]*\.[0-9]+|[0-9]+\.?)(?:[eE][-+]?[0-9]+)?`)
	leadingNumRe = regexp.MustCompile(`^` + numRe.String())
)

// ParsePoints reads a list of numbers separated
// by spaces, commas or sign characters.
func ParsePoints(dataPoints string) ([]float64, error) {
	matches := numRe.FindAllString(dataPoints, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// parseArcPoints is the same as ParsePoints, for the arguments
// of an arc command: the large-arc and sweep flags are
// single characters, which may not be separated from the
// next argument, as in "a5 5 0 105 5".
func parseArcPoints(data string) ([]float64, error) {
	var out []float64
	for {
		data = strings.TrimLeft(data, " \t\r\n,")
		if data == "" {
			return out, nil
		}
		if k := len(out) % 7; k == 3 || k == 4 {
			switch data[0] {
			case '0':
				out = append(out, 0)
			case '1':
				out = append(out, 1)
			default:
				return nil, fmt.Errorf("svgpath: invalid arc flag in %q", data)
			}
			data = data[1:]
			continue
		}
		m := leadingNumRe.FindString(data)
		if m == "" {
			return nil, fmt.Errorf("svgpath: invalid number in %q", data)
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
		data = data[len(m):]
	}
}

// pathCursor holds the state while compiling
// a path data attribute
type pathCursor struct {
	path                   Path
	placeX, placeY         float64
	cntlPtX, cntlPtY       float64
	pathStartX, pathStartY float64
	points                 []float64
	lastKey                byte
}

// CompilePath translates the svg path data string
// (the 'd' attribute) into a Path.
func CompilePath(svgPath string) (Path, error) {
	var c pathCursor
	lastIndex := -1
	for i := 0; i < len(svgPath); i++ {
		v := svgPath[i]
		isLetter := ('a' <= v && v <= 'z') || ('A' <= v && v <= 'Z')
		if !isLetter || v == 'e' || v == 'E' {
			continue
		}
		if lastIndex != -1 {
			if err := c.addSeg(svgPath[lastIndex:i]); err != nil {
				return nil, err
			}
		}
		lastIndex = i
	}
	if lastIndex != -1 {
		if err := c.addSeg(svgPath[lastIndex:]); err != nil {
			return nil, err
		}
	}
	return c.path, nil
}

func (c *pathCursor) reflectControl(keys string) (float64, float64) {
	for i := 0; i < len(keys); i++ {
		if c.lastKey == keys[i] {
			return 2*c.placeX - c.cntlPtX, 2*c.placeY - c.cntlPtY
		}
	}
	return c.placeX, c.placeY
}

func (c *pathCursor) addSeg(segString string) error {
	var err error
	if k := segString[0]; k == 'A' || k == 'a' {
		c.points, err = parseArcPoints(segString[1:])
	} else {
		c.points, err = ParsePoints(segString[1:])
	}
	if err != nil {
		return err
	}
	l := len(c.points)
	k := segString[0]
	rel := false
	if 'a' <= k && k <= 'z' {
		k -= 'a' - 'A'
		rel = true
	}
	switch k {
	case 'Z':
		if l != 0 {
			return errParamMismatch
		}
		c.path.Stop(true)
		c.placeX, c.placeY = c.pathStartX, c.pathStartY
	case 'M':
		if l < 2 || l%2 != 0 {
			return errParamMismatch
		}
		if rel {
			c.points[0] += c.placeX
			c.points[1] += c.placeY
		}
		c.pathStartX, c.pathStartY = c.points[0], c.points[1]
		c.placeX, c.placeY = c.pathStartX, c.pathStartY
		c.path.Start(toFixedP(c.placeX, c.placeY))
		// extra pairs are implicit lineto commands
		for i := 2; i < l-1; i += 2 {
			if rel {
				c.points[i] += c.placeX
				c.points[i+1] += c.placeY
			}
			c.placeX, c.placeY = c.points[i], c.points[i+1]
			c.path.Line(toFixedP(c.placeX, c.placeY))
		}
	case 'L':
		if l == 0 || l%2 != 0 {
			return errParamMismatch
		}
		for i := 0; i < l-1; i += 2 {
			if rel {
				c.points[i] += c.placeX
				c.points[i+1] += c.placeY
			}
			c.placeX, c.placeY = c.points[i], c.points[i+1]
			c.path.Line(toFixedP(c.placeX, c.placeY))
		}
	case 'H':
		if l == 0 {
			return errParamMismatch
		}
		for _, x := range c.points {
			if rel {
				x += c.placeX
			}
			c.placeX = x
			c.path.Line(toFixedP(c.placeX, c.placeY))
		}
	case 'V':
		if l == 0 {
			return errParamMismatch
		}
		for _, y := range c.points {
			if rel {
				y += c.placeY
			}
			c.placeY = y
			c.path.Line(toFixedP(c.placeX, c.placeY))
		}
	case 'C':
		if l == 0 || l%6 != 0 {
			return errParamMismatch
		}
		for i := 0; i < l-5; i += 6 {
			if rel {
				for j := i; j < i+6; j += 2 {
					c.points[j] += c.placeX
					c.points[j+1] += c.placeY
				}
			}
			c.cntlPtX, c.cntlPtY = c.points[i+2], c.points[i+3]
			c.placeX, c.placeY = c.points[i+4], c.points[i+5]
			c.path.CubeBezier(toFixedP(c.points[i], c.points[i+1]),
				toFixedP(c.cntlPtX, c.cntlPtY), toFixedP(c.placeX, c.placeY))
			c.lastKey = 'C'
		}
	case 'S':
		if l == 0 || l%4 != 0 {
			return errParamMismatch
		}
		for i := 0; i < l-3; i += 4 {
			if rel {
				for j := i; j < i+4; j += 2 {
					c.points[j] += c.placeX
					c.points[j+1] += c.placeY
				}
			}
			x1, y1 := c.reflectControl("CS")
			c.cntlPtX, c.cntlPtY = c.points[i], c.points[i+1]
			c.placeX, c.placeY = c.points[i+2], c.points[i+3]
			c.path.CubeBezier(toFixedP(x1, y1),
				toFixedP(c.cntlPtX, c.cntlPtY), toFixedP(c.placeX, c.placeY))
			c.lastKey = 'S'
		}
	case 'Q':
		if l == 0 || l%4 != 0 {
			return errParamMismatch
		}
		for i := 0; i < l-3; i += 4 {
			if rel {
				for j := i; j < i+4; j += 2 {
					c.points[j] += c.placeX
					c.points[j+1] += c.placeY
				}
			}
			c.cntlPtX, c.cntlPtY = c.points[i], c.points[i+1]
			c.placeX, c.placeY = c.points[i+2], c.points[i+3]
			c.path.QuadBezier(toFixedP(c.cntlPtX, c.cntlPtY), toFixedP(c.placeX, c.placeY))
			c.lastKey = 'Q'
		}
	case 'T':
		if l == 0 || l%2 != 0 {
			return errParamMismatch
		}
		for i := 0; i < l-1; i += 2 {
			if rel {
				c.points[i] += c.placeX
				c.points[i+1] += c.placeY
			}
			c.cntlPtX, c.cntlPtY = c.reflectControl("QT")
			c.placeX, c.placeY = c.points[i], c.points[i+1]
			c.path.QuadBezier(toFixedP(c.cntlPtX, c.cntlPtY), toFixedP(c.placeX, c.placeY))
			c.lastKey = 'T'
		}
	case 'A':
		if l == 0 || l%7 != 0 {
			return errParamMismatch
		}
		for i := 0; i < l-6; i += 7 {
			if rel {
				c.points[i+5] += c.placeX
				c.points[i+6] += c.placeY
			}
			c.addArcFromA(c.points[i : i+7])
		}
	default:
		return fmt.Errorf("svgpath: unsupported path command %q", segString[0])
	}
	c.lastKey = k
	return nil
}

func (c *pathCursor) addArcFromA(points []float64) {
	points[0], points[1] = math.Abs(points[0]), math.Abs(points[1])
	if points[0] == 0 || points[1] == 0 { // degenerated arc: straight line
		c.placeX, c.placeY = points[5], points[6]
		c.path.Line(toFixedP(c.placeX, c.placeY))
		return
	}
	cx, cy := findEllipseCenter(&points[0], &points[1], points[2]*math.Pi/180, c.placeX,
		c.placeY, points[5], points[6], points[4] == 0, points[3] == 0)
	c.placeX, c.placeY = c.path.addArc(points, cx, cy, c.placeX, c.placeY)
}
