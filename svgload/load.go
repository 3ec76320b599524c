// Provides the loading of SVG files into
// the document model of svgdoc.
// Only a subset of SVG is supported: shapes, paths, groups,
// nested fragments, gradients, <use> references and simple CSS.
package svgload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benoitkugler/svgpaint/svgdoc"
	"golang.org/x/exp/slog"
)

// ErrorMode is the for setting how to handle unsupported
// elements and invalid references.
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unsupported elements silently.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode logs a warning for each unsupported element.
	WarnErrorMode
	// StrictErrorMode returns an error on the first unsupported element.
	StrictErrorMode
)

var errorModeNames = [...]string{
	IgnoreErrorMode: "ignore",
	WarnErrorMode:   "warn",
	StrictErrorMode: "strict",
}

func (e ErrorMode) String() string {
	if int(e) < len(errorModeNames) {
		return errorModeNames[e]
	}
	return fmt.Sprintf("<unknown ErrorMode %d>", e)
}

func (e ErrorMode) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText accepts "ignore", "warn" and "strict".
func (e *ErrorMode) UnmarshalText(text []byte) error {
	for i, name := range errorModeNames {
		if strings.EqualFold(string(text), name) {
			*e = ErrorMode(i)
			return nil
		}
	}
	return fmt.Errorf("invalid error mode %q", text)
}

// Options parametrize the loading.
type Options struct {
	ErrorMode ErrorMode
	// Logger is used in WarnErrorMode, and is also
	// attached to the returned document.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (opts Options) logger() *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return slog.Default()
}

// Read parses the SVG content from `stream`.
// XML syntax errors and malformed attribute values are always returned;
// unsupported elements and invalid references are handled according
// to `opts.ErrorMode`.
func Read(stream io.Reader, opts Options) (*svgdoc.Document, error) {
	root, err := decodeTree(stream)
	if err != nil {
		return nil, err
	}
	if root.name != "svg" {
		return nil, fmt.Errorf("invalid svg: root element is <%s>", root.name)
	}

	c := &cursor{opts: opts, doc: svgdoc.NewDocument()}
	c.doc.Logger = opts.Logger

	// stylesheets apply regardless of their position
	var errStyle error
	root.walk(func(n *xmlNode) {
		if n.name != "style" || errStyle != nil {
			return
		}
		if err := c.sheet.add(n.text.String()); err != nil {
			errStyle = c.handleError("invalid stylesheet: %s", err)
		}
	})
	if errStyle != nil {
		return nil, errStyle
	}
	for _, sel := range c.sheet.unsupported {
		if err := c.handleError("unsupported CSS selector %q", sel); err != nil {
			return nil, err
		}
	}

	if err = c.readElement(root, nil); err != nil {
		return nil, err
	}
	if err = c.resolveUses(); err != nil {
		return nil, err
	}
	return c.doc, nil
}

// ReadFile opens and parses the named file.
func ReadFile(name string, opts Options) (*svgdoc.Document, error) {
	fin, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	return Read(fin, opts)
}

// pendingUse is a <use> element, resolved after
// the whole file is read
type pendingUse struct {
	group *svgdoc.Graphic
	href  string
}

// cursor is used while building the document
type cursor struct {
	opts  Options
	doc   *svgdoc.Document
	sheet styleSheet

	parent    svgdoc.Element     // container of the element being read
	fragments []*svgdoc.Fragment // stack of the enclosing fragments
	uses      []pendingUse
}

func (c *cursor) handleError(format string, args ...interface{}) error {
	switch c.opts.ErrorMode {
	case StrictErrorMode:
		return fmt.Errorf(format, args...)
	case WarnErrorMode:
		c.opts.logger().Warn(fmt.Sprintf(format, args...))
	}
	return nil
}

func (c *cursor) fragment() *svgdoc.Fragment {
	if len(c.fragments) == 0 {
		return nil
	}
	return c.fragments[len(c.fragments)-1]
}

// viewport is the reference for percentages
func (c *cursor) viewport() svgdoc.Bounds {
	if f := c.fragment(); f != nil {
		return f.Viewport()
	}
	return svgdoc.Bounds{}
}

// checkID returns the id to use for a new element,
// which is empty for a duplicated id.
func (c *cursor) checkID(id string) (string, error) {
	if id == "" {
		return "", nil
	}
	if f := c.fragment(); f != nil && f.GetElement(id) != nil {
		return "", c.handleError("duplicate id %q", id)
	}
	return id, nil
}

// properties returns the style properties of `n`: its presentation
// attributes, overridden by the matching stylesheet rules, overridden
// by its style attribute.
func (c *cursor) properties(n *xmlNode) (map[string]string, error) {
	props := make(map[string]string, len(n.attrs))
	var style string
	for _, attr := range n.attrs {
		if attr.Name.Local == "style" {
			style = attr.Value
			continue
		}
		props[attr.Name.Local] = attr.Value
	}
	for _, rule := range c.sheet.match(n.name, n.attr("id"), strings.Fields(n.attr("class"))) {
		for _, decl := range rule.declarations {
			props[decl.Property] = decl.Value
		}
	}
	if strings.TrimSpace(style) != "" {
		decls, err := parseInlineStyle(style)
		if err != nil {
			return nil, c.handleError("invalid style attribute %q: %s", style, err)
		}
		for _, decl := range decls {
			props[decl.Property] = decl.Value
		}
	}
	return props, nil
}

func (c *cursor) readElement(n *xmlNode, parent svgdoc.Element) error {
	fn, ok := elementFuncs[n.name]
	if !ok {
		return c.handleError("cannot process svg element %s", n.name)
	}
	props, err := c.properties(n)
	if err != nil {
		return err
	}
	c.parent = parent
	elem, err := fn(c, n, props)
	if err != nil {
		return fmt.Errorf("<%s>: %w", n.name, err)
	}
	if elem == nil { // nothing to add to the tree
		return nil
	}

	if parent == nil {
		frag, ok := elem.(*svgdoc.Fragment)
		if !ok {
			return fmt.Errorf("invalid root element <%s>", n.name)
		}
		if err = c.doc.AddFragment(frag); err != nil {
			return err
		}
	} else if err = svgdoc.Append(parent, elem); err != nil {
		return fmt.Errorf("<%s>: %w", n.name, err)
	}

	content := elem
	if frag, isFragment := elem.(*svgdoc.Fragment); isFragment {
		c.fragments = append(c.fragments, frag)
		defer func() { c.fragments = c.fragments[:len(c.fragments)-1] }()
		if content, err = c.fragmentContent(frag, props); err != nil {
			return err
		}
	}
	if _, isContainer := content.(svgdoc.Container); !isContainer {
		return nil
	}
	for _, child := range n.children {
		if err = c.readElement(child, content); err != nil {
			return err
		}
	}
	return nil
}

// use resolution states
const (
	usePending uint8 = iota
	useVisiting
	useDone
)

// resolveUses copies the referenced graphics into
// the <use> groups. Pending <use> found inside a target
// are resolved first, so that the copy is complete.
func (c *cursor) resolveUses() error {
	states := make([]uint8, len(c.uses))
	for i := range c.uses {
		if err := c.resolveUse(i, states); err != nil {
			return err
		}
	}
	return nil
}

func (c *cursor) resolveUse(i int, states []uint8) error {
	switch states[i] {
	case useDone:
		return nil
	case useVisiting:
		states[i] = useDone
		return c.handleError("use: cyclic reference to %q", c.uses[i].href)
	}
	states[i] = useVisiting
	defer func() { states[i] = useDone }()

	use := c.uses[i]
	target := svgdoc.Lookup(use.group, use.href)
	g, ok := target.(*svgdoc.Graphic)
	if !ok {
		if target == nil {
			return c.handleError("use: href ID %q not found", use.href)
		}
		return c.handleError("use: unsupported reference to a %s", target.Kind())
	}
	if isAncestor(g, use.group) {
		return c.handleError("use: %q references itself", use.href)
	}
	for j, inner := range c.uses {
		if j != i && isAncestor(g, inner.group) {
			if err := c.resolveUse(j, states); err != nil {
				return err
			}
		}
	}
	cp := g.Copy()
	cp.Hidden = false
	return svgdoc.Append(use.group, cp)
}

func isAncestor(candidate, e svgdoc.Element) bool {
	for _, a := range svgdoc.Ancestry(e) {
		if a == candidate {
			return true
		}
	}
	return false
}

var errNoHref = errors.New("only use tags with href are supported")
