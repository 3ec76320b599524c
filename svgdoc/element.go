// Implements the SVG document model: fragments, graphics and
// gradients, with the paint attributes inheritance and the
// drawing algorithm targeting a Canvas.
//
// A Document is not safe for concurrent use: painting mutates
// the fragments bounds transforms and the gradients patterns.
package svgdoc

import "fmt"

// Kind identifies the concrete type of an Element.
type Kind uint8

const (
	KindFragment Kind = iota
	KindGraphic
	KindGradient
	KindStop
	KindStyle
)

func (k Kind) String() string {
	switch k {
	case KindFragment:
		return "Fragment"
	case KindGraphic:
		return "Graphic"
	case KindGradient:
		return "Gradient"
	case KindStop:
		return "Stop"
	case KindStyle:
		return "Style"
	default:
		return fmt.Sprintf("<unknown Kind %d>", k)
	}
}

// Element is a node of the document tree.
// The set of implementations is closed: *Fragment, *Graphic,
// *Gradient, *GradientStop and *Style.
type Element interface {
	Kind() Kind
	ID() string
	// Parent returns the container holding the element,
	// or nil for an outermost fragment or a detached element.
	Parent() Container

	base() *node
}

// Container is an element owning children.
type Container interface {
	Element
	Children() []Element

	addChild(Element)
}

func unexpectedKind(e Element) string {
	return fmt.Sprintf("svgdoc: unexpected element kind %s (%T)", e.Kind(), e)
}

// node is the common part of every element
type node struct {
	id     string
	parent Container // not owning, only used to walk the ancestry
}

func (n *node) ID() string        { return n.id }
func (n *node) Parent() Container { return n.parent }
func (n *node) base() *node       { return n }

type container struct {
	node
	children []Element
}

func (c *container) Children() []Element { return c.children }

func (c *container) addChild(e Element) { c.children = append(c.children, e) }

// Ancestry returns the chain of containers from the outermost
// down to `e`, which is the last item.
func Ancestry(e Element) []Element {
	var out []Element
	for cur := e; cur != nil; {
		out = append(out, cur)
		p := cur.Parent()
		if p == nil {
			break
		}
		cur = p
	}
	// reverse to get root first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// NearestFragment returns `e` if it is a fragment, or its closest
// enclosing fragment. It returns nil for a detached element.
func NearestFragment(e Element) *Fragment {
	for e != nil {
		if f, ok := e.(*Fragment); ok {
			return f
		}
		p := e.Parent()
		if p == nil {
			return nil
		}
		e = p
	}
	return nil
}

// Lookup resolves `id` in the namespace of the nearest fragment of `e`.
// Ids registered in other fragments, even enclosing ones, are not visible.
func Lookup(e Element, id string) Element {
	f := NearestFragment(e)
	if f == nil {
		return nil
	}
	return f.GetElement(id)
}

// Append adds `child` at the end of the children of `parent`,
// and registers the ids of `child` and its descendants into
// the nearest fragment of `parent`. Nested fragments keep their
// own namespace and are never registered.
// If one of the ids is already used, ErrDuplicateID is returned and
// the tree is left unchanged.
func Append(parent, child Element) error {
	cont, ok := parent.(Container)
	if !ok {
		return fmt.Errorf("appending to %s: %w", parent.Kind(), ErrNotContainer)
	}

	var ids []Element
	collectIDs(child, &ids)

	if frag := NearestFragment(parent); frag != nil {
		seen := make(map[string]bool, len(ids))
		for _, e := range ids {
			id := e.ID()
			if _, has := frag.elements[id]; has || seen[id] {
				return fmt.Errorf("id %q: %w", id, ErrDuplicateID)
			}
			seen[id] = true
		}
		for _, e := range ids {
			frag.elements[e.ID()] = e
		}
	}

	child.base().parent = cont
	cont.addChild(child)
	return nil
}

// collectIDs walks the subtree rooted at e, without
// entering nested fragments
func collectIDs(e Element, out *[]Element) {
	switch e.Kind() {
	case KindFragment:
		return
	case KindGraphic, KindGradient:
		if e.ID() != "" {
			*out = append(*out, e)
		}
		for _, child := range e.(Container).Children() {
			collectIDs(child, out)
		}
	case KindStop, KindStyle:
		if e.ID() != "" {
			*out = append(*out, e)
		}
	default:
		panic(unexpectedKind(e))
	}
}

// Style keeps the raw CSS of a <style> element.
type Style struct {
	node
	Text string
}

func NewStyle(id, text string) *Style {
	return &Style{node: node{id: id}, Text: text}
}

func (*Style) Kind() Kind { return KindStyle }
