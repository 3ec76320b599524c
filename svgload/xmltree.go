package svgload

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// xmlNode is a raw element, kept in memory so that
// stylesheets and references may be resolved
// regardless of their position in the file.
type xmlNode struct {
	name     string
	attrs    []xml.Attr
	children []*xmlNode
	text     strings.Builder
}

func (n *xmlNode) attr(name string) string {
	for _, attr := range n.attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

// decodeTree reads the whole XML document and returns its root element.
func decodeTree(stream io.Reader) (*xmlNode, error) {
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	var (
		root  *xmlNode
		stack []*xmlNode
	)
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		// Inspect the type of the XML token
		switch se := t.(type) {
		case xml.StartElement:
			n := &xmlNode{name: se.Name.Local, attrs: se.Copy().Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("invalid svg: multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) != 0 {
				stack[len(stack)-1].text.Write(se)
			}
		}
	}
	if root == nil {
		return nil, errors.New("invalid svg xml icon")
	}
	return root, nil
}

// walk calls fn on every node of the tree, parents first
func (n *xmlNode) walk(fn func(*xmlNode)) {
	fn(n)
	for _, child := range n.children {
		child.walk(fn)
	}
}
