package xmlnode

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/text/encoding/htmlindex"
)

var ErrEmptyDocument = errors.New("document has no root element")

// Parse reads a whole document into a tree of nodes.
func Parse(r io.Reader) (*Node, error) {
	p := xpp.NewXMLPullParser(r, true, charsetReader)

	var root, current *Node
	for {
		event, err := p.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch event {
		case xpp.StartTag:
			n := newNode(p.Space, p.Name, p.Attrs)
			if current == nil {
				if root != nil {
					return nil, fmt.Errorf("failed to parse XML: multiple root elements")
				}
				root = n
			} else {
				n.Parent = current
				current.Children = append(current.Children, n)
			}
			current = n
		case xpp.EndTag:
			if current != nil {
				current = current.Parent
			}
		case xpp.Text:
			if current != nil {
				current.Text += p.Text
			}
		case xpp.EndDocument:
			if root == nil {
				return nil, ErrEmptyDocument
			}
			return root, nil
		}
	}
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Node, error) {
	return Parse(bytes.NewReader([]byte(s)))
}

// ParseFragment parses a sequence of sibling elements by wrapping them in a
// synthetic root that declares the supplied namespaces.
func ParseFragment(fragment string, namespaces ...Namespace) (*Node, error) {
	var buf bytes.Buffer
	buf.WriteString("<fragment")
	for _, ns := range namespaces {
		if ns.Prefix == "" {
			buf.WriteString(` xmlns="`)
		} else {
			buf.WriteString(" xmlns:" + ns.Prefix + `="`)
		}
		buf.WriteString(ns.URI)
		buf.WriteString(`"`)
	}
	buf.WriteString(">")
	buf.WriteString(fragment)
	buf.WriteString("</fragment>")
	return Parse(&buf)
}

func newNode(space, local string, raw []xml.Attr) *Node {
	n := &Node{Space: space, Local: local}
	for _, a := range raw {
		switch {
		case a.Name.Space == "xmlns":
			n.decls = append(n.decls, Namespace{Prefix: a.Name.Local, URI: a.Value})
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			n.decls = append(n.decls, Namespace{URI: a.Value})
		default:
			attrSpace := a.Name.Space
			if attrSpace == "xml" {
				attrSpace = XMLNamespace
			}
			n.Attrs = append(n.Attrs, Attr{Space: attrSpace, Local: a.Name.Local, Value: a.Value})
		}
	}
	return n
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
