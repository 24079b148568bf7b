package xmlnode

import (
	"strings"
)

// XMLNamespace is the namespace bound to the reserved xml prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// Attr is a namespace-qualified attribute.
type Attr struct {
	Space string
	Local string
	Value string
}

// Namespace is a prefix to URI binding. An empty prefix is the default namespace.
type Namespace struct {
	Prefix string
	URI    string
}

// Node is an element of a parsed document.
type Node struct {
	Space    string
	Local    string
	Attrs    []Attr
	Text     string
	Children []*Node
	Parent   *Node

	decls []Namespace
}

func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

func (n *Node) HasAttributes() bool {
	return len(n.Attrs) > 0
}

// Is reports whether the node has the given qualified name.
func (n *Node) Is(space, local string) bool {
	return n.Space == space && n.Local == local
}

// Child returns the first child element with the given qualified name.
func (n *Node) Child(space, local string) *Node {
	for _, c := range n.Children {
		if c.Is(space, local) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns the child elements with the given qualified name in document order.
func (n *Node) ChildrenNamed(space, local string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Is(space, local) {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenIn returns the child elements qualified by space.
func (n *Node) ChildrenIn(space string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Space == space {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the value of the attribute with the given qualified name.
func (n *Node) Attr(space, local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Space == space && a.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// ChildValue returns the trimmed text of the first matching child, or "".
func (n *Node) ChildValue(space, local string) string {
	if c := n.Child(space, local); c != nil {
		return c.Value()
	}
	return ""
}

// Value returns the trimmed character data directly under the node.
func (n *Node) Value() string {
	return strings.TrimSpace(n.Text)
}

// Declarations returns the namespaces declared on this element, in attribute order.
func (n *Node) Declarations() []Namespace {
	return n.decls
}

// InScope returns every prefix binding visible at this node. Bindings closer to
// the node shadow those declared on ancestors.
func (n *Node) InScope() map[string]string {
	var chain []*Node
	for cur := n; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}

	scope := map[string]string{"xml": XMLNamespace}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, d := range chain[i].decls {
			scope[d.Prefix] = d.URI
		}
	}
	return scope
}

// DeclaredNamespaces returns the distinct namespace URIs declared anywhere in the
// subtree rooted at n, in document order.
func (n *Node) DeclaredNamespaces() []Namespace {
	seen := make(map[string]bool)
	var out []Namespace
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, d := range cur.decls {
			if d.URI == "" || seen[d.URI] {
				continue
			}
			seen[d.URI] = true
			out = append(out, d)
		}
		for _, c := range cur.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

func (n *Node) Root() *Node {
	cur := n
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}
