package xmlnode

import (
	"slices"
	"strings"
)

// Resolver maps prefixes used in query paths to namespace URIs. It starts with
// the bindings in scope at a node; explicit bindings added later take precedence.
type Resolver struct {
	bindings map[string]string
}

func NewResolver(n *Node) *Resolver {
	r := &Resolver{bindings: map[string]string{"xml": XMLNamespace}}
	if n != nil {
		for prefix, uri := range n.InScope() {
			r.bindings[prefix] = uri
		}
	}
	return r
}

func (r *Resolver) AddNamespace(prefix, uri string) {
	r.bindings[prefix] = uri
}

func (r *Resolver) LookupNamespace(prefix string) (string, bool) {
	uri, ok := r.bindings[prefix]
	return uri, ok
}

// LookupPrefix returns a prefix bound to uri. The empty default-namespace prefix
// is only returned when no named prefix is bound.
func (r *Resolver) LookupPrefix(uri string) (string, bool) {
	var named []string
	isDefault := false
	for prefix, bound := range r.bindings {
		switch {
		case bound != uri:
		case prefix == "":
			isDefault = true
		default:
			named = append(named, prefix)
		}
	}
	if len(named) > 0 {
		slices.Sort(named)
		return named[0], true
	}
	return "", isDefault
}

// SelectSingle returns the first element matching path, or nil. A path is a
// slash-separated list of qualified names such as "itunes:owner/itunes:email".
// An unprefixed step matches elements without a namespace.
func (r *Resolver) SelectSingle(n *Node, path string) *Node {
	nodes := r.Select(n, path)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Select returns every element matching path, in document order.
func (r *Resolver) Select(n *Node, path string) []*Node {
	if n == nil || path == "" {
		return nil
	}

	current := []*Node{n}
	for _, step := range strings.Split(path, "/") {
		space, local, ok := r.qualify(step)
		if !ok {
			return nil
		}

		var next []*Node
		for _, c := range current {
			next = append(next, c.ChildrenNamed(space, local)...)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// SelectValue returns the trimmed text of the first element matching path.
func (r *Resolver) SelectValue(n *Node, path string) (string, bool) {
	found := r.SelectSingle(n, path)
	if found == nil {
		return "", false
	}
	return found.Value(), true
}

// Attribute returns the value of a qualified attribute such as "rdf:resource".
func (r *Resolver) Attribute(n *Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	prefix, local, found := strings.Cut(name, ":")
	if !found {
		return n.Attr("", name)
	}
	space, ok := r.bindings[prefix]
	if !ok {
		return "", false
	}
	return n.Attr(space, local)
}

func (r *Resolver) qualify(step string) (string, string, bool) {
	prefix, local, found := strings.Cut(step, ":")
	if !found {
		return "", step, true
	}
	space, ok := r.bindings[prefix]
	if !ok {
		return "", "", false
	}
	return space, local, true
}
