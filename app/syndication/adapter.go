package syndication

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

// Adapter discovers, loads and attaches extensions found on one source node.
type Adapter struct {
	node     *xmlnode.Node
	settings LoadSettings
}

func NewAdapter(node *xmlnode.Node, settings LoadSettings) (*Adapter, error) {
	if node == nil {
		return nil, fmt.Errorf("%w: node", ErrNilArgument)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Adapter{node: node, settings: settings}, nil
}

func (a *Adapter) Node() *xmlnode.Node {
	return a.node
}

func (a *Adapter) Settings() LoadSettings {
	return a.settings
}

// Candidates returns the namespaces of the extension kinds to try: declared
// namespaces first (when auto-detection is on), then explicitly supported ones,
// each namespace at most once.
func (a *Adapter) Candidates() []string {
	reg := a.settings.Registry
	seen := make(map[string]bool)
	var out []string

	add := func(ns string) {
		if seen[ns] {
			return
		}
		if _, ok := reg.Lookup(ns); !ok {
			return
		}
		seen[ns] = true
		out = append(out, ns)
	}

	if a.settings.AutoDetectExtensions {
		for _, ns := range declaredNamespaces(a.node) {
			add(ns)
		}
	}
	for _, key := range a.settings.SupportedExtensions {
		if ns, ok := reg.Resolve(key); ok {
			add(ns)
		}
	}
	return out
}

// Fill attaches every candidate extension that loads successfully from the
// adapter's node, in candidate order.
func (a *Adapter) Fill(entity Extensible) error {
	if entity == nil {
		return fmt.Errorf("%w: entity", ErrNilArgument)
	}

	for _, ns := range a.Candidates() {
		factory, _ := a.settings.Registry.Lookup(ns)
		ext := factory()
		if !ext.Load(a.node) {
			continue
		}
		entity.AddExtension(ext)
		slog.Debug("Extension attached", "element", a.node.Local, "namespace", ns)
	}
	return nil
}

// WriteExtensionsTo writes each extension in stored order.
func WriteExtensionsTo(extensions []Extension, w *xmlwriter.Writer) error {
	if w == nil {
		return fmt.Errorf("%w: writer", ErrNilArgument)
	}
	for _, ext := range extensions {
		if err := ext.WriteTo(w); err != nil {
			return fmt.Errorf("failed to write %s extension: %w", ext.Descriptor().Prefix, err)
		}
	}
	return nil
}

// NamespaceRequirer is implemented by extensions whose output uses namespaces
// beyond their own, such as rdf attributes.
type NamespaceRequirer interface {
	RequiredNamespaces() []xmlnode.Namespace
}

// CollectNamespaces returns the declarations needed on a document root for the
// extensions attached to entities and their nested children. The result is
// ordered by first use. A prefix already taken by another namespace is
// suffixed with a number.
func CollectNamespaces(entities ...Extensible) []xmlnode.Namespace {
	c := &collector{
		byURI:    make(map[string]bool),
		byPrefix: make(map[string]string),
	}
	for _, e := range entities {
		c.walk(e)
	}
	return c.out
}

// WriteNamespaces declares decls on the open start tag.
func WriteNamespaces(w *xmlwriter.Writer, decls []xmlnode.Namespace) {
	for _, d := range decls {
		w.WriteNamespace(d.Prefix, d.URI)
	}
}

type collector struct {
	byURI    map[string]bool
	byPrefix map[string]string
	out      []xmlnode.Namespace
}

func (c *collector) walk(e Extensible) {
	if e == nil {
		return
	}
	for _, ext := range e.Extensions() {
		d := ext.Descriptor()
		c.add(d.Prefix, d.Namespace)
		if req, ok := ext.(NamespaceRequirer); ok {
			for _, ns := range req.RequiredNamespaces() {
				c.add(ns.Prefix, ns.URI)
			}
		}
	}
	if p, ok := e.(Parent); ok {
		for _, child := range p.ExtensibleChildren() {
			c.walk(child)
		}
	}
}

func (c *collector) add(prefix, uri string) {
	if uri == "" || c.byURI[uri] {
		return
	}

	candidate := prefix
	for n := 2; ; n++ {
		if bound, taken := c.byPrefix[candidate]; !taken || bound == uri {
			break
		}
		candidate = prefix + strconv.Itoa(n)
	}

	c.byURI[uri] = true
	c.byPrefix[candidate] = uri
	c.out = append(c.out, xmlnode.Namespace{Prefix: candidate, URI: uri})
}

// declaredNamespaces lists the namespaces visible at node in a stable order:
// declarations from the root down, then the namespaces of node's children.
func declaredNamespaces(node *xmlnode.Node) []string {
	var chain []*xmlnode.Node
	for cur := node; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}

	var out []string
	for i := len(chain) - 1; i >= 0; i-- {
		for _, d := range chain[i].Declarations() {
			out = append(out, d.URI)
		}
	}
	for _, c := range node.Children {
		if c.Space != "" {
			out = append(out, c.Space)
		}
	}
	return out
}
