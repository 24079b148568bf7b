// Package trackback implements the Trackback RSS module, which advertises the
// ping URL of an item and the resources it has pinged.
package trackback

import (
	"cmp"
	"net/url"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

const (
	Prefix    = "trackback"
	Namespace = "http://madskills.com/public/xml/rss/module/trackback/"

	RDFPrefix    = "rdf"
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

var descriptor = syndication.Descriptor{
	Prefix:        Prefix,
	Namespace:     Namespace,
	Version:       "1.0",
	Documentation: "http://madskills.com/public/xml/rss/module/trackback/",
	Name:          "Trackback",
	Description:   "Advertises the trackback ping URL of an item and the resources it has pinged.",
}

type Context struct {
	Ping  *url.URL
	About []*url.URL
}

// Load accepts both the rdf:resource attribute form and plain element text.
func (c *Context) Load(node *xmlnode.Node, r *xmlnode.Resolver) bool {
	r.AddNamespace(RDFPrefix, RDFNamespace)
	loaded := false
	c.About = nil

	if n := r.SelectSingle(node, "trackback:ping"); n != nil {
		if u, ok := syndication.ParseURL(resource(n, r)); ok {
			c.Ping = u
			loaded = true
		}
	}
	for _, n := range r.Select(node, "trackback:about") {
		if u, ok := syndication.ParseURL(resource(n, r)); ok {
			c.About = append(c.About, u)
			loaded = true
		}
	}

	return loaded
}

func (c *Context) WriteTo(w *xmlwriter.Writer, namespace string) {
	if c.Ping != nil {
		writeResource(w, "ping", namespace, c.Ping)
	}
	for _, about := range c.About {
		if about != nil {
			writeResource(w, "about", namespace, about)
		}
	}
}

func (c *Context) Compare(o *Context) int {
	return cmp.Or(
		syndication.CompareURL(c.Ping, o.Ping),
		syndication.CompareURLs(c.About, o.About),
	)
}

func resource(n *xmlnode.Node, r *xmlnode.Resolver) string {
	if v, ok := r.Attribute(n, "rdf:resource"); ok {
		return v
	}
	return n.Value()
}

func writeResource(w *xmlwriter.Writer, local, namespace string, u *url.URL) {
	w.WriteStartElement("", local, namespace)
	w.WriteAttributeString(RDFPrefix, "resource", RDFNamespace, u.String())
	w.WriteEndElement()
}

type Extension struct {
	syndication.Base
	Context Context
}

func New() *Extension {
	return &Extension{Base: syndication.NewBase(descriptor)}
}

func Factory() syndication.Extension {
	return New()
}

func (e *Extension) Load(node *xmlnode.Node) bool {
	return e.LoadContext(node, &e.Context, e)
}

func (e *Extension) WriteTo(w *xmlwriter.Writer) error {
	return e.WriteContext(w, &e.Context)
}

func (e *Extension) RequiredNamespaces() []xmlnode.Namespace {
	return []xmlnode.Namespace{{Prefix: RDFPrefix, URI: RDFNamespace}}
}

func (e *Extension) Compare(other syndication.Extension) (int, error) {
	return syndication.Compare(e, other, compare)
}

func (e *Extension) Equal(other syndication.Extension) bool {
	return syndication.Equal(e, other, compare)
}

func (e *Extension) String() string {
	return syndication.Format(e)
}

func compare(a, b *Extension) int {
	return a.Context.Compare(&b.Context)
}
