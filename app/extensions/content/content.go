// Package content implements the RSS content module (content:encoded).
package content

import (
	"cmp"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

const (
	Prefix    = "content"
	Namespace = "http://purl.org/rss/1.0/modules/content/"
)

var descriptor = syndication.Descriptor{
	Prefix:        Prefix,
	Namespace:     Namespace,
	Version:       "2.0",
	Documentation: "http://web.resource.org/rss/1.0/modules/content/",
	Name:          "Content",
	Description:   "Carries the full, entity-encoded content of an item.",
}

type Context struct {
	// Encoded is markup, written inside a CDATA section.
	Encoded string
}

func (c *Context) Load(node *xmlnode.Node, r *xmlnode.Resolver) bool {
	if v, ok := r.SelectValue(node, "content:encoded"); ok && v != "" {
		c.Encoded = v
		return true
	}
	return false
}

func (c *Context) WriteTo(w *xmlwriter.Writer, namespace string) {
	if c.Encoded == "" {
		return
	}
	w.WriteStartElement("", "encoded", namespace)
	w.WriteCData(c.Encoded)
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

func (e *Extension) Compare(other syndication.Extension) (int, error) {
	return syndication.Compare(e, other, compare)
}

func (e *Extension) Equal(other syndication.Extension) bool {
	return syndication.Equal(e, other, compare)
}

func (e *Extension) String() string {
	return syndication.Format(e)
}

// compare is case-sensitive: the payload is markup, not a label.
func compare(a, b *Extension) int {
	return cmp.Compare(a.Context.Encoded, b.Context.Encoded)
}
