// Package feedburner implements the FeedBurner original-link elements.
package feedburner

import (
	"cmp"
	"net/url"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

const (
	Prefix    = "feedburner"
	Namespace = "http://rssnamespace.org/feedburner/ext/1.0"
)

var descriptor = syndication.Descriptor{
	Prefix:        Prefix,
	Namespace:     Namespace,
	Version:       "1.0",
	Documentation: "http://rssnamespace.org/feedburner/ext/1.0",
	Name:          "FeedBurner",
	Description:   "Preserves the original links of items rewritten by a feed proxy.",
}

type Context struct {
	OrigLink          *url.URL
	OrigEnclosureLink *url.URL
}

func (c *Context) Load(node *xmlnode.Node, r *xmlnode.Resolver) bool {
	loaded := false

	if v, ok := r.SelectValue(node, "feedburner:origLink"); ok {
		if u, ok := syndication.ParseURL(v); ok {
			c.OrigLink = u
			loaded = true
		}
	}
	if v, ok := r.SelectValue(node, "feedburner:origEnclosureLink"); ok {
		if u, ok := syndication.ParseURL(v); ok {
			c.OrigEnclosureLink = u
			loaded = true
		}
	}

	return loaded
}

func (c *Context) WriteTo(w *xmlwriter.Writer, namespace string) {
	if c.OrigLink != nil {
		w.WriteElementString("origLink", namespace, c.OrigLink.String())
	}
	if c.OrigEnclosureLink != nil {
		w.WriteElementString("origEnclosureLink", namespace, c.OrigEnclosureLink.String())
	}
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

func compare(a, b *Extension) int {
	return cmp.Or(
		syndication.CompareURL(a.Context.OrigLink, b.Context.OrigLink),
		syndication.CompareURL(a.Context.OrigEnclosureLink, b.Context.OrigEnclosureLink),
	)
}
