// Package creativecommons implements the Creative Commons RSS module.
package creativecommons

import (
	"net/url"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

const (
	Prefix    = "creativeCommons"
	Namespace = "http://backend.userland.com/creativeCommonsRssModule"
)

var descriptor = syndication.Descriptor{
	Prefix:        Prefix,
	Namespace:     Namespace,
	Version:       "1.0",
	Documentation: "http://backend.userland.com/creativeCommonsRssModule",
	Name:          "Creative Commons",
	Description:   "Identifies the Creative Commons licenses that apply to a channel or item.",
}

type Context struct {
	Licenses []*url.URL
}

func (c *Context) Load(node *xmlnode.Node, r *xmlnode.Resolver) bool {
	loaded := false
	c.Licenses = nil
	for _, n := range r.Select(node, "creativeCommons:license") {
		if u, ok := syndication.ParseURL(n.Value()); ok {
			c.Licenses = append(c.Licenses, u)
			loaded = true
		}
	}
	return loaded
}

func (c *Context) WriteTo(w *xmlwriter.Writer, namespace string) {
	for _, license := range c.Licenses {
		if license != nil {
			w.WriteElementString("license", namespace, license.String())
		}
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
	return syndication.CompareURLs(a.Context.Licenses, b.Context.Licenses)
}
