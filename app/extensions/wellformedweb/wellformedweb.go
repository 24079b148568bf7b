// Package wellformedweb implements the Well-Formed Web comment API elements.
package wellformedweb

import (
	"cmp"
	"net/url"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

const (
	Prefix    = "wfw"
	Namespace = "http://wellformedweb.org/CommentAPI/"
)

var descriptor = syndication.Descriptor{
	Prefix:        Prefix,
	Namespace:     Namespace,
	Version:       "1.0",
	Documentation: "http://wellformedweb.org/news/wfw_namespace_elements/",
	Name:          "Well-Formed Web",
	Description:   "Links an item to its comment posting endpoint and comment feed.",
}

type Context struct {
	Comment    *url.URL
	CommentRss *url.URL
}

func (c *Context) Load(node *xmlnode.Node, r *xmlnode.Resolver) bool {
	loaded := false

	if v, ok := r.SelectValue(node, "wfw:comment"); ok {
		if u, ok := syndication.ParseURL(v); ok {
			c.Comment = u
			loaded = true
		}
	}
	if v, ok := r.SelectValue(node, "wfw:commentRss"); ok {
		if u, ok := syndication.ParseURL(v); ok {
			c.CommentRss = u
			loaded = true
		}
	}

	return loaded
}

func (c *Context) WriteTo(w *xmlwriter.Writer, namespace string) {
	if c.Comment != nil {
		w.WriteElementString("comment", namespace, c.Comment.String())
	}
	if c.CommentRss != nil {
		w.WriteElementString("commentRss", namespace, c.CommentRss.String())
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
		syndication.CompareURL(a.Context.Comment, b.Context.Comment),
		syndication.CompareURL(a.Context.CommentRss, b.Context.CommentRss),
	)
}
