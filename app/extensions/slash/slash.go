// Package slash implements the Slash RSS module used by Slashdot-style sites.
package slash

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

const (
	Prefix    = "slash"
	Namespace = "http://purl.org/rss/1.0/modules/slash/"
)

var descriptor = syndication.Descriptor{
	Prefix:        Prefix,
	Namespace:     Namespace,
	Version:       "1.0",
	Documentation: "http://web.resource.org/rss/1.0/modules/slash/",
	Name:          "Slash",
	Description:   "Section, department and comment statistics for discussion sites.",
}

type Context struct {
	Section    string
	Department string
	Comments   int
	// HitParade holds comment counts at each threshold, highest first.
	HitParade []int
}

func (c *Context) Load(node *xmlnode.Node, r *xmlnode.Resolver) bool {
	loaded := false

	if v, ok := r.SelectValue(node, "slash:section"); ok && v != "" {
		c.Section = v
		loaded = true
	}
	if v, ok := r.SelectValue(node, "slash:department"); ok && v != "" {
		c.Department = v
		loaded = true
	}
	if v, ok := r.SelectValue(node, "slash:comments"); ok {
		if n, ok := syndication.ParseInt(v); ok {
			c.Comments = n
			loaded = true
		}
	}
	if v, ok := r.SelectValue(node, "slash:hit_parade"); ok {
		if parade, ok := parseHitParade(v); ok {
			c.HitParade = parade
			loaded = true
		}
	}

	return loaded
}

func (c *Context) WriteTo(w *xmlwriter.Writer, namespace string) {
	if c.Section != "" {
		w.WriteElementString("section", namespace, c.Section)
	}
	if c.Department != "" {
		w.WriteElementString("department", namespace, c.Department)
	}
	if c.Comments != 0 {
		w.WriteElementString("comments", namespace, strconv.Itoa(c.Comments))
	}
	if len(c.HitParade) > 0 {
		parts := make([]string, len(c.HitParade))
		for i, n := range c.HitParade {
			parts[i] = strconv.Itoa(n)
		}
		w.WriteElementString("hit_parade", namespace, strings.Join(parts, ","))
	}
}

func (c *Context) Compare(o *Context) int {
	return cmp.Or(
		syndication.CompareFold(c.Section, o.Section),
		syndication.CompareFold(c.Department, o.Department),
		cmp.Compare(c.Comments, o.Comments),
		slices.Compare(c.HitParade, o.HitParade),
	)
}

// parseHitParade rejects the whole list when any entry is not an integer.
func parseHitParade(v string) ([]int, bool) {
	if v == "" {
		return nil, false
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		n, ok := syndication.ParseInt(part)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
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
	return a.Context.Compare(&b.Context)
}
