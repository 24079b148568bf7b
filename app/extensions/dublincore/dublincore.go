// Package dublincore implements the Dublin Core Metadata Element Set, version 1.1.
package dublincore

import (
	"time"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

const (
	Prefix    = "dc"
	Namespace = "http://purl.org/dc/elements/1.1/"
)

var descriptor = syndication.Descriptor{
	Prefix:        Prefix,
	Namespace:     Namespace,
	Version:       "1.1",
	Documentation: "http://dublincore.org/documents/dces/",
	Name:          "Dublin Core Metadata Element Set",
	Description:   "Fifteen generic elements for describing resources.",
}

type Context struct {
	Contributor string
	Coverage    string
	Creator     string
	Date        time.Time
	Description string
	Format      string
	Identifier  string
	Language    string
	Publisher   string
	Relation    string
	Rights      string
	Source      string
	Subject     string
	Title       string
	Type        string
}

type textField struct {
	local string
	value *string
}

// fields lists the text elements in emission order; date is written after creator.
func (c *Context) fields() []textField {
	return []textField{
		{"contributor", &c.Contributor},
		{"coverage", &c.Coverage},
		{"creator", &c.Creator},
		{"description", &c.Description},
		{"format", &c.Format},
		{"identifier", &c.Identifier},
		{"language", &c.Language},
		{"publisher", &c.Publisher},
		{"relation", &c.Relation},
		{"rights", &c.Rights},
		{"source", &c.Source},
		{"subject", &c.Subject},
		{"title", &c.Title},
		{"type", &c.Type},
	}
}

func (c *Context) Load(node *xmlnode.Node, r *xmlnode.Resolver) bool {
	loaded := false

	for _, f := range c.fields() {
		if v, ok := r.SelectValue(node, "dc:"+f.local); ok && v != "" {
			*f.value = v
			loaded = true
		}
	}

	if v, ok := r.SelectValue(node, "dc:date"); ok {
		if t, ok := syndication.ParseW3CDateTime(v); ok {
			c.Date = t
			loaded = true
		}
	}

	return loaded
}

func (c *Context) WriteTo(w *xmlwriter.Writer, namespace string) {
	for _, f := range c.fields() {
		if *f.value != "" {
			w.WriteElementString(f.local, namespace, *f.value)
		}
		if f.local == "creator" && !c.Date.IsZero() {
			w.WriteElementString("date", namespace, syndication.FormatW3CDateTime(c.Date))
		}
	}
}

func (c *Context) Compare(o *Context) int {
	theirs := o.fields()
	for i, f := range c.fields() {
		if r := syndication.CompareFold(*f.value, *theirs[i].value); r != 0 {
			return r
		}
		if f.local == "creator" {
			if r := syndication.CompareTime(c.Date, o.Date); r != 0 {
				return r
			}
		}
	}
	return 0
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
