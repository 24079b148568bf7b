// Package itunes implements the Apple Podcasts (iTunes) RSS extension.
package itunes

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

const (
	Prefix    = "itunes"
	Namespace = "http://www.itunes.com/dtds/podcast-1.0.dtd"
)

var descriptor = syndication.Descriptor{
	Prefix:        Prefix,
	Namespace:     Namespace,
	Version:       "1.0",
	Documentation: "https://help.apple.com/itc/podcasts_connect/#/itcb54353390",
	Name:          "iTunes",
	Description:   "Podcast directory metadata for channels and episodes.",
}

type Explicit int

const (
	ExplicitUnset Explicit = iota
	ExplicitYes
	ExplicitNo
	ExplicitClean
)

func (e Explicit) String() string {
	switch e {
	case ExplicitYes:
		return "yes"
	case ExplicitNo:
		return "no"
	case ExplicitClean:
		return "clean"
	}
	return ""
}

func parseExplicit(s string) (Explicit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "explicit":
		return ExplicitYes, true
	case "no", "false":
		return ExplicitNo, true
	case "clean":
		return ExplicitClean, true
	}
	return ExplicitUnset, false
}

// Category is a directory category. Subcategories nest one level deep.
type Category struct {
	Text          string
	Subcategories []Category
}

func (c Category) Compare(o Category) int {
	return cmp.Or(
		syndication.CompareFold(c.Text, o.Text),
		slices.CompareFunc(c.Subcategories, o.Subcategories, Category.Compare),
	)
}

type Owner struct {
	Name  string
	Email string
}

func (o Owner) IsZero() bool {
	return o.Name == "" && o.Email == ""
}

type Context struct {
	Author     string
	Block      bool
	Categories []Category
	Duration   time.Duration
	Explicit   Explicit
	Image      *url.URL
	Keywords   []string
	NewFeedURL *url.URL
	Owner      Owner
	Subtitle   string
	Summary    string
}

func (c *Context) Load(node *xmlnode.Node, r *xmlnode.Resolver) bool {
	loaded := false

	text := func(path string, dst *string) {
		if v, ok := r.SelectValue(node, path); ok && v != "" {
			*dst = v
			loaded = true
		}
	}

	text("itunes:author", &c.Author)

	c.Categories = nil

	if v, ok := r.SelectValue(node, "itunes:block"); ok {
		if b, ok := syndication.ParseBool(v); ok {
			c.Block = b
			loaded = true
		}
	}

	for _, n := range r.Select(node, "itunes:category") {
		if cat, ok := loadCategory(n, r); ok {
			c.Categories = append(c.Categories, cat)
			loaded = true
		}
	}

	if v, ok := r.SelectValue(node, "itunes:duration"); ok {
		if d, ok := ParseDuration(v); ok {
			c.Duration = d
			loaded = true
		}
	}

	if v, ok := r.SelectValue(node, "itunes:explicit"); ok {
		if e, ok := parseExplicit(v); ok {
			c.Explicit = e
			loaded = true
		}
	}

	if n := r.SelectSingle(node, "itunes:image"); n != nil {
		if v, ok := n.Attr("", "href"); ok {
			if u, ok := syndication.ParseURL(v); ok {
				c.Image = u
				loaded = true
			}
		}
	}

	if v, ok := r.SelectValue(node, "itunes:keywords"); ok {
		if keywords := splitKeywords(v); len(keywords) > 0 {
			c.Keywords = keywords
			loaded = true
		}
	}

	if v, ok := r.SelectValue(node, "itunes:new-feed-url"); ok {
		if u, ok := syndication.ParseURL(v); ok {
			c.NewFeedURL = u
			loaded = true
		}
	}

	text("itunes:owner/itunes:name", &c.Owner.Name)
	text("itunes:owner/itunes:email", &c.Owner.Email)

	text("itunes:subtitle", &c.Subtitle)
	text("itunes:summary", &c.Summary)

	return loaded
}

func (c *Context) WriteTo(w *xmlwriter.Writer, namespace string) {
	if c.Author != "" {
		w.WriteElementString("author", namespace, c.Author)
	}
	if c.Block {
		w.WriteElementString("block", namespace, "yes")
	}
	for _, cat := range c.Categories {
		writeCategory(w, namespace, cat)
	}
	if c.Duration > 0 {
		w.WriteElementString("duration", namespace, FormatDuration(c.Duration))
	}
	if c.Explicit != ExplicitUnset {
		w.WriteElementString("explicit", namespace, c.Explicit.String())
	}
	if c.Image != nil {
		w.WriteStartElement("", "image", namespace)
		w.WriteAttributeString("", "href", "", c.Image.String())
		w.WriteEndElement()
	}
	if len(c.Keywords) > 0 {
		w.WriteElementString("keywords", namespace, strings.Join(c.Keywords, ","))
	}
	if c.NewFeedURL != nil {
		w.WriteElementString("new-feed-url", namespace, c.NewFeedURL.String())
	}
	if !c.Owner.IsZero() {
		w.WriteStartElement("", "owner", namespace)
		if c.Owner.Name != "" {
			w.WriteElementString("name", namespace, c.Owner.Name)
		}
		if c.Owner.Email != "" {
			w.WriteElementString("email", namespace, c.Owner.Email)
		}
		w.WriteEndElement()
	}
	if c.Subtitle != "" {
		w.WriteElementString("subtitle", namespace, c.Subtitle)
	}
	if c.Summary != "" {
		w.WriteElementString("summary", namespace, c.Summary)
	}
}

func (c *Context) Compare(o *Context) int {
	return cmp.Or(
		syndication.CompareFold(c.Author, o.Author),
		syndication.CompareBool(c.Block, o.Block),
		slices.CompareFunc(c.Categories, o.Categories, Category.Compare),
		cmp.Compare(c.Duration, o.Duration),
		cmp.Compare(c.Explicit, o.Explicit),
		syndication.CompareURL(c.Image, o.Image),
		syndication.CompareFoldSlices(c.Keywords, o.Keywords),
		syndication.CompareURL(c.NewFeedURL, o.NewFeedURL),
		syndication.CompareFold(c.Owner.Name, o.Owner.Name),
		syndication.CompareFold(c.Owner.Email, o.Owner.Email),
		syndication.CompareFold(c.Subtitle, o.Subtitle),
		syndication.CompareFold(c.Summary, o.Summary),
	)
}

func loadCategory(n *xmlnode.Node, r *xmlnode.Resolver) (Category, bool) {
	text, _ := n.Attr("", "text")
	text = strings.TrimSpace(text)
	if text == "" {
		return Category{}, false
	}

	cat := Category{Text: text}
	for _, child := range r.Select(n, "itunes:category") {
		if sub, ok := loadCategory(child, r); ok {
			cat.Subcategories = append(cat.Subcategories, sub)
		}
	}
	return cat, true
}

func writeCategory(w *xmlwriter.Writer, namespace string, cat Category) {
	if cat.Text == "" {
		return
	}
	w.WriteStartElement("", "category", namespace)
	w.WriteAttributeString("", "text", "", cat.Text)
	for _, sub := range cat.Subcategories {
		writeCategory(w, namespace, sub)
	}
	w.WriteEndElement()
}

func splitKeywords(v string) []string {
	var out []string
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// ParseDuration accepts HH:MM:SS, H:MM:SS, MM:SS, M:SS or a plain number of seconds.
func ParseDuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}

	var total int
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, true
}

// FormatDuration writes H:MM:SS, dropping sub-second precision.
func FormatDuration(d time.Duration) string {
	seconds := int(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
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
