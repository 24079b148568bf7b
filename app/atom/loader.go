package atom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
)

var ErrNotAtom = errors.New("document is not an Atom 1.0 feed")

func Load(r io.Reader, settings syndication.LoadSettings) (*Feed, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: reader", syndication.ErrNilArgument)
	}
	root, err := xmlnode.Parse(r)
	if err != nil {
		return nil, err
	}
	return LoadNode(root, settings)
}

func LoadAsync(ctx context.Context, r io.Reader, settings syndication.LoadSettings) <-chan syndication.Result[*Feed] {
	return syndication.Async(ctx, func() (*Feed, error) {
		return Load(r, settings)
	})
}

// LoadNode builds a feed from an already parsed feed element.
func LoadNode(root *xmlnode.Node, settings syndication.LoadSettings) (*Feed, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: root", syndication.ErrNilArgument)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if !root.Is(Namespace, "feed") {
		return nil, fmt.Errorf("%w: root element is {%s}%s", ErrNotAtom, root.Space, root.Local)
	}

	f := &Feed{}
	f.LoadCommonAttributes(root)

	f.ID = root.ChildValue(Namespace, "id")
	f.Title = loadText(root.Child(Namespace, "title"))
	f.Subtitle = loadText(root.Child(Namespace, "subtitle"))
	f.Updated, _ = syndication.ParseW3CDateTime(root.ChildValue(Namespace, "updated"))
	f.Links = loadLinks(root)
	f.Authors = loadPeople(root, "author")
	f.Contributors = loadPeople(root, "contributor")
	f.Categories = loadCategories(root)
	f.Icon, _ = syndication.ParseURL(root.ChildValue(Namespace, "icon"))
	f.Logo, _ = syndication.ParseURL(root.ChildValue(Namespace, "logo"))
	f.Rights = loadText(root.Child(Namespace, "rights"))

	if g := root.Child(Namespace, "generator"); g != nil && g.Value() != "" {
		gen := &Generator{Value: g.Value()}
		if v, ok := g.Attr("", "uri"); ok {
			gen.URI, _ = syndication.ParseURL(v)
		}
		gen.Version, _ = g.Attr("", "version")
		f.Generator = gen
	}

	if err := fill(root, f, settings); err != nil {
		return nil, err
	}

	for _, n := range root.ChildrenNamed(Namespace, "entry") {
		if settings.Reached(len(f.Entries)) {
			break
		}
		entry, err := loadEntry(n, settings)
		if err != nil {
			return nil, err
		}
		f.Entries = append(f.Entries, entry)
	}

	return f, nil
}

func loadEntry(n *xmlnode.Node, settings syndication.LoadSettings) (*Entry, error) {
	e := &Entry{}
	e.LoadCommonAttributes(n)

	e.ID = n.ChildValue(Namespace, "id")
	e.Title = loadText(n.Child(Namespace, "title"))
	e.Updated, _ = syndication.ParseW3CDateTime(n.ChildValue(Namespace, "updated"))
	e.Published, _ = syndication.ParseW3CDateTime(n.ChildValue(Namespace, "published"))
	e.Summary = loadText(n.Child(Namespace, "summary"))
	e.Links = loadLinks(n)
	e.Authors = loadPeople(n, "author")
	e.Contributors = loadPeople(n, "contributor")
	e.Categories = loadCategories(n)
	e.Rights = loadText(n.Child(Namespace, "rights"))

	if c := n.Child(Namespace, "content"); c != nil {
		content := &Content{Type: attrOr(c, "type", "text"), Value: textContent(c)}
		if v, ok := c.Attr("", "src"); ok {
			content.Src, _ = syndication.ParseURL(v)
		}
		if content.Value != "" || content.Src != nil {
			if content.Type == "xhtml" {
				content.Type = "text"
			}
			e.Content = content
		}
	}

	if err := fill(n, e, settings); err != nil {
		return nil, err
	}
	return e, nil
}

func loadText(n *xmlnode.Node) Text {
	if n == nil {
		return Text{}
	}
	t := Text{Type: attrOr(n, "type", "text"), Value: textContent(n)}
	if t.Type == "xhtml" {
		t.Type = "text"
	}
	return t
}

// textContent joins the character data of n and its descendants.
func textContent(n *xmlnode.Node) string {
	if !n.HasChildren() {
		return n.Value()
	}
	parts := []string{n.Value()}
	for _, c := range n.Children {
		parts = append(parts, textContent(c))
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func loadLinks(n *xmlnode.Node) []Link {
	var out []Link
	for _, l := range n.ChildrenNamed(Namespace, "link") {
		v, _ := l.Attr("", "href")
		href, ok := syndication.ParseURL(v)
		if !ok {
			continue
		}
		link := Link{Href: href, Rel: attrOr(l, "rel", "alternate")}
		link.Type, _ = l.Attr("", "type")
		link.HrefLang, _ = l.Attr("", "hreflang")
		link.Title, _ = l.Attr("", "title")
		if v, ok := l.Attr("", "length"); ok {
			link.Length, _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		}
		out = append(out, link)
	}
	return out
}

func loadPeople(n *xmlnode.Node, local string) []Person {
	var out []Person
	for _, p := range n.ChildrenNamed(Namespace, local) {
		person := Person{
			Name:  p.ChildValue(Namespace, "name"),
			Email: p.ChildValue(Namespace, "email"),
		}
		person.URI, _ = syndication.ParseURL(p.ChildValue(Namespace, "uri"))
		if person.Name == "" {
			continue
		}
		out = append(out, person)
	}
	return out
}

func loadCategories(n *xmlnode.Node) []Category {
	var out []Category
	for _, c := range n.ChildrenNamed(Namespace, "category") {
		term, _ := c.Attr("", "term")
		if term = strings.TrimSpace(term); term == "" {
			continue
		}
		cat := Category{Term: term}
		if v, ok := c.Attr("", "scheme"); ok {
			cat.Scheme, _ = syndication.ParseURL(v)
		}
		cat.Label, _ = c.Attr("", "label")
		out = append(out, cat)
	}
	return out
}

func attrOr(n *xmlnode.Node, local, fallback string) string {
	if v, ok := n.Attr("", local); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func fill(n *xmlnode.Node, entity syndication.Extensible, settings syndication.LoadSettings) error {
	adapter, err := syndication.NewAdapter(n, settings)
	if err != nil {
		return err
	}
	if err := adapter.Fill(entity); err != nil {
		return fmt.Errorf("failed to load extensions of %s: %w", n.Local, err)
	}
	return nil
}
