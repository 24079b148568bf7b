package rss

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

var (
	ErrNotRSS    = errors.New("document is not an RSS 2.0 feed")
	ErrNoChannel = errors.New("rss element has no channel")
)

// Load parses an RSS 2.0 document from r.
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

// LoadAsync runs Load on a background goroutine.
func LoadAsync(ctx context.Context, r io.Reader, settings syndication.LoadSettings) <-chan syndication.Result[*Feed] {
	return syndication.Async(ctx, func() (*Feed, error) {
		return Load(r, settings)
	})
}

// LoadNode builds a feed from an already parsed rss element.
func LoadNode(root *xmlnode.Node, settings syndication.LoadSettings) (*Feed, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: root", syndication.ErrNilArgument)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if !root.Is("", "rss") {
		return nil, fmt.Errorf("%w: root element is %s", ErrNotRSS, root.Local)
	}

	feed := &Feed{Version: Version}
	if v, ok := root.Attr("", "version"); ok && v != "" {
		feed.Version = v
	}
	feed.LoadCommonAttributes(root)

	channelNode := root.Child("", "channel")
	if channelNode == nil {
		return nil, ErrNoChannel
	}

	channel, err := loadChannel(channelNode, settings)
	if err != nil {
		return nil, err
	}
	feed.Channel = channel
	return feed, nil
}

func loadChannel(n *xmlnode.Node, settings syndication.LoadSettings) (*Channel, error) {
	c := &Channel{}
	c.LoadCommonAttributes(n)

	c.Title = n.ChildValue("", "title")
	c.Link, _ = syndication.ParseURL(n.ChildValue("", "link"))
	c.Description = n.ChildValue("", "description")
	c.Language = n.ChildValue("", "language")
	c.Copyright = n.ChildValue("", "copyright")
	c.ManagingEditor = n.ChildValue("", "managingEditor")
	c.WebMaster = n.ChildValue("", "webMaster")
	c.PubDate, _ = syndication.ParseRFC822(n.ChildValue("", "pubDate"))
	c.LastBuildDate, _ = syndication.ParseRFC822(n.ChildValue("", "lastBuildDate"))
	c.Categories = loadCategories(n)
	c.Generator = n.ChildValue("", "generator")
	c.Docs, _ = syndication.ParseURL(n.ChildValue("", "docs"))
	c.TTL, _ = syndication.ParseInt(n.ChildValue("", "ttl"))

	if imageNode := n.Child("", "image"); imageNode != nil {
		c.Image = loadImage(imageNode)
	}

	if err := fill(n, c, settings); err != nil {
		return nil, err
	}

	for _, itemNode := range n.ChildrenNamed("", "item") {
		if settings.Reached(len(c.Items)) {
			break
		}
		item, err := loadItem(itemNode, settings)
		if err != nil {
			return nil, err
		}
		c.Items = append(c.Items, item)
	}

	return c, nil
}

func loadItem(n *xmlnode.Node, settings syndication.LoadSettings) (*Item, error) {
	item := &Item{}
	item.LoadCommonAttributes(n)

	item.Title = n.ChildValue("", "title")
	item.Link, _ = syndication.ParseURL(n.ChildValue("", "link"))
	item.Description = n.ChildValue("", "description")
	item.Author = n.ChildValue("", "author")
	item.Categories = loadCategories(n)
	item.Comments, _ = syndication.ParseURL(n.ChildValue("", "comments"))
	item.PubDate, _ = syndication.ParseRFC822(n.ChildValue("", "pubDate"))

	if e := n.Child("", "enclosure"); e != nil {
		item.Enclosure = loadEnclosure(e)
	}
	if g := n.Child("", "guid"); g != nil && g.Value() != "" {
		item.Guid = &Guid{Value: g.Value(), IsPermaLink: true}
		if v, ok := g.Attr("", "isPermaLink"); ok {
			if b, ok := syndication.ParseBool(v); ok {
				item.Guid.IsPermaLink = b
			}
		}
	}
	if s := n.Child("", "source"); s != nil {
		src := &Source{Title: s.Value()}
		if v, ok := s.Attr("", "url"); ok {
			src.URL, _ = syndication.ParseURL(v)
		}
		item.Source = src
	}

	if err := fill(n, item, settings); err != nil {
		return nil, err
	}
	return item, nil
}

func loadCategories(n *xmlnode.Node) []Category {
	var out []Category
	for _, c := range n.ChildrenNamed("", "category") {
		if c.Value() == "" {
			continue
		}
		domain, _ := c.Attr("", "domain")
		out = append(out, Category{Domain: domain, Value: c.Value()})
	}
	return out
}

func loadImage(n *xmlnode.Node) *Image {
	img := &Image{
		Title:       n.ChildValue("", "title"),
		Description: n.ChildValue("", "description"),
	}
	img.URL, _ = syndication.ParseURL(n.ChildValue("", "url"))
	img.Link, _ = syndication.ParseURL(n.ChildValue("", "link"))
	img.Width, _ = syndication.ParseInt(n.ChildValue("", "width"))
	img.Height, _ = syndication.ParseInt(n.ChildValue("", "height"))
	return img
}

func loadEnclosure(n *xmlnode.Node) *Enclosure {
	enc := &Enclosure{}
	if v, ok := n.Attr("", "url"); ok {
		enc.URL, _ = syndication.ParseURL(v)
	}
	if v, ok := n.Attr("", "length"); ok {
		enc.Length, _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}
	enc.Type, _ = n.Attr("", "type")
	if enc.URL == nil {
		return nil
	}
	return enc
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
