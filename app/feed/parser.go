package feed

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/argot/app/atom"
	"github.com/lysyi3m/argot/app/extensions/content"
	"github.com/lysyi3m/argot/app/extensions/dublincore"
	"github.com/lysyi3m/argot/app/rss"
	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
)

var ErrUnsupportedFormat = errors.New("unsupported feed format")

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Run(data []byte, settings syndication.LoadSettings) (Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("feed data is empty")
	}

	switch feedType := gofeed.DetectFeedType(bytes.NewReader(data)); feedType {
	case gofeed.FeedTypeRSS:
		f, err := rss.Load(bytes.NewReader(data), settings)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed: %w", err)
		}
		doc := &rssDocument{feed: f}
		slog.Debug("Feed parsed", "format", doc.Format(), "items", doc.ItemCount())
		return doc, nil
	case gofeed.FeedTypeAtom:
		f, err := atom.Load(bytes.NewReader(data), settings)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed: %w", err)
		}
		doc := &atomDocument{feed: f}
		slog.Debug("Feed parsed", "format", doc.Format(), "items", doc.ItemCount())
		return doc, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

type rssDocument struct {
	feed *rss.Feed
}

func (d *rssDocument) Format() Format { return FormatRSS }

func (d *rssDocument) Title() string {
	return d.feed.Channel.Title
}

func (d *rssDocument) ItemCount() int {
	return len(d.feed.Channel.Items)
}

func (d *rssDocument) Entries() []Entry {
	entries := make([]Entry, 0, len(d.feed.Channel.Items))
	for _, item := range d.feed.Channel.Items {
		entries = append(entries, rssEntry(item))
	}
	return entries
}

func (d *rssDocument) Filter(keep func(Entry) bool) int {
	before := len(d.feed.Channel.Items)
	d.feed.Channel.Items = slices.DeleteFunc(d.feed.Channel.Items, func(item *rss.Item) bool {
		return !keep(rssEntry(item))
	})
	return before - len(d.feed.Channel.Items)
}

func (d *rssDocument) Save(w io.Writer) error {
	return d.feed.Save(w)
}

func (d *rssDocument) Namespaces() []xmlnode.Namespace {
	return syndication.CollectNamespaces(d.feed.Channel)
}

func rssEntry(item *rss.Item) Entry {
	entry := Entry{
		Title:       item.Title,
		Link:        syndication.URLString(item.Link),
		Description: item.Description,
	}
	if c, ok := syndication.Find[*content.Extension](item); ok {
		entry.Content = c.Context.Encoded
	}

	entry.Authors = appendAuthor(entry.Authors, item.Author)
	if dc, ok := syndication.Find[*dublincore.Extension](item); ok {
		entry.Authors = appendAuthor(entry.Authors, dc.Context.Creator)
	}

	for _, c := range item.Categories {
		if c.Value != "" {
			entry.Categories = append(entry.Categories, c.Value)
		}
	}
	return entry
}

type atomDocument struct {
	feed *atom.Feed
}

func (d *atomDocument) Format() Format { return FormatAtom }

func (d *atomDocument) Title() string {
	return d.feed.Title.Value
}

func (d *atomDocument) ItemCount() int {
	return len(d.feed.Entries)
}

func (d *atomDocument) Entries() []Entry {
	entries := make([]Entry, 0, len(d.feed.Entries))
	for _, e := range d.feed.Entries {
		entries = append(entries, atomEntry(e))
	}
	return entries
}

func (d *atomDocument) Filter(keep func(Entry) bool) int {
	before := len(d.feed.Entries)
	d.feed.Entries = slices.DeleteFunc(d.feed.Entries, func(e *atom.Entry) bool {
		return !keep(atomEntry(e))
	})
	return before - len(d.feed.Entries)
}

func (d *atomDocument) Save(w io.Writer) error {
	return d.feed.Save(w)
}

func (d *atomDocument) Namespaces() []xmlnode.Namespace {
	return syndication.CollectNamespaces(d.feed)
}

func atomEntry(e *atom.Entry) Entry {
	entry := Entry{
		Title:       e.Title.Value,
		Description: e.Summary.Value,
	}
	if e.Content != nil {
		entry.Content = e.Content.Value
	}

	for _, l := range e.Links {
		if cmp.Or(l.Rel, "alternate") == "alternate" {
			entry.Link = syndication.URLString(l.Href)
			break
		}
	}

	for _, p := range e.Authors {
		entry.Authors = appendAuthor(entry.Authors, formatAuthor(p.Name, p.Email))
	}
	for _, c := range e.Categories {
		entry.Categories = append(entry.Categories, c.Term)
	}
	return entry
}

func appendAuthor(authors []string, author string) []string {
	author = strings.TrimSpace(author)
	if author == "" || slices.Contains(authors, author) {
		return authors
	}
	return append(authors, author)
}

func formatAuthor(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name != "" && email != "" {
		return fmt.Sprintf("%s (%s)", email, name)
	} else if name != "" {
		return name
	}
	return email
}
