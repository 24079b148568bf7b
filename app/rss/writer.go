package rss

import (
	"cmp"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

// Save writes the feed as an RSS 2.0 document. Every namespace used by an
// attached extension is declared on the rss element.
func (f *Feed) Save(w io.Writer, opts ...xmlwriter.Option) error {
	if w == nil {
		return fmt.Errorf("%w: writer", syndication.ErrNilArgument)
	}
	if f.Channel == nil {
		return ErrNoChannel
	}

	xw := xmlwriter.New(w, opts...)
	xw.WriteStartDocument()
	xw.WriteStartElement("", "rss", "")
	xw.WriteAttributeString("", "version", "", cmp.Or(f.Version, Version))
	syndication.WriteNamespaces(xw, syndication.CollectNamespaces(f.Channel))
	f.WriteCommonAttributes(xw)

	if err := f.Channel.writeTo(xw); err != nil {
		return err
	}

	xw.WriteEndElement()
	if err := xw.Flush(); err != nil {
		return fmt.Errorf("failed to write RSS feed: %w", err)
	}
	return nil
}

func (c *Channel) writeTo(w *xmlwriter.Writer) error {
	w.WriteStartElement("", "channel", "")
	c.WriteCommonAttributes(w)

	// title, link and description are required by RSS 2.0 and always written.
	w.WriteElementString("title", "", c.Title)
	w.WriteElementString("link", "", syndication.URLString(c.Link))
	w.WriteElementString("description", "", c.Description)

	writeText(w, "language", c.Language)
	writeText(w, "copyright", c.Copyright)
	writeText(w, "managingEditor", c.ManagingEditor)
	writeText(w, "webMaster", c.WebMaster)
	writeDate(w, "pubDate", c.PubDate)
	writeDate(w, "lastBuildDate", c.LastBuildDate)
	writeCategories(w, c.Categories)
	writeText(w, "generator", c.Generator)
	writeURL(w, "docs", c.Docs)
	if c.TTL > 0 {
		w.WriteElementString("ttl", "", strconv.Itoa(c.TTL))
	}
	if c.Image != nil {
		c.Image.writeTo(w)
	}

	if err := syndication.WriteExtensionsTo(c.Extensions(), w); err != nil {
		return err
	}

	for _, item := range c.Items {
		if item == nil {
			continue
		}
		if err := item.writeTo(w); err != nil {
			return err
		}
	}

	w.WriteEndElement()
	return nil
}

func (item *Item) writeTo(w *xmlwriter.Writer) error {
	w.WriteStartElement("", "item", "")
	item.WriteCommonAttributes(w)

	writeText(w, "title", item.Title)
	writeURL(w, "link", item.Link)
	writeText(w, "description", item.Description)
	writeText(w, "author", item.Author)
	writeCategories(w, item.Categories)
	writeURL(w, "comments", item.Comments)

	if e := item.Enclosure; e != nil && e.URL != nil {
		w.WriteStartElement("", "enclosure", "")
		w.WriteAttributeString("", "url", "", e.URL.String())
		w.WriteAttributeString("", "length", "", strconv.FormatInt(e.Length, 10))
		w.WriteAttributeString("", "type", "", e.Type)
		w.WriteEndElement()
	}

	if g := item.Guid; g != nil && g.Value != "" {
		w.WriteStartElement("", "guid", "")
		if !g.IsPermaLink {
			w.WriteAttributeString("", "isPermaLink", "", "false")
		}
		w.WriteString(g.Value)
		w.WriteEndElement()
	}

	writeDate(w, "pubDate", item.PubDate)

	if s := item.Source; s != nil && s.URL != nil {
		w.WriteStartElement("", "source", "")
		w.WriteAttributeString("", "url", "", s.URL.String())
		w.WriteString(s.Title)
		w.WriteEndElement()
	}

	if err := syndication.WriteExtensionsTo(item.Extensions(), w); err != nil {
		return err
	}

	w.WriteEndElement()
	return nil
}

func (img *Image) writeTo(w *xmlwriter.Writer) {
	w.WriteStartElement("", "image", "")
	writeURL(w, "url", img.URL)
	writeText(w, "title", img.Title)
	writeURL(w, "link", img.Link)
	if img.Width > 0 {
		w.WriteElementString("width", "", strconv.Itoa(img.Width))
	}
	if img.Height > 0 {
		w.WriteElementString("height", "", strconv.Itoa(img.Height))
	}
	writeText(w, "description", img.Description)
	w.WriteEndElement()
}

func writeCategories(w *xmlwriter.Writer, categories []Category) {
	for _, c := range categories {
		if c.Value == "" {
			continue
		}
		w.WriteStartElement("", "category", "")
		if c.Domain != "" {
			w.WriteAttributeString("", "domain", "", c.Domain)
		}
		w.WriteString(c.Value)
		w.WriteEndElement()
	}
}

func writeText(w *xmlwriter.Writer, local, value string) {
	if value != "" {
		w.WriteElementString(local, "", value)
	}
}

func writeURL(w *xmlwriter.Writer, local string, u *url.URL) {
	if u != nil {
		w.WriteElementString(local, "", u.String())
	}
}

func writeDate(w *xmlwriter.Writer, local string, t time.Time) {
	if !t.IsZero() {
		w.WriteElementString(local, "", syndication.FormatRFC822(t))
	}
}
