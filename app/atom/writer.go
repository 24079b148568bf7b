package atom

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

// Save writes the feed as an Atom 1.0 document with extension namespaces
// declared on the feed element.
func (f *Feed) Save(w io.Writer, opts ...xmlwriter.Option) error {
	if w == nil {
		return fmt.Errorf("%w: writer", syndication.ErrNilArgument)
	}

	xw := xmlwriter.New(w, opts...)
	xw.WriteStartDocument()
	xw.WriteStartElement("", "feed", Namespace)
	syndication.WriteNamespaces(xw, syndication.CollectNamespaces(f))
	f.WriteCommonAttributes(xw)

	xw.WriteElementString("id", Namespace, f.ID)
	writeText(xw, "title", f.Title, true)
	writeText(xw, "subtitle", f.Subtitle, false)
	xw.WriteElementString("updated", Namespace, syndication.FormatW3CDateTime(f.Updated))
	writeLinks(xw, f.Links)
	writePeople(xw, "author", f.Authors)
	writePeople(xw, "contributor", f.Contributors)
	writeCategories(xw, f.Categories)

	if g := f.Generator; g != nil && g.Value != "" {
		xw.WriteStartElement("", "generator", Namespace)
		if g.URI != nil {
			xw.WriteAttributeString("", "uri", "", g.URI.String())
		}
		if g.Version != "" {
			xw.WriteAttributeString("", "version", "", g.Version)
		}
		xw.WriteString(g.Value)
		xw.WriteEndElement()
	}

	writeURL(xw, "icon", f.Icon)
	writeURL(xw, "logo", f.Logo)
	writeText(xw, "rights", f.Rights, false)

	if err := syndication.WriteExtensionsTo(f.Extensions(), xw); err != nil {
		return err
	}

	for _, e := range f.Entries {
		if e == nil {
			continue
		}
		if err := e.writeTo(xw); err != nil {
			return err
		}
	}

	xw.WriteEndElement()
	if err := xw.Flush(); err != nil {
		return fmt.Errorf("failed to write Atom feed: %w", err)
	}
	return nil
}

func (e *Entry) writeTo(w *xmlwriter.Writer) error {
	w.WriteStartElement("", "entry", Namespace)
	e.WriteCommonAttributes(w)

	w.WriteElementString("id", Namespace, e.ID)
	writeText(w, "title", e.Title, true)
	w.WriteElementString("updated", Namespace, syndication.FormatW3CDateTime(e.Updated))
	writeDate(w, "published", e.Published)
	writeLinks(w, e.Links)
	writePeople(w, "author", e.Authors)
	writePeople(w, "contributor", e.Contributors)
	writeCategories(w, e.Categories)
	writeText(w, "summary", e.Summary, false)

	if c := e.Content; c != nil {
		w.WriteStartElement("", "content", Namespace)
		if c.Type != "" && c.Type != "text" {
			w.WriteAttributeString("", "type", "", c.Type)
		}
		if c.Src != nil {
			w.WriteAttributeString("", "src", "", c.Src.String())
		} else {
			w.WriteString(c.Value)
		}
		w.WriteEndElement()
	}

	writeText(w, "rights", e.Rights, false)

	if err := syndication.WriteExtensionsTo(e.Extensions(), w); err != nil {
		return err
	}

	w.WriteEndElement()
	return nil
}

func writeText(w *xmlwriter.Writer, local string, t Text, required bool) {
	if t.IsZero() && !required {
		return
	}
	w.WriteStartElement("", local, Namespace)
	if t.Type != "" && t.Type != "text" {
		w.WriteAttributeString("", "type", "", t.Type)
	}
	w.WriteString(t.Value)
	w.WriteEndElement()
}

func writeLinks(w *xmlwriter.Writer, links []Link) {
	for _, l := range links {
		if l.Href == nil {
			continue
		}
		w.WriteStartElement("", "link", Namespace)
		w.WriteAttributeString("", "href", "", l.Href.String())
		if l.Rel != "" && l.Rel != "alternate" {
			w.WriteAttributeString("", "rel", "", l.Rel)
		}
		if l.Type != "" {
			w.WriteAttributeString("", "type", "", l.Type)
		}
		if l.HrefLang != "" {
			w.WriteAttributeString("", "hreflang", "", l.HrefLang)
		}
		if l.Title != "" {
			w.WriteAttributeString("", "title", "", l.Title)
		}
		if l.Length > 0 {
			w.WriteAttributeString("", "length", "", strconv.FormatInt(l.Length, 10))
		}
		w.WriteEndElement()
	}
}

func writePeople(w *xmlwriter.Writer, local string, people []Person) {
	for _, p := range people {
		if p.Name == "" {
			continue
		}
		w.WriteStartElement("", local, Namespace)
		w.WriteElementString("name", Namespace, p.Name)
		writeURL(w, "uri", p.URI)
		if p.Email != "" {
			w.WriteElementString("email", Namespace, p.Email)
		}
		w.WriteEndElement()
	}
}

func writeCategories(w *xmlwriter.Writer, categories []Category) {
	for _, c := range categories {
		if c.Term == "" {
			continue
		}
		w.WriteStartElement("", "category", Namespace)
		w.WriteAttributeString("", "term", "", c.Term)
		if c.Scheme != nil {
			w.WriteAttributeString("", "scheme", "", c.Scheme.String())
		}
		if c.Label != "" {
			w.WriteAttributeString("", "label", "", c.Label)
		}
		w.WriteEndElement()
	}
}

func writeURL(w *xmlwriter.Writer, local string, u *url.URL) {
	if u != nil {
		w.WriteElementString(local, Namespace, u.String())
	}
}

func writeDate(w *xmlwriter.Writer, local string, t time.Time) {
	if !t.IsZero() {
		w.WriteElementString(local, Namespace, syndication.FormatW3CDateTime(t))
	}
}
