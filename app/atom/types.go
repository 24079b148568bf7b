package atom

import (
	"net/url"
	"time"

	"github.com/lysyi3m/argot/app/syndication"
)

const Namespace = "http://www.w3.org/2005/Atom"

// Feed is an Atom 1.0 feed document.
type Feed struct {
	syndication.Collection
	syndication.CommonAttributes

	ID           string
	Title        Text
	Subtitle     Text
	Updated      time.Time
	Links        []Link
	Authors      []Person
	Contributors []Person
	Categories   []Category
	Generator    *Generator
	Icon         *url.URL
	Logo         *url.URL
	Rights       Text
	Entries      []*Entry
}

func (f *Feed) ExtensibleChildren() []syndication.Extensible {
	out := make([]syndication.Extensible, 0, len(f.Entries))
	for _, e := range f.Entries {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

type Entry struct {
	syndication.Collection
	syndication.CommonAttributes

	ID           string
	Title        Text
	Updated      time.Time
	Published    time.Time
	Summary      Text
	Content      *Content
	Links        []Link
	Authors      []Person
	Contributors []Person
	Categories   []Category
	Rights       Text
}

// Text is an Atom text construct. XHTML constructs are kept as their text content.
type Text struct {
	Type  string
	Value string
}

func (t Text) IsZero() bool {
	return t.Value == ""
}

type Person struct {
	Name  string
	URI   *url.URL
	Email string
}

type Link struct {
	Href     *url.URL
	Rel      string
	Type     string
	HrefLang string
	Title    string
	Length   int64
}

type Category struct {
	Term   string
	Scheme *url.URL
	Label  string
}

type Generator struct {
	Value   string
	URI     *url.URL
	Version string
}

// Content holds inline content or a reference to out-of-line content via Src.
type Content struct {
	Type  string
	Src   *url.URL
	Value string
}
