package rss

import (
	"net/url"
	"time"

	"github.com/lysyi3m/argot/app/syndication"
)

const Version = "2.0"

// Feed is an RSS 2.0 document.
type Feed struct {
	syndication.CommonAttributes
	Version string
	Channel *Channel
}

type Channel struct {
	syndication.Collection
	syndication.CommonAttributes

	Title          string
	Link           *url.URL
	Description    string
	Language       string
	Copyright      string
	ManagingEditor string
	WebMaster      string
	PubDate        time.Time
	LastBuildDate  time.Time
	Categories     []Category
	Generator      string
	Docs           *url.URL
	TTL            int
	Image          *Image
	Items          []*Item
}

// ExtensibleChildren exposes the items for namespace collection.
func (c *Channel) ExtensibleChildren() []syndication.Extensible {
	out := make([]syndication.Extensible, 0, len(c.Items))
	for _, item := range c.Items {
		if item != nil {
			out = append(out, item)
		}
	}
	return out
}

type Item struct {
	syndication.Collection
	syndication.CommonAttributes

	Title       string
	Link        *url.URL
	Description string
	Author      string
	Categories  []Category
	Comments    *url.URL
	Enclosure   *Enclosure
	Guid        *Guid
	PubDate     time.Time
	Source      *Source
}

type Image struct {
	URL         *url.URL
	Title       string
	Link        *url.URL
	Width       int
	Height      int
	Description string
}

type Category struct {
	Domain string
	Value  string
}

type Enclosure struct {
	URL    *url.URL
	Length int64
	Type   string
}

type Guid struct {
	Value string
	// IsPermaLink defaults to true when the attribute is absent.
	IsPermaLink bool
}

type Source struct {
	URL   *url.URL
	Title string
}

func NewFeed() *Feed {
	return &Feed{Version: Version, Channel: &Channel{}}
}
