package feed

import (
	"io"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
)

// Document processing types

type Format string

const (
	FormatRSS  Format = "rss"
	FormatAtom Format = "atom"
)

func (f Format) ContentType() string {
	switch f {
	case FormatRSS:
		return "application/rss+xml; charset=utf-8"
	case FormatAtom:
		return "application/atom+xml; charset=utf-8"
	default:
		return "application/xml; charset=utf-8"
	}
}

// Document is a loaded RSS or Atom feed.
type Document interface {
	Format() Format
	Title() string
	ItemCount() int
	Entries() []Entry
	// Filter drops every item for which keep returns false and returns the number dropped.
	Filter(keep func(Entry) bool) int
	Save(w io.Writer) error
	// Namespaces lists the extension namespaces declared on save.
	Namespaces() []xmlnode.Namespace
}

// Entry is the filterable view of an RSS item or Atom entry.
type Entry struct {
	Title       string
	Link        string
	Description string
	Content     string
	Authors     []string
	Categories  []string
}

// Configuration types

type Config struct {
	Name     string         `yaml:"-"` // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
	Notify   []ConfigNotify `yaml:"notify"`
}

type ConfigSettings struct {
	Enabled              bool     `yaml:"enabled"`
	RefreshInterval      int      `yaml:"refresh_interval"` // seconds
	Timeout              int      `yaml:"timeout"`          // seconds
	RetrievalLimit       int      `yaml:"retrieval_limit"`  // 0 reads every item
	AutoDetectExtensions *bool    `yaml:"auto_detect_extensions"`
	SupportedExtensions  []string `yaml:"supported_extensions"` // namespace URIs or prefixes
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

type NotifyType string

const (
	NotifyTrackback NotifyType = "trackback"
	NotifyPingback  NotifyType = "pingback"
)

// ConfigNotify is an outgoing ping sent for every new entry of the resource.
// Target is the Trackback endpoint or the pingback target page.
type ConfigNotify struct {
	Type   NotifyType `yaml:"type"`
	Target string     `yaml:"target"`
}

// LoadSettings converts the resource settings into extension load settings
// backed by registry.
func (c *Config) LoadSettings(registry *syndication.Registry) syndication.LoadSettings {
	settings := syndication.DefaultLoadSettings(registry)
	if c.Settings.AutoDetectExtensions != nil {
		settings.AutoDetectExtensions = *c.Settings.AutoDetectExtensions
	}
	settings.SupportedExtensions = append([]string(nil), c.Settings.SupportedExtensions...)
	settings.RetrievalLimit = c.Settings.RetrievalLimit
	return settings
}
