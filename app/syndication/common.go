package syndication

import (
	"net/url"
	"strings"

	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

// CommonAttributes holds xml:base and xml:lang, shared by every extensible entity.
type CommonAttributes struct {
	BaseURI  *url.URL
	Language string
}

func (c *CommonAttributes) LoadCommonAttributes(n *xmlnode.Node) bool {
	if n == nil {
		return false
	}

	loaded := false
	if v, ok := n.Attr(xmlnode.XMLNamespace, "base"); ok {
		if u, err := url.Parse(strings.TrimSpace(v)); err == nil {
			c.BaseURI = u
			loaded = true
		}
	}
	if v, ok := n.Attr(xmlnode.XMLNamespace, "lang"); ok && strings.TrimSpace(v) != "" {
		c.Language = strings.TrimSpace(v)
		loaded = true
	}
	return loaded
}

func (c *CommonAttributes) WriteCommonAttributes(w *xmlwriter.Writer) {
	if c.BaseURI != nil {
		w.WriteAttributeString("xml", "base", xmlnode.XMLNamespace, c.BaseURI.String())
	}
	if c.Language != "" {
		w.WriteAttributeString("xml", "lang", xmlnode.XMLNamespace, c.Language)
	}
}

// ResolveURL resolves ref against the entity's xml:base, if any.
func (c *CommonAttributes) ResolveURL(ref *url.URL) *url.URL {
	if ref == nil || c.BaseURI == nil {
		return ref
	}
	return c.BaseURI.ResolveReference(ref)
}
