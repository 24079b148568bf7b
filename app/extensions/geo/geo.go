// Package geo implements the W3C Basic Geo (WGS84 lat/long) vocabulary.
package geo

import (
	"cmp"
	"strconv"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

const (
	Prefix    = "geo"
	Namespace = "http://www.w3.org/2003/01/geo/wgs84_pos#"
)

var descriptor = syndication.Descriptor{
	Prefix:        Prefix,
	Namespace:     Namespace,
	Version:       "1.0",
	Documentation: "http://www.w3.org/2003/01/geo/",
	Name:          "Basic Geocoding",
	Description:   "Represents latitude and longitude using the WGS84 geodetic reference datum.",
}

// Context holds decimal degrees. A zero coordinate is treated as absent.
type Context struct {
	Latitude  float64
	Longitude float64
}

func (c *Context) Load(node *xmlnode.Node, r *xmlnode.Resolver) bool {
	loaded := false

	if v, ok := r.SelectValue(node, "geo:lat"); ok {
		if lat, ok := syndication.ParseDecimal(v); ok {
			c.Latitude = lat
			loaded = true
		}
	}
	if v, ok := r.SelectValue(node, "geo:long"); ok {
		if long, ok := syndication.ParseDecimal(v); ok {
			c.Longitude = long
			loaded = true
		}
	}

	return loaded
}

func (c *Context) WriteTo(w *xmlwriter.Writer, namespace string) {
	if c.Latitude != 0 {
		w.WriteElementString("lat", namespace, formatCoordinate(c.Latitude))
	}
	if c.Longitude != 0 {
		w.WriteElementString("long", namespace, formatCoordinate(c.Longitude))
	}
}

func (c *Context) Compare(o *Context) int {
	return cmp.Or(
		cmp.Compare(c.Latitude, o.Latitude),
		cmp.Compare(c.Longitude, o.Longitude),
	)
}

// formatCoordinate uses a fixed seven decimal places.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 7, 64)
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
