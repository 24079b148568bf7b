package syndication_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/argot/app/extensions"
	"github.com/lysyi3m/argot/app/extensions/dublincore"
	"github.com/lysyi3m/argot/app/extensions/geo"
	"github.com/lysyi3m/argot/app/extensions/slash"
	"github.com/lysyi3m/argot/app/extensions/trackback"
	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

type entity struct {
	syndication.Collection
	children []*entity
}

func (e *entity) ExtensibleChildren() []syndication.Extensible {
	out := make([]syndication.Extensible, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out
}

const itemDocument = `<rss xmlns:geo="http://www.w3.org/2003/01/geo/wgs84_pos#" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:x="urn:unknown">
  <item>
    <dc:creator>Jane</dc:creator>
    <geo:lat>41.0000000</geo:lat>
    <geo:long>-74.1200000</geo:long>
    <x:thing>ignored</x:thing>
    <slash:comments xmlns:slash="http://purl.org/rss/1.0/modules/slash/">12</slash:comments>
  </item>
</rss>`

func itemNode(t *testing.T) *xmlnode.Node {
	t.Helper()
	root, err := xmlnode.ParseString(itemDocument)
	require.NoError(t, err)
	item := root.Child("", "item")
	require.NotNil(t, item)
	return item
}

func TestNewAdapterValidation(t *testing.T) {
	_, err := syndication.NewAdapter(nil, extensions.DefaultLoadSettings())
	assert.ErrorIs(t, err, syndication.ErrNilArgument)

	_, err = syndication.NewAdapter(itemNode(t), syndication.LoadSettings{})
	assert.ErrorIs(t, err, syndication.ErrNilArgument)

	settings := extensions.DefaultLoadSettings()
	settings.RetrievalLimit = -1
	_, err = syndication.NewAdapter(itemNode(t), settings)
	assert.Error(t, err)
}

func TestCandidatesAutoDetect(t *testing.T) {
	adapter, err := syndication.NewAdapter(itemNode(t), extensions.DefaultLoadSettings())
	require.NoError(t, err)

	assert.Equal(t, []string{geo.Namespace, dublincore.Namespace, slash.Namespace}, adapter.Candidates())
}

func TestCandidatesSupportedOnly(t *testing.T) {
	settings := extensions.DefaultLoadSettings()
	settings.AutoDetectExtensions = false
	settings.SupportedExtensions = []string{"DC", trackback.Namespace, "unknown", dublincore.Namespace}

	adapter, err := syndication.NewAdapter(itemNode(t), settings)
	require.NoError(t, err)

	assert.Equal(t, []string{dublincore.Namespace, trackback.Namespace}, adapter.Candidates())
}

func TestCandidatesBothSources(t *testing.T) {
	settings := extensions.DefaultLoadSettings()
	settings.SupportedExtensions = []string{"trackback", "geo"}

	adapter, err := syndication.NewAdapter(itemNode(t), settings)
	require.NoError(t, err)

	assert.Equal(t, []string{geo.Namespace, dublincore.Namespace, slash.Namespace, trackback.Namespace}, adapter.Candidates())
}

func TestFill(t *testing.T) {
	settings := extensions.DefaultLoadSettings()
	settings.SupportedExtensions = []string{"trackback"}

	adapter, err := syndication.NewAdapter(itemNode(t), settings)
	require.NoError(t, err)

	e := &entity{}
	require.NoError(t, adapter.Fill(e))

	exts := e.Extensions()
	require.Len(t, exts, 3, "trackback has no fields in the item and must not be attached")
	assert.IsType(t, &geo.Extension{}, exts[0])
	assert.IsType(t, &dublincore.Extension{}, exts[1])
	assert.IsType(t, &slash.Extension{}, exts[2])

	g, ok := syndication.Find[*geo.Extension](e)
	require.True(t, ok)
	assert.Equal(t, 41.0, g.Context.Latitude)
	assert.Equal(t, -74.12, g.Context.Longitude)

	s, ok := syndication.Find[*slash.Extension](e)
	require.True(t, ok)
	assert.Equal(t, 12, s.Context.Comments)

	assert.ErrorIs(t, adapter.Fill(nil), syndication.ErrNilArgument)
}

func TestFillWithoutMatches(t *testing.T) {
	root, err := xmlnode.ParseString(`<item><title>plain</title></item>`)
	require.NoError(t, err)

	adapter, err := syndication.NewAdapter(root, extensions.DefaultLoadSettings())
	require.NoError(t, err)

	e := &entity{}
	require.NoError(t, adapter.Fill(e))
	assert.False(t, e.HasExtensions())
}

func TestWriteExtensionsTo(t *testing.T) {
	g := geo.New()
	g.Context.Latitude = 40
	d := dublincore.New()
	d.Context.Creator = "Jane"

	var b strings.Builder
	w := xmlwriter.New(&b)
	require.NoError(t, syndication.WriteExtensionsTo([]syndication.Extension{d, g}, w))
	require.NoError(t, w.Flush())

	assert.Equal(t,
		`<creator xmlns="http://purl.org/dc/elements/1.1/">Jane</creator>`+"\n"+
			`<lat xmlns="http://www.w3.org/2003/01/geo/wgs84_pos#">40.0000000</lat>`,
		b.String())

	assert.ErrorIs(t, syndication.WriteExtensionsTo(nil, nil), syndication.ErrNilArgument)
}

func TestCollectNamespaces(t *testing.T) {
	channel := &entity{}
	channel.AddExtension(dublincore.New())

	item := &entity{}
	item.AddExtension(geo.New())
	item.AddExtension(trackback.New())
	item.AddExtension(dublincore.New())
	channel.children = []*entity{item}

	decls := syndication.CollectNamespaces(channel)
	assert.Equal(t, []xmlnode.Namespace{
		{Prefix: "dc", URI: dublincore.Namespace},
		{Prefix: "geo", URI: geo.Namespace},
		{Prefix: "trackback", URI: trackback.Namespace},
		{Prefix: "rdf", URI: trackback.RDFNamespace},
	}, decls)

	assert.Equal(t, decls, syndication.CollectNamespaces(channel), "namespace set must be stable")
}

func TestCollectNamespacesPrefixCollision(t *testing.T) {
	e := &entity{}
	e.AddExtension(newFake("geo", "urn:other-geo"))
	e.AddExtension(geo.New())
	e.AddExtension(newFake("geo", "urn:third-geo"))

	assert.Equal(t, []xmlnode.Namespace{
		{Prefix: "geo", URI: "urn:other-geo"},
		{Prefix: "geo2", URI: geo.Namespace},
		{Prefix: "geo3", URI: "urn:third-geo"},
	}, syndication.CollectNamespaces(e))
}

func TestWriteNamespaces(t *testing.T) {
	var b strings.Builder
	w := xmlwriter.New(&b)
	w.WriteStartElement("", "rss", "")
	syndication.WriteNamespaces(w, []xmlnode.Namespace{
		{Prefix: "dc", URI: dublincore.Namespace},
		{Prefix: "geo", URI: geo.Namespace},
	})
	w.WriteEndElement()
	require.NoError(t, w.Flush())

	assert.Equal(t, `<rss xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:geo="http://www.w3.org/2003/01/geo/wgs84_pos#" />`, b.String())
}
