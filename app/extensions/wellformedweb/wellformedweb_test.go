package wellformedweb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
)

func TestLoad(t *testing.T) {
	root, err := xmlnode.ParseFragment(`
<wfw:comment>http://example.com/comments/1</wfw:comment>
<wfw:commentRss>http://example.com/comments/1/rss</wfw:commentRss>`,
		xmlnode.Namespace{Prefix: Prefix, URI: Namespace})
	require.NoError(t, err)

	ext := New()
	require.True(t, ext.Load(root))
	assert.Equal(t, "http://example.com/comments/1", syndication.URLString(ext.Context.Comment))
	assert.Equal(t, "http://example.com/comments/1/rss", syndication.URLString(ext.Context.CommentRss))
}

func TestRoundTrip(t *testing.T) {
	original := New()
	original.Context.Comment, _ = syndication.ParseURL("http://example.com/c")
	original.Context.CommentRss, _ = syndication.ParseURL("http://example.com/c/rss")

	expected := `<comment xmlns="` + Namespace + `">http://example.com/c</comment>` + "\n" +
		`<commentRss xmlns="` + Namespace + `">http://example.com/c/rss</commentRss>`
	assert.Equal(t, expected, original.String())

	root, err := xmlnode.ParseFragment(original.String())
	require.NoError(t, err)

	loaded := New()
	require.True(t, loaded.Load(root))
	assert.True(t, original.Equal(loaded))
}

func TestEmpty(t *testing.T) {
	assert.Empty(t, New().String())
	assert.False(t, New().Load(&xmlnode.Node{Local: "item"}))
}
