package xmlwriter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, fn func(w *Writer), opts ...Option) string {
	t.Helper()
	var b strings.Builder
	w := New(&b, opts...)
	fn(w)
	require.NoError(t, w.Flush())
	return b.String()
}

func TestWriteElementStringDefaultNamespace(t *testing.T) {
	out := render(t, func(w *Writer) {
		w.WriteElementString("lat", "urn:geo", "40.0000000")
		w.WriteElementString("long", "urn:geo", "-74.0000000")
	})

	assert.Equal(t, `<lat xmlns="urn:geo">40.0000000</lat>`+"\n"+`<long xmlns="urn:geo">-74.0000000</long>`, out)
}

func TestBoundPrefixIsReused(t *testing.T) {
	out := render(t, func(w *Writer) {
		w.WriteStartElement("", "rss", "")
		w.WriteNamespace("dc", "http://purl.org/dc/elements/1.1/")
		w.WriteElementString("creator", "http://purl.org/dc/elements/1.1/", "Jane")
		w.WriteEndElement()
	})

	expected := `<rss xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:creator>Jane</dc:creator>
</rss>`
	assert.Equal(t, expected, out)
}

func TestIndentation(t *testing.T) {
	out := render(t, func(w *Writer) {
		w.WriteStartDocument()
		w.WriteStartElement("", "a", "")
		w.WriteStartElement("", "b", "")
		w.WriteElementString("c", "", "text")
		w.WriteEndElement()
		w.WriteStartElement("", "empty", "")
		w.WriteEndElement()
		w.WriteEndElement()
	}, WithIndent("\t"))

	expected := "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<a>\n\t<b>\n\t\t<c>text</c>\n\t</b>\n\t<empty />\n</a>"
	assert.Equal(t, expected, out)
}

func TestWithoutFormatting(t *testing.T) {
	out := render(t, func(w *Writer) {
		w.WriteStartElement("", "a", "")
		w.WriteElementString("b", "", "1")
		w.WriteElementString("c", "", "2")
		w.WriteEndElement()
	}, WithoutFormatting())

	assert.Equal(t, "<a><b>1</b><c>2</c></a>", out)
}

func TestEscaping(t *testing.T) {
	out := render(t, func(w *Writer) {
		w.WriteStartElement("", "a", "")
		w.WriteAttributeString("", "title", "", `"quoted" & <tagged>`)
		w.WriteString("1 < 2 & 3 > 2")
		w.WriteEndElement()
	})

	assert.Equal(t, `<a title="&#34;quoted&#34; &amp; &lt;tagged&gt;">1 &lt; 2 &amp; 3 &gt; 2</a>`, out)
}

func TestWriteCData(t *testing.T) {
	out := render(t, func(w *Writer) {
		w.WriteStartElement("", "encoded", "")
		w.WriteCData("<p>a]]>b</p>")
		w.WriteEndElement()
	})

	assert.Equal(t, "<encoded><![CDATA[<p>a]]]]><![CDATA[>b</p>]]></encoded>", out)
}

func TestAttributeNamespaces(t *testing.T) {
	out := render(t, func(w *Writer) {
		w.WriteStartElement("", "ping", "urn:tb")
		w.WriteAttributeString("rdf", "resource", "urn:rdf", "http://example.com/")
		w.WriteAttributeString("xml", "lang", "http://www.w3.org/XML/1998/namespace", "en")
		w.WriteEndElement()
	})

	assert.Equal(t, `<ping xmlns="urn:tb" xmlns:rdf="urn:rdf" rdf:resource="http://example.com/" xml:lang="en" />`, out)
}

func TestGeneratedAttributePrefix(t *testing.T) {
	out := render(t, func(w *Writer) {
		w.WriteStartElement("", "a", "")
		w.WriteAttributeString("", "x", "urn:x", "1")
		w.WriteEndElement()
	})

	assert.Equal(t, `<a xmlns:p1="urn:x" p1:x="1" />`, out)
}

func TestErrorsAreSticky(t *testing.T) {
	var b strings.Builder
	w := New(&b)
	w.WriteEndElement()
	w.WriteElementString("a", "", "b")

	assert.ErrorIs(t, w.Flush(), ErrNoOpenElement)
}

func TestAttributeAfterContent(t *testing.T) {
	var b strings.Builder
	w := New(&b)
	w.WriteStartElement("", "a", "")
	w.WriteString("text")
	w.WriteAttributeString("", "late", "", "1")

	assert.ErrorIs(t, w.Flush(), ErrNoOpenElement)
}

func TestDepth(t *testing.T) {
	var b strings.Builder
	w := New(&b)
	assert.Equal(t, 0, w.Depth())
	w.WriteStartElement("", "a", "")
	w.WriteStartElement("", "b", "")
	assert.Equal(t, 2, w.Depth())
	w.WriteEndElement()
	assert.Equal(t, 1, w.Depth())
}
