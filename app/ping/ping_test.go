package ping

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlrpc"
)

func TestTrackbackSend(t *testing.T) {
	var received Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "argot-test", r.Header.Get("User-Agent"))

		msg, err := DecodeMessage(r.PostForm)
		if err != nil {
			require.NoError(t, Response{Error: true, Message: err.Error()}.Encode(w))
			return
		}
		received = msg
		if msg.BlogName == "spam" {
			require.NoError(t, Response{Error: true, Message: "blocked"}.Encode(w))
			return
		}
		require.NoError(t, Response{}.Encode(w))
	}))
	defer server.Close()

	client := NewTrackbackClient(server.Client(), "argot-test")
	source, _ := url.Parse("https://blog.example.com/posts/1")

	err := client.Send(context.Background(), server.URL+"/tb/1", Message{
		Title:    "Reply",
		Excerpt:  "I disagree",
		URL:      source,
		BlogName: "Example Blog",
	})
	require.NoError(t, err)
	assert.Equal(t, "Reply", received.Title)
	assert.Equal(t, "I disagree", received.Excerpt)
	assert.Equal(t, "Example Blog", received.BlogName)
	assert.Equal(t, source.String(), received.URL.String())

	err = client.Send(context.Background(), server.URL, Message{URL: source, BlogName: "spam"})
	assert.ErrorIs(t, err, ErrRejected)
	assert.ErrorContains(t, err, "blocked")
}

func TestTrackbackSendValidation(t *testing.T) {
	client := NewTrackbackClient(http.DefaultClient, "")
	source, _ := url.Parse("https://blog.example.com/posts/1")
	relative, _ := url.Parse("/posts/1")

	err := client.Send(context.Background(), "", Message{URL: source})
	assert.ErrorIs(t, err, syndication.ErrEmptyArgument)

	err = client.Send(context.Background(), "/tb/1", Message{URL: source})
	assert.ErrorIs(t, err, syndication.ErrRelativeURL)

	err = client.Send(context.Background(), "https://example.com/tb", Message{})
	assert.ErrorIs(t, err, syndication.ErrNilArgument)

	err = client.Send(context.Background(), "https://example.com/tb", Message{URL: relative})
	assert.ErrorIs(t, err, syndication.ErrRelativeURL)
}

func TestTrackbackResponse(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Response{}.Encode(&b))
	assert.Equal(t, `<?xml version="1.0" encoding="utf-8"?>
<response>
  <error>0</error>
</response>`, b.String())

	b.Reset()
	require.NoError(t, Response{Error: true, Message: "no such entry"}.Encode(&b))
	decoded, err := DecodeResponse(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, Response{Error: true, Message: "no such entry"}, decoded)

	_, err = DecodeResponse(strings.NewReader(`<response><error>2</error></response>`))
	assert.Error(t, err)

	_, err = DecodeResponse(strings.NewReader(`<result/>`))
	assert.Error(t, err)
}

func TestDecodeMessage(t *testing.T) {
	msg, err := DecodeMessage(url.Values{"url": {" https://example.com/a "}, "title": {" T "}})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", msg.URL.String())
	assert.Equal(t, "T", msg.Title)

	_, err = DecodeMessage(url.Values{"title": {"no url"}})
	assert.ErrorIs(t, err, syndication.ErrEmptyArgument)

	values := Message{URL: msg.URL, Excerpt: "x"}.Values()
	assert.Equal(t, "https://example.com/a", values.Get("url"))
	assert.Equal(t, "x", values.Get("excerpt"))
	assert.False(t, values.Has("title"))
}

func newPingbackServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/xmlrpc", func(w http.ResponseWriter, r *http.Request) {
		call, err := xmlrpc.DecodeMethodCall(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "pingback.ping", call.Method)
		require.Len(t, call.Params, 2)

		w.Header().Set("Content-Type", "text/xml")
		if strings.HasSuffix(call.Params[1].Text(), "/gone") {
			require.NoError(t, xmlrpc.MethodResponse{Fault: &xmlrpc.Fault{Code: 32, Message: "target does not exist"}}.Encode(w))
			return
		}
		reply := fmt.Sprintf("ping from %s registered", call.Params[0].Text())
		require.NoError(t, xmlrpc.MethodResponse{Params: []xmlrpc.Value{xmlrpc.StringValue(reply)}}.Encode(w))
	})
	mux.HandleFunc("/linked", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><link rel="stylesheet" href="/s.css"><link rel="pingback" href="/xmlrpc"></head><body>post</body></html>`)
	})
	mux.HandleFunc("/header", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pingback", "/xmlrpc")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html></html>`)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pingback", "/xmlrpc")
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>no pingback</title></head></html>`)
	})
	return httptest.NewServer(mux)
}

func TestPingbackDiscover(t *testing.T) {
	server := newPingbackServer(t)
	defer server.Close()
	client := NewPingbackClient(server.Client(), "argot-test")

	endpoint, err := client.Discover(context.Background(), server.URL+"/linked")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/xmlrpc", endpoint.String())

	endpoint, err = client.Discover(context.Background(), server.URL+"/header")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/xmlrpc", endpoint.String())

	_, err = client.Discover(context.Background(), server.URL+"/plain")
	assert.ErrorIs(t, err, ErrNoPingbackEndpoint)

	_, err = client.Discover(context.Background(), "not a url")
	assert.ErrorIs(t, err, syndication.ErrRelativeURL)
}

func TestPingbackPing(t *testing.T) {
	server := newPingbackServer(t)
	defer server.Close()
	client := NewPingbackClient(server.Client(), "argot-test")

	message, err := client.Ping(context.Background(), "https://blog.example.com/1", server.URL+"/linked")
	require.NoError(t, err)
	assert.Equal(t, "ping from https://blog.example.com/1 registered", message)

	_, err = client.Ping(context.Background(), "https://blog.example.com/1", server.URL+"/gone")
	var fault *xmlrpc.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, 32, fault.Code)

	_, err = client.Ping(context.Background(), "", server.URL+"/linked")
	assert.ErrorIs(t, err, syndication.ErrEmptyArgument)
}

func TestExcerptFromHTML(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Test Article</title></head>
<body>
	<header><h1>Site Header</h1><nav>Navigation</nav></header>
	<main>
		<article>
			<h1>Main Article Title</h1>
			<p>This is the main content of the article. It contains several paragraphs of meaningful text that should be extracted by the readability algorithm.</p>
			<p>This is another paragraph with more content. The readability algorithm should identify this as the main content area and extract it properly.</p>
			<p>Here is some more substantial content to ensure we meet the character threshold. This paragraph adds more context and information that would be valuable to readers.</p>
		</article>
	</main>
	<aside><div>Advertisement</div></aside>
	<footer><p>Copyright 2024</p></footer>
</body>
</html>`
	pageURL, _ := url.Parse("https://example.com/article")

	excerpt, err := ExcerptFromHTML([]byte(page), pageURL, 0)
	require.NoError(t, err)
	assert.Contains(t, excerpt.Text, "main content of the article")
	assert.NotContains(t, excerpt.Text, "Advertisement")
	assert.NotContains(t, excerpt.Text, "\n")

	short, err := ExcerptFromHTML([]byte(page), pageURL, 40)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(short.Text, "..."))
	assert.LessOrEqual(t, len([]rune(short.Text)), 43)

	_, err = ExcerptFromHTML(nil, pageURL, 0)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "one two...", truncate("one two three", 9))
	assert.Equal(t, "unbroken", truncate("unbroken", 0))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
}
