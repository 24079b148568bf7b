package ping

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

var ErrRejected = errors.New("trackback rejected")

// Message is a Trackback ping. URL identifies the entry that links to the target.
type Message struct {
	Title    string
	Excerpt  string
	URL      *url.URL
	BlogName string
}

// Values encodes the message as the form fields of a ping request.
func (m Message) Values() url.Values {
	v := url.Values{}
	v.Set("url", syndication.URLString(m.URL))
	if m.Title != "" {
		v.Set("title", m.Title)
	}
	if m.Excerpt != "" {
		v.Set("excerpt", m.Excerpt)
	}
	if m.BlogName != "" {
		v.Set("blog_name", m.BlogName)
	}
	return v
}

// DecodeMessage reads a received ping. Only url is required.
func DecodeMessage(values url.Values) (Message, error) {
	u, err := syndication.ParseAbsoluteURL(values.Get("url"))
	if err != nil {
		return Message{}, fmt.Errorf("invalid trackback url: %w", err)
	}
	return Message{
		Title:    strings.TrimSpace(values.Get("title")),
		Excerpt:  strings.TrimSpace(values.Get("excerpt")),
		URL:      u,
		BlogName: strings.TrimSpace(values.Get("blog_name")),
	}, nil
}

// Response is the body a Trackback endpoint answers with.
type Response struct {
	Error   bool
	Message string
}

func (r Response) Encode(w io.Writer) error {
	xw := xmlwriter.New(w)
	xw.WriteStartDocument()
	xw.WriteStartElement("", "response", "")
	if r.Error {
		xw.WriteElementString("error", "", "1")
	} else {
		xw.WriteElementString("error", "", "0")
	}
	if r.Message != "" {
		xw.WriteElementString("message", "", r.Message)
	}
	xw.WriteEndElement()
	if err := xw.Flush(); err != nil {
		return fmt.Errorf("failed to write trackback response: %w", err)
	}
	return nil
}

func DecodeResponse(r io.Reader) (Response, error) {
	root, err := xmlnode.Parse(r)
	if err != nil {
		return Response{}, err
	}
	if root.Local != "response" {
		return Response{}, fmt.Errorf("expected response element, got %s", root.Local)
	}

	code := root.ChildValue("", "error")
	switch code {
	case "0":
		return Response{Message: root.ChildValue("", "message")}, nil
	case "1":
		return Response{Error: true, Message: root.ChildValue("", "message")}, nil
	default:
		return Response{}, fmt.Errorf("invalid trackback error code %q", code)
	}
}

type TrackbackClient struct {
	httpClient *http.Client
	userAgent  string
}

func NewTrackbackClient(httpClient *http.Client, userAgent string) *TrackbackClient {
	return &TrackbackClient{httpClient: httpClient, userAgent: userAgent}
}

// Send posts msg to the Trackback endpoint target. A response with error 1 is
// returned as ErrRejected carrying the endpoint's message.
func (c *TrackbackClient) Send(ctx context.Context, target string, msg Message) error {
	endpoint, err := syndication.ParseAbsoluteURL(target)
	if err != nil {
		return fmt.Errorf("invalid trackback target: %w", err)
	}
	if msg.URL == nil {
		return fmt.Errorf("%w: message url", syndication.ErrNilArgument)
	}
	if !msg.URL.IsAbs() {
		return fmt.Errorf("%w: %s", syndication.ErrRelativeURL, msg.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(msg.Values().Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send trackback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	response, err := DecodeResponse(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to decode trackback response: %w", err)
	}
	if response.Error {
		return fmt.Errorf("%w: %s", ErrRejected, response.Message)
	}

	slog.Debug("Trackback sent", "target", endpoint.String(), "url", msg.URL.String())
	return nil
}
