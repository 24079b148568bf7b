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

	"github.com/PuerkitoBio/goquery"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlrpc"
)

var ErrNoPingbackEndpoint = errors.New("target does not advertise a pingback endpoint")

const pingbackMethod = "pingback.ping"

type PingbackClient struct {
	httpClient *http.Client
	userAgent  string
}

func NewPingbackClient(httpClient *http.Client, userAgent string) *PingbackClient {
	return &PingbackClient{httpClient: httpClient, userAgent: userAgent}
}

// Discover finds the pingback server of target from the X-Pingback header or,
// failing that, a <link rel="pingback"> element in the page.
func (c *PingbackClient) Discover(ctx context.Context, target string) (*url.URL, error) {
	targetURL, err := syndication.ParseAbsoluteURL(target)
	if err != nil {
		return nil, fmt.Errorf("invalid pingback target: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch target: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if header := resp.Header.Get("X-Pingback"); header != "" {
		return resolveEndpoint(targetURL, header)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "html") {
		return nil, ErrNoPingbackEndpoint
	}
	return discoverLink(targetURL, resp.Body)
}

func discoverLink(base *url.URL, body io.Reader) (*url.URL, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target page: %w", err)
	}

	var href string
	doc.Find("link[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		for _, r := range strings.Fields(rel) {
			if strings.EqualFold(r, "pingback") {
				href, _ = s.Attr("href")
				return false
			}
		}
		return true
	})
	if strings.TrimSpace(href) == "" {
		return nil, ErrNoPingbackEndpoint
	}
	return resolveEndpoint(base, href)
}

func resolveEndpoint(base *url.URL, ref string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, fmt.Errorf("invalid pingback endpoint: %w", err)
	}
	return base.ResolveReference(u), nil
}

// Ping notifies target that source links to it. The server's message is returned.
func (c *PingbackClient) Ping(ctx context.Context, source, target string) (string, error) {
	if _, err := syndication.ParseAbsoluteURL(source); err != nil {
		return "", fmt.Errorf("invalid pingback source: %w", err)
	}

	endpoint, err := c.Discover(ctx, target)
	if err != nil {
		return "", err
	}

	client, err := xmlrpc.NewClient(endpoint.String(), c.httpClient, c.userAgent)
	if err != nil {
		return "", err
	}

	result, err := client.Call(ctx, pingbackMethod, xmlrpc.StringValue(source), xmlrpc.StringValue(target))
	if err != nil {
		return "", fmt.Errorf("failed to ping %s: %w", endpoint, err)
	}

	slog.Debug("Pingback sent", "endpoint", endpoint.String(), "source", source, "target", target)
	return result.Text(), nil
}
