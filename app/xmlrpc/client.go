package xmlrpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/lysyi3m/argot/app/syndication"
)

var ErrEmptyResponse = errors.New("method response has no params")

type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
	userAgent  string
}

func NewClient(endpoint string, httpClient *http.Client, userAgent string) (*Client, error) {
	u, err := syndication.ParseAbsoluteURL(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid XML-RPC endpoint: %w", err)
	}
	if httpClient == nil {
		return nil, fmt.Errorf("%w: http client", syndication.ErrNilArgument)
	}
	return &Client{endpoint: u, httpClient: httpClient, userAgent: userAgent}, nil
}

func (c *Client) Endpoint() *url.URL {
	return c.endpoint
}

// Call invokes method and returns the first response param. A fault response
// is returned as a *Fault error.
func (c *Client) Call(ctx context.Context, method string, params ...Value) (Value, error) {
	var body bytes.Buffer
	if err := (MethodCall{Method: method, Params: params}).Encode(&body); err != nil {
		return Value{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), &body)
	if err != nil {
		return Value{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Value{}, fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Value{}, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "xml") {
		return Value{}, fmt.Errorf("unexpected content type: %s", ct)
	}

	response, err := DecodeMethodResponse(resp.Body)
	if err != nil {
		return Value{}, fmt.Errorf("failed to decode response of %s: %w", method, err)
	}
	if response.Fault != nil {
		slog.Debug("XML-RPC fault", "endpoint", c.endpoint.String(), "method", method, "code", response.Fault.Code)
		return Value{}, response.Fault
	}
	if len(response.Params) == 0 {
		return Value{}, ErrEmptyResponse
	}
	return response.Params[0], nil
}
