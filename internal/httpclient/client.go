package httpclient

import (
	"context"
	"io"
	"net/http"

	"github.com/aleister1102/docwatch/internal/common"

	"github.com/rs/zerolog"
)

// Client wraps an http.Client with the request conventions shared by the page
// fetcher, the HEAD prober, and the download engine.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger
}

// Response carries the fully read body of a successful request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Get performs a GET request and reads the entire body. Non-2xx statuses are
// returned as *common.HTTPError so callers can treat them as transient.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, common.WrapError(err, "failed to build request")
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, common.NewNetworkError(url, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, common.NewHTTPError(url, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.NewNetworkError(url, "failed to read response body", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// Head performs a HEAD request and returns the response headers.
func (c *Client) Head(ctx context.Context, url string) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, common.WrapError(err, "failed to build request")
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, common.NewNetworkError(url, "HEAD request failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, common.NewHTTPError(url, resp.StatusCode, resp.Status)
	}

	return resp.Header, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
}
