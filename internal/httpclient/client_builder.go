package httpclient

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ClientBuilder provides a fluent interface for building HTTP clients
type ClientBuilder struct {
	timeout            time.Duration
	userAgent          string
	insecureSkipVerify bool
	logger             zerolog.Logger
}

// NewClientBuilder creates a new client builder with sane defaults
func NewClientBuilder(logger zerolog.Logger) *ClientBuilder {
	return &ClientBuilder{
		timeout: 120 * time.Second,
		logger:  logger,
	}
}

// WithTimeout sets the total request timeout
func (cb *ClientBuilder) WithTimeout(timeout time.Duration) *ClientBuilder {
	if timeout > 0 {
		cb.timeout = timeout
	}
	return cb
}

// WithUserAgent sets the User-Agent header applied to every request
func (cb *ClientBuilder) WithUserAgent(userAgent string) *ClientBuilder {
	cb.userAgent = userAgent
	return cb
}

// WithInsecureSkipVerify disables TLS certificate verification
func (cb *ClientBuilder) WithInsecureSkipVerify(skip bool) *ClientBuilder {
	cb.insecureSkipVerify = skip
	return cb
}

// Build creates the client instance
func (cb *ClientBuilder) Build() *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if cb.insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cb.timeout,
			Transport: transport,
		},
		userAgent: cb.userAgent,
		logger:    cb.logger.With().Str("component", "HTTPClient").Logger(),
	}
}
