package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultURLTemplate is the quote download endpoint.
const DefaultURLTemplate = "https://query1.finance.yahoo.com/v7/finance/download/{symbol}?interval=1d&events=history"

// SymbolPlaceholder is replaced by the path-escaped ticker symbol.
const SymbolPlaceholder = "{symbol}"

// Client provides access to the quote download service.
type Client struct {
	urlTemplate string
	userAgent   string
	httpClient  *http.Client
	logger      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new quote client for urlTemplate. An empty template
// selects DefaultURLTemplate.
func NewClient(urlTemplate string, opts ...ClientOption) *Client {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	c := &Client{
		urlTemplate: urlTemplate,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// URL returns the download URL for symbol.
func (c *Client) URL(symbol string) string {
	return strings.ReplaceAll(c.urlTemplate, SymbolPlaceholder, url.PathEscape(symbol))
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
