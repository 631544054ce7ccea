package api

import (
	"context"
	"fmt"
	"net/http"
)

// Transfer is one in-flight quote download. It is owned by a single caller
// and must be closed.
type Transfer struct {
	Symbol string
	resp   *http.Response
}

// StatusCode returns the HTTP status of the response.
func (t *Transfer) StatusCode() int {
	return t.resp.StatusCode
}

// Read reads the next bytes of the response body.
func (t *Transfer) Read(p []byte) (int, error) {
	return t.resp.Body.Read(p)
}

// Close releases the response body.
func (t *Transfer) Close() error {
	return t.resp.Body.Close()
}

// Open starts the download for symbol and returns once response headers
// have arrived. The body is left unread.
func (c *Client) Open(ctx context.Context, symbol string) (*Transfer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(symbol), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "text/csv")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	c.logger.Debug("quote transfer opened",
		"symbol", symbol,
		"status", resp.StatusCode,
	)

	return &Transfer{Symbol: symbol, resp: resp}, nil
}
