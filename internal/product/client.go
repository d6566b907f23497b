// internal/product/client.go
//
// HTTP Lookup backed by the storefront JSON API.
//
// Context
// -------
// The dev proxy has no database handle.  It asks the backend instead:
//
//	GET {base}/api/products/{key}  →  { "data": Product | null }
//
// The backend resolves slug and id itself, so ByID reports nothing and
// Resolve costs one GET.
//
// Notes
// -----
// • Every call is bounded by Timeout (5 s by default).  No retries.
// • `data: null` and 404 both map to ErrNotFound.  Anything else that is
//   not a 200 with a decodable body is an error.
package product

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds one metadata fetch.
const DefaultTimeout = 5 * time.Second

// maxBody caps how much of a response we are willing to decode.
const maxBody = 1 << 20

// Envelope is the wire shape of /api/products/{key}.
type Envelope struct {
	Data  *Product `json:"data"`
	Error string   `json:"error,omitempty"`
}

// Client fetches products from the backend API.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a Client for base (e.g. "http://localhost:3000").  A
// zero timeout selects DefaultTimeout.
func NewClient(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// BySlug implements Lookup.
func (c *Client) BySlug(ctx context.Context, slug string) (*Product, error) {
	return c.Fetch(ctx, slug)
}

// ByID implements Lookup.  BySlug already queried the same endpoint, so
// there is nothing left to ask.
func (c *Client) ByID(context.Context, string) (*Product, error) {
	return nil, nil
}

// Fetch performs one GET against /api/products/{key}.
func (c *Client) Fetch(ctx context.Context, key string) (*Product, error) {
	endpoint := c.base + "/api/products/" + url.PathEscape(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	var env Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if env.Data == nil {
		return nil, ErrNotFound
	}
	return env.Data, nil
}
