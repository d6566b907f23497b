// internal/devproxy/proxy.go
//
// Dev-server transform proxy.
//
// Context
// -------
// During front-end development the SPA is served by its own dev server.
// This proxy sits in front of it and, for product pages, rewrites the
// served index.html the same way the production middleware does.  The
// product comes from the backend API rather than the database, so the
// proxy needs nothing but two URLs.
//
// Flow
// ----
//  1. Forward the request upstream, asking for identity encoding so the
//     body can be rewritten without decompressing.
//  2. On a 200 text/html response for /products/<slug>, buffer the body
//     and fetch the product with a bounded timeout.  The slug comes from
//     the inbound path, so an upstream mounted under a base path works.
//  3. Apply the tags, fix Content-Length, and hand the body on.
//
// Any failure in step 2 or 3 leaves the upstream body untouched and logs
// at warn level.  The proxy never turns a good upstream response into an
// error.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package devproxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uni10/storefront-seo/internal/product"
	"github.com/uni10/storefront-seo/internal/routing"
)

// DefaultFetchTimeout bounds each product API call.
const DefaultFetchTimeout = 5 * time.Second

// Fetcher loads one product by slug or id from the backend API.
type Fetcher interface {
	Fetch(ctx context.Context, key string) (*product.Product, error)
}

// Applier writes a product's tags into an HTML document.
type Applier interface {
	ApplyProduct(doc string, p *product.Product, baseURL string) string
}

// Options configures a Proxy.
type Options struct {
	BaseURL      string        // canonical origin; empty uses the request Host
	FetchTimeout time.Duration // zero selects DefaultFetchTimeout
	Logger       *zap.Logger   // nil selects zap.L()
}

// Proxy forwards to the dev server and injects product tags on the way back.
type Proxy struct {
	rp      *httputil.ReverseProxy
	fetch   Fetcher
	apply   Applier
	base    string
	timeout time.Duration
	log     *zap.Logger
}

// New builds a proxy for upstream.
func New(upstream string, f Fetcher, a Applier, opts Options) (*Proxy, error) {
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("devproxy: invalid upstream %q: %w", upstream, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("devproxy: upstream %q needs scheme and host", upstream)
	}

	p := &Proxy{
		fetch:   f,
		apply:   a,
		base:    strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.FetchTimeout,
		log:     opts.Logger,
	}
	if p.timeout <= 0 {
		p.timeout = DefaultFetchTimeout
	}
	if p.log == nil {
		p.log = zap.L()
	}

	rp := httputil.NewSingleHostReverseProxy(target)
	director := rp.Director
	rp.Director = func(r *http.Request) {
		director(r)
		r.Header.Set("Accept-Encoding", "identity")
	}
	rp.ModifyResponse = p.modifyResponse
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		p.log.Error("devproxy upstream failed",
			zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}
	p.rp = rp

	return p, nil
}

// inboundPathKey holds the client's request path.  The outgoing request
// carries the upstream's base path joined in front of it.
type inboundPathKey struct{}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithValue(r.Context(), inboundPathKey{}, r.URL.Path)
	p.rp.ServeHTTP(w, r.WithContext(ctx))
}

func inboundPath(r *http.Request) string {
	if v, ok := r.Context().Value(inboundPathKey{}).(string); ok {
		return v
	}
	return r.URL.Path
}

func (p *Proxy) modifyResponse(resp *http.Response) error {
	if resp.StatusCode != http.StatusOK || !isHTML(resp.Header.Get("Content-Type")) {
		return nil
	}
	if ce := resp.Header.Get("Content-Encoding"); ce != "" && ce != "identity" {
		return nil
	}
	slug, ok := routing.ProductSlug(inboundPath(resp.Request))
	if !ok {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("devproxy: read upstream body: %w", err)
	}

	out := p.transform(resp.Request, slug, string(body))

	resp.Body = io.NopCloser(bytes.NewReader([]byte(out)))
	resp.ContentLength = int64(len(out))
	resp.Header.Set("Content-Length", strconv.Itoa(len(out)))
	return nil
}

// transform returns doc with tags applied, or doc unchanged on any failure.
func (p *Proxy) transform(r *http.Request, slug, doc string) string {
	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	prod, err := p.fetch.Fetch(ctx, slug)
	if err != nil {
		p.log.Warn("devproxy product fetch failed",
			zap.String("slug", slug), zap.Error(err))
		return doc
	}
	if prod == nil {
		p.log.Warn("devproxy product missing", zap.String("slug", slug))
		return doc
	}

	base := p.base
	if base == "" {
		base = "http://" + r.Host
	}
	return p.apply.ApplyProduct(doc, prod, base)
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/html"
}
