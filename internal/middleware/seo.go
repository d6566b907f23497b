// internal/middleware/seo.go
//
// Runtime SEO middleware.
//
// Context
// -------
// The SPA ships one index.html.  For every page route this middleware
// loads that shell (internal/shell), lets the injector tailor its <head>
// for the request path, and writes the result.  API calls, uploaded files,
// and built assets fall through to the next handler untouched.
//
// Response contract
// -----------------
//   • 200, `Content-Type: text/html; charset=UTF-8`, no-cache headers.
//   • 500 "template unavailable" when the shell cannot be read.  The
//     process keeps serving.
//   • Only GET and HEAD are handled; other methods fall through.
//
// Notes
// -----
// • Base URL comes from config when set, else from the request
//   (X-Forwarded-Proto aware).
// • Each page is logged at DEBUG with the agent class Crawler stored.
// • Oxford commas, two spaces after periods.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/uni10/storefront-seo/internal/shell"
)

// DefaultPassthrough lists path prefixes the SEO middleware never serves.
var DefaultPassthrough = []string{"/api/", "/uploads/", "/assets/", "/metrics"}

// Injector is the slice of inject.Injector the middleware needs.
type Injector interface {
	Inject(ctx context.Context, doc, path, baseURL string) string
}

// SEOOptions tunes the middleware.
type SEOOptions struct {
	BaseURL     string   // e.g. https://uni10.example; empty derives from request
	Passthrough []string // nil selects DefaultPassthrough
}

// SEO returns middleware serving the injected shell for page routes.
func SEO(sh *shell.Cache, in Injector, opts SEOOptions) func(http.Handler) http.Handler {
	pass := opts.Passthrough
	if pass == nil {
		pass = DefaultPassthrough
	}
	configured := strings.TrimRight(opts.BaseURL, "/")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			if hasAnyPrefix(r.URL.Path, pass) {
				next.ServeHTTP(w, r)
				return
			}

			doc, err := sh.Get()
			if err != nil {
				zap.L().Error("seo shell unavailable",
					zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(w, "template unavailable", http.StatusInternalServerError)
				return
			}

			base := configured
			if base == "" {
				base = requestBaseURL(r)
			}
			out := in.Inject(r.Context(), doc, r.URL.Path, base)
			zap.L().Debug("seo page served",
				zap.String("path", r.URL.Path),
				zap.String("agent", AgentFromContext(r.Context())),
				zap.Int("bytes", len(out)))

			h := w.Header()
			h.Set("Content-Type", "text/html; charset=UTF-8")
			h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
			h.Set("Content-Length", strconv.Itoa(len(out)))
			w.WriteHeader(http.StatusOK)
			if r.Method == http.MethodHead {
				return
			}
			_, _ = w.Write([]byte(out))
		})
	}
}

// requestBaseURL rebuilds scheme://host for the incoming request.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(p, ",")[0]))
	}
	return scheme + "://" + r.Host
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
