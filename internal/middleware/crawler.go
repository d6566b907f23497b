// internal/middleware/crawler.go
//
// Crawler tagging.
//
// Counts page requests by agent class so we can see how much of the SEO
// traffic actually comes from search and link-preview bots.  The response
// is never altered; crawlers and browsers get the same document.
//
// Notes
// -----
// • UA parsing is isolated here so the rest of the code never sees
//   uasurfer enums.
package middleware

import (
	"context"
	"net/http"

	surfer "github.com/avct/uasurfer"
	"go.uber.org/zap"

	"github.com/uni10/storefront-seo/internal/metrics"
)

// Agent classes used as the metrics label.
const (
	AgentCrawler = "crawler"
	AgentBrowser = "browser"
)

type agentKey struct{}

// Crawler classifies the User-Agent, records it, and stores the class in
// the request context.
func Crawler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := ClassifyAgent(r.UserAgent())
		metrics.PageRequestsTotal.WithLabelValues(class).Inc()

		if class == AgentCrawler {
			zap.L().Debug("crawler request",
				zap.String("path", r.URL.Path),
				zap.String("ua", r.UserAgent()))
		}

		ctx := context.WithValue(r.Context(), agentKey{}, class)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClassifyAgent maps a raw User-Agent header to AgentCrawler or
// AgentBrowser.
func ClassifyAgent(raw string) string {
	if raw == "" {
		return AgentBrowser
	}
	if surfer.Parse(raw).IsBot() {
		return AgentCrawler
	}
	return AgentBrowser
}

// AgentFromContext returns the class stored by Crawler, or "".
func AgentFromContext(ctx context.Context) string {
	v, _ := ctx.Value(agentKey{}).(string)
	return v
}
