// Package metrics holds Prometheus instruments used across the SEO server.
// All collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Inject results.
const (
	ResultInjected    = "injected"
	ResultPassthrough = "passthrough"
	ResultNotFound    = "not_found"
	ResultError       = "error"
)

var (
	InjectTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seo_inject_total",
			Help: "Documents handled by the injector, by result.",
		}, []string{"result"})

	LookupErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "seo_lookup_errors_total",
			Help: "Product lookups that failed (timeout, network, malformed).",
		})

	TemplateLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "seo_template_load_errors_total",
			Help: "Failed attempts to read the HTML shell from disk.",
		})

	PageRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seo_page_requests_total",
			Help: "Page requests seen by the SEO middleware, by agent class.",
		}, []string{"agent"})

	ProductCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seo_product_cache_total",
			Help: "Product cache lookups, by result (hit, miss, error).",
		}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		InjectTotal,
		LookupErrorsTotal,
		TemplateLoadErrorsTotal,
		PageRequestsTotal,
		ProductCacheTotal,
	)
}
