package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uni10/storefront-seo/internal/middleware"
	"github.com/uni10/storefront-seo/internal/product"
	"github.com/uni10/storefront-seo/internal/shell"
)

// routerDeps is everything newRouter wires together.
type routerDeps struct {
	Lookup      product.Lookup
	Shell       *shell.Cache
	Injector    middleware.Injector
	BaseURL     string
	Passthrough []string
	UploadsDir  string
	AssetsDir   string
}

// newRouter mounts metrics, the product API, static files, and the SEO
// page handler.  Every path the other routes do not claim is a page.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/api/products", product.Routes(d.Lookup))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadsDir))))
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(d.AssetsDir))))

	seo := middleware.SEO(d.Shell, d.Injector, middleware.SEOOptions{
		BaseURL:     d.BaseURL,
		Passthrough: d.Passthrough,
	})
	r.With(middleware.Crawler, seo).Handle("/*", http.NotFoundHandler())

	return r
}
