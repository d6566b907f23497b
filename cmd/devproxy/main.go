// cmd/devproxy/main.go
//
// Dev-server transform proxy – entry point.
//
// Sits in front of the front-end dev server (`dev.upstream`) on
// `dev.listen_addr` and injects product tags into served HTML, fetching
// products from `api.base_url`.  Shares config, logging, and tag rules
// with cmd/web so what developers see matches production.
//
// Usage
// -----
//
//	UNI10_DEV__UPSTREAM=http://127.0.0.1:5173 \
//	UNI10_API__BASE_URL=http://127.0.0.1:4000 \
//	go run ./cmd/devproxy
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/uni10/storefront-seo/internal/config"
	"github.com/uni10/storefront-seo/internal/devproxy"
	"github.com/uni10/storefront-seo/internal/inject"
	"github.com/uni10/storefront-seo/internal/logger"
	"github.com/uni10/storefront-seo/internal/product"
	"github.com/uni10/storefront-seo/internal/seo"
	"github.com/uni10/storefront-seo/internal/server"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logOut, err := logger.New(cfg.Paths.Root, true)
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	if cfg.Dev.Upstream == "" || cfg.API.BaseURL == "" {
		logOut.Fatal("dev.upstream and api.base_url are required for the dev proxy")
	}

	policy, err := inject.ParsePolicy(cfg.SEO.TagPolicy)
	if err != nil {
		logOut.Fatalw("seo tag policy", "err", err)
	}
	gen := seo.NewGenerator(seo.Site{
		Name:               cfg.SEO.SiteName,
		DefaultTitle:       cfg.SEO.Defaults.Title,
		DefaultDescription: cfg.SEO.Defaults.Description,
		DefaultImage:       cfg.SEO.Defaults.Image,
		DefaultKeywords:    cfg.SEO.Defaults.Keywords,
	})
	in := inject.New(nil, gen, inject.WithPolicy(policy), inject.WithLogger(zap.L()))

	px, err := devproxy.New(cfg.Dev.Upstream,
		product.NewClient(cfg.API.BaseURL, cfg.API.Timeout), in,
		devproxy.Options{
			BaseURL:      cfg.SEO.BaseURL,
			FetchTimeout: cfg.API.Timeout,
			Logger:       zap.L(),
		})
	if err != nil {
		logOut.Fatalw("dev proxy", "err", err)
	}

	logOut.Infow("dev proxy ready", "upstream", cfg.Dev.Upstream, "api", cfg.API.BaseURL)
	if err := server.Run(ctx, server.New(cfg.Dev.ListenAddr, px), zap.L()); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
}
