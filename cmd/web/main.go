// cmd/web/main.go
//
// Storefront SEO server – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (host-wide file → .env fallback).
//
//  2. Load config (conf/global.yaml + UNI10_ overrides).
//
//  3. Start daily rotating logger (tees to console when running in a TTY).
//
//  4. Build the product lookup: MySQL when `database.dsn` is set, the
//     backend API otherwise.  A `vault:` password is resolved first.
//
//  5. Optionally wrap the lookup in a cache (Redis or in-process LRU).
//
//  6. Build generator → injector → shell cache → chi router.
//
//  7. Wrap with security headers and HTTPS enforcement, then serve until
//     SIGINT or SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/uni10/storefront-seo/internal/cache"
	"github.com/uni10/storefront-seo/internal/config"
	"github.com/uni10/storefront-seo/internal/database"
	"github.com/uni10/storefront-seo/internal/inject"
	"github.com/uni10/storefront-seo/internal/logger"
	"github.com/uni10/storefront-seo/internal/middleware"
	"github.com/uni10/storefront-seo/internal/product"
	"github.com/uni10/storefront-seo/internal/seo"
	"github.com/uni10/storefront-seo/internal/server"
	"github.com/uni10/storefront-seo/internal/shell"
	"github.com/uni10/storefront-seo/internal/vault"
)

const serverEnvPath = "/usr/local/etc/uni10/seo.env"

// loadEnv prefers the host-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Product lookup ──────────────────────────────────────────────
	//
	lookup, closeLookup, err := productLookup(ctx, cfg, logOut)
	if err != nil {
		logOut.Fatalw("product lookup", "err", err)
	}
	defer closeLookup()

	//
	// ── 2.  Generator, injector, shell ─────────────────────────────────
	//
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
	in := inject.New(lookup, gen, inject.WithPolicy(policy), inject.WithLogger(zap.L()))

	sh := shell.New(cfg.TemplateFile())
	if _, err := sh.Get(); err != nil {
		// Not fatal: the build may land after the server starts.
		logOut.Warnw("seo shell not readable yet", "path", sh.Path(), "err", err)
	}

	//
	// ── 3.  Router and server ──────────────────────────────────────────
	//
	router := newRouter(routerDeps{
		Lookup:      lookup,
		Shell:       sh,
		Injector:    in,
		BaseURL:     cfg.SEO.BaseURL,
		Passthrough: cfg.SEO.Passthrough,
		UploadsDir:  cfg.UploadsDir(),
		AssetsDir:   cfg.AssetsDir(),
	})
	handler := middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS, middleware.Security(router))

	srv := server.New(cfg.HTTP.ListenAddr, handler)
	if err := server.Run(ctx, srv, zap.L()); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
	logOut.Info("seo server stopped")
}

// productLookup opens the configured product source and, when cache.ttl
// is set, wraps it in a cache.  The returned func releases resources.
func productLookup(ctx context.Context, cfg *config.Config, logOut *zap.SugaredLogger) (product.Lookup, func(), error) {
	var (
		lookup  product.Lookup
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Database.DSN != "" {
		password := cfg.Database.Password
		if vault.IsRef(password) {
			vc, err := vault.New(ctx, zap.L())
			if err != nil {
				return nil, closeAll, fmt.Errorf("vault: %w", err)
			}
			if password, err = vc.Resolve(ctx, password, 0); err != nil {
				return nil, closeAll, fmt.Errorf("vault resolve db password: %w", err)
			}
		}
		dsn, err := database.WithPassword(cfg.Database.DSN, password)
		if err != nil {
			return nil, closeAll, err
		}

		logOut.Info("connecting to product DB …")
		db, err := database.OpenWithOptions(ctx, dsn, cfg.Database.MaxOpen, cfg.Database.MaxIdle)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() { _ = db.Close() })
		logOut.Info("product DB online")
		lookup = product.NewRepository(db)
	} else {
		logOut.Infow("serving products from API", "base_url", cfg.API.BaseURL)
		lookup = product.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	}

	if cfg.Cache.TTL <= 0 {
		return lookup, closeAll, nil
	}

	var store cache.Store
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, func() { _ = rc.Close() })
		store = rc
		logOut.Infow("product cache: redis", "addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)
	} else {
		store = cache.New(cfg.Cache.Capacity)
		logOut.Infow("product cache: memory", "capacity", cfg.Cache.Capacity, "ttl", cfg.Cache.TTL)
	}

	return product.NewCached(lookup, store, cfg.Cache.TTL, zap.L()), closeAll, nil
}
