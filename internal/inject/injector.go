// internal/inject/injector.go
//
// SEO injector: path → product → tag-set → rewritten HTML shell.
//
/*
Context
--------
Inject is the single entry point used by the runtime middleware:

  1. Extract the slug from /products/<id>.  No match → input unchanged and
     the lookup is never called.
  2. Resolve the product by slug, then by id.  Nothing found, or the
     lookup failed → input unchanged, warning logged.
  3. Generate the tag-set.
  4. Apply the rule table (rules.go) under the configured Policy.

ApplyProduct runs steps 3 and 4 for callers that already hold a product
(the dev proxy).  Apply runs step 4 alone.

Policies
--------
  • replace – title and description are replaced when present.  OG,
    Twitter, and canonical tags are replaced only when present.  Keywords
    is replaced, or inserted before </head> when absent.
  • upsert  – every tag is replaced when present, else inserted.
  • insert  – the rendered head block is inserted before </head>; existing
    tags are left alone.

Notes
-----
  • A panic anywhere below Inject is recovered; the caller always gets a
    complete document, either fully rewritten or the original.
  • Each substitution works on the whole string and is a no-op when its
    tag is missing.
*/
package inject

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/uni10/storefront-seo/internal/head"
	"github.com/uni10/storefront-seo/internal/metrics"
	"github.com/uni10/storefront-seo/internal/product"
	"github.com/uni10/storefront-seo/internal/routing"
	"github.com/uni10/storefront-seo/internal/seo"
)

// Policy selects how missing tags are handled.
type Policy string

const (
	PolicyReplace Policy = "replace"
	PolicyUpsert  Policy = "upsert"
	PolicyInsert  Policy = "insert"
)

// ParsePolicy maps a config string to a Policy.  Empty means replace.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyReplace, nil
	case PolicyReplace, PolicyUpsert, PolicyInsert:
		return p, nil
	default:
		return "", fmt.Errorf("unknown tag policy %q", s)
	}
}

// Injector rewrites the HTML shell for product pages.
type Injector struct {
	lookup product.Lookup
	gen    *seo.Generator
	policy Policy
	log    *zap.Logger
}

// Option customises an Injector.
type Option func(*Injector)

// WithPolicy overrides the default PolicyReplace.
func WithPolicy(p Policy) Option { return func(in *Injector) { in.policy = p } }

// WithLogger overrides zap.L().
func WithLogger(l *zap.Logger) Option { return func(in *Injector) { in.log = l } }

// New builds an Injector.  lookup may be nil when only ApplyProduct is used.
func New(lookup product.Lookup, gen *seo.Generator, opts ...Option) *Injector {
	in := &Injector{
		lookup: lookup,
		gen:    gen,
		policy: PolicyReplace,
		log:    zap.L(),
	}
	for _, o := range opts {
		o(in)
	}
	return in
}

// Inject returns doc with product tags applied, or doc unchanged when the
// path is not a product page, the product is unknown, or anything fails.
func (in *Injector) Inject(ctx context.Context, doc, path, baseURL string) (out string) {
	slug, ok := routing.ProductSlug(path)
	if !ok {
		metrics.InjectTotal.WithLabelValues(metrics.ResultPassthrough).Inc()
		return doc
	}

	defer in.recoverTo(&out, doc, path)

	p, err := product.Resolve(ctx, in.lookup, slug)
	if err != nil {
		metrics.LookupErrorsTotal.Inc()
		metrics.InjectTotal.WithLabelValues(metrics.ResultError).Inc()
		in.log.Warn("seo product lookup failed",
			zap.String("path", path), zap.String("slug", slug), zap.Error(err))
		return doc
	}
	if p == nil {
		metrics.InjectTotal.WithLabelValues(metrics.ResultNotFound).Inc()
		in.log.Warn("seo product not found",
			zap.String("path", path), zap.String("slug", slug))
		return doc
	}

	return in.ApplyProduct(doc, p, baseURL)
}

// ApplyProduct generates the tag-set for p and applies it to doc.
func (in *Injector) ApplyProduct(doc string, p *product.Product, baseURL string) (out string) {
	defer in.recoverTo(&out, doc, "")

	ts := in.gen.Generate(p, baseURL)
	out = in.Apply(doc, ts)
	metrics.InjectTotal.WithLabelValues(metrics.ResultInjected).Inc()
	return out
}

// Apply writes ts into doc according to the policy.
func (in *Injector) Apply(doc string, ts seo.TagSet) string {
	if in.policy == PolicyInsert {
		out, _ := insertBeforeHeadEnd(doc, head.Render(ts))
		return out
	}

	for _, r := range rules {
		val := r.value(ts)
		if val == "" && r.mode != modeAlways {
			continue
		}

		var replaced bool
		doc, replaced = r.replaceFirst(doc, val)
		if replaced {
			continue
		}

		if val != "" && (r.mode == modeInsert || in.policy == PolicyUpsert) {
			doc, _ = insertBeforeHeadEnd(doc, insertLine(r.build(val, "", false)))
		}
	}
	return doc
}

// recoverTo turns a panic into "return the original document".
func (in *Injector) recoverTo(out *string, doc, path string) {
	if rec := recover(); rec != nil {
		metrics.InjectTotal.WithLabelValues(metrics.ResultError).Inc()
		in.log.Error("seo injection panicked",
			zap.String("path", path), zap.Any("panic", rec))
		*out = doc
	}
}
