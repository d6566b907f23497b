// internal/inject/injector_test.go
//
// Unit-tests for the SEO injector.
//
// Context
// -------
// fakeLookup stands in for the product repository.  It records every call
// so tests can assert the lookup was (or was not) consulted.  HTML output
// is checked both as raw text (byte equality, escaping) and through goquery
// (tag presence and attribute values).
//
// Run: go test ./internal/inject -v

package inject

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/uni10/storefront-seo/internal/product"
	"github.com/uni10/storefront-seo/internal/seo"
)

const base = "https://uni10.example"

const shell = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <title>uni10</title>
    <meta name="description" content="old">
    <meta property="og:title" content="uni10" />
    <meta property="og:description" content="old" />
    <meta property="og:image" content="/og-image.png" />
    <meta name="twitter:title" content="uni10" />
    <meta name="twitter:description" content="old" />
    <link rel="canonical" href="https://uni10.example/" />
  </head>
  <body><div id="root"></div></body>
</html>
`

// fakeLookup serves a fixed set of products keyed by slug and id.
type fakeLookup struct {
	products []*product.Product
	err      error
	panicMsg string
	calls    []string
}

func (f *fakeLookup) BySlug(_ context.Context, slug string) (*product.Product, error) {
	f.calls = append(f.calls, "slug:"+slug)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, product.ErrNotFound
}

func (f *fakeLookup) ByID(_ context.Context, id string) (*product.Product, error) {
	f.calls = append(f.calls, "id:"+id)
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

var blueMug = &product.Product{
	ID:          "p-1",
	Slug:        "blue-mug",
	Name:        "Blue Mug",
	Description: "A sturdy stoneware mug.",
	ImageURL:    "/uploads/blue-mug.jpg",
	Category:    "Kitchen",
}

func newInjector(l product.Lookup, opts ...Option) *Injector {
	return New(l, seo.NewGenerator(seo.Site{Name: "uni10"}), opts...)
}

func parse(t *testing.T, doc string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	require.NoError(t, err)
	return d
}

func attr(t *testing.T, d *goquery.Document, sel, name string) string {
	t.Helper()
	v, ok := d.Find(sel).First().Attr(name)
	require.True(t, ok, "missing %s", sel)
	return v
}

func TestInjectNonProductPathIsIdentity(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/", "/about", "/products", "/products/", "/cart?x=1"} {
		l := &fakeLookup{products: []*product.Product{blueMug}}
		out := newInjector(l).Inject(context.Background(), shell, path, base)
		require.Equal(t, shell, out, "path %s", path)
		require.Empty(t, l.calls, "lookup must not run for %s", path)
	}
}

func TestInjectProductPage(t *testing.T) {
	t.Parallel()

	l := &fakeLookup{products: []*product.Product{blueMug}}
	out := newInjector(l).Inject(context.Background(), shell, "/products/blue-mug", base)

	require.Contains(t, out, "<title>Blue Mug | uni10</title>")
	require.NotContains(t, out, `content="old"`)

	d := parse(t, out)
	require.Equal(t, "A sturdy stoneware mug.", attr(t, d, `meta[name="description"]`, "content"))
	require.Equal(t, "Blue Mug | uni10", attr(t, d, `meta[property="og:title"]`, "content"))
	require.Equal(t, "A sturdy stoneware mug.", attr(t, d, `meta[property="og:description"]`, "content"))
	require.Equal(t, base+"/uploads/blue-mug.jpg", attr(t, d, `meta[property="og:image"]`, "content"))
	require.Equal(t, "Blue Mug | uni10", attr(t, d, `meta[name="twitter:title"]`, "content"))
	require.Equal(t, base+"/products/blue-mug", attr(t, d, `link[rel="canonical"]`, "href"))
	require.Equal(t, "Blue Mug, Kitchen, uni10", attr(t, d, `meta[name="keywords"]`, "content"))

	require.Equal(t, []string{"slug:blue-mug"}, l.calls)
}

func TestInjectKeywordsInsertedBeforeHeadEnd(t *testing.T) {
	t.Parallel()

	l := &fakeLookup{products: []*product.Product{blueMug}}
	out := newInjector(l).Inject(context.Background(), shell, "/products/blue-mug", base)

	require.Contains(t, out,
		"    <meta name=\"keywords\" content=\"Blue Mug, Kitchen, uni10\">\n</head>")
}

func TestInjectUnknownSlugIsByteIdentical(t *testing.T) {
	t.Parallel()

	l := &fakeLookup{products: []*product.Product{blueMug}}
	out := newInjector(l).Inject(context.Background(), shell, "/products/unknown-slug", base)

	require.Equal(t, shell, out)
	require.Equal(t, []string{"slug:unknown-slug", "id:unknown-slug"}, l.calls)
}

func TestInjectFallsBackToID(t *testing.T) {
	t.Parallel()

	l := &fakeLookup{products: []*product.Product{blueMug}}
	out := newInjector(l).Inject(context.Background(), shell, "/products/p-1", base)

	require.Contains(t, out, "<title>Blue Mug | uni10</title>")
	require.Equal(t, []string{"slug:p-1", "id:p-1"}, l.calls)
}

func TestInjectLookupErrorLogsWarning(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	l := &fakeLookup{err: context.DeadlineExceeded}
	in := newInjector(l, WithLogger(zap.New(core)))

	out := in.Inject(context.Background(), shell, "/products/blue-mug", base)

	require.Equal(t, shell, out)
	entries := logs.FilterMessage("seo product lookup failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Contains(t, entries[0].ContextMap()["error"], "deadline exceeded")
	require.Equal(t, "blue-mug", entries[0].ContextMap()["slug"])
}

func TestInjectRecoversFromPanic(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	l := &fakeLookup{panicMsg: "driver exploded"}
	in := newInjector(l, WithLogger(zap.New(core)))

	var out string
	require.NotPanics(t, func() {
		out = in.Inject(context.Background(), shell, "/products/blue-mug", base)
	})
	require.Equal(t, shell, out)
	require.Equal(t, 1, logs.FilterMessage("seo injection panicked").Len())
}

func TestInjectIsIdempotent(t *testing.T) {
	t.Parallel()

	l := &fakeLookup{products: []*product.Product{blueMug}}
	in := newInjector(l)

	once := in.Inject(context.Background(), shell, "/products/blue-mug", base)
	twice := in.Inject(context.Background(), once, "/products/blue-mug", base)

	require.Equal(t, once, twice)
	require.Equal(t, 1, strings.Count(twice, `name="keywords"`))
}

func TestInjectIsIdempotentWithAngleBrackets(t *testing.T) {
	t.Parallel()

	scale := &product.Product{
		ID:          "p-2",
		Slug:        "scale",
		Name:        "Scale <XL>",
		Description: "Holds 5 &gt; 3 kg",
		Keywords:    "scale, >3kg",
	}
	l := &fakeLookup{products: []*product.Product{scale}}
	in := newInjector(l)

	once := in.Inject(context.Background(), shell, "/products/scale", base)
	twice := in.Inject(context.Background(), once, "/products/scale", base)

	require.Equal(t, once, twice)
	require.Contains(t, once, `<meta name="description" content="Holds 5 &gt; 3 kg">`)
	require.Contains(t, once, `<meta name="keywords" content="scale, &gt;3kg">`)
	require.Equal(t, 1, strings.Count(twice, `name="keywords"`))

	d := parse(t, twice)
	require.Equal(t, "Holds 5 > 3 kg", attr(t, d, `meta[name="description"]`, "content"))
	require.Equal(t, "Scale <XL> | uni10", d.Find("title").Text())
}

func TestApplyReplacesTagWithBracketInValue(t *testing.T) {
	t.Parallel()

	doc := "<head>\n" +
		`<meta name="description" content="a > b">` + "\n" +
		`<link href='/x?a>b' rel="canonical" />` + "\n" +
		"</head>"
	out := newInjector(nil, WithPolicy(PolicyReplace)).Apply(doc, seo.TagSet{
		Description:  "new",
		CanonicalURL: base + "/products/blue-mug",
	})

	require.Equal(t, "<head>\n"+
		`<meta name="description" content="new">`+"\n"+
		`<link rel="canonical" href="`+base+`/products/blue-mug" />`+"\n"+
		"</head>", out)
}

func TestApplyIgnoresPrefixedAttributes(t *testing.T) {
	t.Parallel()

	doc := "<head>\n" +
		`<meta data-name="description" content="keep">` + "\n" +
		`<meta name="description" content="old">` + "\n" +
		"</head>"
	out := newInjector(nil).Apply(doc, seo.TagSet{Description: "new"})

	require.Contains(t, out, `<meta data-name="description" content="keep">`)
	require.Contains(t, out, `<meta name="description" content="new">`)
	require.NotContains(t, out, `content="old"`)
}

func TestApplyTitleMarkupCannotEscape(t *testing.T) {
	t.Parallel()

	p := &product.Product{Slug: "evil", Name: "Mug </title><script>x</script>"}
	in := newInjector(nil)

	once := in.ApplyProduct(shell, p, base)
	twice := in.ApplyProduct(once, p, base)
	require.Equal(t, once, twice)

	require.NotContains(t, once, "<script>")
	require.Equal(t, 1, strings.Count(once, "</title>"))

	d := parse(t, once)
	require.Zero(t, d.Find("head script").Length())
	require.Equal(t, "Mug </title><script>x</script> | uni10", d.Find("title").Text())
}

func TestApplyEscapesQuotes(t *testing.T) {
	t.Parallel()

	p := &product.Product{
		Slug:        `mug"x`,
		Name:        `The "Best" Mug`,
		Description: `Say "hello" and "><script>alert(1)</script>`,
		ImageURL:    `/img/a"b.png`,
		Keywords:    `"quoted", plain`,
	}
	out := newInjector(nil).ApplyProduct(shell, p, base)

	require.Contains(t, out, "<title>The &#34;Best&#34; Mug | uni10</title>")
	require.NotContains(t, out, `"Best"`)
	require.NotContains(t, out, `"hello"`)
	require.NotContains(t, out, `a"b`)
	require.Contains(t, out, `content="&quot;quoted&quot;, plain"`)

	d := parse(t, out)
	require.Equal(t, 1, d.Find(`meta[name="description"]`).Length())
	require.Equal(t, 0, d.Find("head script").Length())
}

func TestApplyDoesNotExpandReplacementTemplates(t *testing.T) {
	t.Parallel()

	p := &product.Product{Slug: "cash", Name: "Price $1 ${name}"}
	out := newInjector(nil).ApplyProduct(shell, p, base)

	require.Contains(t, out, "<title>Price $1 ${name} | uni10</title>")
}

func TestApplyReplacePolicyDoesNotInsertOpenGraph(t *testing.T) {
	t.Parallel()

	bare := "<html><head>\n<title>x</title>\n</head><body></body></html>"
	out := newInjector(nil).ApplyProduct(bare, blueMug, base)

	require.NotContains(t, out, "og:")
	require.NotContains(t, out, "twitter:")
	require.NotContains(t, out, "canonical")
	require.NotContains(t, out, `name="description"`)
	require.Contains(t, out, "<title>Blue Mug | uni10</title>")
	require.Contains(t, out, `<meta name="keywords"`)
}

func TestApplyUpsertInsertsMissingOnce(t *testing.T) {
	t.Parallel()

	bare := "<html><head>\n<title>x</title>\n</head><body></body></html>"
	in := newInjector(nil, WithPolicy(PolicyUpsert))

	once := in.ApplyProduct(bare, blueMug, base)
	twice := in.ApplyProduct(once, blueMug, base)
	require.Equal(t, once, twice)

	d := parse(t, twice)
	for _, sel := range []string{
		`meta[name="description"]`,
		`meta[property="og:title"]`,
		`meta[property="og:description"]`,
		`meta[property="og:image"]`,
		`meta[property="og:url"]`,
		`meta[name="twitter:title"]`,
		`meta[name="twitter:description"]`,
		`meta[name="twitter:image"]`,
		`link[rel="canonical"]`,
		`meta[name="keywords"]`,
	} {
		require.Equal(t, 1, d.Find(sel).Length(), sel)
	}
	require.Equal(t, 1, d.Find("title").Length())
}

func TestApplyInsertPolicyAddsBlock(t *testing.T) {
	t.Parallel()

	in := newInjector(nil, WithPolicy(PolicyInsert))
	out := in.ApplyProduct(shell, blueMug, base)

	require.Contains(t, out, `<meta name="description" content="old">`)
	require.Contains(t, out, `    <meta property="og:type" content="product">`)
	require.True(t, strings.HasSuffix(
		strings.SplitN(out, "</head>", 2)[0],
		"    <link rel=\"canonical\" href=\""+base+"/products/blue-mug\">\n"))
}

func TestApplyMatchingIsCaseAndOrderInsensitive(t *testing.T) {
	t.Parallel()

	doc := `<HTML><HEAD>
<TITLE>Old</TITLE>
<META CONTENT="old" NAME="Description">
<meta content='old' property='og:title'>
<meta property="twitter:title" content="old"/>
<LINK HREF="/" REL="canonical">
<meta name="KEYWORDS" content="a, b" />
</HEAD><body></body></HTML>`

	out := newInjector(nil).ApplyProduct(doc, blueMug, base)

	require.Contains(t, out, "<title>Blue Mug | uni10</title>")
	require.Contains(t, out, `<meta name="description" content="A sturdy stoneware mug.">`)
	require.Contains(t, out, `<meta property="og:title" content="Blue Mug | uni10">`)
	require.Contains(t, out, `<meta property="twitter:title" content="Blue Mug | uni10" />`)
	require.Contains(t, out, `<link rel="canonical" href="`+base+`/products/blue-mug">`)
	require.Contains(t, out, `<meta name="keywords" content="Blue Mug, Kitchen, uni10" />`)
	require.NotContains(t, out, "old")
}

func TestApplyFirstMatchOnly(t *testing.T) {
	t.Parallel()

	doc := "<head><title>a</title><title>b</title>" +
		`<meta name="description" content="one"><meta name="description" content="two">` +
		"</head>"
	out := newInjector(nil).ApplyProduct(doc, blueMug, base)

	require.Contains(t, out, "<title>Blue Mug | uni10</title><title>b</title>")
	require.Contains(t, out, `content="two"`)
	require.NotContains(t, out, `content="one"`)
}

func TestApplyMissingTagsAreSkipped(t *testing.T) {
	t.Parallel()

	doc := "<p>fragment without head</p>"
	out := newInjector(nil).ApplyProduct(doc, blueMug, base)
	require.Equal(t, doc, out)
}

func TestApplyMultilineTitle(t *testing.T) {
	t.Parallel()

	doc := "<head><title>\n  uni10\n</title></head>"
	out := newInjector(nil).Apply(doc, seo.TagSet{Title: "New"})
	require.Equal(t, "<head><title>New</title></head>", out)
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Policy{
		"":         PolicyReplace,
		"replace":  PolicyReplace,
		" Upsert ": PolicyUpsert,
		"INSERT":   PolicyInsert,
	} {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParsePolicy("append")
	require.Error(t, err)
}
