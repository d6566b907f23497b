// internal/seo/seo.go
//
// Tag-set generator.
//
// Context
// -------
// Generate maps a product (or nil) plus the public base URL to the fixed
// bundle of strings the injector writes into the HTML shell.  It is pure
// and total: the same input always yields the same TagSet, and no product
// shape makes it fail.
//
// Field rules
// -----------
//   - Title          – "<name> | <site>".  OG title mirrors it.
//   - Description    – product copy with markup stripped, whitespace
//     collapsed, and capped at 160 runes.  Empty copy falls back to
//     "Shop <name> at <site>.".  OG description mirrors it.
//   - OGImage        – product image, absolute against baseURL; site default
//     when the product has none.
//   - Keywords       – product keywords, else "<name>, <category>, <site>".
//   - CanonicalURL   – baseURL + "/products/" + slug.
//
// Notes
// -----
// • nil product → Site defaults, canonical "<base>/".
// • Values are NOT escaped here.  EscapeAttr runs at injection time.
package seo

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/uni10/storefront-seo/internal/product"
	"github.com/uni10/storefront-seo/internal/routing"
)

// MaxDescription is the rune cap for meta descriptions.
const MaxDescription = 160

// TagSet is the value object rendered into <head>.
type TagSet struct {
	Title         string
	Description   string
	OGTitle       string
	OGDescription string
	OGImage       string
	Keywords      string
	CanonicalURL  string
}

// Site carries the site-level copy used for suffixes and fallbacks.
type Site struct {
	Name               string
	DefaultTitle       string
	DefaultDescription string
	DefaultImage       string
	DefaultKeywords    string
}

// DefaultSite is the fallback copy when config leaves fields blank.
var DefaultSite = Site{
	Name:               "uni10",
	DefaultTitle:       "uni10 | Everyday essentials, thoughtfully made",
	DefaultDescription: "Discover everyday essentials at uni10. Quality products, fair prices, and fast delivery.",
	DefaultImage:       "/og-image.png",
	DefaultKeywords:    "uni10, online store, everyday essentials",
}

// Generator produces TagSets for one site.
type Generator struct {
	site   Site
	policy *bluemonday.Policy
}

// NewGenerator fills blank Site fields from DefaultSite.
func NewGenerator(s Site) *Generator {
	if s.Name == "" {
		s.Name = DefaultSite.Name
	}
	if s.DefaultTitle == "" {
		s.DefaultTitle = DefaultSite.DefaultTitle
	}
	if s.DefaultDescription == "" {
		s.DefaultDescription = DefaultSite.DefaultDescription
	}
	if s.DefaultImage == "" {
		s.DefaultImage = DefaultSite.DefaultImage
	}
	if s.DefaultKeywords == "" {
		s.DefaultKeywords = DefaultSite.DefaultKeywords
	}
	return &Generator{site: s, policy: bluemonday.StrictPolicy()}
}

// Generate builds the TagSet for p.  p may be nil.
func (g *Generator) Generate(p *product.Product, baseURL string) TagSet {
	base := strings.TrimRight(baseURL, "/")

	if p == nil {
		return TagSet{
			Title:         g.site.DefaultTitle,
			Description:   g.site.DefaultDescription,
			OGTitle:       g.site.DefaultTitle,
			OGDescription: g.site.DefaultDescription,
			OGImage:       absolute(base, g.site.DefaultImage),
			Keywords:      g.site.DefaultKeywords,
			CanonicalURL:  base + "/",
		}
	}

	title := p.Name + " | " + g.site.Name

	desc := g.plainText(p.Description)
	if desc == "" {
		desc = "Shop " + p.Name + " at " + g.site.Name + "."
	}
	desc = truncate(desc, MaxDescription)

	image := g.site.DefaultImage
	if p.ImageURL != "" {
		image = p.ImageURL
	}

	keywords := strings.TrimSpace(p.Keywords)
	if keywords == "" {
		keywords = joinNonEmpty(", ", p.Name, p.Category, g.site.Name)
	}

	slug := p.Slug
	if slug == "" {
		slug = routing.MakeSlug(p.Name)
	}

	return TagSet{
		Title:         title,
		Description:   desc,
		OGTitle:       title,
		OGDescription: desc,
		OGImage:       absolute(base, image),
		Keywords:      keywords,
		CanonicalURL:  base + routing.BuildPath("products", slug),
	}
}

var attrEscaper = strings.NewReplacer(`"`, "&quot;", "<", "&lt;", ">", "&gt;")

// EscapeAttr makes s safe inside a double-quoted attribute.  `"` becomes
// &quot;, and angle brackets become &lt; and &gt; so a tag matcher never
// sees a bare '>' inside a value.  '&' is left alone.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// EscapeText makes s safe as element text, e.g. inside <title>.
func EscapeText(s string) string {
	return html.EscapeString(s)
}

// plainText strips markup and collapses whitespace.
func (g *Generator) plainText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(g.policy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// truncate caps s at max runes, ending on a word boundary with "…" when it
// has to cut.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)[:max-1]
	cut := string(r)
	if i := strings.LastIndexByte(cut, ' '); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// absolute prefixes base to root-relative paths.  Absolute and
// protocol-relative URLs are returned unchanged.
func absolute(base, ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"),
		strings.HasPrefix(ref, "//"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return base + ref
	default:
		return base + "/" + ref
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
