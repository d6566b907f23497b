// internal/head/builder.go
//
// The Builder collects the SEO tags that belong inside a page’s <head>
// element and renders them as one literal block.  It is scoped to a single
// render call.
//
// Features
// --------
//   - SetTitle           – single <title> tag (last call wins).
//   - Name, Property     – <meta name=…> and <meta property=…> tags,
//     deduplicated by key (first call wins).
//   - Link               – <link rel=… href=…>, deduplicated by rel.
//   - String             – newline-joined block, each line indented.
//   - Render             – full block for a seo.TagSet.
//
// Attribute values pass through seo.EscapeAttr and the title through
// seo.EscapeText, so callers hand in raw text.
package head

import (
	"strings"

	"github.com/uni10/storefront-seo/internal/seo"
)

// Indent prefixes each rendered line.
const Indent = "    "

// Builder is not safe for concurrent use; build one per render.
type Builder struct {
	title string
	tags  []string
	seen  map[string]struct{}
}

func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) { b.title = t }

// Name adds <meta name="key" content="val">.  Empty values are skipped.
func (b *Builder) Name(key, val string) {
	b.add("name:"+key, `<meta name="`+key+`" content="`+seo.EscapeAttr(val)+`">`, val)
}

// Property adds <meta property="key" content="val">.
func (b *Builder) Property(key, val string) {
	b.add("property:"+key, `<meta property="`+key+`" content="`+seo.EscapeAttr(val)+`">`, val)
}

// Link adds <link rel="rel" href="href">.
func (b *Builder) Link(rel, href string) {
	b.add("link:"+rel, `<link rel="`+rel+`" href="`+seo.EscapeAttr(href)+`">`, href)
}

func (b *Builder) add(key, tag, val string) {
	if val == "" {
		return
	}
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	b.tags = append(b.tags, tag)
}

// String returns the block, one tag per line, each prefixed with Indent and
// terminated by "\n".
func (b *Builder) String() string {
	var sb strings.Builder
	if b.title != "" {
		sb.WriteString(Indent + "<title>" + seo.EscapeText(b.title) + "</title>\n")
	}
	for _, t := range b.tags {
		sb.WriteString(Indent)
		sb.WriteString(t)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Render produces the full SEO block for ts.
func Render(ts seo.TagSet) string {
	b := New()
	b.SetTitle(ts.Title)
	b.Name("description", ts.Description)
	b.Name("keywords", ts.Keywords)
	b.Property("og:title", ts.OGTitle)
	b.Property("og:description", ts.OGDescription)
	b.Property("og:image", ts.OGImage)
	b.Property("og:url", ts.CanonicalURL)
	b.Property("og:type", "product")
	b.Name("twitter:card", "summary_large_image")
	b.Name("twitter:title", ts.OGTitle)
	b.Name("twitter:description", ts.OGDescription)
	b.Name("twitter:image", ts.OGImage)
	b.Link("canonical", ts.CanonicalURL)
	return b.String()
}
