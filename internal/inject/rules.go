// internal/inject/rules.go
//
// Tag matchers and replacement builders.
//
// Context
// -------
// The shell is never parsed into a tree.  Each logical tag has one regexp
// that finds its first occurrence and one builder that writes the
// normalised replacement.  Matching is case-insensitive, tolerates any
// attribute order, and accepts both `>` and `/>` endings.  A replaced tag
// keeps the ending style it had.
//
// Rule table (applied in this order)
// ----------------------------------
//
//	title                <title>…</title>                  always
//	description          <meta name="description">         always
//	og:title             <meta property="og:title">        if present
//	og:description       <meta property="og:description">  if present
//	twitter:title        <meta name|property=…>            if present
//	twitter:description  <meta name|property=…>            if present
//	og:image             <meta property="og:image">        if present
//	twitter:image        <meta name|property=…>            if present
//	og:url               <meta property="og:url">          if present
//	canonical            <link rel="canonical">            if present
//	keywords             <meta name="keywords">            replace, else insert
//
// Under PolicyUpsert every missing tag is inserted before </head>.
package inject

import (
	"regexp"
	"strings"

	"github.com/uni10/storefront-seo/internal/head"
	"github.com/uni10/storefront-seo/internal/seo"
)

// mode says what a rule does when its tag is missing.
type mode int

const (
	modeAlways      mode = iota // always attempted, even with an empty value
	modeConditional             // replace when present
	modeInsert                  // replace when present, else insert
)

type rule struct {
	name  string
	re    *regexp.Regexp
	mode  mode
	value func(seo.TagSet) string
	// build renders the tag.  attr is the attribute keyword found in the
	// matched tag (lower-cased), or "" when inserting.
	build func(val, attr string, selfClose bool) string
}

var (
	titleRe   = regexp.MustCompile(`(?is)<title\b[^>]*>.*?</title\s*>`)
	headEndRe = regexp.MustCompile(`(?i)</head\s*>`)
)

// attrBody matches the inside of a tag one token at a time.  Quoted values
// are taken whole so a '>' inside them does not end the tag.
const attrBody = `(?:[^>"']|"[^"]*"|'[^']*')`

// metaRe matches <meta … ATTR="key" …> for any of attrs.  Group 1 is the
// attribute keyword that matched.  ATTR must follow whitespace, so
// data-name="…" is not mistaken for name="…".
func metaRe(key string, attrs ...string) *regexp.Regexp {
	return tagRe("meta", key, attrs...)
}

func linkRe(rel string) *regexp.Regexp {
	return tagRe("link", rel, "rel")
}

func tagRe(tag, key string, attrs ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<` + tag + `(?:\s` + attrBody + `*?)?\s(` +
		strings.Join(attrs, "|") + `)\s*=\s*["']` + regexp.QuoteMeta(key) + `["']` +
		attrBody + `*>`)
}

func closer(selfClose bool) string {
	if selfClose {
		return " />"
	}
	return ">"
}

func metaBuilder(key, defaultAttr string) func(string, string, bool) string {
	return func(val, attr string, selfClose bool) string {
		if attr == "" {
			attr = defaultAttr
		}
		return `<meta ` + attr + `="` + key + `" content="` + seo.EscapeAttr(val) + `"` + closer(selfClose)
	}
}

func metaRule(key, attr string, m mode, value func(seo.TagSet) string) rule {
	return rule{
		name:  key,
		re:    metaRe(key, attr),
		mode:  m,
		value: value,
		build: metaBuilder(key, attr),
	}
}

// twitterRule accepts both name= and property= since templates in the wild
// use either.
func twitterRule(key string, value func(seo.TagSet) string) rule {
	return rule{
		name:  key,
		re:    metaRe(key, "name", "property"),
		mode:  modeConditional,
		value: value,
		build: metaBuilder(key, "name"),
	}
}

var rules = []rule{
	{
		name:  "title",
		re:    titleRe,
		mode:  modeAlways,
		value: func(ts seo.TagSet) string { return ts.Title },
		build: func(val, _ string, _ bool) string {
			return "<title>" + seo.EscapeText(val) + "</title>"
		},
	},
	metaRule("description", "name", modeAlways,
		func(ts seo.TagSet) string { return ts.Description }),
	metaRule("og:title", "property", modeConditional,
		func(ts seo.TagSet) string { return ts.OGTitle }),
	metaRule("og:description", "property", modeConditional,
		func(ts seo.TagSet) string { return ts.OGDescription }),
	twitterRule("twitter:title",
		func(ts seo.TagSet) string { return ts.OGTitle }),
	twitterRule("twitter:description",
		func(ts seo.TagSet) string { return ts.OGDescription }),
	metaRule("og:image", "property", modeConditional,
		func(ts seo.TagSet) string { return ts.OGImage }),
	twitterRule("twitter:image",
		func(ts seo.TagSet) string { return ts.OGImage }),
	metaRule("og:url", "property", modeConditional,
		func(ts seo.TagSet) string { return ts.CanonicalURL }),
	{
		name:  "canonical",
		re:    linkRe("canonical"),
		mode:  modeConditional,
		value: func(ts seo.TagSet) string { return ts.CanonicalURL },
		build: func(val, _ string, selfClose bool) string {
			return `<link rel="canonical" href="` + seo.EscapeAttr(val) + `"` + closer(selfClose)
		},
	},
	metaRule("keywords", "name", modeInsert,
		func(ts seo.TagSet) string { return ts.Keywords }),
}

// replaceFirst swaps the first match of r.re with the rebuilt tag.  ok is
// false when nothing matched.
func (r rule) replaceFirst(doc, val string) (string, bool) {
	loc := r.re.FindStringSubmatchIndex(doc)
	if loc == nil {
		return doc, false
	}
	match := doc[loc[0]:loc[1]]

	var attr string
	if len(loc) >= 4 && loc[2] >= 0 {
		attr = strings.ToLower(doc[loc[2]:loc[3]])
	}
	selfClose := strings.HasSuffix(strings.TrimRight(match[:len(match)-1], " \t\r\n"), "/")

	return doc[:loc[0]] + r.build(val, attr, selfClose) + doc[loc[1]:], true
}

// insertBeforeHeadEnd places block immediately before the first </head>.
// Documents without </head> are returned unchanged.
func insertBeforeHeadEnd(doc, block string) (string, bool) {
	loc := headEndRe.FindStringIndex(doc)
	if loc == nil {
		return doc, false
	}
	return doc[:loc[0]] + block + doc[loc[0]:], true
}

// insertLine renders one tag as an indented line.
func insertLine(tag string) string {
	return head.Indent + tag + "\n"
}
