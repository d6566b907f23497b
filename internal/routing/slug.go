// internal/routing/slug.go
//
// Slug and path helpers.
//
// • ProductSlug(path) ─ pulls the product identifier out of a request path
//   shaped like /products/<id>.  Nothing else matches.
// • MakeSlug(title) ─ converts arbitrary text into a URL-safe slug restricted
//   to ASCII a-z, 0-9 and “-”.  Used when a product row has no slug.
// • BuildPath(parent, slug) ─ joins parent path + slug with a single “/” and
//   guarantees exactly one leading slash.
//
// Rules (ProductSlug)
// -------------------
// 1. Path must start with “/products/”.
// 2. Capture runs up to, but not including, the next “/” or “?”.
// 3. An empty capture is not a match.
// 4. No case folding and no percent-decoding; the capture is returned as-is.
//
// Rules (MakeSlug)
// ----------------
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.
// 3. Trim leading / trailing “-”.
// 4. If the result is empty, return "item".
// 5. Cap at 100 bytes.

package routing

import (
	"regexp"
	"strings"
)

// ProductPrefix is the path prefix served by product detail pages.
const ProductPrefix = "/products/"

var productPath = regexp.MustCompile(`^/products/([^/?]+)`)

// ProductSlug returns the identifier segment of a /products/<id> path.
func ProductSlug(path string) (string, bool) {
	m := productPath.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// MakeSlug converts title → lower-kebab ASCII.
func MakeSlug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastWasDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "item"
	}
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], "-")
	}
	return slug
}

// BuildPath joins parent + slug ensuring exactly one leading slash and no
// duplicate separators.
func BuildPath(parent, slug string) string {
	parent = strings.Trim(parent, "/")
	slug = strings.Trim(slug, "/")

	switch {
	case parent == "" && slug == "":
		return "/"
	case parent == "":
		return "/" + slug
	case slug == "":
		return "/" + parent
	default:
		return "/" + parent + "/" + slug
	}
}
