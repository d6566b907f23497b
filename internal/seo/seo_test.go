// internal/seo/seo_test.go
//
// Unit-tests for the tag-set generator.
//
// Run: go test ./internal/seo -v

package seo

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/uni10/storefront-seo/internal/product"
)

const base = "https://uni10.example"

func TestGenerateProduct(t *testing.T) {
	g := NewGenerator(Site{})
	p := &product.Product{
		ID:          "p-1",
		Slug:        "blue-mug",
		Name:        "Blue Mug",
		Description: "<p>A <b>sturdy</b>   stoneware mug.</p>",
		ImageURL:    "/uploads/mug.jpg",
		Category:    "Kitchen",
	}

	got := g.Generate(p, base+"/")

	want := TagSet{
		Title:         "Blue Mug | uni10",
		Description:   "A sturdy stoneware mug.",
		OGTitle:       "Blue Mug | uni10",
		OGDescription: "A sturdy stoneware mug.",
		OGImage:       base + "/uploads/mug.jpg",
		Keywords:      "Blue Mug, Kitchen, uni10",
		CanonicalURL:  base + "/products/blue-mug",
	}
	if got != want {
		t.Fatalf("Generate =\n%#v\nwant\n%#v", got, want)
	}
}

func TestGenerateNilProductUsesDefaults(t *testing.T) {
	g := NewGenerator(Site{Name: "uni10"})

	got := g.Generate(nil, base)
	if got.Title != DefaultSite.DefaultTitle {
		t.Errorf("Title = %q", got.Title)
	}
	if got.CanonicalURL != base+"/" {
		t.Errorf("CanonicalURL = %q", got.CanonicalURL)
	}
	if got.OGImage != base+"/og-image.png" {
		t.Errorf("OGImage = %q", got.OGImage)
	}
	if got.Keywords == "" {
		t.Errorf("Keywords empty")
	}
}

func TestGenerateFallbacks(t *testing.T) {
	g := NewGenerator(Site{Name: "Shop", DefaultImage: "https://cdn.example/og.png"})
	p := &product.Product{Name: "Red Cup!", Keywords: "  cup, red  "}

	got := g.Generate(p, base)
	if got.Description != "Shop Red Cup! at Shop." {
		t.Errorf("Description = %q", got.Description)
	}
	if got.OGImage != "https://cdn.example/og.png" {
		t.Errorf("OGImage = %q", got.OGImage)
	}
	if got.Keywords != "cup, red" {
		t.Errorf("Keywords = %q", got.Keywords)
	}
	if got.CanonicalURL != base+"/products/red-cup" {
		t.Errorf("CanonicalURL = %q", got.CanonicalURL)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := NewGenerator(Site{})
	p := &product.Product{Slug: "x", Name: `Quote "Mug"`, Description: "<script>alert(1)</script>ok"}

	first := g.Generate(p, base)
	for i := 0; i < 5; i++ {
		if again := g.Generate(p, base); again != first {
			t.Fatalf("run %d differs: %#v vs %#v", i, again, first)
		}
	}
	if strings.Contains(first.Description, "alert") {
		t.Fatalf("script body leaked into description: %q", first.Description)
	}
}

func TestGenerateTotalOnOddInput(t *testing.T) {
	g := NewGenerator(Site{})
	for _, p := range []*product.Product{
		{},
		{Name: strings.Repeat("é", 500)},
		{Description: strings.Repeat("word ", 200)},
		{ImageURL: "relative/pic.png"},
	} {
		_ = g.Generate(p, "")
	}
}

func TestGenerateTruncatesDescription(t *testing.T) {
	g := NewGenerator(Site{})
	p := &product.Product{Slug: "x", Name: "X", Description: strings.Repeat("lorem ipsum ", 40)}

	got := g.Generate(p, base).Description
	if n := utf8.RuneCountInString(got); n > MaxDescription {
		t.Fatalf("description has %d runes, want ≤ %d", n, MaxDescription)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncated description should end with ellipsis: %q", got)
	}
}

func TestEscapeAttr(t *testing.T) {
	cases := map[string]string{
		`plain`:          `plain`,
		`say "hi"`:       `say &quot;hi&quot;`,
		`"><script>`:     `&quot;&gt;&lt;script&gt;`,
		`it's & <fine>`:  `it's & &lt;fine&gt;`,
		`Holds 5 > 3 kg`: `Holds 5 &gt; 3 kg`,
		`""`:             `&quot;&quot;`,
	}
	for in, want := range cases {
		if got := EscapeAttr(in); got != want {
			t.Errorf("EscapeAttr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeText(t *testing.T) {
	cases := map[string]string{
		`Blue Mug`:                       `Blue Mug`,
		`Mug </title><script>x</script>`: `Mug &lt;/title&gt;&lt;script&gt;x&lt;/script&gt;`,
		`Salt & Pepper`:                  `Salt &amp; Pepper`,
	}
	for in, want := range cases {
		if got := EscapeText(in); got != want {
			t.Errorf("EscapeText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAbsolute(t *testing.T) {
	cases := []struct{ ref, want string }{
		{"", ""},
		{"/a.png", base + "/a.png"},
		{"a.png", base + "/a.png"},
		{"https://cdn/x.png", "https://cdn/x.png"},
		{"//cdn/x.png", "//cdn/x.png"},
	}
	for _, tc := range cases {
		if got := absolute(base, tc.ref); got != tc.want {
			t.Errorf("absolute(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}
