package extract

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const samplePage = `<html><head><title>T</title><style>.a{color:#FFF}</style></head>` +
	`<body><nav class="nav">N</nav><h1>Hi</h1><p>para text</p><footer>F</footer></body></html>`

func TestExtractSamplePage(t *testing.T) {
	ctx, err := Extract(&RawPageBundle{HTML: samplePage, SourceURL: "https://example.com/"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if ctx.Title != "T" {
		t.Errorf("title: got %q want %q", ctx.Title, "T")
	}
	if !reflect.DeepEqual(ctx.ColorPalette, []string{"#ffffff"}) {
		t.Errorf("palette: got %v", ctx.ColorPalette)
	}
	if !reflect.DeepEqual(ctx.Layout, []string{"navbar", "footer"}) {
		t.Errorf("layout: got %v", ctx.Layout)
	}
	if !reflect.DeepEqual(ctx.TextSnippets.Headings, []string{"Hi"}) {
		t.Errorf("headings: got %v", ctx.TextSnippets.Headings)
	}
	if !reflect.DeepEqual(ctx.TextSnippets.Paragraphs, []string{"para text"}) {
		t.Errorf("paragraphs: got %v", ctx.TextSnippets.Paragraphs)
	}
}

func TestExtractDeterministic(t *testing.T) {
	bundle := &RawPageBundle{HTML: samplePage, SourceURL: "https://example.com/"}
	first, err := Extract(bundle)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Extract(bundle)
		if err != nil {
			t.Fatalf("extract #%d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\nfirst %+v\nagain %+v", i, first, again)
		}
	}
}

func TestExtractMalformedInputs(t *testing.T) {
	cases := []struct {
		name string
		html string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"plain text", "just some prose with no tags at all"},
		{"binary garbage", string([]byte{0x00, 0x01, 0xfe, 0xff, 0x7f})},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Extract(&RawPageBundle{HTML: c.html})
			if !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("got err %v, want ErrMalformedDocument", err)
			}
		})
	}
	if _, err := Extract(nil); !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("nil bundle: got %v, want ErrMalformedDocument", err)
	}
}

func TestExtractEmptySectionsAreNonNil(t *testing.T) {
	ctx, err := Extract(&RawPageBundle{HTML: "<html><body><b>x</b></body></html>"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	raw, err := json.Marshal(ctx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(raw)
	for _, field := range []string{`"layout":[]`, `"color_palette":[]`, `"fonts":[]`, `"images":[]`, `"headings":[]`, `"paragraphs":[]`, `"buttons":[]`, `"css_links":[]`} {
		if !strings.Contains(s, field) {
			t.Errorf("serialized context missing %s: %s", field, s)
		}
	}
	if strings.Contains(s, "null") {
		t.Errorf("serialized context contains null: %s", s)
	}
}

func TestExtractUsesSuppliedCSSSources(t *testing.T) {
	ctx, err := Extract(&RawPageBundle{
		HTML: `<html><head><style>body{color:#111}</style></head><body><p>hello there</p></body></html>`,
		CSSSources: []CSSSource{
			{Origin: CSSOriginLinked, Text: `h1 { color: #222222; font-family: Georgia, serif; }`},
		},
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !reflect.DeepEqual(ctx.ColorPalette, []string{"#111111", "#222222"}) {
		t.Errorf("palette: got %v", ctx.ColorPalette)
	}
	if !reflect.DeepEqual(ctx.Fonts, []string{"Georgia", "serif"}) {
		t.Errorf("fonts: got %v", ctx.Fonts)
	}
}

func TestExtractCSSLinksField(t *testing.T) {
	ctx, err := Extract(&RawPageBundle{
		HTML:      `<html><head><link rel="stylesheet" href="/s.css"><title>x</title></head><body><p>hello</p></body></html>`,
		SourceURL: "https://example.com/page/",
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !reflect.DeepEqual(ctx.CSSLinks, []string{"https://example.com/s.css"}) {
		t.Errorf("css links: got %v", ctx.CSSLinks)
	}
}

func TestCSSLinksHelper(t *testing.T) {
	got := CSSLinks(`<html><head><link rel="stylesheet" href="a.css"></head></html>`, "https://example.com/dir/")
	if !reflect.DeepEqual(got, []string{"https://example.com/dir/a.css"}) {
		t.Fatalf("links: got %v", got)
	}
	if got := CSSLinks("no markup here", "https://example.com/"); got != nil {
		t.Fatalf("garbage input: got %v want nil", got)
	}
}

func TestSemanticSkeleton(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<nav class="top">links</nav>
		<section id="intro"><h1>deep content</h1></section>
		<footer>fine print</footer>
	</body></html>`)
	got := semanticSkeleton(doc)
	if !strings.HasPrefix(got, "<div>") || !strings.HasSuffix(got, "</div>") {
		t.Fatalf("skeleton not wrapped: %q", got)
	}
	for _, frag := range []string{`<nav class="top">...</nav>`, `<section id="intro">...</section>`, `<footer>...</footer>`} {
		if !strings.Contains(got, frag) {
			t.Errorf("skeleton missing %q: %q", frag, got)
		}
	}
	if strings.Contains(got, "deep content") {
		t.Errorf("skeleton leaked element content: %q", got)
	}
}

func TestSemanticSkeletonBounded(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 500; i++ {
		sb.WriteString(`<section class="block-with-a-fairly-long-class-name">x</section>`)
	}
	sb.WriteString("</body></html>")
	got := semanticSkeleton(parseDoc(t, sb.String()))
	if len(got) > maxSnippetLen {
		t.Fatalf("skeleton length %d exceeds %d", len(got), maxSnippetLen)
	}
}
