package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Extract runs the full pipeline with default options.
func Extract(bundle *RawPageBundle) (*DesignContext, error) {
	return ExtractWithOptions(bundle, nil)
}

// ExtractWithOptions parses the bundle's HTML once and runs every
// sub-extractor against the shared tree. A document that cannot be parsed
// fails with ErrMalformedDocument; a sub-extractor that panics is logged
// and its field left empty, so callers always get best-effort data for a
// parseable page.
func ExtractWithOptions(bundle *RawPageBundle, opts *Options) (*DesignContext, error) {
	if bundle == nil {
		return nil, fmt.Errorf("%w: nil bundle", ErrMalformedDocument)
	}
	if !looksLikeMarkup(bundle.HTML) {
		return nil, fmt.Errorf("%w: no markup found", ErrMalformedDocument)
	}
	doc, err := html.Parse(strings.NewReader(bundle.HTML))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if !hasDocumentContent(doc) {
		return nil, fmt.Errorf("%w: empty document tree", ErrMalformedDocument)
	}

	logger := opts.logger()
	ctx := &DesignContext{
		Layout:       []string{},
		ColorPalette: []string{},
		Fonts:        []string{},
		Images:       []ImageRef{},
		TextSnippets: TextSnippets{Headings: []string{}, Paragraphs: []string{}, Buttons: []string{}},
		CSSLinks:     []string{},
	}

	// Each stage is contained: a panic degrades one field, never the call.
	run := func(stage string, fn func()) {
		defer func() {
			if r := recover(); r != nil {
				logger.Printf("extract: %s stage failed, substituting empty result: %v", stage, r)
			}
		}()
		fn()
	}

	run("title", func() { ctx.Title = documentTitle(doc) })

	var corpus *cssCorpus
	run("css-corpus", func() { corpus = buildCorpus(doc, bundle.CSSSources) })
	if corpus == nil {
		corpus = &cssCorpus{}
	}
	run("colors", func() { ctx.ColorPalette = collectColors(corpus) })
	run("fonts", func() { ctx.Fonts = collectFonts(corpus, opts.maxFonts()) })
	run("content", func() {
		gq := goquery.NewDocumentFromNode(doc)
		snippets, images := collectContent(gq, bundle.SourceURL)
		ctx.TextSnippets = snippets
		ctx.Images = images
	})
	run("layout", func() { ctx.Layout = classifyLayout(doc) })
	run("css-links", func() { ctx.CSSLinks = stylesheetLinks(doc, bundle.SourceURL) })
	run("snippet", func() { ctx.RawHTMLSnippet = semanticSkeleton(doc) })

	return ctx, nil
}

// CSSLinks parses htmlText just far enough to list its stylesheet link
// URLs resolved against base. Fetch collaborators use this to know which
// sheets to retrieve; garbage input yields nil.
func CSSLinks(htmlText, base string) []string {
	if !looksLikeMarkup(htmlText) {
		return nil
	}
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil
	}
	return stylesheetLinks(doc, base)
}

func documentTitle(doc *html.Node) string {
	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "title") {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = squashSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return title
}

// looksLikeMarkup rejects inputs with no tag opener at all (binary
// garbage, plain text). The html parser itself accepts nearly anything,
// so this is the first half of the malformed-document gate.
func looksLikeMarkup(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		c := s[i+1]
		if c == '!' || c == '/' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return false
}

// hasDocumentContent is the second half of the gate: the parse must have
// produced at least one element beyond the auto-inserted html/head/body
// skeleton.
func hasDocumentContent(doc *html.Node) bool {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "html", "head", "body":
			default:
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	return walk(doc)
}
