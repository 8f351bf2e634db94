package extract

import (
	"net/url"
	"strings"

	cssast "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// cssDeclaration is one property:value pair lifted out of a stylesheet or
// an inline style attribute, in source order.
type cssDeclaration struct {
	property string
	value    string
}

// cssCorpus aggregates every CSS text reachable for one document, in scan
// order: <style> elements (document order), externally supplied sources
// (fetch order), then inline style attributes (document order).
type cssCorpus struct {
	sources []CSSSource
	inline  []string
}

func buildCorpus(doc *html.Node, supplied []CSSSource) *cssCorpus {
	corpus := &cssCorpus{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if strings.EqualFold(n.Data, "style") {
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					if txt := strings.TrimSpace(n.FirstChild.Data); txt != "" {
						corpus.sources = append(corpus.sources, CSSSource{Origin: CSSOriginInline, Text: txt})
					}
				}
			} else if style := strings.TrimSpace(getAttr(n, "style")); style != "" {
				corpus.inline = append(corpus.inline, style)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	corpus.sources = append(corpus.sources, supplied...)
	return corpus
}

// eachSource invokes fn for every sheet text in scan order, then once more
// for the inline declaration blocks (inline=true). fn returns false to
// stop early.
func (c *cssCorpus) eachSource(fn func(text string, inline bool) bool) {
	for _, src := range c.sources {
		if !fn(src.Text, false) {
			return
		}
	}
	for _, style := range c.inline {
		if !fn(style, true) {
			return
		}
	}
}

// sheetDeclarations parses a stylesheet with douceur and flattens every
// qualified rule's declarations in source order, descending into @media,
// @supports and any other rule-embedding at-rule. ok=false means the sheet
// did not parse and the caller should fall back to raw scanning.
func sheetDeclarations(text string) ([]cssDeclaration, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, true
	}
	sheet, err := parser.Parse(trimmed)
	if err != nil {
		return nil, false
	}
	var out []cssDeclaration
	var walk func(list []*cssast.Rule)
	walk = func(list []*cssast.Rule) {
		for _, rule := range list {
			if rule == nil {
				continue
			}
			switch rule.Kind {
			case cssast.AtRule:
				if rule.EmbedsRules() {
					walk(rule.Rules)
				}
			case cssast.QualifiedRule:
				out = append(out, convertDeclarations(rule.Declarations)...)
			}
		}
	}
	walk(sheet.Rules)
	return out, true
}

// inlineDeclarations parses a style attribute value, with a manual
// key:value split as fallback for attribute soup douceur rejects.
func inlineDeclarations(style string) []cssDeclaration {
	if decls, err := parser.ParseDeclarations(style); err == nil {
		return convertDeclarations(decls)
	}
	var out []cssDeclaration
	for _, part := range strings.Split(style, ";") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])
		if prop == "" || val == "" {
			continue
		}
		out = append(out, cssDeclaration{property: prop, value: val})
	}
	return out
}

func convertDeclarations(list []*cssast.Declaration) []cssDeclaration {
	if len(list) == 0 {
		return nil
	}
	out := make([]cssDeclaration, 0, len(list))
	for _, decl := range list {
		if decl == nil {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(decl.Property))
		val := strings.TrimSpace(decl.Value)
		if prop == "" || val == "" {
			continue
		}
		out = append(out, cssDeclaration{property: prop, value: val})
	}
	return out
}

// stylesheetLinks returns the absolute URLs of <link rel=stylesheet>
// references in document order, deduplicated.
func stylesheetLinks(doc *html.Node, base string) []string {
	links := newDedupList(0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "link") {
			rel := strings.ToLower(strings.TrimSpace(getAttr(n, "rel")))
			typ := strings.ToLower(strings.TrimSpace(getAttr(n, "type")))
			if strings.Contains(rel, "stylesheet") && (typ == "" || typ == "text/css") {
				if href := strings.TrimSpace(getAttr(n, "href")); href != "" {
					if abs := resolveAbsURL(base, href); abs != "" {
						links.add(abs, abs)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links.values()
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func resolveAbsURL(base, href string) string {
	hu, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if hu.IsAbs() {
		return hu.String()
	}
	bu, err := url.Parse(base)
	if err != nil || !bu.IsAbs() {
		return ""
	}
	return bu.ResolveReference(hu).String()
}
