package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// semanticSnippetTags are the structural tags worth echoing back in the
// diagnostic skeleton.
var semanticSnippetTags = map[string]struct{}{
	"header": {}, "nav": {}, "main": {}, "section": {}, "footer": {},
}

// semanticSkeleton renders a bounded excerpt of the page's structural
// skeleton: every semantic layout tag with its attributes kept and its
// content replaced by an ellipsis. Output never exceeds maxSnippetLen.
func semanticSkeleton(doc *html.Node) string {
	var parts []string
	total := len("<div></div>")
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if total >= maxSnippetLen {
			return
		}
		if n.Type == html.ElementNode {
			if _, ok := semanticSnippetTags[strings.ToLower(n.Data)]; ok {
				rendered := renderStub(n)
				if total+len(rendered) > maxSnippetLen {
					return
				}
				parts = append(parts, rendered)
				total += len(rendered)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return "<div>" + strings.Join(parts, "") + "</div>"
}

// renderStub emits a copy of the element with its attributes but a bare
// "..." placeholder body.
func renderStub(n *html.Node) string {
	stub := &html.Node{
		Type: html.ElementNode,
		Data: strings.ToLower(n.Data),
		Attr: append([]html.Attribute(nil), n.Attr...),
	}
	stub.AppendChild(&html.Node{Type: html.TextNode, Data: "..."})
	var buf bytes.Buffer
	if err := html.Render(&buf, stub); err != nil {
		return ""
	}
	return buf.String()
}
