package extract

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// layoutRule is one entry in the prioritized classifier table. An element
// matches when the compiled selector (if any), the class/id hints (if
// any), and the extra predicate (if any) all agree.
type layoutRule struct {
	sel        cascadia.Selector
	classHints []string
	extra      func(*html.Node) bool
	label      string
}

// layoutRules is evaluated top to bottom per element: semantic HTML5 tag
// rules first, class/id substring fallbacks second. First match wins.
var layoutRules = []layoutRule{
	{sel: cascadia.MustCompile("nav"), label: "navbar"},
	{sel: cascadia.MustCompile("footer"), label: "footer"},
	{sel: cascadia.MustCompile("header"), extra: containsHeading, label: "hero"},
	{sel: cascadia.MustCompile("aside"), label: "sidebar"},
	{sel: cascadia.MustCompile("section, main"), extra: looksLikeCardGrid, label: "product-grid"},
	{classHints: []string{"hero", "banner", "jumbotron"}, label: "hero"},
	{classHints: []string{"sidebar"}, label: "sidebar"},
	{classHints: []string{"nav", "menu-bar"}, label: "navbar"},
	{classHints: []string{"footer"}, label: "footer"},
	{classHints: []string{"product", "grid", "cards"}, label: "product-grid"},
	{classHints: []string{"feature", "service"}, label: "features"},
	{classHints: []string{"testimonial", "review"}, label: "testimonials"},
	{classHints: []string{"contact", "get-in-touch"}, label: "contact"},
	{classHints: []string{"blog", "post", "article"}, label: "blog"},
}

// candidate structural tags the classifier inspects. Anything else is
// transparent: the walk descends through it.
var layoutCandidates = map[string]struct{}{
	"nav": {}, "header": {}, "main": {}, "section": {},
	"footer": {}, "aside": {}, "article": {}, "div": {},
}

// classifyLayout walks the document in order and emits one label per
// matched region. A matched region is atomic: the walk does not descend
// into it, so nested hits inside a navbar never re-fire. Only adjacent
// duplicates collapse; the same label may legitimately reappear later.
func classifyLayout(doc *html.Node) []string {
	out := []string{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, ok := layoutCandidates[strings.ToLower(n.Data)]; ok {
				if label, matched := matchLayoutRule(n); matched {
					if len(out) == 0 || out[len(out)-1] != label {
						out = append(out, label)
					}
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func matchLayoutRule(n *html.Node) (string, bool) {
	for _, rule := range layoutRules {
		if rule.sel != nil && !rule.sel.Match(n) {
			continue
		}
		if len(rule.classHints) > 0 && !classContains(n, rule.classHints) {
			continue
		}
		if rule.extra != nil && !rule.extra(n) {
			continue
		}
		return rule.label, true
	}
	return "", false
}

func classContains(n *html.Node, hints []string) bool {
	attrs := strings.ToLower(getAttr(n, "class") + " " + getAttr(n, "id"))
	if strings.TrimSpace(attrs) == "" {
		return false
	}
	for _, hint := range hints {
		if strings.Contains(attrs, hint) {
			return true
		}
	}
	return false
}

func containsHeading(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch strings.ToLower(c.Data) {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				return true
			}
		}
		if containsHeading(c) {
			return true
		}
	}
	return false
}

// looksLikeCardGrid reports whether a section holds three or more
// card-like children, the usual shape of a product or content grid.
func looksLikeCardGrid(n *html.Node) bool {
	count := 0
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				cls := strings.ToLower(getAttr(c, "class"))
				if strings.Contains(cls, "card") || strings.Contains(cls, "product") ||
					strings.Contains(cls, "grid-item") || strings.Contains(cls, "item") {
					count++
				}
			}
			walk(c)
		}
	}
	walk(n)
	return count >= 3
}
