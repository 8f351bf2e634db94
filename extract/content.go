package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	minParagraphLen = 2  // runes after trim; anything shorter is noise
	minFreeTextLen  = 20 // floor for non-<p> free-text blocks
)

// collectContent walks the parsed document once via goquery and gathers
// the representative text and image references.
func collectContent(doc *goquery.Document, baseURL string) (TextSnippets, []ImageRef) {
	snippets := TextSnippets{
		Headings:   collectHeadings(doc),
		Paragraphs: collectParagraphs(doc),
		Buttons:    collectButtons(doc),
	}
	return snippets, collectImages(doc, baseURL)
}

func collectHeadings(doc *goquery.Document) []string {
	out := []string{}
	doc.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if txt := squashSpace(s.Text()); txt != "" {
			out = append(out, txt)
		}
		return len(out) < maxHeadings
	})
	return out
}

func collectParagraphs(doc *goquery.Document) []string {
	out := []string{}
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		txt := squashSpace(s.Text())
		if len([]rune(txt)) >= minParagraphLen {
			out = append(out, txt)
		}
		return len(out) < maxParagraphs
	})
	// Round out with larger free-text blocks when the page barely uses <p>.
	if len(out) < maxParagraphs {
		doc.Find("blockquote").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			txt := squashSpace(s.Text())
			if len([]rune(txt)) >= minFreeTextLen {
				out = append(out, txt)
			}
			return len(out) < maxParagraphs
		})
	}
	return out
}

func collectButtons(doc *goquery.Document) []string {
	out := []string{}
	doc.Find("button, input[type=submit], a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var txt string
		switch goquery.NodeName(s) {
		case "button":
			txt = squashSpace(s.Text())
		case "input":
			txt = squashSpace(s.AttrOr("value", ""))
		case "a":
			if !looksLikeButtonClass(s.AttrOr("class", "")) {
				return true
			}
			txt = squashSpace(s.Text())
		}
		if txt != "" {
			out = append(out, txt)
		}
		return len(out) < maxButtons
	})
	return out
}

// looksLikeButtonClass reports whether an anchor is styled as an action
// button ("btn", "btn-primary", "cta-button", ...).
func looksLikeButtonClass(class string) bool {
	lower := strings.ToLower(class)
	return strings.Contains(lower, "btn") || strings.Contains(lower, "button")
}

func collectImages(doc *goquery.Document, baseURL string) []ImageRef {
	out := []ImageRef{}
	seen := map[string]struct{}{}
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(s.AttrOr("data-src", ""))
		}
		if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
			return true
		}
		abs := resolveAbsURL(baseURL, src)
		if abs == "" {
			return true
		}
		if _, dup := seen[abs]; dup {
			return true
		}
		seen[abs] = struct{}{}
		out = append(out, ImageRef{
			Src:    abs,
			Alt:    strings.TrimSpace(s.AttrOr("alt", "")),
			Width:  attrInt(s, "width"),
			Height: attrInt(s, "height"),
		})
		return len(out) < maxImages
	})
	return out
}

func attrInt(s *goquery.Selection, name string) int {
	v := strings.TrimSpace(s.AttrOr(name, ""))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSuffix(v, "px"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// squashSpace trims and collapses all runs of whitespace to single spaces.
func squashSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
