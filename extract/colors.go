package extract

// colorProperties are the declaration properties worth scanning for color
// literals. Matches shorthands too: their values are token-scanned, so a
// "border: 1px solid #eee" still yields its color.
var colorProperties = map[string]struct{}{
	"color":                 {},
	"background":            {},
	"background-color":      {},
	"background-image":      {},
	"border":                {},
	"border-color":          {},
	"border-top":            {},
	"border-right":          {},
	"border-bottom":         {},
	"border-left":           {},
	"border-top-color":      {},
	"border-right-color":    {},
	"border-bottom-color":   {},
	"border-left-color":     {},
	"outline":               {},
	"outline-color":         {},
	"box-shadow":            {},
	"text-shadow":           {},
	"fill":                  {},
	"stroke":                {},
	"caret-color":           {},
	"accent-color":          {},
	"text-decoration-color": {},
	"column-rule-color":     {},
}

// collectColors scans the CSS corpus in order and returns the first
// maxColors unique canonical colors. Parsed sheets are scanned
// declaration-by-declaration (named colors allowed there); sheets the
// parser rejects get a raw token sweep instead, so malformed CSS degrades
// rather than fails.
func collectColors(corpus *cssCorpus) []string {
	palette := newDedupList(maxColors)
	emit := func(token string) bool {
		if canon := canonicalColor(token); canon != "" {
			return palette.add(canon, canon)
		}
		return !palette.full()
	}
	scanDecls := func(decls []cssDeclaration) {
		for _, d := range decls {
			if _, ok := colorProperties[d.property]; !ok {
				continue
			}
			scanColorTokens(d.value, true, emit)
			if palette.full() {
				return
			}
		}
	}
	corpus.eachSource(func(text string, inline bool) bool {
		if inline {
			scanDecls(inlineDeclarations(text))
		} else if decls, ok := sheetDeclarations(text); ok {
			scanDecls(decls)
		} else {
			scanColorTokens(text, false, emit)
		}
		return !palette.full()
	})
	return palette.values()
}
