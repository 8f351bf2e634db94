package extract

import "strings"

// collectFonts gathers font-family names across the CSS corpus in scan
// order. Dedup is case-insensitive but the first-seen casing is what gets
// stored. limit 0 means no cap.
func collectFonts(corpus *cssCorpus, limit int) []string {
	fonts := newDedupList(limit)
	addValue := func(value string) bool {
		for _, name := range splitFontStack(value) {
			if !fonts.add(strings.ToLower(name), name) {
				return false
			}
		}
		return !fonts.full()
	}
	corpus.eachSource(func(text string, inline bool) bool {
		var values []string
		if inline {
			for _, d := range inlineDeclarations(text) {
				if d.property == "font-family" {
					values = append(values, d.value)
				}
			}
		} else if decls, ok := sheetDeclarations(text); ok {
			for _, d := range decls {
				if d.property == "font-family" {
					values = append(values, d.value)
				}
			}
		} else {
			values = scanFontFamilyValues(text)
		}
		for _, v := range values {
			if !addValue(v) {
				return false
			}
		}
		return true
	})
	return fonts.values()
}
