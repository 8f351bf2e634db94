package extract

import "strings"

// scanColorTokens walks text and hands every color-looking token to emit,
// in source order. Named colors are only matched when allowNames is true;
// they are too noisy outside declaration values (think ".white { ... }").
// emit returns false to stop the scan early.
func scanColorTokens(text string, allowNames bool, emit func(token string) bool) {
	s := strings.ToLower(text)
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '#':
			j := i + 1
			for j < len(s) && isHexDigit(s[j]) {
				j++
			}
			run := j - i - 1
			if run == 3 || run == 4 || run == 6 || run == 8 {
				if !emit(s[i:j]) {
					return
				}
			}
			i = j
		case c >= 'a' && c <= 'z':
			j := i
			for j < len(s) && (s[j] >= 'a' && s[j] <= 'z' || s[j] == '-') {
				j++
			}
			word := s[i:j]
			switch word {
			case "rgb", "rgba", "hsl", "hsla":
				if j < len(s) && s[j] == '(' {
					end := matchParen(s, j)
					if end > j {
						if !emit(s[i : end+1]) {
							return
						}
						i = end + 1
						continue
					}
				}
			default:
				if allowNames && wordBoundary(s, i, j) {
					if _, ok := namedColors[word]; ok {
						if !emit(word) {
							return
						}
					}
				}
			}
			i = j
		default:
			i++
		}
	}
}

// matchParen returns the index of the ')' balancing the '(' at open,
// or -1 when the text runs out first.
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func wordBoundary(s string, start, end int) bool {
	if start > 0 {
		p := s[start-1]
		if p == '-' || p == '.' || p == '#' || p == '$' || (p >= 'a' && p <= 'z') || (p >= '0' && p <= '9') {
			return false
		}
	}
	if end < len(s) {
		n := s[end]
		if n == '(' || (n >= '0' && n <= '9') {
			return false
		}
	}
	return true
}

// scanFontFamilyValues finds font-family declaration values in raw CSS
// text. Used when the proper parser rejects a sheet; a best-effort sweep
// beats dropping the source entirely.
func scanFontFamilyValues(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for idx := 0; ; {
		rel := strings.Index(lower[idx:], "font-family")
		if rel == -1 {
			break
		}
		pos := idx + rel + len("font-family")
		idx = pos
		for pos < len(text) && (text[pos] == ' ' || text[pos] == '\t') {
			pos++
		}
		if pos >= len(text) || text[pos] != ':' {
			continue
		}
		pos++
		end := pos
		for end < len(text) && text[end] != ';' && text[end] != '}' && text[end] != '{' {
			end++
		}
		if v := strings.TrimSpace(text[pos:end]); v != "" {
			out = append(out, v)
		}
		idx = end
	}
	return out
}

// cssWideKeywords never name a real font family.
var cssWideKeywords = map[string]struct{}{
	"inherit": {}, "initial": {}, "unset": {}, "revert": {}, "revert-layer": {},
}

// splitFontStack breaks a font-family value into individual family names,
// quotes stripped and inner whitespace collapsed. Generic families
// (sans-serif and friends) are kept: they are informative fallbacks.
func splitFontStack(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		name := strings.TrimSpace(part)
		if strings.HasSuffix(strings.ToLower(name), "!important") {
			name = strings.TrimSpace(name[:len(name)-len("!important")])
		}
		if len(name) >= 2 {
			if (name[0] == '"' && name[len(name)-1] == '"') || (name[0] == '\'' && name[len(name)-1] == '\'') {
				name = name[1 : len(name)-1]
			}
		}
		name = strings.Join(strings.Fields(name), " ")
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		if _, wide := cssWideKeywords[lower]; wide {
			continue
		}
		if strings.HasPrefix(lower, "var(") {
			continue
		}
		out = append(out, name)
	}
	return out
}
