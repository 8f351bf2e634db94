package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type rgbColor struct {
	R uint8
	G uint8
	B uint8
}

func (c rgbColor) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// namedColors is the bounded set of CSS color keywords the collector
// recognizes: the 16 basic names plus the handful that show up routinely
// in real stylesheets. Everything else is treated as not-a-color.
var namedColors = map[string]rgbColor{
	"black":     {0x00, 0x00, 0x00},
	"silver":    {0xc0, 0xc0, 0xc0},
	"gray":      {0x80, 0x80, 0x80},
	"grey":      {0x80, 0x80, 0x80},
	"white":     {0xff, 0xff, 0xff},
	"maroon":    {0x80, 0x00, 0x00},
	"red":       {0xff, 0x00, 0x00},
	"purple":    {0x80, 0x00, 0x80},
	"fuchsia":   {0xff, 0x00, 0xff},
	"magenta":   {0xff, 0x00, 0xff},
	"green":     {0x00, 0x80, 0x00},
	"lime":      {0x00, 0xff, 0x00},
	"olive":     {0x80, 0x80, 0x00},
	"yellow":    {0xff, 0xff, 0x00},
	"navy":      {0x00, 0x00, 0x80},
	"blue":      {0x00, 0x00, 0xff},
	"teal":      {0x00, 0x80, 0x80},
	"aqua":      {0x00, 0xff, 0xff},
	"cyan":      {0x00, 0xff, 0xff},
	"orange":    {0xff, 0xa5, 0x00},
	"pink":      {0xff, 0xc0, 0xcb},
	"brown":     {0xa5, 0x2a, 0x2a},
	"gold":      {0xff, 0xd7, 0x00},
	"beige":     {0xf5, 0xf5, 0xdc},
	"coral":     {0xff, 0x7f, 0x50},
	"crimson":   {0xdc, 0x14, 0x3c},
	"indigo":    {0x4b, 0x00, 0x82},
	"ivory":     {0xff, 0xff, 0xf0},
	"khaki":     {0xf0, 0xe6, 0x8c},
	"lavender":  {0xe6, 0xe6, 0xfa},
	"salmon":    {0xfa, 0x80, 0x72},
	"tan":       {0xd2, 0xb4, 0x8c},
	"turquoise": {0x40, 0xe0, 0xd0},
	"violet":    {0xee, 0x82, 0xee},
}

func parseHexColor(value string) (rgbColor, bool) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) != 6 {
		return rgbColor{}, false
	}
	r, errR := strconv.ParseInt(hex[0:2], 16, 64)
	g, errG := strconv.ParseInt(hex[2:4], 16, 64)
	b, errB := strconv.ParseInt(hex[4:6], 16, 64)
	if errR != nil || errG != nil || errB != nil {
		return rgbColor{}, false
	}
	return rgbColor{uint8(r), uint8(g), uint8(b)}, true
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// canonicalColor normalizes one color token to its canonical textual form:
// 6-digit lowercase hex when losslessly convertible, otherwise a lowercase
// functional form with single-space separators. Returns "" for anything
// that is not a recognizable color.
func canonicalColor(token string) string {
	s := strings.ToLower(strings.TrimSpace(token))
	if s == "" || s == "transparent" || s == "currentcolor" {
		return ""
	}
	if strings.HasPrefix(s, "#") {
		return canonicalHex(s)
	}
	for _, fn := range []string{"rgba", "rgb", "hsla", "hsl"} {
		if strings.HasPrefix(s, fn+"(") && strings.HasSuffix(s, ")") {
			return canonicalFunctional(fn, s[len(fn)+1:len(s)-1])
		}
	}
	if col, ok := namedColors[s]; ok {
		return col.hex()
	}
	return ""
}

func canonicalHex(s string) string {
	hex := s[1:]
	for i := 0; i < len(hex); i++ {
		if !isHexDigit(hex[i]) {
			return ""
		}
	}
	switch len(hex) {
	case 3:
		exp := []byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}
		hex = string(exp)
	case 4:
		// #rgba: opaque collapses to hex, translucency keeps the short form.
		if hex[3] != 'f' {
			return s
		}
		exp := []byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}
		hex = string(exp)
	case 6:
	case 8:
		if hex[6] != 'f' || hex[7] != 'f' {
			return s
		}
		hex = hex[:6]
	default:
		return ""
	}
	col, ok := parseHexColor(hex)
	if !ok {
		return ""
	}
	return col.hex()
}

func canonicalFunctional(fn, args string) string {
	parts := splitColorArgs(args)
	switch fn {
	case "rgb", "rgba":
		if len(parts) < 3 {
			return ""
		}
		col, ok := parseRGBComponents(parts[:3])
		if !ok {
			return ""
		}
		alpha, hasAlpha := parseAlpha(parts)
		if !hasAlpha || alpha >= 1 {
			return col.hex()
		}
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", col.R, col.G, col.B, formatAlpha(alpha))
	case "hsl", "hsla":
		if len(parts) < 3 {
			return ""
		}
		col, ok := parseHSLComponents(parts[:3])
		if !ok {
			return ""
		}
		alpha, hasAlpha := parseAlpha(parts)
		if !hasAlpha || alpha >= 1 {
			return col.hex()
		}
		h, s, l, _ := hslValues(parts[:3])
		return fmt.Sprintf("hsla(%s, %s%%, %s%%, %s)", formatAlpha(h), formatAlpha(s), formatAlpha(l), formatAlpha(alpha))
	}
	return ""
}

// splitColorArgs handles both comma-separated and space-separated
// (slash-alpha) component syntax.
func splitColorArgs(args string) []string {
	args = strings.ReplaceAll(args, "/", " ")
	fields := strings.FieldsFunc(args, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseRGBComponents(parts []string) (rgbColor, bool) {
	toByte := func(component string) (uint8, bool) {
		component = strings.TrimSpace(component)
		if component == "" {
			return 0, false
		}
		if strings.HasSuffix(component, "%") {
			value, err := strconv.ParseFloat(strings.TrimSuffix(component, "%"), 64)
			if err != nil {
				return 0, false
			}
			value = clampFloat(value, 0, 100)
			return uint8(value * 255.0 / 100.0), true
		}
		value, err := strconv.ParseFloat(component, 64)
		if err != nil {
			return 0, false
		}
		return uint8(clampFloat(value, 0, 255)), true
	}
	r, okR := toByte(parts[0])
	g, okG := toByte(parts[1])
	b, okB := toByte(parts[2])
	if !okR || !okG || !okB {
		return rgbColor{}, false
	}
	return rgbColor{r, g, b}, true
}

func hslValues(parts []string) (h, s, l float64, ok bool) {
	h, errH := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(parts[0]), "deg"), 64)
	s, errS := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(parts[1]), "%"), 64)
	l, errL := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(parts[2]), "%"), 64)
	if errH != nil || errS != nil || errL != nil {
		return 0, 0, 0, false
	}
	h = math.Mod(math.Mod(h, 360)+360, 360)
	s = clampFloat(s, 0, 100)
	l = clampFloat(l, 0, 100)
	return h, s, l, true
}

func parseHSLComponents(parts []string) (rgbColor, bool) {
	h, s, l, ok := hslValues(parts)
	if !ok {
		return rgbColor{}, false
	}
	return hslToRGB(h, s/100, l/100), true
}

func hslToRGB(h, s, l float64) rgbColor {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	round := func(v float64) uint8 {
		return uint8(clampFloat(math.Round((v+m)*255), 0, 255))
	}
	return rgbColor{round(r), round(g), round(b)}
}

func parseAlpha(parts []string) (float64, bool) {
	if len(parts) < 4 {
		return 1, false
	}
	raw := strings.TrimSpace(parts[3])
	pct := strings.HasSuffix(raw, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil {
		return 1, false
	}
	if pct {
		v /= 100
	}
	return clampFloat(v, 0, 1), true
}

func formatAlpha(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
