package extract

import (
	"fmt"
	"strings"
	"testing"
)

func TestCollectColorsOrderDedupAndCanonical(t *testing.T) {
	doc := parseDoc(t, `<html><head><style>
		body { color: #333; background: WHITE; }
		a { color: rgb(51, 51, 51); }         /* dup of #333 */
		.accent { border: 1px solid crimson; }
	</style></head><body><div style="background-color: #FF0000">x</div></body></html>`)
	got := collectColors(buildCorpus(doc, nil))
	want := []string{"#333333", "#ffffff", "#dc143c", "#ff0000"}
	if len(got) != len(want) {
		t.Fatalf("palette: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("palette[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCollectColorsCapAtTen(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&sb, ".c%d { color: #%06x; }\n", i, (i+1)*0x111111%0xffffff)
	}
	doc := parseDoc(t, "<html><head><style>"+sb.String()+"</style></head><body></body></html>")
	got := collectColors(buildCorpus(doc, nil))
	if len(got) != maxColors {
		t.Fatalf("palette size: got %d want %d", len(got), maxColors)
	}
	// First-seen wins: the first ten sheet colors, in order.
	for i := 0; i < maxColors; i++ {
		want := fmt.Sprintf("#%06x", (i+1)*0x111111%0xffffff)
		if got[i] != want {
			t.Errorf("palette[%d] = %q, want %q", i, got[i], want)
		}
	}
}

func TestCollectColorsIgnoresNonColorProperties(t *testing.T) {
	doc := parseDoc(t, `<html><head><style>
		.a { content: "#deadbe"; width: #fff; }
		.b { color: #123456; }
	</style></head><body></body></html>`)
	got := collectColors(buildCorpus(doc, nil))
	if len(got) != 1 || got[0] != "#123456" {
		t.Fatalf("palette: got %v want [#123456]", got)
	}
}

func TestCollectColorsMalformedSheetFallsBackToRawScan(t *testing.T) {
	corpus := &cssCorpus{sources: []CSSSource{
		{Origin: CSSOriginLinked, Text: `} body { color: #abcdef; } .x { background: #FEDCBA`},
	}}
	got := collectColors(corpus)
	// Raw fallback finds hex tokens but never named colors.
	found := map[string]bool{}
	for _, c := range got {
		found[c] = true
	}
	if !found["#abcdef"] || !found["#fedcba"] {
		t.Fatalf("palette missing fallback hex tokens: got %v", got)
	}
}

func TestCollectColorsEmptyCorpus(t *testing.T) {
	got := collectColors(&cssCorpus{})
	if got == nil {
		t.Fatal("palette must be non-nil")
	}
	if len(got) != 0 {
		t.Fatalf("palette: got %v want empty", got)
	}
}

func TestCollectColorsShorthandValues(t *testing.T) {
	doc := parseDoc(t, `<html><head><style>
		.card { box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1); border: 2px dashed #00FF00; }
	</style></head><body></body></html>`)
	got := collectColors(buildCorpus(doc, nil))
	want := []string{"rgba(0, 0, 0, 0.1)", "#00ff00"}
	if len(got) != len(want) {
		t.Fatalf("palette: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("palette[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
