package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func contentDoc(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestCollectHeadingsDocumentOrder(t *testing.T) {
	doc := contentDoc(t, `<html><body>
		<h2>Second level</h2>
		<h1>  Top   level </h1>
		<h3></h3>
		<h6>Deep</h6>
	</body></html>`)
	got := collectHeadings(doc)
	want := []string{"Second level", "Top level", "Deep"}
	if len(got) != len(want) {
		t.Fatalf("headings: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("headings[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCollectHeadingsCap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 15; i++ {
		sb.WriteString("<h2>heading</h2>")
	}
	doc := contentDoc(t, "<html><body>"+sb.String()+"</body></html>")
	if got := collectHeadings(doc); len(got) != maxHeadings {
		t.Fatalf("headings: got %d want %d", len(got), maxHeadings)
	}
}

func TestCollectParagraphsSkipsNoise(t *testing.T) {
	doc := contentDoc(t, `<html><body>
		<p>A real paragraph of text.</p>
		<p> </p>
		<p>x</p>
		<p>ok</p>
	</body></html>`)
	got := collectParagraphs(doc)
	want := []string{"A real paragraph of text.", "ok"}
	if len(got) != len(want) {
		t.Fatalf("paragraphs: got %v want %v", got, want)
	}
}

func TestCollectParagraphsBlockquoteTopUp(t *testing.T) {
	doc := contentDoc(t, `<html><body>
		<blockquote>A quotation long enough to count as content.</blockquote>
	</body></html>`)
	got := collectParagraphs(doc)
	if len(got) != 1 || !strings.HasPrefix(got[0], "A quotation") {
		t.Fatalf("paragraphs: got %v", got)
	}
}

func TestCollectButtons(t *testing.T) {
	doc := contentDoc(t, `<html><body>
		<button> Sign  Up </button>
		<input type="submit" value="Send message">
		<a class="btn btn-primary" href="/buy">Buy now</a>
		<a href="/about">Plain link</a>
	</body></html>`)
	got := collectButtons(doc)
	want := []string{"Sign Up", "Send message", "Buy now"}
	if len(got) != len(want) {
		t.Fatalf("buttons: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("buttons[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCollectImagesResolveDedupAndSkip(t *testing.T) {
	doc := contentDoc(t, `<html><body>
		<img src="/img/logo.png" alt="Logo" width="120" height="40">
		<img src="/img/logo.png" alt="dup">
		<img data-src="photos/team.jpg" alt="Team">
		<img src="data:image/png;base64,AAAA" alt="inline">
		<img alt="no source">
	</body></html>`)
	got := collectImages(doc, "https://example.com/about/")
	if len(got) != 2 {
		t.Fatalf("images: got %d (%v) want 2", len(got), got)
	}
	if got[0].Src != "https://example.com/img/logo.png" || got[0].Alt != "Logo" {
		t.Fatalf("images[0]: got %+v", got[0])
	}
	if got[0].Width != 120 || got[0].Height != 40 {
		t.Fatalf("images[0] dimensions: got %dx%d", got[0].Width, got[0].Height)
	}
	if got[1].Src != "https://example.com/about/photos/team.jpg" {
		t.Fatalf("images[1]: got %+v", got[1])
	}
}

func TestAttrIntTolerance(t *testing.T) {
	doc := contentDoc(t, `<html><body><img src="/a.png" width="300px" height="bogus"></body></html>`)
	got := collectImages(doc, "https://example.com/")
	if len(got) != 1 {
		t.Fatalf("images: got %v", got)
	}
	if got[0].Width != 300 || got[0].Height != 0 {
		t.Fatalf("dimensions: got %dx%d want 300x0", got[0].Width, got[0].Height)
	}
}
