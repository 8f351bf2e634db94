package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"restyle/extract"
)

func TestFetchHTMLAndLinkedCSS(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><link rel="stylesheet" href="/main.css"></head><body><p>hi</p></body></html>`))
	})
	mux.HandleFunc("/main.css", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		w.Write([]byte(`@import url("extra.css"); body { color: #123456; }`))
	})
	mux.HandleFunc("/extra.css", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		w.Write([]byte(`h1 { color: #654321; }`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(Options{})
	bundle, err := client.Fetch(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(bundle.HTML, "<p>hi</p>") {
		t.Fatalf("html: got %q", bundle.HTML)
	}
	if len(bundle.CSSSources) != 2 {
		t.Fatalf("css sources: got %d (%v)", len(bundle.CSSSources), bundle.CSSSources)
	}
	if bundle.CSSSources[0].Origin != extract.CSSOriginLinked {
		t.Errorf("origin: got %q", bundle.CSSSources[0].Origin)
	}
	if !strings.Contains(bundle.CSSSources[0].Text, "#123456") {
		t.Errorf("sheet 0: got %q", bundle.CSSSources[0].Text)
	}
	if !strings.Contains(bundle.CSSSources[1].Text, "#654321") {
		t.Errorf("imported sheet: got %q", bundle.CSSSources[1].Text)
	}
}

func TestFetchFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><p>landed</p></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	bundle, err := NewClient(Options{}).Fetch(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.HasSuffix(bundle.SourceURL, "/final") {
		t.Fatalf("source url: got %q want the redirect target", bundle.SourceURL)
	}
}

func TestFetchUpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(Options{}).Fetch(context.Background(), srv.URL)
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("got err %v, want *Error", err)
	}
	if fe.Status != http.StatusNotFound {
		t.Fatalf("status: got %d want 404", fe.Status)
	}
}

func TestFetchRejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	_, err := NewClient(Options{}).Fetch(context.Background(), srv.URL)
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("got err %v, want *Error", err)
	}
	if fe.Status != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", fe.Status)
	}
}

func TestFetchRejectsBadURLs(t *testing.T) {
	client := NewClient(Options{})
	for _, raw := range []string{"", "ftp://example.com/x", "file:///etc/passwd", "http://"} {
		_, err := client.Fetch(context.Background(), raw)
		var fe *Error
		if !errors.As(err, &fe) {
			t.Fatalf("%q: got err %v, want *Error", raw, err)
		}
		if fe.Status != http.StatusBadRequest {
			t.Errorf("%q: status %d want 400", raw, fe.Status)
		}
	}
}

func TestFetchCSSSheetBudget(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		var sb strings.Builder
		sb.WriteString("<html><head>")
		for i := 0; i < 20; i++ {
			sb.WriteString(`<link rel="stylesheet" href="/s` + string(rune('a'+i)) + `.css">`)
		}
		sb.WriteString("</head><body><p>x</p></body></html>")
		w.Write([]byte(sb.String()))
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".css") {
			hits++
			w.Header().Set("Content-Type", "text/css")
			w.Write([]byte("body{}"))
			return
		}
		mux.ServeHTTP(w, r)
	}))
	defer srv.Close()

	bundle, err := NewClient(Options{}).Fetch(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if hits > maxSheets {
		t.Fatalf("css requests: got %d want at most %d", hits, maxSheets)
	}
	if len(bundle.CSSSources) > maxSheets {
		t.Fatalf("css sources: got %d want at most %d", len(bundle.CSSSources), maxSheets)
	}
}

func TestScanImports(t *testing.T) {
	css := `@import url("a.css"); @import 'b.css'; @import url(c.css) screen; body { color: red; }`
	got := scanImports(css, "https://example.com/css/site.css")
	want := []string{
		"https://example.com/css/a.css",
		"https://example.com/css/b.css",
		"https://example.com/css/c.css",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("imports: got %v want %v", got, want)
	}
}

func TestImportTarget(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{` url("x.css")`, "x.css"},
		{` url(x.css)`, "x.css"},
		{` "x.css"`, "x.css"},
		{` 'x.css'`, "x.css"},
		{` x.css screen`, "x.css"},
		{``, ""},
		{` url(`, ""},
	}
	for _, c := range cases {
		if got := importTarget(c.in); got != c.want {
			t.Errorf("importTarget(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
