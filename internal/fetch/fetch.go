// Package fetch retrieves pages and their stylesheets on behalf of the
// extraction pipeline. It owns all network access: the core never does
// I/O. A Client prefers the headless-browser path when one is configured
// and falls back to a plain HTTP GET.
package fetch

import (
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"restyle/extract"
)

const (
	defaultTimeout = 15 * time.Second
	cssTimeout     = 10 * time.Second
	maxSheets      = 12
	maxImportDepth = 2

	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

// Error is a fetch failure with an HTTP-like status attached, so the API
// layer can map it without string matching.
type Error struct {
	Status int
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch: %s: %v", e.Reason, e.Err)
	}
	return "fetch: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// Options configures a Client. The zero value works for plain HTTP.
type Options struct {
	// Browser enables the headless-Chrome path when non-nil.
	Browser *Browser
	Logger  *log.Logger
	Timeout time.Duration
}

// Client fetches RawPageBundles. Safe for concurrent use; every request
// gets its own cookie jar, nothing is shared across calls.
type Client struct {
	browser *Browser
	logger  *log.Logger
	timeout time.Duration
}

func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{browser: opts.Browser, logger: logger, timeout: timeout}
}

// Fetch retrieves rawURL and assembles the bundle the extractor consumes:
// rendered HTML, linked stylesheet texts, and (browser path) a screenshot
// plus viewport metadata.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*extract.RawPageBundle, error) {
	target, err := validateURL(rawURL)
	if err != nil {
		return nil, &Error{Status: http.StatusBadRequest, Reason: "invalid url", Err: err}
	}

	var bundle *extract.RawPageBundle
	if c.browser != nil {
		b, err := c.browser.Fetch(ctx, target)
		if err != nil {
			c.logger.Printf("FETCH browser failed for %s, falling back to http: %v", target, err)
		} else {
			bundle = b
		}
	}
	if bundle == nil {
		b, err := c.httpFetch(ctx, target)
		if err != nil {
			return nil, err
		}
		bundle = b
	}

	c.attachLinkedCSS(ctx, bundle)
	return bundle, nil
}

func validateURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("missing host")
	}
	return u.String(), nil
}

func (c *Client) httpFetch(ctx context.Context, target string) (*extract.RawPageBundle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Status: http.StatusBadRequest, Reason: "invalid url", Err: err}
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	// Scoped per request: cookies set during redirects stay with this call.
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Timeout: c.timeout, Jar: jar}
	resp, err := client.Do(req)
	if err != nil {
		reason := "unreachable host"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			reason = "fetch timeout"
		}
		return nil, &Error{Status: http.StatusBadGateway, Reason: reason, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &Error{Status: resp.StatusCode, Reason: fmt.Sprintf("upstream status %d", resp.StatusCode)}
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTMLContentType(ct) {
		return nil, &Error{Status: http.StatusBadRequest, Reason: fmt.Sprintf("non-html content type %q", ct)}
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, &Error{Status: http.StatusBadGateway, Reason: "reading response body", Err: err}
	}

	final := target
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return &extract.RawPageBundle{
		HTML:      string(body),
		SourceURL: final,
	}, nil
}

// attachLinkedCSS fetches the page's linked stylesheets (and one level of
// @import) under a shared budget and appends them to the bundle. CSS
// fetch failures are logged and skipped, never fatal.
func (c *Client) attachLinkedCSS(ctx context.Context, bundle *extract.RawPageBundle) {
	type pending struct {
		url   string
		depth int
	}
	queue := []pending{}
	for _, link := range extract.CSSLinks(bundle.HTML, bundle.SourceURL) {
		queue = append(queue, pending{url: link, depth: 0})
	}
	budget := maxSheets
	visited := map[string]struct{}{}
	for len(queue) > 0 && budget > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, seen := visited[next.url]; seen {
			continue
		}
		visited[next.url] = struct{}{}
		budget--
		text, ok := c.fetchCSS(ctx, next.url)
		if !ok {
			continue
		}
		bundle.CSSSources = append(bundle.CSSSources, extract.CSSSource{Origin: extract.CSSOriginLinked, Text: text})
		if next.depth+1 < maxImportDepth {
			for _, imp := range scanImports(text, next.url) {
				queue = append(queue, pending{url: imp, depth: next.depth + 1})
			}
		}
	}
}

func (c *Client) fetchCSS(ctx context.Context, absURL string) (string, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, cssTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, absURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("Accept", "text/css,*/*;q=0.1")
	req.Header.Set("User-Agent", browserUserAgent)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.logger.Printf("FETCH css %s: %v", absURL, err)
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		c.logger.Printf("FETCH css %s: status %d", absURL, resp.StatusCode)
		return "", false
	}
	body, err := decodeBody(resp)
	if err != nil {
		return "", false
	}
	return string(body), true
}

func decodeBody(resp *http.Response) ([]byte, error) {
	rc := io.ReadCloser(resp.Body)
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		if gr, err := gzip.NewReader(resp.Body); err == nil {
			rc = gr
			defer gr.Close()
		}
	case "deflate":
		if zr, err := zlib.NewReader(resp.Body); err == nil {
			rc = zr
			defer zr.Close()
		} else if fr := flate.NewReader(resp.Body); fr != nil {
			rc = io.NopCloser(fr)
			defer fr.Close()
		}
	}
	return io.ReadAll(rc)
}

func isHTMLContentType(ct string) bool {
	lower := strings.ToLower(ct)
	return strings.Contains(lower, "text/html") || strings.Contains(lower, "application/xhtml")
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// scanImports lists the absolute URLs named by top-of-sheet @import
// statements so one level of indirection still contributes to the corpus.
func scanImports(css, base string) []string {
	var out []string
	lower := strings.ToLower(css)
	for idx := 0; ; {
		rel := strings.Index(lower[idx:], "@import")
		if rel == -1 {
			break
		}
		pos := idx + rel + len("@import")
		end := strings.IndexByte(css[pos:], ';')
		if end == -1 {
			break
		}
		target := importTarget(css[pos : pos+end])
		if target != "" {
			if abs := resolveImportURL(base, target); abs != "" {
				out = append(out, abs)
			}
		}
		idx = pos + end + 1
	}
	return out
}

func importTarget(stmt string) string {
	s := strings.TrimSpace(stmt)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(s), "url(") {
		end := strings.IndexByte(s, ')')
		if end == -1 {
			return ""
		}
		return trimCSSString(s[4:end])
	}
	if s[0] == '"' || s[0] == '\'' {
		if idx := strings.IndexByte(s[1:], s[0]); idx != -1 {
			return s[1 : idx+1]
		}
		return ""
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return trimCSSString(fields[0])
}

func trimCSSString(v string) string {
	vv := strings.TrimSpace(v)
	if len(vv) >= 2 {
		if (vv[0] == '"' && vv[len(vv)-1] == '"') || (vv[0] == '\'' && vv[len(vv)-1] == '\'') {
			return vv[1 : len(vv)-1]
		}
	}
	return vv
}

func resolveImportURL(base, href string) string {
	bu, err := url.Parse(base)
	if err != nil {
		return ""
	}
	hu, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return bu.ResolveReference(hu).String()
}
