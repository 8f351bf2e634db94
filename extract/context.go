// Package extract derives a structured design context from a fetched web
// page: dominant colors, font stacks, a coarse layout skeleton,
// representative text, and image/stylesheet references. The pipeline is
// pure computation: all network access belongs to the fetch collaborator
// that supplies the RawPageBundle.
package extract

import (
	"errors"
	"log"
)

// Output caps. Every sequence in a DesignContext is bounded so the
// serialized context stays a reasonable prompt payload.
const (
	maxColors     = 10
	maxImages     = 10
	maxHeadings   = 10
	maxParagraphs = 10
	maxButtons    = 10
	maxSnippetLen = 2048
)

// ErrMalformedDocument is returned when the input HTML cannot be parsed
// into anything resembling a document. No partial context is produced.
var ErrMalformedDocument = errors.New("extract: malformed document")

// CSSOrigin tells where a CSS source came from.
type CSSOrigin string

const (
	CSSOriginInline CSSOrigin = "inline"
	CSSOriginLinked CSSOrigin = "linked"
)

// CSSSource is one CSS text supplied alongside the page HTML.
type CSSSource struct {
	Origin CSSOrigin
	Text   string
}

// Viewport carries the dimensions the page was rendered at.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RawPageBundle is the fetch result consumed by extraction. It is treated
// as immutable: extraction never modifies it and holds no reference to it
// after returning.
type RawPageBundle struct {
	HTML       string
	CSSSources []CSSSource
	Screenshot []byte
	Viewport   Viewport
	SourceURL  string
}

// ImageRef is one referenced image, src resolved against the page URL.
type ImageRef struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// TextSnippets groups the representative text pulled from the page.
type TextSnippets struct {
	Headings   []string `json:"headings"`
	Paragraphs []string `json:"paragraphs"`
	Buttons    []string `json:"buttons"`
}

// DesignContext is the immutable result of extraction. Field names match
// the canonical wire shape exactly.
type DesignContext struct {
	Title          string       `json:"title"`
	Layout         []string     `json:"layout"`
	ColorPalette   []string     `json:"color_palette"`
	Fonts          []string     `json:"fonts"`
	Images         []ImageRef   `json:"images"`
	TextSnippets   TextSnippets `json:"text_snippets"`
	CSSLinks       []string     `json:"css_links"`
	RawHTMLSnippet string       `json:"raw_html_snippet"`
}

// Options tunes extraction. The zero value is usable.
type Options struct {
	// MaxFonts caps the fonts list. 0 means unlimited (deduplicated).
	MaxFonts int
	// Logger receives diagnostics for non-fatal stage failures.
	// Nil means log.Default().
	Logger *log.Logger
}

func (o *Options) logger() *log.Logger {
	if o == nil || o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

func (o *Options) maxFonts() int {
	if o == nil {
		return 0
	}
	return o.MaxFonts
}
