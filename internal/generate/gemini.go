// Package generate turns an extracted design context into a static page.
// It is a thin collaborator around the Gemini API; the context it
// receives is read-only input, never mutated.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"restyle/extract"
)

const defaultModel = "gemini-2.0-flash"

// ErrEmptyResponse means the model returned no usable candidate.
var ErrEmptyResponse = errors.New("generate: empty model response")

// Result is the generated page split into its HTML document and the CSS
// lifted from its <style> block for preview purposes.
type Result struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
}

// Gemini generates pages from design contexts via the genai client.
type Gemini struct {
	cli    *genai.Client
	model  string
	logger *log.Logger
}

func NewGemini(ctx context.Context, apiKey, model string, logger *log.Logger) (*Gemini, error) {
	if logger == nil {
		logger = log.Default()
	}
	if model == "" {
		model = defaultModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Gemini{cli: cli, model: model, logger: logger}, nil
}

// Generate prompts the model with the serialized design context and
// splits the reply into HTML and CSS. Transient failures are retried a
// bounded number of times with backoff.
func (g *Gemini) Generate(ctx context.Context, dc *extract.DesignContext) (*Result, error) {
	prompt := buildPrompt(dc)
	g.logger.Printf("GEN request model=%s prompt=%d bytes", g.model, len(prompt))

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			nil,
		)
		if err != nil {
			lastErr = err
		} else if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = ErrEmptyResponse
		} else {
			text := resp.Candidates[0].Content.Parts[0].Text
			result, err := splitGenerated(text)
			if err != nil {
				lastErr = err
			} else {
				return result, nil
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
		}
	}
	return nil, lastErr
}

func buildPrompt(dc *extract.DesignContext) string {
	serialized, _ := json.MarshalIndent(dc, "", "  ")
	return `You are an expert front-end web developer recreating a static HTML and CSS version of a web page from the structured design context below.

Your output must:
- Reproduce the described layout and visual style as closely as possible.
- Use only vanilla HTML and CSS (no JS, React, or Tailwind).
- Prefer semantic HTML5 tags (<nav>, <header>, <section>, <footer>, ...).
- Use clean class names and embed all styles in a single <style> block inside <head>.
- Place the provided images and headings in the matching layout blocks.
- Match the font families and color palette closely.

Only output the complete HTML file. Do not include comments, explanations, or markdown formatting.

Design Context:
` + string(serialized)
}

// splitGenerated accepts either a fenced code block or a bare HTML
// document and lifts the first <style> body out as the CSS field.
func splitGenerated(text string) (*Result, error) {
	htmlDoc := stripFence(text)
	trimmed := strings.TrimSpace(htmlDoc)
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "<!doctype html") && !strings.HasPrefix(lower, "<html") {
		return nil, fmt.Errorf("generate: response is not an HTML document")
	}
	return &Result{HTML: trimmed, CSS: extractStyleBlock(trimmed)}, nil
}

func stripFence(text string) string {
	s := strings.TrimSpace(text)
	for _, fence := range []string{"```html", "```"} {
		if strings.HasPrefix(s, fence) {
			s = s[len(fence):]
			if end := strings.LastIndex(s, "```"); end != -1 {
				s = s[:end]
			}
			return strings.TrimSpace(s)
		}
	}
	return s
}

func extractStyleBlock(doc string) string {
	lower := strings.ToLower(doc)
	open := strings.Index(lower, "<style")
	if open == -1 {
		return ""
	}
	bodyStart := strings.IndexByte(doc[open:], '>')
	if bodyStart == -1 {
		return ""
	}
	bodyStart += open + 1
	end := strings.Index(lower[bodyStart:], "</style>")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(doc[bodyStart : bodyStart+end])
}
