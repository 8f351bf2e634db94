package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"restyle/extract"
	"restyle/internal/fetch"
	"restyle/internal/generate"
)

const maxGenerateBody = 1 << 20

// extractResponse is the design context plus the screenshot-derived
// profile when the fetch path produced one.
type extractResponse struct {
	*extract.DesignContext
	Screenshot *extract.ScreenshotProfile `json:"screenshot,omitempty"`
}

type generateRequest struct {
	URL     string            `json:"url"`
	Options map[string]string `json:"options,omitempty"`
}

type generateResponse struct {
	HTML          string                     `json:"html"`
	CSS           string                     `json:"css"`
	DesignContext *extract.DesignContext     `json:"design_context"`
	Screenshot    *extract.ScreenshotProfile `json:"screenshot,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": s.cfg.Banner})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleExtract fetches the URL named by the query parameter and returns
// its design context as JSON.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}
	dc, shot, err := s.extractURL(r.Context(), target)
	if err != nil {
		s.writeExtractError(w, target, err)
		return
	}
	writeJSON(w, http.StatusOK, extractResponse{DesignContext: dc, Screenshot: shot})
}

// handleGenerate runs the full pipeline: extract the design context for
// the requested URL, then ask the generator for a restyled page.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "generation is not configured")
		return
	}

	var req generateRequest
	body := io.LimitReader(r.Body, maxGenerateBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	target := strings.TrimSpace(req.URL)
	if target == "" {
		writeError(w, http.StatusBadRequest, "missing url field")
		return
	}

	dc, shot, err := s.extractURL(r.Context(), target)
	if err != nil {
		s.writeExtractError(w, target, err)
		return
	}
	result, err := s.generator.Generate(r.Context(), dc)
	if err != nil {
		s.logger.Printf("API generate %s: %v", target, err)
		if errors.Is(err, generate.ErrEmptyResponse) {
			writeError(w, http.StatusBadGateway, "model returned no usable output")
			return
		}
		writeError(w, http.StatusInternalServerError, "generation failed")
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{
		HTML:          result.HTML,
		CSS:           result.CSS,
		DesignContext: dc,
		Screenshot:    shot,
	})
}

// extractURL is the shared fetch-then-extract path behind both API
// endpoints, fronted by the TTL cache.
func (s *Server) extractURL(ctx context.Context, target string) (*extract.DesignContext, *extract.ScreenshotProfile, error) {
	if dc, shot, ok := s.cache.get(target); ok {
		s.logger.Printf("API cache hit for %s", target)
		return dc, shot, nil
	}
	if s.fetcher == nil {
		return nil, nil, errors.New("no fetcher configured")
	}
	bundle, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, nil, err
	}
	dc, err := extract.ExtractWithOptions(bundle, &extract.Options{
		MaxFonts: s.cfg.MaxFonts,
		Logger:   s.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	shot := extract.ProfileScreenshot(bundle.Screenshot)
	s.cache.store(target, dc, shot)
	return dc, shot, nil
}

// writeExtractError maps pipeline failures onto API statuses: every fetch
// failure and unusable page is the caller's 400, anything else is a 500.
func (s *Server) writeExtractError(w http.ResponseWriter, target string, err error) {
	s.logger.Printf("API extract %s: %v", target, err)
	var fe *fetch.Error
	switch {
	case errors.As(err, &fe):
		writeError(w, http.StatusBadRequest, fe.Reason)
	case errors.Is(err, extract.ErrMalformedDocument):
		writeError(w, http.StatusBadRequest, "page could not be parsed as an HTML document")
	default:
		writeError(w, http.StatusInternalServerError, "extraction failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
