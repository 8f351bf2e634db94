// Package server exposes the design-context pipeline over HTTP: a small
// JSON API with permissive CORS, request logging, and an optional
// caller-side TTL cache of extraction results.
package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"restyle/extract"
	"restyle/internal/generate"
)

const defaultBanner = "restyle design context and generation service is running"

// Fetcher retrieves a page bundle for extraction. Implemented by
// internal/fetch; abstracted here so handler tests can stub it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*extract.RawPageBundle, error)
}

// Generator synthesizes a static page from a design context.
type Generator interface {
	Generate(ctx context.Context, dc *extract.DesignContext) (*generate.Result, error)
}

// Config describes server wiring and runtime behaviour.
type Config struct {
	Banner    string
	CacheTTL  time.Duration
	MaxFonts  int
	Logger    *log.Logger
	Clock     func() time.Time
	Fetcher   Fetcher
	Generator Generator
}

// DefaultConfig populates configuration from environment variables.
func DefaultConfig() Config {
	cfg := Config{
		Banner: defaultBanner,
		Logger: log.Default(),
		Clock:  time.Now,
	}
	if raw := strings.TrimSpace(os.Getenv("RESTYLE_CACHE_TTL")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.CacheTTL = d
		} else if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.CacheTTL = time.Duration(n) * time.Second
		}
	}
	if raw := strings.TrimSpace(os.Getenv("RESTYLE_MAX_FONTS")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.MaxFonts = n
		}
	}
	return cfg
}

// Server exposes the HTTP handlers implementing the API.
type Server struct {
	cfg       Config
	mux       *http.ServeMux
	handler   http.Handler
	logger    *log.Logger
	cache     *contextCache
	clock     func() time.Time
	fetcher   Fetcher
	generator Generator
}

// New wires a server with the provided configuration.
func New(cfg Config) *Server {
	if cfg.Banner == "" {
		cfg.Banner = defaultBanner
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	s := &Server{
		cfg:       cfg,
		mux:       http.NewServeMux(),
		logger:    cfg.Logger,
		cache:     newContextCache(cfg.Clock, cfg.CacheTTL),
		clock:     cfg.Clock,
		fetcher:   cfg.Fetcher,
		generator: cfg.Generator,
	}
	s.registerRoutes()
	s.handler = withLogging(s.logger, withCORS(s.mux))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/ping", s.handlePing)
	s.mux.HandleFunc("/api/extract", s.handleExtract)
	s.mux.HandleFunc("/api/generate", s.handleGenerate)
}
