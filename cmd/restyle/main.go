// Command restyle serves the design-context extraction and page
// generation API.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"restyle/internal/fetch"
	"restyle/internal/generate"
	"restyle/internal/server"
)

func main() {
	addrFlag := flag.String("addr", ":8080", "listen address, e.g. :80 or 0.0.0.0:8080")
	flag.Parse()
	addr := *addrFlag
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetOutput(os.Stdout)
	_ = godotenv.Load()

	cfg := server.DefaultConfig()
	cfg.Logger = log.Default()

	var browser *fetch.Browser
	if v := os.Getenv("RESTYLE_BROWSER"); v != "" && v != "0" && v != "off" {
		b, err := fetch.NewBrowser(cfg.Logger)
		if err != nil {
			log.Printf("browser disabled: %v", err)
		} else {
			browser = b
			defer browser.Close()
			log.Printf("browser fetch enabled")
		}
	}
	cfg.Fetcher = fetch.NewClient(fetch.Options{Browser: browser, Logger: cfg.Logger})

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		g, err := generate.NewGemini(context.Background(), key, os.Getenv("GEMINI_MODEL"), cfg.Logger)
		if err != nil {
			log.Printf("generation disabled: %v", err)
		} else {
			cfg.Generator = g
			log.Printf("generation enabled")
		}
	} else {
		log.Printf("GEMINI_API_KEY not set; /api/generate will return 503")
	}

	srv := &http.Server{
		Addr:     addr,
		Handler:  server.New(cfg),
		ErrorLog: log.New(os.Stdout, "HTTPERR ", log.LstdFlags|log.Lmicroseconds),
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Listen error on %s: %v", addr, err)
	}
	log.Println("Listening on", addr)
	log.Fatal(srv.Serve(ln))
}
