// Command ctxdump runs a one-shot extraction against a URL or a local
// HTML file and prints the resulting design context as indented JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"restyle/extract"
	"restyle/internal/fetch"
)

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "overall fetch+extract timeout")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ctxdump [-timeout 30s] <url-or-file>")
		os.Exit(2)
	}
	target := flag.Arg(0)

	var bundle *extract.RawPageBundle
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		client := fetch.NewClient(fetch.Options{})
		b, err := client.Fetch(ctx, target)
		if err != nil {
			log.Fatalf("fetch %s: %v", target, err)
		}
		bundle = b
	} else {
		data, err := os.ReadFile(target)
		if err != nil {
			log.Fatalf("read %s: %v", target, err)
		}
		bundle = &extract.RawPageBundle{HTML: string(data), SourceURL: "file://" + target}
	}

	dc, err := extract.Extract(bundle)
	if err != nil {
		log.Fatalf("extract: %v", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(dc); err != nil {
		log.Fatal(err)
	}
}
