// Command ogstub is a fixed-document HTTP server for local testing: GET /
// returns one HTML page carrying the three Open Graph tags, anything else is
// a 404. LATENCY delays each response so timeout behavior can be exercised.
package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

const page = `<!doctype html>
<html>
<head>
<meta property="og:title" content="Stub Page" />
<meta property="og:description" content="A fixed document served by ogstub" />
<meta property="og:image" content="https://example.com/stub.png" />
</head>
<body>
<p>ogstub test document</p>
</body>
</html>
`

func main() {
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8080"
	}
	var latency time.Duration
	if v := strings.TrimSpace(os.Getenv("LATENCY")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("bad LATENCY %q: %v", v, err)
		}
		latency = d
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if latency > 0 {
			time.Sleep(latency)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(page))
	})

	log.Printf("ogstub listening on %s (latency %s)", addr, latency)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
