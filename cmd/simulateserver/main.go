// Command simulateserver is the reference HTTP server for the simulation
// engine, grounded in the corpus's cmd/server/main.go CORS-wrapped
// net/http mux, adapted from an MCP tool-calling surface to the plain
// REST/SSE contract in spec.md §6.
package main

import (
	"flag"
	"log"
	"net/http"
	"strings"

	"github.com/fiscalsim/engine/internal/api"
	"github.com/fiscalsim/engine/internal/config"
	"github.com/fiscalsim/engine/internal/store"
)

func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "content-type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// simulationsRouter dispatches /simulations, /simulations/{id}, and
// /simulations/{id}/events off of one handler, since net/http's pre-1.22
// ServeMux cannot pattern-match path segments.
func simulationsRouter(s *api.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trimmed := strings.TrimPrefix(r.URL.Path, "/simulations")
		trimmed = strings.Trim(trimmed, "/")

		if trimmed == "" {
			s.HandleCreate(w, r)
			return
		}

		segments := strings.Split(trimmed, "/")
		id := segments[0]
		if len(segments) == 1 {
			s.HandleGet(w, r, id)
			return
		}
		if len(segments) == 2 && segments[1] == "events" {
			s.HandleEvents(w, r, id)
			return
		}
		http.NotFound(w, r)
	}
}

// patternsRouter dispatches /companies/{companyId}/patterns.
func patternsRouter(s *api.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trimmed := strings.TrimPrefix(r.URL.Path, "/companies")
		trimmed = strings.Trim(trimmed, "/")
		segments := strings.Split(trimmed, "/")
		if len(segments) != 2 || segments[1] != "patterns" {
			http.NotFound(w, r)
			return
		}
		companyID := segments[0]
		switch r.Method {
		case http.MethodPut:
			s.HandleSavePattern(w, r, companyID)
		case http.MethodGet:
			s.HandleListPatterns(w, r, companyID)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config override")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var patternStore store.PatternStore
	if cfg.DBPath != "" {
		boltStore, err := store.NewBoltPatternStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("open pattern store: %v", err)
		}
		defer boltStore.Close()
		patternStore = boltStore
	} else {
		patternStore = store.NewMemoryPatternStore()
	}

	results := store.NewMemoryResultSink()
	server := api.NewServer(patternStore, results)

	http.HandleFunc("/simulations", corsMiddleware(simulationsRouter(server)))
	http.HandleFunc("/simulations/", corsMiddleware(simulationsRouter(server)))
	http.HandleFunc("/companies/", corsMiddleware(patternsRouter(server)))
	http.HandleFunc("/health", corsMiddleware(server.HandleHealth))

	log.Printf("fiscal simulation engine listening on %s", cfg.ListenAddr)
	log.Printf("  POST /simulations          - start a simulation")
	log.Printf("  GET  /simulations/{id}     - fetch results")
	log.Printf("  GET  /simulations/{id}/events - SSE progress stream")
	log.Printf("  PUT  /companies/{id}/patterns - upsert a pattern")
	log.Printf("  GET  /companies/{id}/patterns - list patterns")
	log.Printf("  GET  /health               - health check")

	if err := http.ListenAndServe(cfg.ListenAddr, nil); err != nil {
		log.Fatal(err)
	}
}
