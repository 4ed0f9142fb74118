// Package devtools serves local debugging endpoints in dev mode only:
// the diagnostic ring buffer, cache statistics, and manual invalidation.
package devtools

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/bilingua-nb/bilingua-client/internal/cache"
	"github.com/bilingua-nb/bilingua-client/internal/storage"
)

// Server is the loopback dev-tools HTTP server.
type Server struct {
	store *cache.Store
	db    *storage.ClientDB
	http  *http.Server
}

// New wires the dev-tools server. It does not listen until Start.
func New(addr string, store *cache.Store, db *storage.ClientDB) *Server {
	s := &Server{store: store, db: db}

	r := mux.NewRouter()
	r.Use(logRequests)
	r.HandleFunc("/diagnostics", s.handleDiagnostics).Methods(http.MethodGet)
	r.HandleFunc("/cache/stats", s.handleCacheStats).Methods(http.MethodGet)
	r.HandleFunc("/cache/invalidate", s.handleInvalidate).Methods(http.MethodPost)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Start listens in the background.
func (s *Server) Start() {
	go func() {
		jww.INFO.Printf("devtools: listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			jww.ERROR.Printf("devtools: %v", err)
		}
	}()
}

// Stop shuts the listener down.
func (s *Server) Stop() {
	s.http.Close()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jww.DEBUG.Printf("devtools: %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	entries, err := s.db.Diagnostics()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"diagnostics": entries})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Stats())
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keys []string `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Keys) == 0 {
		http.Error(w, "body must be {\"keys\": [...]}", http.StatusBadRequest)
		return
	}
	s.store.Invalidate(r.Context(), req.Keys...)
	writeJSON(w, map[string]interface{}{"invalidated": req.Keys})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
