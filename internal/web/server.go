package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/postcode-geocoder/internal/refdata"
	"github.com/postcode-geocoder/internal/spatial"
)

// Server exposes postcode lookup, batch geocoding and spatial queries
// over HTTP. Both indexes are built before the server starts and are
// read-only, so handlers share them without locking.
type Server struct {
	addr       string
	index      *refdata.Index
	spatial    *spatial.Index
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a server over a built reference index. The spatial
// index may be nil, in which case the nearest endpoint reports 503.
func NewServer(addr string, index *refdata.Index, sp *spatial.Index) *Server {
	s := &Server{
		addr:    addr,
		index:   index,
		spatial: sp,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/postcode/{code}", s.lookupPostcode).Methods("GET")
	api.HandleFunc("/geocode", s.geocodeBatch).Methods("POST")
	api.HandleFunc("/nearest", s.nearest).Methods("GET")
	api.HandleFunc("/stats", s.stats).Methods("GET")

	s.router.Use(requestLogging)
}

// Start runs the server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		fmt.Printf("Starting server on http://%s\n", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	<-stop
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("Server shutdown error: %v\n", err)
	}

	fmt.Println("Server stopped")
	return nil
}

// Handler returns the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestLogging logs each request with its duration.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}
