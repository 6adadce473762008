// Package server exposes the stored datasets over a narrow read-only
// HTTP surface (spec §6, SPEC_FULL.md §4.9). It never mutates the store:
// handlers are built against ReadOnlyStore, an interface with no
// Append/Clear method, so there is no code path from a request to a
// write regardless of what route a future handler might add.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/standardbeagle/codecollage/internal/store"
	"github.com/standardbeagle/codecollage/internal/types"
)

// ReadOnlyStore is the slice of *store.Store the HTTP surface is allowed
// to see. A *store.Store is wrapped in storeView (NewReadOnlyStore) to
// satisfy it; nothing here can reach Append or Clear.
type ReadOnlyStore interface {
	LoadSnippets() ([]types.Snippet, error)
	LoadClusters() ([]types.Cluster, error)
	LoadPatterns() ([]types.Pattern, error)
}

// storeView adapts a *store.Store to ReadOnlyStore.
type storeView struct{ s *store.Store }

func NewReadOnlyStore(s *store.Store) ReadOnlyStore { return storeView{s: s} }

func (v storeView) LoadSnippets() ([]types.Snippet, error) {
	return store.LoadAll[types.Snippet](v.s, store.Snippets)
}

func (v storeView) LoadClusters() ([]types.Cluster, error) {
	return store.LoadAll[types.Cluster](v.s, store.Clusters)
}

func (v storeView) LoadPatterns() ([]types.Pattern, error) {
	return store.LoadAll[types.Pattern](v.s, store.Patterns)
}

// Server serves the five read-only endpoints of spec §6 over chi.
type Server struct {
	store  ReadOnlyStore
	root   string
	router *chi.Mux
	server *http.Server
}

// New builds a Server listening on addr (host:port) and routes its five
// endpoints against store. Snippet file paths in every response are
// rendered relative to root (pkg/pathutil), matching every other
// user-facing surface.
func New(addr string, ro ReadOnlyStore, root string) *Server {
	s := &Server{store: ro, root: root}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.getStats)
		r.Get("/clusters", s.listClusters)
		r.Get("/clusters/{id}", s.getCluster)
		r.Get("/snippets/{id}", s.getSnippet)
		r.Get("/patterns", s.listPatterns)
	})

	s.router = r
	s.server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
