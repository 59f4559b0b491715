// Package devserver is a stub news backend for local development. It serves
// the HTTP/JSON contract the client expects: bearer JWT auth, paged news,
// categories, summaries, comments and likes.
package devserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/and161185/newsdesk/internal/service"
)

// DefaultBasePath is where the API is mounted.
const DefaultBasePath = "/api"

// Server wires services into HTTP handlers.
type Server struct {
	auth    service.AuthService
	content *Content
	log     *zap.Logger
	mux     *chi.Mux
}

// New constructs the server and registers every route under basePath.
func New(auth service.AuthService, content *Content, log *zap.Logger, basePath string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if basePath == "" {
		basePath = DefaultBasePath
	}
	s := &Server{auth: auth, content: content, log: log, mux: chi.NewRouter()}

	s.mux.Use(middleware.RequestID)
	s.mux.Use(middleware.RealIP)
	s.mux.Use(identify(auth))
	s.mux.Use(Logging(log))
	s.mux.Use(Recover(log))
	s.mux.Use(middleware.Timeout(30 * time.Second))

	s.mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})
	s.mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
	s.mux.Route(basePath, s.routes)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func (s *Server) routes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/register", s.register)
		r.Post("/logout", s.logout)
		r.Post("/refresh", s.refresh)
		r.With(requireAuth).Get("/me", s.me)
	})

	r.Route("/news", func(r chi.Router) {
		r.Get("/", s.listNews)
		r.Get("/search", s.searchNews)
		r.Get("/hot", s.hotNews)
		r.Get("/latest", s.latestNews)
		r.Get("/{id}", s.getNews)
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/statistics", s.statistics)
			r.Post("/", s.createNews)
			r.Put("/{id}", s.updateNews)
			r.Delete("/{id}", s.deleteNews)
		})
	})

	r.Get("/categories", s.listCategories)

	r.Route("/summaries", func(r chi.Router) {
		r.Get("/news/{newsID}", s.getSummary)
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/generate/batch", s.generateBatch)
			r.Post("/generate/{newsID}", s.generateSummary)
		})
	})

	r.Route("/comments", func(r chi.Router) {
		r.Get("/news/{newsID}", s.listComments)
		r.Get("/news/{newsID}/count", s.commentCount)
		r.With(requireAuth).Post("/", s.createComment)
		r.With(requireAuth).Delete("/{id}", s.deleteComment)
	})

	r.Route("/likes/news/{newsID}", func(r chi.Router) {
		r.Get("/count", s.likeCount)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", s.like)
			r.Delete("/", s.unlike)
			r.Get("/status", s.likeStatus)
		})
	})
}
