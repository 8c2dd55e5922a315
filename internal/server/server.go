// Package server exposes grading and passage reads over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abhisek/readcheck/internal/auth"
	"github.com/abhisek/readcheck/internal/content"
	"github.com/abhisek/readcheck/internal/grading"
	"github.com/abhisek/readcheck/internal/metrics"
	"github.com/abhisek/readcheck/internal/store"
)

// Grader grades one submission.
type Grader interface {
	GradeSubmission(ctx context.Context, p auth.Principal, passageID string, sub content.Submission) (*grading.Result, error)
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Grader   Grader
	Passages store.PassageRepo
	Attempts store.AttemptRepo
	Tokens   *auth.Tokens
	Metrics  *metrics.Metrics
	Log      *zap.Logger

	// CORSOrigins lists allowed origins; empty allows any.
	CORSOrigins []string
}

type Server struct {
	deps     Deps
	log      *zap.Logger
	validate *validator.Validate
	router   chi.Router
}

func New(deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	s := &Server{
		deps:     deps,
		log:      deps.Log,
		validate: validator.New(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(s.requestLog)

	origins := s.deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.deps.Metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(s.principal)
		api.Get("/passages", s.listPassages)
		api.Get("/passages/{passageID}", s.getPassage)
		api.Post("/passages/{passageID}/grade", s.gradePassage)
		api.Get("/passages/{passageID}/attempts", s.listAttempts)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.log.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
