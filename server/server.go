// Package server exposes the editor sessions, post storage, drafting and the
// public blog over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"site_cms/document"
	"site_cms/editor"
	"site_cms/generator"
	"site_cms/post"
)

const draftTimeout = 60 * time.Second

type Options struct {
	// SanitizeHTML passes public post bodies through the post policy.
	SanitizeHTML bool
}

type Server struct {
	posts    *post.Service
	agent    *generator.Agent
	logger   *logrus.Logger
	opts     Options
	sessions *sessionStore
}

// New wires the handlers. agent may be nil, in which case drafting answers
// 503.
func New(posts *post.Service, agent *generator.Agent, logger *logrus.Logger, opts Options) (*Server, error) {
	if posts == nil {
		return nil, errors.New("post service required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		posts:    posts,
		agent:    agent,
		logger:   logger,
		opts:     opts,
		sessions: newStore(),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.handleSessionCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionGet)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleSessionDelete)
	mux.HandleFunc("POST /api/sessions/{id}/commands", s.handleSessionCommand)
	mux.HandleFunc("POST /api/sessions/{id}/save", s.handleSessionSave)
	mux.HandleFunc("POST /api/drafts", s.handleDraftCreate)
	mux.HandleFunc("POST /api/drafts/{id}/revise", s.handleDraftRevise)
	mux.HandleFunc("GET /api/posts", s.handlePostList)
	mux.HandleFunc("DELETE /api/posts/{id}", s.handlePostDelete)
	mux.HandleFunc("GET /api/categories", s.handleCategoryList)
	mux.HandleFunc("POST /api/categories", s.handleCategorySave)
	mux.HandleFunc("GET /blog/{slug}", s.handleBlogPost)
	mux.Handle("GET /metrics", promhttp.Handler())
	return s.logMiddleware(mux)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, post.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, post.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, post.ErrInvalidPost), errors.Is(err, generator.ErrEmptyTopic):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrClosed):
		return http.StatusGone
	case errors.Is(err, document.ErrMalformedTree),
		errors.Is(err, document.ErrUnsupportedOperation),
		errors.Is(err, document.ErrInvalidAttribute),
		errors.Is(err, document.ErrInvalidChildType),
		errors.Is(err, document.ErrInvalidNodeKind),
		errors.Is(err, document.ErrTreeTooDeep):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	http.Error(w, err.Error(), code)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("http request")
	})
}
