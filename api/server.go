package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DeafMist/federal-archive/backend/internal/auth"
	"github.com/DeafMist/federal-archive/backend/internal/docstore"
	"github.com/DeafMist/federal-archive/backend/internal/forms"
	"github.com/DeafMist/federal-archive/backend/internal/models"
	"github.com/DeafMist/federal-archive/backend/internal/query"
	"github.com/DeafMist/federal-archive/backend/internal/render"
	"github.com/DeafMist/federal-archive/backend/internal/session"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

// documentStore is the part of docstore.Store the handlers use.
type documentStore interface {
	query.Store
	Insert(ctx context.Context, collection string, record models.Document) (string, error)
	Get(ctx context.Context, collection, id string) (models.Document, error)
	Update(ctx context.Context, collection, id string, partial map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Subscribe(collection string, onChange func([]models.Document), onError func(error)) func()
}

type server struct {
	log      *slog.Logger
	scope    string
	health   healthChecker
	store    documentStore
	planner  *query.Planner
	render   *render.Renderer
	auth     *auth.Authenticator
	sessions *session.Registry
	gatherer prometheus.Gatherer
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/session", s.handleCreateSession)
		r.With(s.optionalSession).Get("/views/{route}", s.handleView)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/session", s.handleGetSession)
			r.Post("/session/login", s.handleLogin)
			r.Post("/session/logout", s.handleLogout)
			r.Get("/search/{category}", s.handleSearch)
			r.Get("/documents/{id}", s.handleDocument)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireSession, s.requireAdmin)
			r.Get("/documents", s.handleAdminList)
			r.Get("/documents/stream", s.handleAdminStream)
			r.Post("/documents", s.handleCreateDocument)
			r.Put("/documents/{id}", s.handleUpdateDocument)
			r.Delete("/documents/{id}", s.handleDeleteDocument)
			r.Get("/forms/{type}", s.handleForm)
		})
	})

	return r
}

// collectionFor picks the collection a session reads and writes.
func (s *server) collectionFor(id auth.Identity) string {
	return docstore.Collection(s.scope, id.UID)
}

type errorResponse struct {
	Error  string             `json:"error"`
	Fields []forms.FieldError `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.health.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps an error to its HTTP status. Anything unrecognised is a store
// failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrImmutableType),
		errors.Is(err, models.ErrMembershipLimit):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotReady):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	if status == http.StatusBadGateway {
		s.logFailure(r, err)
	}
	writeJSON(w, status, resp)
}

func (s *server) logFailure(r *http.Request, err error) {
	s.log.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Any("err", err),
	)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return &forms.ValidationError{Fields: []forms.FieldError{{Field: "body", Message: err.Error()}}}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
