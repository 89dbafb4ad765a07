// Package http exposes the companion over a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"care-companion/internal/core"
	"care-companion/pkg"

	"github.com/go-chi/chi/v5"
)

// AlertLister returns recently raised caregiver alerts.
type AlertLister interface {
	ListAlerts(ctx context.Context, limit int) ([]pkg.Alert, error)
}

// AlertSource streams alerts as they are raised.
type AlertSource interface {
	Listen(ctx context.Context) (<-chan pkg.Alert, error)
}

// Server bundles the dependencies of the HTTP handlers.  It implements
// http.Handler so it can be passed straight to an http.Server.
type Server struct {
	Companion *core.Companion
	Alerts    AlertLister
	Stream    AlertSource
	Model     string
	Logger    *slog.Logger

	router chi.Router
}

// NewServer builds the router.  alerts and stream may be nil, in which case
// the alert routes are not mounted.
func NewServer(companion *core.Companion, alerts AlertLister, stream AlertSource, model string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Companion: companion,
		Alerts:    alerts,
		Stream:    stream,
		Model:     model,
		Logger:    logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(s.Logger))
	r.Use(Recovery(s.Logger))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)

		r.Route("/medications", func(r chi.Router) {
			r.Get("/", s.handleListMedications)
			r.Post("/", s.handleAddMedication)
			r.Delete("/", s.handleRemoveMedicationsByName)
			r.Delete("/{id}", s.handleRemoveMedication)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleNewChat)
			r.Put("/active", s.handleSwitchSession)
			r.Get("/{name}", s.handleHistory)
			r.Delete("/{name}", s.handleDeleteSession)
			r.Post("/{name}/summary", s.handleSummary)
		})

		r.Post("/messages", s.handlePostMessage)

		if s.Alerts != nil {
			r.Get("/alerts", s.handleListAlerts)
		}
		if s.Stream != nil {
			r.Get("/alerts/stream", s.handleAlertStream)
		}
	})
	return r
}
