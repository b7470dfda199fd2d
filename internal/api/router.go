package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/mockview/internal/api/middleware"
	"github.com/kiranshivaraju/mockview/internal/api/response"
	"go.uber.org/zap"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Logger    *zap.Logger
	Metrics   mw.RequestObserver
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler  http.HandlerFunc
	MetricsHandler http.Handler

	RegisterHandler http.HandlerFunc
	MeHandler       http.HandlerFunc

	CreateInterview http.HandlerFunc
	ListInterviews  http.HandlerFunc
	GetInterview    http.HandlerFunc
	UpdateStatus    http.HandlerFunc
	SaveAnswer      http.HandlerFunc
	Feedback        http.HandlerFunc
	DeleteInterview http.HandlerFunc
	BulkDelete      http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery(logger))
	if deps.Metrics != nil {
		r.Use(mw.Metrics(deps.Metrics))
	}

	// Public routes
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	r.Post("/api/v1/users", orNotImplemented(deps.RegisterHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Get("/api/v1/me", orNotImplemented(deps.MeHandler))

		r.Route("/api/v1/interviews", func(r chi.Router) {
			r.Post("/", orNotImplemented(deps.CreateInterview))
			r.Get("/", orNotImplemented(deps.ListInterviews))
			r.Post("/bulk-delete", orNotImplemented(deps.BulkDelete))

			r.Get("/{id}", orNotImplemented(deps.GetInterview))
			r.Delete("/{id}", orNotImplemented(deps.DeleteInterview))
			r.Patch("/{id}/status", orNotImplemented(deps.UpdateStatus))
			r.Put("/{id}/answers/{index}", orNotImplemented(deps.SaveAnswer))
			r.Post("/{id}/feedback", orNotImplemented(deps.Feedback))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
