package api

import (
	"context"
	"net/http"
	"time"

	"tipster/domain/entities"
	"tipster/domain/interfaces"
	"tipster/infrastructure/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Actor headers; session handling lives outside this service
const (
	HeaderUserID     = "X-User-ID"
	HeaderAccessCode = "X-Access-Code"
)

// Server exposes the prediction, statistics and account operations over HTTP
type Server struct {
	predictions interfaces.PredictionService
	stats       interfaces.StatsService
	users       interfaces.UserService
	moderation  interfaces.ModerationPolicy
	now         func() time.Time
	mux         *chi.Mux
}

// NewServer creates the HTTP server and registers its routes
func NewServer(
	predictions interfaces.PredictionService,
	stats interfaces.StatsService,
	users interfaces.UserService,
	moderation interfaces.ModerationPolicy,
) *Server {
	s := &Server{
		predictions: predictions,
		stats:       stats,
		users:       users,
		moderation:  moderation,
		now:         time.Now,
		mux:         chi.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(recordMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/predictions", func(r chi.Router) {
			r.Post("/", s.handleSubmitPrediction)
			r.Get("/active", s.handleListActive)
			r.Delete("/{id}", s.handleDeletePrediction)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/predictions/pending", s.handleListPending)
			r.Get("/predictions/waiting", s.handleListWaiting)
			r.Post("/predictions/{id}/validate", s.handleValidatePrediction)
			r.Post("/predictions/{id}/reject", s.handleRejectPrediction)
			r.Post("/predictions/{id}/result", s.handleRecordResult)
			r.Post("/sweep", s.handleSweep)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.handleRegister)
			r.Post("/availability", s.handleAvailability)
			r.Post("/resolve-pseudo", s.handleResolvePseudo)
			r.Get("/{id}/predictions", s.handleListByUser)
			r.Get("/{id}/stats", s.handleUserStats)
			r.Get("/{id}/profile", s.handleUserProfile)
			r.Put("/{id}/email", s.handleSetEmail)
		})

		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// actorFromRequest reads the caller identity from the actor headers
func actorFromRequest(r *http.Request) entities.Actor {
	return entities.Actor{
		UserID:     r.Header.Get(HeaderUserID),
		AccessCode: r.Header.Get(HeaderAccessCode),
	}
}

// recordMetrics counts requests per route pattern
func recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.GetMetrics().RecordHTTPRequest(route, status, time.Since(start))
	})
}

// requireModerator rejects callers without moderator rights
func (s *Server) requireModerator(ctx context.Context, actor entities.Actor) error {
	ok, err := s.moderation.CanModerate(ctx, actor)
	if err != nil {
		return err
	}
	if !ok {
		return entities.ErrForbidden("moderator rights required")
	}
	return nil
}
