package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/events"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/service"
)

const DefaultHeartbeat = 15 * time.Second

type eventSource interface {
	Subscribe(ctx context.Context, sessionID string) (<-chan events.Event, func())
}

// NewRouter - builds the HTTP API. Other transports can be mounted on the returned router.
func NewRouter(logger *slog.Logger, game service.GameService, source eventSource, heartbeat time.Duration) *chi.Mux {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}

	h := &handlers{
		logger:    logger.With("component", "rest"),
		game:      game,
		source:    source,
		heartbeat: heartbeat,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(logger))

	router.Get("/ping", ping)

	router.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Delete("/", h.end)
			r.Post("/play", h.play)
			r.Post("/jump", h.jump)
			r.Post("/restart", h.restart)
			r.Get("/events", h.events)
		})
	})

	return router
}

func ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// requestLogger - logs every request once it is served.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With("component", "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				log.Info("request served",
					"requestID", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
