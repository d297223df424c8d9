// Package httptransport assembles the HTTP surface: middleware chain,
// domain handlers, the realtime endpoint, and operational routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "chirp/internal/auth/handler"
	chathandler "chirp/internal/chat/handler"
	"chirp/internal/chat/hub"
	"chirp/internal/platform/metrics"
	"chirp/internal/platform/middleware"
	"chirp/pkg/platform/httputil"
)

const requestTimeout = 30 * time.Second

// Deps holds everything the router needs. All fields are required.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Auth    *authhandler.Handler
	Chat    *chathandler.Handler
	Hub     *hub.Hub
	Guard   func(http.Handler) http.Handler
	Health  func(r *http.Request) error
}

// NewRouter wires all endpoints. The JSON API carries the full middleware
// chain; the websocket route skips the request timeout and JSON content
// type since the connection outlives both.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(requestTimeout))
		api.Use(middleware.ContentTypeJSON)

		d.Auth.Register(api, d.Guard)
		d.Chat.Register(api, d.Guard)
	})

	r.With(d.Guard).Get("/ws", d.Hub.ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if d.Health != nil {
			if err := d.Health(req); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
