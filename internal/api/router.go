package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lavadero/internal/config"
	"lavadero/internal/domain/ports"
)

// NewRouter собирает маршруты API. events обслуживает WebSocket /events,
// origins ограничивает страницы, которым доступен API.
func NewRouter(h *Handler, events http.Handler, origins config.Origins, logger ports.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(OriginGuard(origins.Allow, logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/events", events)

	r.Route("/api", func(r chi.Router) {
		r.Post("/arduino/send", h.SendToArduino)
		r.Post("/print", h.PrintTicket)
		r.Post("/payments", h.Pay)
		r.Get("/device-id", h.DeviceIDHandler)
		r.Get("/ports", h.Ports)
	})

	return r
}

// LoggerMiddleware пишет в лог каждый запрос
func LoggerMiddleware(logger ports.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("%s %s -> %d (%s) [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
		})
	}
}

// OriginGuard отклоняет запросы браузера с чужих страниц. CORS этого не
// делает: простой POST выполняется и без preflight.
func OriginGuard(allow func(origin string) bool, logger ports.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); !allow(origin) {
				logger.Warn("запрос %s %s с запрещённого Origin %q", r.Method, r.URL.Path, origin)
				writeError(w, http.StatusForbidden, "origin not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
