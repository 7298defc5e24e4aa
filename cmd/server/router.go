package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"credledger/internal/platform/config"
	"credledger/pkg/platform/middleware/metadata"
	"credledger/pkg/platform/middleware/request"
	"credledger/pkg/platform/middleware/requesttime"
	"credledger/pkg/validation"
)

func newRouter(cfg config.Server, a *app, reg *prometheus.Registry, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	proxies, _ := metadata.ParseTrustedProxies(cfg.TrustedProxies) //nolint:errcheck // validated at load

	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(&metadata.Config{TrustedProxies: proxies}).Handler)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(log))
	r.Use(request.Instrument(request.NewMetrics(reg), routePattern))

	a.health.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(cfg.RequestTimeout))
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.ContentTypeJSON)
		a.ledger.Register(r, a.requireCaller)
	})

	return r
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
