package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"proximity.onebusaway.org/internal/middleware"
)

// Routes registers the status endpoints and wraps them in the Sentry and
// security header middleware.
//
//   - GET /v1/healthcheck: monitor readiness and the last evaluated distance.
//   - GET /metrics: Prometheus exposition, regathered every 10 seconds.
func (app *Application) Routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.Handler(http.MethodGet, "/metrics", middleware.NewCachedPromHandler(ctx, prometheus.DefaultGatherer, 10*time.Second))

	handler := middleware.SentryMiddleware(router)
	return middleware.SecurityHeaders(handler)
}
