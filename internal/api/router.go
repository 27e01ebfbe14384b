// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/callscope/internal/auth"
	"github.com/tomtom215/callscope/internal/authz"
	"github.com/tomtom215/callscope/internal/config"
	"github.com/tomtom215/callscope/internal/middleware"
)

// Router assembles the HTTP route tree.
type Router struct {
	handler       *Handler
	authMW        *auth.Middleware
	authzMW       *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router over the handler set. The authorization
// middleware may be nil when role enforcement is not configured.
func NewRouter(handler *Handler, authMW *auth.Middleware, authzMW *authz.Middleware) *Router {
	var sec *config.SecurityConfig
	if handler.config != nil {
		sec = &handler.config.Security
	}

	return &Router{
		handler:       handler,
		authMW:        authMW,
		authzMW:       authzMW,
		chiMiddleware: NewChiMiddlewareFromSecurity(sec),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to chi's
// func(http.Handler) http.Handler so the auth middleware plugs into r.Use.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// chiPathValue bridges chi URL params into r.PathValue so handlers stay
// free of router-specific param lookups.
func chiPathValue(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		if rctx != nil {
			for i, key := range rctx.URLParams.Keys {
				if i < len(rctx.URLParams.Values) {
					r.SetPathValue(key, rctx.URLParams.Values[i])
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// prometheusMiddleware adapts the endpoint-labeled metrics middleware to
// chi's middleware shape.
func prometheusMiddleware(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return middleware.PrometheusMetrics(endpoint, next)
	}
}

// passthrough is the identity middleware.
func passthrough(next http.Handler) http.Handler {
	return next
}

// authenticate returns the authentication middleware, or a pass-through
// when none is wired.
func (router *Router) authenticate() func(http.Handler) http.Handler {
	if router.authMW == nil {
		return passthrough
	}
	return chiMiddleware(router.authMW.Authenticate)
}

// authorize returns the role-policy middleware. With auth mode none
// requests carry no claims, so enforcement would reject everything;
// authorization is skipped there and authentication alone gates access.
func (router *Router) authorize() func(http.Handler) http.Handler {
	if router.authzMW == nil {
		return passthrough
	}
	if router.handler.config != nil && router.handler.config.Security.AuthMode == auth.AuthModeNone {
		return passthrough
	}
	return router.authzMW.AuthorizeRequest
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order. CORS must be
	// global so OPTIONS preflight reaches it.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.Compression)
	r.Use(router.handler.perfMon.Middleware)

	// Health endpoints stay unauthenticated so probes work before any
	// credential wiring, with a permissive rate limit against abuse.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Authentication endpoints carry strict limits against brute force;
	// login is strictest.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitAuth))
		r.Use(APISecurityHeaders())

		r.With(router.chiMiddleware.RateLimitCustom(RateLimitLogin)).Post("/login", router.handler.Login)
	})

	// Session reconstruction.
	r.Route("/api/v1/session", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitSession))
		r.Use(APISecurityHeaders())
		r.Use(prometheusMiddleware("/api/v1/session"))
		r.Use(router.authenticate())
		r.Use(router.authorize())

		r.Post("/media", router.handler.SessionMedia)
		r.Post("/details", router.handler.SessionDetails)
	})

	// Host inventory. Write operations carry the tighter write limit on
	// top of the group default.
	r.Route("/api/v1/hosts", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitAPI))
		r.Use(APISecurityHeaders())
		r.Use(prometheusMiddleware("/api/v1/hosts"))
		r.Use(chiPathValue)
		r.Use(router.authenticate())
		r.Use(router.authorize())

		r.Get("/", router.handler.HostList)
		r.Get("/{name}", router.handler.HostGet)

		write := router.chiMiddleware.RateLimitCustom(RateLimitWrite)
		r.With(write).Post("/", router.handler.HostCreate)
		r.With(write).Post("/import", router.handler.HostImport)
		r.With(write).Put("/{name}", router.handler.HostUpdate)
		r.With(write).Delete("/{name}", router.handler.HostDelete)
	})

	// Report ingest, sized for sustained posting from capture agents.
	r.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitIngest))
		r.Use(APISecurityHeaders())
		r.Use(prometheusMiddleware("/api/v1/ingest"))
		r.Use(router.authenticate())
		r.Use(router.authorize())

		r.Post("/reports", router.handler.IngestReports)
	})

	// Realtime feed. The upgrade authenticates but skips role policy:
	// the socket only ever pushes data the viewer role may read.
	r.Route("/api/v1/ws", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitWebSocket))
		r.Use(router.authenticate())

		r.Get("/", router.handler.WebSocket)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// API-only service: unmatched routes answer in the JSON envelope.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}
