// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package authz

import (
	"net/http"
	"time"

	"github.com/tomtom215/callscope/internal/auth"
	"github.com/tomtom215/callscope/internal/logging"
)

// Middleware enforces role-based access on HTTP routes. It expects the
// authentication middleware to have stored claims on the request context.
type Middleware struct {
	enforcer *Enforcer
}

func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// Authorize gates a route on a fixed object and action.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetClaims(r)
			if claims == nil {
				http.Error(w, "Forbidden: no authentication context", http.StatusForbidden)
				return
			}

			start := time.Now()
			allowed, err := m.enforcer.EnforceWithRole(claims.Username, claims.Role, object, action)
			RecordDecision(claims.Role, action, allowed && err == nil, time.Since(start))

			if err != nil {
				logging.Ctx(r.Context()).Error().
					Err(err).
					Str("subject", claims.Username).
					Str("object", object).
					Str("action", action).
					Msg("Authorization check failed")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if !allowed {
				logging.Ctx(r.Context()).Warn().
					Str("subject", claims.Username).
					Str("role", claims.Role).
					Str("object", object).
					Str("action", action).
					Msg("Authorization denied")
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthorizeRequest derives the object from the request path and the action
// from the HTTP method, then enforces.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetClaims(r)
		if claims == nil {
			http.Error(w, "Forbidden: no authentication context", http.StatusForbidden)
			return
		}

		action := methodToAction(r.Method)
		start := time.Now()
		allowed, err := m.enforcer.EnforceWithRole(claims.Username, claims.Role, r.URL.Path, action)
		RecordDecision(claims.Role, action, allowed && err == nil, time.Since(start))

		if err != nil {
			logging.Ctx(r.Context()).Error().
				Err(err).
				Str("subject", claims.Username).
				Str("path", r.URL.Path).
				Str("action", action).
				Msg("Authorization check failed")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Warn().
				Str("subject", claims.Username).
				Str("role", claims.Role).
				Str("path", r.URL.Path).
				Str("action", action).
				Msg("Authorization denied")
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// methodToAction maps HTTP methods to policy actions. Session queries ride
// POST, so the write action covers them.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
