// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package middleware

import (
	"net/http"

	"github.com/tomtom215/callscope/internal/logging"
)

// RequestIDHeader is the canonical header for request correlation.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request an identifier for log correlation. An
// inbound X-Request-ID is honored so upstream proxies can trace calls end
// to end; otherwise a fresh one is generated. The identifier is stored in
// the request context and echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithNewCorrelationID(ctx)

		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request identifier from the request context, or
// an empty string when the RequestID middleware did not run.
func GetRequestID(r *http.Request) string {
	return logging.RequestIDFromContext(r.Context())
}
