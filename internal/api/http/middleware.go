package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"orggov-backend/internal/config"
	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/security"

	"github.com/gorilla/mux"
)

type contextKey string

const claimsKey contextKey = "account-claims"

// ClaimsFromContext returns the authenticated account's claims, or nil on
// public endpoints.
func ClaimsFromContext(ctx context.Context) *security.AccountClaims {
	claims, _ := ctx.Value(claimsKey).(*security.AccountClaims)
	return claims
}

// AuthMiddleware enforces the endpoint policy registered for the matched
// route template.
func AuthMiddleware(tm security.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy := config.GetEndpointPolicy(endpointKey(r))
			if policy.Level == config.SecurityPublic {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				writeError(w, r, domain.UnauthorizedError("authorization token is not provided"))
				return
			}
			claims, err := tm.ValidateToken(token)
			if err != nil {
				writeError(w, r, domain.UnauthorizedError("%v", err))
				return
			}
			if !policy.Allows(claims.Role) {
				writeError(w, r, domain.ForbiddenError("role %s may not call this endpoint", claims.Role))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func endpointKey(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return r.Method + " " + r.URL.Path
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return r.Method + " " + r.URL.Path
	}
	return r.Method + " " + tpl
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs one line per request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

// RecoveryMiddleware turns a handler panic into a 500 response.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("Handler panicked", "method", r.Method, "path", r.URL.Path, "panic", rec)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error", Kind: string(domain.KindInternal)})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
