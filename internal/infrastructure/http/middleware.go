package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chapunchi/ledger-service/internal/domain/port"
	"github.com/chapunchi/ledger-service/internal/infrastructure/logger"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerFrom returns the request-scoped logger, falling back to the base
// logger when middleware did not run (direct handler calls in tests).
func loggerFrom(ctx context.Context, fallback logger.Logger) logger.Logger {
	if l, ok := ctx.Value("logger").(logger.Logger); ok {
		return l
	}
	return fallback
}

// RequestIDMiddleware adds a request ID to each request
func RequestIDMiddleware(next http.HandlerFunc, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		w.Header().Set("X-Request-ID", requestID)

		// Create logger with request ID
		requestLogger := logger.WithRequestID(requestID)
		ctx = context.WithValue(ctx, "logger", requestLogger)
		r = r.WithContext(ctx)

		next(w, r)
	}
}

// LoggingMiddleware logs request details
func LoggingMiddleware(next http.HandlerFunc, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestLogger := loggerFrom(r.Context(), logger)

		requestLogger.LogInfo(r.Context(), "Incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next(wrapped, r)

		duration := time.Since(start)
		requestLogger.LogInfo(r.Context(), "Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", duration.Milliseconds())
	}
}

// BasicAuthMiddleware rejects requests whose basic-auth pair does not verify.
// The error body stays generic regardless of which half failed.
func BasicAuthMiddleware(next http.HandlerFunc, authenticator port.Authenticator, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestLogger := loggerFrom(r.Context(), logger)

		username, password, ok := r.BasicAuth()
		if !ok || authenticator.Verify(r.Context(), username, password) != nil {
			requestLogger.LogWarning(r.Context(), "Unauthorized request",
				"method", r.Method,
				"path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next(w, r)
	}
}
