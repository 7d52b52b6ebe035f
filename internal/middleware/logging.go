package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const maxLoggedBody = 4096

// responseWriter captures the status code and, for debug logging, the response body
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	body       *bytes.Buffer
}

func wrapResponseWriter(w http.ResponseWriter, captureBody bool) *responseWriter {
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
	if captureBody {
		rw.body = &bytes.Buffer{}
	}
	return rw
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	if rw.body != nil && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingMiddleware logs every request.
//
// Log levels:
//   - INFO: method, path, remote IP and user agent
//   - DEBUG: additionally query parameters and request/response bodies
//   - WARN: completed requests with status 4xx
//   - ERROR: completed requests with status 5xx
//
// Must run inside Authenticate to see the actor; trace and log fields come from the context.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		debug := slog.Default().Enabled(ctx, slog.LevelDebug)

		attrs := []any{
			"remote_ip", getIP(r),
			"user_agent", r.UserAgent(),
			"method", r.Method,
			"path", r.URL.Path,
		}

		if debug {
			debugAttrs := attrs
			if len(r.URL.Query()) > 0 {
				debugAttrs = append(debugAttrs, "query_params", r.URL.Query())
			}
			if r.Body != nil && r.Body != http.NoBody {
				body, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
				if len(body) > 0 {
					debugAttrs = append(debugAttrs, "request_body", string(body))
				}
			}
			slog.DebugContext(ctx, "Incoming request", debugAttrs...)
		} else {
			slog.InfoContext(ctx, "Incoming request", attrs...)
		}

		wrapped := wrapResponseWriter(w, debug)
		next.ServeHTTP(wrapped, r)

		level := slog.LevelInfo
		message := "Request completed"
		switch {
		case wrapped.statusCode >= 500:
			level = slog.LevelError
			message = "Request failed with error"
		case wrapped.statusCode >= 400:
			level = slog.LevelWarn
			message = "Request failed"
		}

		attrs = append(attrs,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if id, ok := GetIdentity(r); ok {
			attrs = append(attrs, "user_id", id.UserID)
		}
		if debug && wrapped.body != nil && wrapped.body.Len() > 0 {
			attrs = append(attrs, "response_body", wrapped.body.String())
		}

		slog.Log(ctx, level, message, attrs...)
	})
}
