package middleware

import (
	"net/http"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"

	"github.com/latoulicious/holocron/pkg/logging"
)

// Logger attaches a request logger to the context and logs one line per request
func Logger(factory logging.LoggerFactory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := chiMid.GetReqID(r.Context())

			reqLogger := logging.NewRequestLogger(factory.CreateLogger("http"), rid).WithRoute(r.Method, r.URL.Path)
			ctx := WithLogger(WithRequestID(r.Context(), rid), reqLogger)

			rw := NewResponseRecorder(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			fields := map[string]interface{}{
				"status":      rw.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   r.RemoteAddr,
			}
			switch {
			case rw.Status() >= 500:
				reqLogger.Warn("request", fields)
			default:
				reqLogger.Info("request", fields)
			}
		})
	}
}

// ResponseRecorder wraps ResponseWriter and captures the status code
type ResponseRecorder struct {
	http.ResponseWriter
	status int
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *ResponseRecorder) WriteHeader(statusCode int) {
	rw.status = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *ResponseRecorder) Status() int { return rw.status }

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *ResponseRecorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
