package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	RequestIDKey    contextKey = "requestID"
	RequestIDHeader            = "X-Request-ID"
)

// GetRequestID extracts the request ID from ctx.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func withRequestID(w http.ResponseWriter, r *http.Request) *http.Request {
	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set(RequestIDHeader, requestID)
	return r.WithContext(context.WithValue(r.Context(), RequestIDKey, requestID))
}

// RequestID takes the request ID from the X-Request-ID header or generates
// one, stores it in the request context and echoes it in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, withRequestID(w, r))
	})
}

// GinRequestID is RequestID for gin routers.
func GinRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = withRequestID(c.Writer, c.Request)
		c.Next()
	}
}

// GinLogger writes one access log line per request.
func GinLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", GetRequestID(c.Request.Context())),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("Request failed", fields...)
		} else {
			logger.Info("Request handled", fields...)
		}
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logging is GinLogger for plain net/http routers.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Info("Request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", GetRequestID(r.Context())),
			)
		})
	}
}
