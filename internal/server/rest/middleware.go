package rest

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MSSkowron/userregistry/internal/metrics"
	"github.com/MSSkowron/userregistry/pkg/logger"
	"github.com/google/uuid"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// logMiddleware tags each request with an ID and logs it once handled.
// Request bodies are never logged since they carry passwords.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		w.Header().Set(headerRequestID, requestID)
		r = r.WithContext(context.WithValue(r.Context(), contextKeyReqID, requestID))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.RequestsTotal.WithLabelValues("rest", strconv.Itoa(rec.status)).Inc()
		logger.Info("Handled request",
			"request_id", requestID,
			"client_ip", getClientIP(r),
			"method", r.Method,
			"endpoint", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(contextKeyReqID).(string)
	return id
}

func getClientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}

	if commaIndex := strings.Index(ip, ","); commaIndex != -1 {
		ip = strings.TrimSpace(ip[:commaIndex])
	}

	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return ip
}
