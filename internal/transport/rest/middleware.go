package rest

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-Id"

// statusRecorder запоминает код ответа для метрик и access-лога.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// instrument оборачивает обработчик учётом метрик и access-логом
// под меткой шаблона маршрута.
func (s *Server) instrument(pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(recorder, r)

		elapsed := time.Since(started)
		if s.metrics != nil {
			s.metrics.RecordRequest(r.Method, pattern, recorder.status, elapsed)
		}
		s.logger.WithFields(log.Fields{
			"method":     r.Method,
			"route":      pattern,
			"status":     recorder.status,
			"elapsed_ms": elapsed.Milliseconds(),
			"request_id": w.Header().Get(requestIDHeader),
		}).Debug("request handled")
	}
}

// withRequestID проставляет X-Request-Id, генерируя его при отсутствии.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r)
	})
}
