package server

import (
	"net/http"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// logRequests logs one line per request. Server errors are logged at error
// level, everything else at info.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		keyvals := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"ref", r.URL.Query().Get("ref"),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Microsecond),
		}
		if rec.status >= http.StatusInternalServerError {
			s.log.Error("request", keyvals...)
			return
		}
		s.log.Info("request", keyvals...)
	})
}
