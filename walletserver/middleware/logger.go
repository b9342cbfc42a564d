package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger timestamps each request the way the teacher's wallet server did,
// plus a per-request correlation id set as the X-Request-Id header and on
// the request's log line. The id is not passed into core, so the asset
// dispatch log lines a claim triggers carry their own batch id instead.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithField("request_id", requestID).
			Infof("%s %s %s", r.Method, r.RequestURI, time.Since(start))
	})
}
