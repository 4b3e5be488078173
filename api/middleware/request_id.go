package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
)

const RequestIDHeader = "X-Request-Id"

// Messaging gateways forward their own ids; anything that does not look like
// one is replaced so it cannot pollute the logs.
var acceptedRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// RequestID tags the request context and response with a request id.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(RequestIDHeader)
			if !acceptedRequestID.MatchString(reqID) {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)
			next.ServeHTTP(w, r.WithContext(logg.WithRequestID(r.Context(), reqID)))
		})
	}
}
