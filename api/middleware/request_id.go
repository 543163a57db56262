package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lokapasar/lokapasar-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// maximum inbound id length accepted before we mint our own
const maxRequestIDLen = 64

// RequestID tags the request with a correlation id. An inbound
// X-Request-Id from the proxy is honored when it looks sane; otherwise
// a fresh uuid is minted. The id is echoed on the response and attached
// to the request-scoped logger.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" || len(reqID) > maxRequestIDLen {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
