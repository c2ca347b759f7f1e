// Package requestid assigns a correlation ID to every request. Incoming
// X-Request-ID headers are honored so IDs survive proxy hops; otherwise a
// fresh UUID is minted.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

// Header is the canonical request ID header.
const Header = "X-Request-ID"

// Middleware stores the request ID in the context and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
