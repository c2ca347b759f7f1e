package testutil

import (
	"net/http"
	"time"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

// WithActor adds an acting profile ID to the request context. This simulates
// what the auth middleware does for authenticated requests, so handlers can be
// tested without a token round trip.
func WithActor(req *http.Request, actorID id.ProfileID) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), actorID))
}

// WithRequestTime pins the request clock so time-dependent assertions are
// deterministic.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
