package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/httputil"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

// RequireAuth rejects requests without a valid bearer token and injects the
// acting profile ID into the request context for downstream handlers.
func RequireAuth(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			profileID, err := tokens.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActorID(ctx, profileID)))
		})
	}
}
