// Package httptransport assembles the public HTTP API from the per-module
// handlers. Routing and middleware live here; behavior lives in the services.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/girishmungarach/doneby-platform-sub001/internal/auth"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/httputil"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/middleware/requestid"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/middleware/requesttime"
)

// Registrar mounts a handler's routes on a router.
type Registrar interface {
	Register(r chi.Router)
}

// PublicRegistrar mounts routes that do not require authentication.
type PublicRegistrar interface {
	RegisterPublic(r chi.Router)
}

// Deps carries everything the router composes.
type Deps struct {
	Tokens  *auth.TokenService
	Logger  *slog.Logger
	Public  []PublicRegistrar
	Secured []Registrar
}

// NewRouter builds the chi router: request id and request time run on every
// route, bearer auth guards everything except registration, login, health and
// metrics.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, h := range deps.Public {
		h.RegisterPublic(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Tokens, deps.Logger))
		for _, h := range deps.Secured {
			h.Register(r)
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
