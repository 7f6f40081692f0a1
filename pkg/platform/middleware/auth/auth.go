package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/httputil"
	"github.com/Escana/app-escana01-production-sub000/pkg/requestcontext"
)

// ActorResolver turns a bearer token into the acting staff member.
type ActorResolver interface {
	ResolveActor(tokenString string) (domain.Actor, error)
}

// RequireActor rejects requests without a valid staff token and places the
// resolved actor in the request context. Handlers then pass the actor
// explicitly into services; nothing below this middleware reads ambient
// session state.
func RequireActor(resolver ActorResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			actor, err := resolver.ResolveActor(strings.TrimPrefix(authHeader, bearerPrefix))
			if err != nil {
				if logger != nil {
					logger.WarnContext(r.Context(), "actor resolution failed", "error", err)
				}
				httputil.WriteError(w, err)
				return
			}
			if err := actor.Valid(); err != nil {
				httputil.WriteError(w, err)
				return
			}

			ctx := requestcontext.WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
