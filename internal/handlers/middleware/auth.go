package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/adhub/backend/internal/handlers/authctx"
	"github.com/adhub/backend/internal/handlers/render"
	"github.com/adhub/backend/internal/models"
)

const bearerScheme = "Bearer "

type accessResolver interface {
	// Verify the access token and return the account in good standing
	// Any error means the request stays anonymous
	ResolveAccess(ctx context.Context, accessToken string) (models.User, error)
}

// Authenticate resolves the Authorization header into a request identity
// It never rejects: a missing, malformed, expired or forged token just
// leaves the request anonymous, the gates below do the rejecting. That
// keeps forgery indistinguishable from expiry on the wire.
func Authenticate(resolver accessResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.ResolveAccess(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := authctx.New(r.Context(), models.Identity{
				UserID: user.ID,
				Role:   user.Role.Name,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with a uniform 401
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authctx.FromContext(r.Context()); !ok {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles rejects identities whose role is not in the allowed set
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := authctx.FromContext(r.Context())
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, identity.Role) {
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerScheme) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, bearerScheme))
	return token, token != ""
}
