package handlers

import (
	"net/http"

	"github.com/adhub/backend/internal/handlers/middleware"
	"github.com/adhub/backend/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// NewRouter wires the public auth routes and the protected api routes
// Everything under /auth/ bypasses the authenticator by construction:
// the exemption is decided at routing time, before any token parsing
func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	authenticate func(http.Handler) http.Handler,
	mds ...func(next http.Handler) http.Handler,
) http.Handler {
	api := http.NewServeMux()
	api.Handle("GET /users/me", http.HandlerFunc(userHandler.Me))
	api.Handle("GET /admin/users", chain(
		http.HandlerFunc(userHandler.List),
		middleware.RequireRoles(models.RoleAdmin, models.RoleModerator),
	))

	root := http.NewServeMux()
	root.Handle("/auth/", http.StripPrefix("/auth", authHandler.Handler()))
	root.Handle("/api/", http.StripPrefix("/api", chain(api, authenticate, middleware.RequireAuth)))

	return chain(root, mds...)
}
