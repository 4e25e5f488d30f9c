package middleware

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"io"
	"net/http"
	"net/http/httptest"

	"github.com/stretchr/testify/require"

	"github.com/adhub/backend/internal/handlers/authctx"
	"github.com/adhub/backend/internal/models"
)

// Allow to use a function as access resolver
type resolverFunc func(ctx context.Context, accessToken string) (models.User, error)

func (f resolverFunc) ResolveAccess(ctx context.Context, accessToken string) (models.User, error) {
	return f(ctx, accessToken)
}

// Handler that reports the request identity, "anonymous" when there is none
var echoIdentity = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	identity, ok := authctx.FromContext(r.Context())
	if !ok {
		fmt.Fprint(w, "anonymous")
		return
	}
	fmt.Fprintf(w, "%d:%s", identity.UserID, identity.Role)
})

func TestAuthenticate(t *testing.T) {
	resolveOk := resolverFunc(func(ctx context.Context, accessToken string) (models.User, error) {
		return models.User{ID: 42, Role: models.Role{Name: models.RoleUser}}, nil
	})
	resolveFail := resolverFunc(func(ctx context.Context, accessToken string) (models.User, error) {
		return models.User{}, errors.New("bad token")
	})

	get := func(t *testing.T, srv *httptest.Server, authHeader string) (int, string) {
		t.Helper()

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
		require.NoError(t, err)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}

		resp, err := srv.Client().Do(req)
		require.NoError(t, err, "should make request to test server")
		defer resp.Body.Close() // nolint:errcheck

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")

		return resp.StatusCode, string(body)
	}

	t.Run("valid token attaches identity", func(t *testing.T) {
		srv := httptest.NewServer(Authenticate(resolveOk)(echoIdentity))
		defer srv.Close()

		code, body := get(t, srv, "Bearer some-token")

		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "42:USER", body, "identity should carry user id and role")
	})

	t.Run("no header stays anonymous", func(t *testing.T) {
		srv := httptest.NewServer(Authenticate(resolveOk)(echoIdentity))
		defer srv.Close()

		code, body := get(t, srv, "")

		require.Equal(t, http.StatusOK, code, "middleware itself never rejects")
		require.Equal(t, "anonymous", body)
	})

	t.Run("wrong scheme stays anonymous", func(t *testing.T) {
		srv := httptest.NewServer(Authenticate(resolveOk)(echoIdentity))
		defer srv.Close()

		code, body := get(t, srv, "Basic dXNlcjpwd2Q=")

		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "anonymous", body)
	})

	t.Run("rejected token stays anonymous", func(t *testing.T) {
		// Expired and forged tokens both go down this path
		srv := httptest.NewServer(Authenticate(resolveFail)(echoIdentity))
		defer srv.Close()

		code, body := get(t, srv, "Bearer expired-or-forged")

		require.Equal(t, http.StatusOK, code, "middleware itself never rejects")
		require.Equal(t, "anonymous", body)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("authenticated passes", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		ctx := authctx.New(context.Background(), models.Identity{UserID: 1, Role: models.RoleUser})
		req := httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)
		rec := httptest.NewRecorder()

		RequireAuth(handler).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not be reached")
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		RequireAuth(handler).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t,
			`{
				"error": "service_error",
				"message": "Unauthorized"
			}`,
			rec.Body.String(),
		)
	})
}

func TestRequireRoles(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(identity *models.Identity, roles ...string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if identity != nil {
			req = req.WithContext(authctx.New(req.Context(), *identity))
		}
		rec := httptest.NewRecorder()

		RequireRoles(roles...)(handler).ServeHTTP(rec, req)
		return rec
	}

	t.Run("allowed role passes", func(t *testing.T) {
		rec := serve(&models.Identity{UserID: 1, Role: models.RoleAdmin}, models.RoleAdmin, models.RoleModerator)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong role gets 403", func(t *testing.T) {
		rec := serve(&models.Identity{UserID: 1, Role: models.RoleUser}, models.RoleAdmin, models.RoleModerator)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.JSONEq(t,
			`{
				"error": "service_error",
				"message": "Forbidden"
			}`,
			rec.Body.String(),
		)
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		rec := serve(nil, models.RoleAdmin)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
