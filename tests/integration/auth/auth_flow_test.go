package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/adhub/backend/internal/service/auth"
	"github.com/adhub/backend/internal/testutil"
	"github.com/adhub/backend/tests/integration"
)

const (
	RegisterURL = "/auth/register"
	LoginURL    = "/auth/login"
	RefreshURL  = "/auth/refresh"
	LogoutURL   = "/auth/logout"
	MeURL       = "/api/users/me"
)

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func doJSON(t *testing.T, method string, url string, data string, accessToken string) (int, string) {
	t.Helper()

	var body io.Reader
	if data != "" {
		body = strings.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "request should always complete")
	defer resp.Body.Close() // nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(respBody)
}

func decodePair(t *testing.T, body string) tokenPair {
	t.Helper()

	var pair tokenPair
	require.NoError(t, json.Unmarshal([]byte(body), &pair))
	require.NotEmpty(t, pair.AccessToken, "access token should not be empty")
	require.NotEmpty(t, pair.RefreshToken, "refresh token should not be empty")
	return pair
}

func Test_AuthFlow(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	registerData := `{
		"email": "ivan@example.com",
		"username": "ivan",
		"password": "StrongEnoughPassword",
		"firstName": "Ivan",
		"phone": "+375 (29) 123-45-67"
	}`

	t.Run("full lifecycle", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(tx pgx.Tx, srvURL string, s integration.Services) {
			// Register: account is created and logged in right away
			code, body := doJSON(t, http.MethodPost, srvURL+RegisterURL, registerData, "")
			require.Equalf(t, http.StatusCreated, code, "not expected code. Body: %s", body)
			registered := decodePair(t, body)

			// The register access token authorizes requests immediately
			code, body = doJSON(t, http.MethodGet, srvURL+MeURL, "", registered.AccessToken)
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

			// Login again, a fresh pair comes back
			code, body = doJSON(t, http.MethodPost, srvURL+LoginURL,
				`{"email": "ivan@example.com", "password": "StrongEnoughPassword"}`, "")
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
			loggedIn := decodePair(t, body)

			// The profile resolves to the registered account with the USER role
			code, body = doJSON(t, http.MethodGet, srvURL+MeURL, "", loggedIn.AccessToken)
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

			var profile struct {
				ID        int64   `json:"id"`
				Email     string  `json:"email"`
				Username  string  `json:"username"`
				FirstName *string `json:"firstName"`
				Role      string  `json:"role"`
				AvatarURL *string `json:"avatarUrl"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &profile))
			require.NotZero(t, profile.ID)
			require.Equal(t, "ivan@example.com", profile.Email)
			require.Equal(t, "ivan", profile.Username)
			require.Equal(t, "USER", profile.Role)
			require.NotNil(t, profile.FirstName)
			require.Equal(t, "Ivan", *profile.FirstName)
			require.NotNil(t, profile.AvatarURL, "default avatar should be assigned on registration")

			// Logout kills the session
			code, body = doJSON(t, http.MethodPost, srvURL+LogoutURL,
				`{"refreshToken": "`+loggedIn.RefreshToken+`"}`, "")
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

			// The logged-out refresh token is gone for good
			code, body = doJSON(t, http.MethodPost, srvURL+RefreshURL,
				`{"refreshToken": "`+loggedIn.RefreshToken+`"}`, "")
			require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Refresh token not found"
				}`, body)
		})
	})

	t.Run("login supersedes previous session", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(tx pgx.Tx, srvURL string, s integration.Services) {
			first, err := s.AuthService.Register(t.Context(), auth.RegisterParams{
				Email:    "two@example.com",
				Username: "twodevices",
				Password: "StrongEnoughPassword",
			})
			require.NoError(t, err)

			code, body := doJSON(t, http.MethodPost, srvURL+LoginURL,
				`{"email": "two@example.com", "password": "StrongEnoughPassword"}`, "")
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
			second := decodePair(t, body)

			// The first device's refresh token died with the second login
			code, body = doJSON(t, http.MethodPost, srvURL+RefreshURL,
				`{"refreshToken": "`+first.Refresh.Value+`"}`, "")
			require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)

			// The second device rotates fine
			code, body = doJSON(t, http.MethodPost, srvURL+RefreshURL,
				`{"refreshToken": "`+second.RefreshToken+`"}`, "")
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
		})
	})

	t.Run("rotated access token still valid", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(tx pgx.Tx, srvURL string, s integration.Services) {
			pair, err := s.AuthService.Register(t.Context(), auth.RegisterParams{
				Email:    "keep@example.com",
				Username: "keepaccess",
				Password: "StrongEnoughPassword",
			})
			require.NoError(t, err)

			code, body := doJSON(t, http.MethodPost, srvURL+RefreshURL,
				`{"refreshToken": "`+pair.Refresh.Value+`"}`, "")
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

			// Refresh rotation does not revoke outstanding access tokens
			code, body = doJSON(t, http.MethodGet, srvURL+MeURL, "", pair.Access.Value)
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
		})
	})
}
