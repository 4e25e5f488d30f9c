package integration

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stretchr/testify/require"

	"github.com/adhub/backend/internal/handlers"
	"github.com/adhub/backend/internal/handlers/middleware"
	"github.com/adhub/backend/internal/repository/postgres"
	"github.com/adhub/backend/internal/service/auth"
	"github.com/adhub/backend/internal/service/avatar"
	"github.com/adhub/backend/internal/service/user"
	"github.com/adhub/backend/internal/testutil"
)

// Secret the test server signs tokens with
// Exposed so tests may mint their own tokens against the same key
const SecretKey = "test-secret"

type Services struct {
	AuthService *auth.AuthService
	UserService *user.UserService
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use the tx directly
func RunTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		// Initialize repositories
		storage := postgres.NewStorage(tx)

		// Initialize services
		avatarService := avatar.NewService(storage.User())
		as, err := auth.NewService(auth.Config{SecretKey: SecretKey}, storage, avatarService, nil)
		require.NoError(t, err, "auth service starting error", err)
		us := user.NewService(storage.User())

		// Complete all together as router
		router := handlers.NewRouter(
			handlers.NewAuth(as),
			handlers.NewUser(us),
			middleware.Authenticate(as),
		)

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService: as,
			UserService: us,
		})
	})
}
