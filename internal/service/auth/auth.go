package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adhub/backend/internal/apperrors"
	"github.com/adhub/backend/internal/logger"
	"github.com/adhub/backend/internal/models"
	"github.com/adhub/backend/internal/repository"
	"github.com/adhub/backend/internal/service/auth/tokencodec"
)

const (
	defaultAccessTokenTTL  = 24 * time.Hour
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// AvatarSetter initializes the default profile picture for new users
// Registration calls it best effort: a failure is logged, never rolled back
type AvatarSetter interface {
	SetDefault(ctx context.Context, user models.User) error
}

type Config struct {
	// Secret key to sign token payloads
	// Required to be set
	SecretKey string

	// Hasher used during registration and login
	// If not set then bcrypt is used
	Hasher PasswordHasher

	// Access and refresh token lifetimes
	// If not set then defaults are used
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type RegisterParams struct {
	Email     string
	Password  string
	Username  string
	FirstName *string
	LastName  *string
	Phone     *string
}

// Auth service
// Orchestrates register, login, refresh and logout over the credential and
// session stores. Safe for concurrent use: all mutable state lives in the db.
type AuthService struct {
	codec   *tokencodec.Codec
	hasher  PasswordHasher
	storage repository.Storage
	avatars AvatarSetter
	logger  logger.Logger

	accessTTL  time.Duration
	refreshTTL time.Duration

	// Hash compared against when the account does not exist, keeps the
	// unknown-account and wrong-password paths equally expensive
	dummyHash string
}

func NewService(cfg Config, storage repository.Storage, avatars AvatarSetter, l logger.Logger) (*AuthService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	codec, err := tokencodec.New(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTokenTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTokenTTL, defaultRefreshTokenTTL)

	dummyHash, err := hasher.Hash("dummy-password-to-compare-against")
	if err != nil {
		return nil, fmt.Errorf("error while preparing hasher. Err: %w", err)
	}

	return &AuthService{
		codec:      codec,
		hasher:     hasher,
		storage:    storage,
		avatars:    avatars,
		logger:     l,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		dummyHash:  dummyHash,
	}, nil
}

// Codec exposes the token codec, the request authenticator verifies with it
func (s *AuthService) Codec() *tokencodec.Codec {
	return s.codec
}

// Register creates the account with the USER role and logs it in right away
// Account, token minting and session persistence are one transaction: the
// caller never sees tokens whose session did not hit the db
func (s *AuthService) Register(ctx context.Context, arg RegisterParams) (models.TokenPair, error) {
	var pair models.TokenPair

	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return pair, fmt.Errorf("can't use this as password, error=%w", err)
	}

	var user models.User
	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		user, err = st.User().CreateUser(ctx, repository.CreateUserParams{
			Email:        arg.Email,
			Username:     arg.Username,
			PasswordHash: hash,
			FirstName:    arg.FirstName,
			LastName:     arg.LastName,
			Phone:        arg.Phone,
			RoleName:     models.RoleUser,
			Status:       models.StatusActive,
		})
		if err != nil {
			return err
		}

		pair, err = s.issuePair(ctx, st, user)
		return err
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	s.logger.Info("user registered", "userID", user.ID, "email", user.Email)

	// Default avatar is nice to have, registration already succeeded
	if s.avatars != nil {
		if err := s.avatars.SetDefault(ctx, user); err != nil {
			s.logger.Warn("default avatar was not set", "userID", user.ID, "error", err.Error())
		}
	}

	return pair, nil
}

// Login verifies credentials and replaces whatever session the account had
// A client holding the previous refresh token will fail refresh afterwards
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Burn the same hashing time as the wrong-password path
			_ = s.hasher.Compare(s.dummyHash, password)
		}
		return pair, err
	}

	if !user.IsActive() {
		return pair, fmt.Errorf("login rejected: %w", apperrors.ErrUserBlocked)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return pair, fmt.Errorf("login rejected: %w", apperrors.ErrBadCredentials)
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		if err := st.User().UpdateLastLogin(ctx, user.ID); err != nil {
			return err
		}

		pair, err = s.issuePair(ctx, st, user)
		return err
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	s.logger.Info("user logged in", "userID", user.ID)

	return pair, nil
}

// Refresh rotates the session behind the presented refresh token
// The consumed token string dies the instant the rotation commits
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	var pair models.TokenPair

	session, err := s.storage.Session().Get(ctx, refreshToken)
	if err != nil {
		return pair, err
	}

	if !session.ExpiresAt.After(time.Now()) {
		// Dead session, sweep it right here
		if err := s.storage.Session().Delete(ctx, refreshToken); err != nil && !errors.Is(err, apperrors.ErrSessionNotFound) {
			return pair, err
		}
		return pair, fmt.Errorf("refresh rejected: %w", apperrors.ErrSessionExpired)
	}

	user, err := s.storage.User().GetUserByID(ctx, session.UserID)
	if err != nil {
		return pair, err
	}

	access, err := s.codec.Issue(user.Email, user.ID, []string{user.Role.Name}, s.accessTTL)
	if err != nil {
		return pair, fmt.Errorf("error while issuing access token. Err: %w", err)
	}

	refresh, err := s.codec.Issue(user.Email, user.ID, nil, s.refreshTTL)
	if err != nil {
		return pair, fmt.Errorf("error while issuing refresh token. Err: %w", err)
	}

	// A concurrent login or refresh may have replaced the session after the
	// Get above, then the rotation misses and the whole call correctly
	// fails with ErrSessionNotFound
	if _, err := s.storage.Session().Rotate(ctx, refreshToken, refresh.Value, refresh.ExpiresAt); err != nil {
		return pair, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Logout deletes the session, the refresh token stops working
// A second logout with the same token fails with ErrSessionNotFound
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.storage.Session().Delete(ctx, refreshToken)
}

// ResolveAccess turns a bearer access token into the account it names
// The account is re-checked against the credential store: a token may
// outlive the account's good standing for the rest of its TTL otherwise
func (s *AuthService) ResolveAccess(ctx context.Context, accessToken string) (models.User, error) {
	claims, err := s.codec.Verify(accessToken)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.storage.User().GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		return models.User{}, err
	}

	if !user.IsActive() {
		return models.User{}, fmt.Errorf("access rejected: %w", apperrors.ErrUserBlocked)
	}

	return user, nil
}

// issuePair mints a fresh access+refresh pair and stores the session
// The previous session of the user, if any, is superseded atomically
func (s *AuthService) issuePair(ctx context.Context, st repository.Storage, user models.User) (models.TokenPair, error) {
	var pair models.TokenPair
	now := time.Now().Truncate(time.Second)

	access, err := s.codec.Issue(user.Email, user.ID, []string{user.Role.Name}, s.accessTTL)
	if err != nil {
		return pair, fmt.Errorf("error while issuing access token. Err: %w", err)
	}

	refresh, err := s.codec.Issue(user.Email, user.ID, nil, s.refreshTTL)
	if err != nil {
		return pair, fmt.Errorf("error while issuing refresh token. Err: %w", err)
	}

	_, err = st.Session().Replace(ctx, models.Session{
		UserID:    user.ID,
		Token:     refresh.Value,
		CreatedAt: now,
		ExpiresAt: refresh.ExpiresAt,
	})
	if err != nil {
		return pair, fmt.Errorf("error while saving session. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}
