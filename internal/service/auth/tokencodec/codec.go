package tokencodec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/adhub/backend/internal/apperrors"
	"github.com/adhub/backend/internal/models"
)

const defaultSigningMethod = "HS256"

// Claims carried by every issued token
// Access tokens also carry the role list, refresh tokens leave it empty
type Claims struct {
	jwt.RegisteredClaims
	UserID int64    `json:"userId"`
	Roles  []string `json:"roles,omitempty"`
}

// Codec signs and verifies compact JWT tokens
// It holds nothing mutable, so one codec may serve all requests concurrently
type Codec struct {
	key []byte
	alg jwt.SigningMethod
}

func New(secretKey string) (*Codec, error) {
	if secretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	return &Codec{
		key: []byte(secretKey),
		alg: jwt.GetSigningMethod(defaultSigningMethod),
	}, nil
}

// Issue signed token with the given subject and lifetime
// Negative ttl is allowed and produces an already expired token
func (c *Codec) Issue(subject string, userID int64, roles []string, ttl time.Duration) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		c.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   subject,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: userID,
			Roles:  roles,
		},
	)

	signed, err := token.SignedString(c.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify parses the token, checks the signature and then the expiry
// Returns apperrors.ErrTokenExpired only for a correctly signed token whose
// exp is in the past, anything else fails with apperrors.ErrTokenInvalid
func (c *Codec) Verify(tokenString string) (Claims, error) {
	claims := Claims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{c.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("token verify error: %w", apperrors.ErrTokenExpired)
	default:
		return Claims{}, fmt.Errorf("token verify error (%v): %w", err, apperrors.ErrTokenInvalid)
	}

	if claims.Subject == "" || claims.UserID == 0 {
		return Claims{}, fmt.Errorf("token missing required claims: %w", apperrors.ErrTokenInvalid)
	}

	return claims, nil
}

// ExtractSubject returns the login email the token was issued for
func (c *Codec) ExtractSubject(tokenString string) (string, error) {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractUserID returns the user id the token was issued for
func (c *Codec) ExtractUserID(tokenString string) (int64, error) {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// ExtractRoles returns the role names carried by an access token
func (c *Codec) ExtractRoles(tokenString string) ([]string, error) {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Roles, nil
}
