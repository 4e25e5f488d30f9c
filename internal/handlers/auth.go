package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/adhub/backend/internal/apperrors"
	"github.com/adhub/backend/internal/handlers/render"
	"github.com/adhub/backend/internal/models"
	"github.com/adhub/backend/internal/service/auth"
)

// Auth service surface the handler needs
type authService interface {
	// Register user and log it in right away
	// Has to return apperrors.ErrEmailTaken or apperrors.ErrUsernameTaken
	Register(ctx context.Context, arg auth.RegisterParams) (models.TokenPair, error)

	// Login user with email and password
	// Has to return apperrors.ErrUserNotFound, apperrors.ErrUserBlocked
	// or apperrors.ErrBadCredentials
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Refresh tokens using refresh token
	// If session expired: has to return apperrors.ErrSessionExpired
	// If session not found: has to return apperrors.ErrSessionNotFound
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Logout deletes the session behind the refresh token
	// Has to return apperrors.ErrSessionNotFound if it is already gone
	Logout(ctx context.Context, refresh string) error
}

type AuthHandler struct {
	auth authService
}

func NewAuth(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /refresh", h.refresh)
	mux.HandleFunc("POST /logout", h.logout)

	return mux
}

// Both tokens go to the response body, the same shape for every auth route
type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func pairToResponse(pair models.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Email     string  `json:"email" validate:"required,email,max=100"`
		Password  string  `json:"password" validate:"required,min=8"`
		Username  string  `json:"username" validate:"required,min=3,max=50,alphanum"`
		FirstName *string `json:"firstName" validate:"omitempty,max=50"`
		LastName  *string `json:"lastName" validate:"omitempty,max=50"`
		Phone     *string `json:"phone" validate:"omitempty,phone"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.auth.Register(r.Context(), auth.RegisterParams{
		Email:     data.Email,
		Password:  data.Password,
		Username:  data.Username,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Phone:     data.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEmailTaken):
			render.ServiceError(w, "Email already taken", http.StatusConflict)
		case errors.Is(err, apperrors.ErrUsernameTaken):
			render.ServiceError(w, "Username already taken", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, pairToResponse(pair), http.StatusCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.auth.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		// One answer for unknown account and wrong password, nothing to enumerate
		case errors.Is(err, apperrors.ErrUserNotFound), errors.Is(err, apperrors.ErrBadCredentials):
			render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrUserBlocked):
			render.ServiceError(w, "User is blocked", http.StatusForbidden)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, pairToResponse(pair))
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	data, err := render.BindAndValidate[RefreshRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.auth.Refresh(r.Context(), data.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSessionExpired):
			render.ServiceError(w, "Refresh token expired", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrSessionNotFound):
			render.ServiceError(w, "Refresh token not found", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, pairToResponse(pair))
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	type LogoutRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	type LogoutSuccessResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[LogoutRequest](w, r)
	if err != nil {
		return
	}

	if err := h.auth.Logout(r.Context(), data.RefreshToken); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSessionNotFound):
			render.ServiceError(w, "Refresh token not found", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, LogoutSuccessResponse{Message: "User logged out successfully"})
}
