package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/adhub/backend/internal/handlers/authctx"
	"github.com/adhub/backend/internal/handlers/render"
	"github.com/adhub/backend/internal/models"
	"github.com/adhub/backend/internal/repository"
)

type userService interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
	List(ctx context.Context, opts repository.ListUsersOpts) ([]models.User, error)
}

type UserHandler struct {
	users userService
}

func NewUser(users userService) *UserHandler {
	return &UserHandler{users: users}
}

type userProfileResponse struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	FirstName *string    `json:"firstName,omitempty"`
	LastName  *string    `json:"lastName,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	AvatarURL *string    `json:"avatarUrl,omitempty"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	Rating    *string    `json:"rating,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func userToProfile(u models.User) userProfileResponse {
	resp := userProfileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		AvatarURL: u.AvatarURL,
		Role:      u.Role.Name,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}

	if u.Rating.Valid {
		rating := u.Rating.Decimal.StringFixed(2)
		resp.Rating = &rating
	}

	return resp
}

// Profile of the authenticated user
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	// Identity is always present, RequireAuth runs before this handler
	identity, _ := authctx.FromContext(r.Context())

	user, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, userToProfile(user))
}

// Paged user listing for moderation
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Users []userProfileResponse `json:"users"`
	}

	opts := repository.ListUsersOpts{}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		opts.Limit, _ = strconv.Atoi(limit)
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		opts.Offset, _ = strconv.Atoi(offset)
	}

	users, err := h.users.List(r.Context(), opts)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response{Users: make([]userProfileResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, userToProfile(u))
	}

	render.JSON(w, resp)
}
