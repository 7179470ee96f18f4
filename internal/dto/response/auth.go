package response

import (
	"time"

	"jaggery-store/internal/data/entity"
)

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserResponse is the sanitized projection of a user returned to clients.
type UserResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         *string `json:"phone"`
	PhoneVerified bool    `json:"phoneVerified"`
}

type AdminUserResponse struct {
	UserResponse
	Role      entity.UserRole `json:"role"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:            user.ID.String(),
		Name:          user.Name,
		Email:         user.Email,
		Phone:         user.Phone,
		PhoneVerified: user.PhoneVerified,
	}
}

func UserToAdminResponse(user *entity.User) AdminUserResponse {
	return AdminUserResponse{
		UserResponse: UserToResponse(user),
		Role:         user.Role,
		IsActive:     user.IsActive,
		CreatedAt:    user.CreatedAt,
	}
}

func AuthToResponse(user *entity.User, session *entity.Session) AuthResponse {
	resp := AuthResponse{User: UserToResponse(user)}
	if session != nil {
		resp.Token = session.Token.String()
		resp.ExpiresAt = session.ExpiresAt
	}
	return resp
}
