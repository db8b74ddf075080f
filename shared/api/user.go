package api

import (
	"time"

	"github.com/itchan-dev/threads/shared/domain"
)

// Request DTOs

type UpsertProfileRequest struct {
	Username         string `json:"username" validate:"required"`
	Name             string `json:"name" validate:"required"`
	Bio              string `json:"bio"`
	Image            string `json:"image" validate:"omitempty,url"`
	InvalidationPath string `json:"invalidation_path,omitempty"`
}

// Response DTOs

type UserResponse struct {
	Id        domain.UserId   `json:"id"`
	Username  domain.Username `json:"username"`
	Name      string          `json:"name"`
	Bio       string          `json:"bio"`
	Image     string          `json:"image"`
	Onboarded bool            `json:"onboarded"`
	Threads   domain.Ids      `json:"threads"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		Id:        user.Id,
		Username:  user.Username,
		Name:      user.Name,
		Bio:       user.Bio,
		Image:     user.Image,
		Onboarded: user.Onboarded,
		Threads:   user.Threads,
		CreatedAt: user.CreatedAt,
	}
}

type UserThreadsResponse struct {
	User    UserResponse     `json:"user"`
	Threads []*domain.Thread `json:"threads"`
}
