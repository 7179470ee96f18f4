package adaptor

import (
	"jaggery-store/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	PhoneOTP *PhoneOTPHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		User:     NewUserHandler(service.User, log),
		PhoneOTP: NewPhoneOTPHandler(service.PhoneOTP, log),
	}
}
