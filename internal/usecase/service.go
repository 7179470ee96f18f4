package usecase

import (
	"jaggery-store/internal/data/repository"
	"jaggery-store/pkg/sms"
	"jaggery-store/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	User     UserService
	PhoneOTP PhoneOTPService
}

func NewService(repo *repository.Repository, sender sms.Sender, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:     NewAuthService(repo, config, log),
		User:     NewUserService(repo.User, repo.Session, log),
		PhoneOTP: NewPhoneOTPService(repo.PhoneOTP, repo.User, sender, config.OTP, log),
	}
}
