package wire

import (
	"jaggery-store/internal/adaptor"
	"jaggery-store/internal/data/repository"
	"jaggery-store/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wirePhoneOTP mounts the phone verification flow; both steps need a session
func wirePhoneOTP(
	r chi.Router,
	phoneOTPHandler *adaptor.PhoneOTPHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Post("/api/send-phone-otp", phoneOTPHandler.SendOTP)
		r.Post("/api/verify-phone-otp", phoneOTPHandler.VerifyOTP)
	})
}
