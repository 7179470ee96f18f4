package repository

import (
	"fmt"

	"jaggery-store/pkg/database"
	"jaggery-store/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Repository struct {
	User     UserRepository
	Session  SessionRepository
	PhoneOTP PhoneOTPRepository
}

func NewRepository(db database.PgxIface, phoneOTP PhoneOTPRepository, log *zap.Logger) *Repository {
	return &Repository{
		User:     NewUserRepository(db, log),
		Session:  NewSessionRepository(db, log),
		PhoneOTP: phoneOTP,
	}
}

// NewPhoneOTPStore picks the OTP backend named by config.Store. rdb may be
// nil unless the redis backend is selected.
func NewPhoneOTPStore(config utils.OTPConfig, db database.PgxIface, rdb redis.UniversalClient, log *zap.Logger) (PhoneOTPRepository, error) {
	switch config.Store {
	case utils.OTPStoreMemory:
		return NewMemoryPhoneOTPRepository(), nil
	case utils.OTPStorePostgres:
		return NewPhoneOTPRepository(db, log), nil
	case utils.OTPStoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("otp store %q requires a redis client", config.Store)
		}
		return NewRedisPhoneOTPRepository(rdb, config.Retention, log), nil
	default:
		return nil, fmt.Errorf("unknown otp store %q", config.Store)
	}
}
