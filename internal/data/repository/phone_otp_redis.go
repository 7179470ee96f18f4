package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"jaggery-store/internal/data/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const phoneOTPKeyPrefix = "phone_otp:"

var consumePhoneOTPScript = redis.NewScript(`
local code = redis.call("HGET", KEYS[1], "code")
if not code or code ~= ARGV[1] then
  return 0
end
if redis.call("HGET", KEYS[1], "owner_user_id") ~= ARGV[2] then
  return 0
end
local expires_at = tonumber(redis.call("HGET", KEYS[1], "expires_at"))
if not expires_at or expires_at < tonumber(ARGV[3]) then
  return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

// redisPhoneOTPRepository stores each entry as a hash whose key TTL is the
// code expiry plus retention, so redis reclaims stale entries on its own.
type redisPhoneOTPRepository struct {
	client    redis.UniversalClient
	retention time.Duration
	log       *zap.Logger
}

func NewRedisPhoneOTPRepository(client redis.UniversalClient, retention time.Duration, log *zap.Logger) PhoneOTPRepository {
	return &redisPhoneOTPRepository{
		client:    client,
		retention: retention,
		log:       log.With(zap.String("repository", "phone_otp_redis")),
	}
}

func (r *redisPhoneOTPRepository) key(phone string) string {
	return phoneOTPKeyPrefix + phone
}

func (r *redisPhoneOTPRepository) Put(ctx context.Context, otp *entity.PhoneOTP) error {
	key := r.key(otp.Phone)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]any{
			"code":          otp.Code,
			"owner_user_id": otp.OwnerUserID.String(),
			"expires_at":    otp.ExpiresAt.UnixMilli(),
			"created_at":    otp.CreatedAt.UnixMilli(),
		})
		pipe.PExpireAt(ctx, key, otp.ExpiresAt.Add(r.retention))
		return nil
	})
	if err != nil {
		r.log.Error("Failed to store phone OTP",
			zap.Error(err),
			zap.String("phone", otp.Phone),
		)
		return fmt.Errorf("store phone OTP for %s: %w", otp.Phone, err)
	}

	return nil
}

func (r *redisPhoneOTPRepository) Get(ctx context.Context, phone string) (*entity.PhoneOTP, error) {
	fields, err := r.client.HGetAll(ctx, r.key(phone)).Result()
	if err != nil {
		r.log.Error("Failed to find phone OTP",
			zap.Error(err),
			zap.String("phone", phone),
		)
		return nil, fmt.Errorf("find phone OTP for %s: %w", phone, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	otp, err := phoneOTPFromHash(phone, fields)
	if err != nil {
		r.log.Error("Corrupt phone OTP entry",
			zap.Error(err),
			zap.String("phone", phone),
		)
		return nil, fmt.Errorf("decode phone OTP for %s: %w", phone, err)
	}

	return otp, nil
}

func (r *redisPhoneOTPRepository) Delete(ctx context.Context, phone string) error {
	if err := r.client.Del(ctx, r.key(phone)).Err(); err != nil {
		r.log.Error("Failed to delete phone OTP",
			zap.Error(err),
			zap.String("phone", phone),
		)
		return fmt.Errorf("delete phone OTP for %s: %w", phone, err)
	}
	return nil
}

func (r *redisPhoneOTPRepository) Consume(ctx context.Context, phone, code string, ownerID uuid.UUID, now time.Time) (bool, error) {
	deleted, err := consumePhoneOTPScript.Run(
		ctx,
		r.client,
		[]string{r.key(phone)}, // KEYS
		code,                   // ARGV[1]
		ownerID.String(),       // ARGV[2]
		now.UnixMilli(),        // ARGV[3]
	).Int64()
	if err != nil {
		r.log.Error("Failed to consume phone OTP",
			zap.Error(err),
			zap.String("phone", phone),
		)
		return false, fmt.Errorf("consume phone OTP for %s: %w", phone, err)
	}

	return deleted == 1, nil
}

// DeleteExpired is a no-op: key TTLs already reclaim entries once their
// retention window has passed.
func (r *redisPhoneOTPRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func phoneOTPFromHash(phone string, fields map[string]string) (*entity.PhoneOTP, error) {
	ownerID, err := uuid.Parse(fields["owner_user_id"])
	if err != nil {
		return nil, fmt.Errorf("owner_user_id: %w", err)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("expires_at: %w", err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}

	return &entity.PhoneOTP{
		Phone:       phone,
		Code:        fields["code"],
		OwnerUserID: ownerID,
		ExpiresAt:   time.UnixMilli(expiresAt),
		CreatedAt:   time.UnixMilli(createdAt),
	}, nil
}
