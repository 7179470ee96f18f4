package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jaggery-store/internal/data/entity"
	"jaggery-store/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PhoneOTPRepository holds at most one outstanding code per phone number.
type PhoneOTPRepository interface {
	// Put stores otp under otp.Phone, replacing any existing entry.
	Put(ctx context.Context, otp *entity.PhoneOTP) error
	// Get returns the entry for phone, or nil when there is none. Expired
	// entries are still returned until they are deleted or reclaimed.
	Get(ctx context.Context, phone string) (*entity.PhoneOTP, error)
	// Delete removes the entry for phone; a missing entry is not an error.
	Delete(ctx context.Context, phone string) error
	// Consume atomically deletes the entry only if code and owner match and
	// it is unexpired at now. Reports whether an entry was deleted.
	Consume(ctx context.Context, phone, code string, ownerID uuid.UUID, now time.Time) (bool, error)
	// DeleteExpired removes entries that expired before the given instant.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type phoneOTPRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPhoneOTPRepository(db database.PgxIface, log *zap.Logger) PhoneOTPRepository {
	return &phoneOTPRepository{
		db:  db,
		log: log.With(zap.String("repository", "phone_otp")),
	}
}

func (r *phoneOTPRepository) Put(ctx context.Context, otp *entity.PhoneOTP) error {
	query := `
		INSERT INTO phone_otps (phone, code, owner_user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (phone) DO UPDATE
		SET code = EXCLUDED.code,
		    owner_user_id = EXCLUDED.owner_user_id,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at
	`

	_, err := r.db.Exec(ctx, query,
		otp.Phone,
		otp.Code,
		otp.OwnerUserID,
		otp.ExpiresAt,
		otp.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to store phone OTP",
			zap.Error(err),
			zap.String("phone", otp.Phone),
		)
		return fmt.Errorf("store phone OTP for %s: %w", otp.Phone, err)
	}

	return nil
}

func (r *phoneOTPRepository) Get(ctx context.Context, phone string) (*entity.PhoneOTP, error) {
	query := `
		SELECT phone, code, owner_user_id, expires_at, created_at
		FROM phone_otps
		WHERE phone = $1
	`

	var otp entity.PhoneOTP
	err := r.db.QueryRow(ctx, query, phone).Scan(
		&otp.Phone,
		&otp.Code,
		&otp.OwnerUserID,
		&otp.ExpiresAt,
		&otp.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find phone OTP",
			zap.Error(err),
			zap.String("phone", phone),
		)
		return nil, fmt.Errorf("find phone OTP for %s: %w", phone, err)
	}

	return &otp, nil
}

func (r *phoneOTPRepository) Delete(ctx context.Context, phone string) error {
	query := `DELETE FROM phone_otps WHERE phone = $1`

	if _, err := r.db.Exec(ctx, query, phone); err != nil {
		r.log.Error("Failed to delete phone OTP",
			zap.Error(err),
			zap.String("phone", phone),
		)
		return fmt.Errorf("delete phone OTP for %s: %w", phone, err)
	}

	return nil
}

func (r *phoneOTPRepository) Consume(ctx context.Context, phone, code string, ownerID uuid.UUID, now time.Time) (bool, error) {
	query := `
		DELETE FROM phone_otps
		WHERE phone = $1
		  AND code = $2
		  AND owner_user_id = $3
		  AND expires_at >= $4
	`

	result, err := r.db.Exec(ctx, query, phone, code, ownerID, now)
	if err != nil {
		r.log.Error("Failed to consume phone OTP",
			zap.Error(err),
			zap.String("phone", phone),
		)
		return false, fmt.Errorf("consume phone OTP for %s: %w", phone, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *phoneOTPRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM phone_otps WHERE expires_at < $1`

	result, err := r.db.Exec(ctx, query, before)
	if err != nil {
		r.log.Error("Failed to delete expired phone OTPs", zap.Error(err))
		return 0, fmt.Errorf("delete phone OTPs expired before %s: %w", before.Format(time.RFC3339), err)
	}

	return result.RowsAffected(), nil
}
