package entity

import (
	"time"

	"github.com/google/uuid"
)

// PhoneOTP is one outstanding, unverified claim that OwnerUserID controls Phone.
// Phone is the store key: a newer code for the same phone replaces the older one.
type PhoneOTP struct {
	Phone       string    `db:"phone"`
	Code        string    `db:"code"`
	OwnerUserID uuid.UUID `db:"owner_user_id"`
	ExpiresAt   time.Time `db:"expires_at"`
	CreatedAt   time.Time `db:"created_at"`
}

// IsExpired reports whether now is strictly past the expiry instant.
func (o *PhoneOTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
