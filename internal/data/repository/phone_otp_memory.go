package repository

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"jaggery-store/internal/data/entity"

	"github.com/google/uuid"
)

// MemoryPhoneOTPRepository keeps codes in process memory. Entries do not
// survive a restart and are not shared between instances.
type MemoryPhoneOTPRepository struct {
	mu      sync.Mutex
	entries map[string]entity.PhoneOTP
}

func NewMemoryPhoneOTPRepository() *MemoryPhoneOTPRepository {
	return &MemoryPhoneOTPRepository{
		entries: make(map[string]entity.PhoneOTP),
	}
}

func (r *MemoryPhoneOTPRepository) Put(_ context.Context, otp *entity.PhoneOTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[otp.Phone] = *otp
	return nil
}

func (r *MemoryPhoneOTPRepository) Get(_ context.Context, phone string) (*entity.PhoneOTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp, ok := r.entries[phone]
	if !ok {
		return nil, nil
	}
	return &otp, nil
}

func (r *MemoryPhoneOTPRepository) Delete(_ context.Context, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, phone)
	return nil
}

func (r *MemoryPhoneOTPRepository) Consume(_ context.Context, phone, code string, ownerID uuid.UUID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	otp, ok := r.entries[phone]
	if !ok || otp.IsExpired(now) || otp.OwnerUserID != ownerID {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		return false, nil
	}

	delete(r.entries, phone)
	return true, nil
}

func (r *MemoryPhoneOTPRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for phone, otp := range r.entries {
		if otp.ExpiresAt.Before(before) {
			delete(r.entries, phone)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries, expired ones included.
func (r *MemoryPhoneOTPRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
