package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jaggery-store/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOTP(phone, code string, owner uuid.UUID, expiresAt time.Time) *entity.PhoneOTP {
	return &entity.PhoneOTP{
		Phone:       phone,
		Code:        code,
		OwnerUserID: owner,
		ExpiresAt:   expiresAt,
		CreatedAt:   expiresAt.Add(-10 * time.Minute),
	}
}

func TestMemoryPhoneOTPRepository_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPhoneOTPRepository()
	owner := uuid.New()
	exp := time.Now().Add(10 * time.Minute)

	require.NoError(t, repo.Put(ctx, newTestOTP("9998887777", "111111", owner, exp)))
	require.NoError(t, repo.Put(ctx, newTestOTP("9998887777", "222222", owner, exp)))

	got, err := repo.Get(ctx, "9998887777")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "222222", got.Code)
	assert.Equal(t, 1, repo.Len())
}

func TestMemoryPhoneOTPRepository_GetMissing(t *testing.T) {
	got, err := NewMemoryPhoneOTPRepository().Get(context.Background(), "0000000000")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryPhoneOTPRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPhoneOTPRepository()
	require.NoError(t, repo.Put(ctx, newTestOTP("1", "123456", uuid.New(), time.Now().Add(time.Minute))))

	got, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	got.Code = "tampered"

	again, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "123456", again.Code)
}

func TestMemoryPhoneOTPRepository_Consume(t *testing.T) {
	owner := uuid.New()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(10 * time.Minute)

	tests := []struct {
		name     string
		code     string
		owner    uuid.UUID
		at       time.Time
		consumed bool
	}{
		{name: "match", code: "482913", owner: owner, at: now, consumed: true},
		{name: "at expiry instant", code: "482913", owner: owner, at: exp, consumed: true},
		{name: "wrong code", code: "000000", owner: owner, at: now},
		{name: "other owner", code: "482913", owner: uuid.New(), at: now},
		{name: "expired", code: "482913", owner: owner, at: exp.Add(time.Millisecond)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewMemoryPhoneOTPRepository()
			require.NoError(t, repo.Put(ctx, newTestOTP("9998887777", "482913", owner, exp)))

			ok, err := repo.Consume(ctx, "9998887777", tt.code, tt.owner, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.consumed, ok)

			got, err := repo.Get(ctx, "9998887777")
			require.NoError(t, err)
			if tt.consumed {
				assert.Nil(t, got)
			} else {
				assert.NotNil(t, got)
			}
		})
	}
}

func TestMemoryPhoneOTPRepository_ConsumeConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPhoneOTPRepository()
	owner := uuid.New()
	now := time.Now()
	require.NoError(t, repo.Put(ctx, newTestOTP("9998887777", "482913", owner, now.Add(time.Minute))))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Consume(ctx, "9998887777", "482913", owner, now)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestMemoryPhoneOTPRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPhoneOTPRepository()
	now := time.Now()
	owner := uuid.New()

	require.NoError(t, repo.Put(ctx, newTestOTP("old", "1", owner, now.Add(-2*time.Hour))))
	require.NoError(t, repo.Put(ctx, newTestOTP("recent", "2", owner, now.Add(-time.Minute))))
	require.NoError(t, repo.Put(ctx, newTestOTP("live", "3", owner, now.Add(time.Minute))))

	n, err := repo.DeleteExpired(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, repo.Len())

	got, err := repo.Get(ctx, "recent")
	require.NoError(t, err)
	assert.NotNil(t, got, "entries inside the retention window are kept")
}

func TestMemoryPhoneOTPRepository_DeleteMissingIsNoop(t *testing.T) {
	assert.NoError(t, NewMemoryPhoneOTPRepository().Delete(context.Background(), "nope"))
}
