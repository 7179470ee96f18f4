package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"jaggery-store/internal/data/entity"
	"jaggery-store/internal/data/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubSessions struct {
	repository.SessionRepository
	cleaned int64
	err     error
}

func (s *stubSessions) CleanExpiredSessions(context.Context) (int64, error) {
	return s.cleaned, s.err
}

func TestMaintenance_SweepPhoneOTPsHonoursRetention(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	otps := repository.NewMemoryPhoneOTPRepository()
	owner := uuid.New()

	put := func(phone string, expiresAt time.Time) {
		require.NoError(t, otps.Put(ctx, &entity.PhoneOTP{Phone: phone, Code: "123456", OwnerUserID: owner, ExpiresAt: expiresAt}))
	}
	put("long-gone", now.Add(-2*time.Hour))
	put("just-expired", now.Add(-5*time.Minute))
	put("live", now.Add(5*time.Minute))

	m := NewMaintenance(otps, &stubSessions{}, time.Hour, zaptest.NewLogger(t))
	m.now = func() time.Time { return now }

	require.NoError(t, m.SweepPhoneOTPs(ctx))
	assert.Equal(t, 2, otps.Len())

	got, err := otps.Get(ctx, "just-expired")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestMaintenance_CleanSessions(t *testing.T) {
	m := NewMaintenance(repository.NewMemoryPhoneOTPRepository(), &stubSessions{cleaned: 3}, time.Hour, zaptest.NewLogger(t))
	assert.NoError(t, m.CleanSessions(context.Background()))

	boom := errors.New("db down")
	m = NewMaintenance(repository.NewMemoryPhoneOTPRepository(), &stubSessions{err: boom}, time.Hour, zaptest.NewLogger(t))
	assert.ErrorIs(t, m.CleanSessions(context.Background()), boom)
}

func TestMaintenance_RegisterSchedulesJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := NewScheduler(ctx, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })

	m := NewMaintenance(repository.NewMemoryPhoneOTPRepository(), &stubSessions{}, time.Hour, zaptest.NewLogger(t))
	require.NoError(t, m.Register(s, time.Minute))

	names := make([]string, 0, 2)
	for _, j := range s.Jobs() {
		names = append(names, j.Name())
	}
	assert.ElementsMatch(t, []string{"phone otp sweep", "session cleanup"}, names)
}
