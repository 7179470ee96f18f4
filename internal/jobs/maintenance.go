package jobs

import (
	"context"
	"fmt"
	"time"

	"jaggery-store/internal/data/repository"
	"jaggery-store/pkg/metrics"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const sessionCleanupInterval = time.Hour

type Maintenance struct {
	otps      repository.PhoneOTPRepository
	sessions  repository.SessionRepository
	retention time.Duration
	now       func() time.Time
	log       *zap.Logger
}

// NewMaintenance keeps expired OTP entries for retention past their expiry
// so that a late verify still reports them as expired.
func NewMaintenance(
	otps repository.PhoneOTPRepository,
	sessions repository.SessionRepository,
	retention time.Duration,
	log *zap.Logger,
) *Maintenance {
	return &Maintenance{
		otps:      otps,
		sessions:  sessions,
		retention: retention,
		now:       time.Now,
		log:       log.With(zap.String("component", "maintenance")),
	}
}

func (m *Maintenance) SweepPhoneOTPs(ctx context.Context) error {
	cutoff := m.now().Add(-m.retention)

	n, err := m.otps.DeleteExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("sweep phone OTPs: %w", err)
	}

	metrics.PhoneOTPSweptTotal.Add(float64(n))
	if n > 0 {
		m.log.Info("Expired phone OTPs removed", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	return nil
}

func (m *Maintenance) CleanSessions(ctx context.Context) error {
	n, err := m.sessions.CleanExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("clean sessions: %w", err)
	}

	if n > 0 {
		m.log.Info("Expired sessions removed", zap.Int64("count", n))
	}
	return nil
}

// Register schedules both maintenance jobs on s.
func (m *Maintenance) Register(s gocron.Scheduler, sweepInterval time.Duration) error {
	if _, err := s.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(m.SweepPhoneOTPs),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("phone otp sweep"),
	); err != nil {
		return fmt.Errorf("schedule phone otp sweep: %w", err)
	}

	if _, err := s.NewJob(
		gocron.DurationJob(sessionCleanupInterval),
		gocron.NewTask(m.CleanSessions),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("session cleanup"),
	); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}

	return nil
}
