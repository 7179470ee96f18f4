// Package jobs runs periodic maintenance: reclaiming expired phone OTP
// entries and purging stale sessions.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewScheduler builds a started gocron scheduler that reports job events to log.
func NewScheduler(ctx context.Context, log *zap.Logger) (gocron.Scheduler, error) {
	log = log.With(zap.String("component", "cron"))

	scheduler, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithContext(ctx),
			gocron.WithEventListeners(
				gocron.BeforeJobRuns(func(jobID uuid.UUID, jobName string) {
					log.Debug("Job started", zap.String("job_name", jobName), zap.String("job_id", jobID.String()))
				}),
				gocron.AfterJobRunsWithError(func(jobID uuid.UUID, jobName string, err error) {
					log.Error("Job failed", zap.Error(err), zap.String("job_name", jobName), zap.String("job_id", jobID.String()))
				}),
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					log.Error("Job panicked", zap.Any("recover_data", recoverData), zap.String("job_name", jobName), zap.String("job_id", jobID.String()))
				}),
			),
		),
		gocron.WithLogger(zapLogger{l: log.Sugar()}),
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	scheduler.Start()
	return scheduler, nil
}

// zapLogger adapts zap to gocron.Logger
type zapLogger struct {
	l *zap.SugaredLogger
}

func (z zapLogger) Debug(msg string, args ...any) { z.l.Debugw(msg, args...) }
func (z zapLogger) Error(msg string, args ...any) { z.l.Errorw(msg, args...) }
func (z zapLogger) Info(msg string, args ...any)  { z.l.Infow(msg, args...) }
func (z zapLogger) Warn(msg string, args ...any)  { z.l.Warnw(msg, args...) }
