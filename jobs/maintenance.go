package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/teamhub/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Purger removes read notifications older than a retention window.
type Purger interface {
	PurgeRead(ctx context.Context, olderThan time.Duration) (int, error)
}

// Sweeper removes expired sessions.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// PurgeJob drops read notifications past retention.
type PurgeJob struct {
	Notifications Purger
	Retention     time.Duration
	Logger        *slog.Logger
	Metrics       *jobmetrics.Metrics
}

// NewPurgeJob wires dependencies for the purge handler.
func NewPurgeJob(notifications Purger, retention time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *PurgeJob {
	return &PurgeJob{Notifications: notifications, Retention: retention, Logger: logger, Metrics: metrics}
}

// Handle processes purge tasks.
func (j *PurgeJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Notifications == nil {
		return errors.New("notifications purge: handler not configured")
	}
	var payload PurgePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	metrics := orDefault(j.Metrics)
	tracker := metrics.Track(TaskNotificationsPurge)
	defer func() { resultErr = tracker.End(resultErr) }()

	retention := payload.retention(j.Retention)
	logger := jobLogger(j.Logger, TaskNotificationsPurge).With(slog.Duration("retention", retention))
	removed, err := j.Notifications.PurgeRead(ctx, retention)
	if err != nil {
		logger.Error("purge notifications", slog.Any("error", err))
		return err
	}
	metrics.AddRemoved(TaskNotificationsPurge, removed)
	logger.Info("purged notifications", slog.Int("removed", removed))
	return nil
}

// SweepJob removes expired sessions.
type SweepJob struct {
	Sessions Sweeper
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewSweepJob wires dependencies for the sweep handler.
func NewSweepJob(sessions Sweeper, logger *slog.Logger, metrics *jobmetrics.Metrics) *SweepJob {
	return &SweepJob{Sessions: sessions, Logger: logger, Metrics: metrics}
}

// Handle processes sweep tasks.
func (j *SweepJob) Handle(ctx context.Context, _ *asynq.Task) (resultErr error) {
	if j == nil || j.Sessions == nil {
		return errors.New("sessions sweep: handler not configured")
	}
	metrics := orDefault(j.Metrics)
	tracker := metrics.Track(TaskSessionsSweep)
	defer func() { resultErr = tracker.End(resultErr) }()

	logger := jobLogger(j.Logger, TaskSessionsSweep)
	removed, err := j.Sessions.Sweep(ctx)
	if err != nil {
		logger.Error("sweep sessions", slog.Any("error", err))
		return err
	}
	metrics.AddRemoved(TaskSessionsSweep, removed)
	logger.Info("swept sessions", slog.Int("removed", removed))
	return nil
}

func jobLogger(logger *slog.Logger, job string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("job", job))
}

func orDefault(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}
