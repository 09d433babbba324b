package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskNotificationsPurge drops old read notifications.
	TaskNotificationsPurge = "notifications:purge"
	// TaskSessionsSweep removes expired session snapshots.
	TaskSessionsSweep = "sessions:sweep"
)

// PurgePayload configures a purge run. A zero retention falls back to the
// job's configured default.
type PurgePayload struct {
	RetentionHours int `json:"retention_hours"`
}

func (p PurgePayload) retention(fallback time.Duration) time.Duration {
	if p.RetentionHours > 0 {
		return time.Duration(p.RetentionHours) * time.Hour
	}
	return fallback
}

// NewPurgeTask constructs a notifications purge task.
func NewPurgeTask(payload PurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationsPurge, data), nil
}

// NewSweepTask constructs a session sweep task.
func NewSweepTask() *asynq.Task {
	return asynq.NewTask(TaskSessionsSweep, nil)
}
