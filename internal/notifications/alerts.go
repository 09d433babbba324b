package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// AlertChannel is the pub/sub channel carrying a user's alerts.
func AlertChannel(username string) string {
	return "alerts:" + username
}

// RedisAlerter publishes alerts as JSON so any process holding the user's
// connection can render them.
type RedisAlerter struct {
	client *redis.Client
}

// NewRedisAlerter constructs a RedisAlerter.
func NewRedisAlerter(client *redis.Client) *RedisAlerter {
	return &RedisAlerter{client: client}
}

// Alert implements Alerter.
func (a *RedisAlerter) Alert(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	if err := a.client.Publish(ctx, AlertChannel(alert.Username), payload).Err(); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

// Subscribe listens on a user's alert channel. Callers close the PubSub.
func (a *RedisAlerter) Subscribe(ctx context.Context, username string) *redis.PubSub {
	return a.client.Subscribe(ctx, AlertChannel(username))
}

// LogAlerter writes alerts to the structured log.
type LogAlerter struct {
	logger *slog.Logger
}

// NewLogAlerter constructs a LogAlerter.
func NewLogAlerter(logger *slog.Logger) *LogAlerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogAlerter{logger: logger}
}

// Alert implements Alerter.
func (a *LogAlerter) Alert(ctx context.Context, alert Alert) error {
	a.logger.InfoContext(ctx, "notification alert",
		slog.String("username", alert.Username),
		slog.String("notification_id", alert.NotificationID),
		slog.String("type", string(alert.Type)),
		slog.String("icon", alert.Style.Icon),
		slog.Int("frequency", alert.Style.Frequency),
		slog.Bool("sound", alert.Sound),
		slog.String("title", alert.Title))
	return nil
}
