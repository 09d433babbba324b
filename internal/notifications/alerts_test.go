package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/teamhub/internal/platform/docstore"
)

func TestRedisAlerterPublishesToUserChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alerter := NewRedisAlerter(client)
	sub := alerter.Subscribe(ctx, "bob")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	svc := NewService(NewRepository(docstore.NewMemory()), nil, nil, alerter, nil)
	viewerCtx := WithViewer(ctx, Viewer{Username: "bob", Shown: NewShownIDs()})
	n, err := svc.Notify(viewerCtx, Outgoing{To: "bob", Title: "Poll Created", Type: TypePoll})
	require.NoError(t, err)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alerts:bob", msg.Channel)

	var alert Alert
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &alert))
	assert.Equal(t, n.ID, alert.NotificationID)
	assert.Equal(t, 1000, alert.Style.Frequency)
	assert.Equal(t, "#FF9800", alert.Style.Color)
}

func TestLogAlerterNeverFails(t *testing.T) {
	require.NoError(t, NewLogAlerter(nil).Alert(context.Background(), Alert{Username: "bob"}))
}
