package notifications

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderTemplates(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	n, err := svc.SendTask(ctx, "bob", "Write report", "assigned", "alice", PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, "Task Assigned", n.Title)
	assert.Equal(t, "Task 'Write report' has been assigned by Alice Admin", n.Message)
	assert.Equal(t, TypeTask, n.Type)
	assert.Equal(t, PriorityHigh, n.Priority)
	assert.Equal(t, "alice", n.FromUsername)

	n, err = svc.SendFile(ctx, "bob", "plan.pdf", "shared privately", "mallory", PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, "File Shared Privately", n.Title)
	assert.Equal(t, "File 'plan.pdf' has been shared privately by mallory", n.Message)

	n, err = svc.SendCalendar(ctx, "bob", "Standup", "created", "", PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, "Calendar Event Created", n.Title)
	assert.Equal(t, "Event 'Standup' has been created", n.Message)

	n, err = svc.SendProject(ctx, "bob", "Apollo", "assigned", "alice", PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, "Project Assigned", n.Title)

	n, err = svc.SendPerformance(ctx, "bob", "completed", "alice", PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, "Performance Review Completed", n.Title)
	assert.Equal(t, "Your performance review has been completed by Alice Admin", n.Message)
	assert.Equal(t, TypePerformance, n.Type)
}

func TestPollAndChatTruncation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	question := strings.Repeat("q", 60)
	n, err := svc.SendPoll(ctx, "bob", question, "created", "", PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, "Poll '"+strings.Repeat("q", 50)+"...' has been created", n.Message)

	short, err := svc.SendPoll(ctx, "bob", "Lunch?", "created", "", PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, "Poll 'Lunch?' has been created", short.Message)

	preview := strings.Repeat("m", 120)
	n, err = svc.SendChat(ctx, "bob", "Alice Admin", preview, PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, "New Message from Alice Admin", n.Title)
	assert.Equal(t, strings.Repeat("m", 100)+"...", n.Message)
	assert.Empty(t, n.FromUsername)
	assert.Equal(t, TypeChat, n.Type)
}
