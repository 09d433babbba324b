package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/shared"
	"github.com/odyssey-erp/teamhub/internal/testing/teamtest"
)

func newTestService(f *teamtest.Fixture) *Service {
	return NewService(NewRepository(f.Store), f.Companies, f.Users, f.Notifications, nil)
}

func TestPersonalTaskLifecycle(t *testing.T) {
	f := teamtest.New(t, nil)
	f.Register(t, "pat", "")
	svc := newTestService(f)
	ctx := context.Background()

	task, err := svc.Create(ctx, "pat", Input{Title: "  Write report ", DueDate: "2026-05-01"})
	require.NoError(t, err)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, DefaultCategory, task.Category)
	assert.Equal(t, "medium", task.Priority)
	assert.Equal(t, StatusPending, task.Status)
	assert.NotNil(t, task.Tags)

	_, err = svc.Create(ctx, "pat", Input{Title: "call that idiot"})
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Create(ctx, "pat", Input{Title: "x", Priority: "urgent"})
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Create(ctx, "pat", Input{Title: "x", DueDate: "tomorrow"})
	require.ErrorIs(t, err, shared.ErrValidation)

	done, err := svc.Complete(ctx, "pat", task.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	lists, err := svc.List(ctx, "pat")
	require.NoError(t, err)
	require.Len(t, lists.Tasks, 1)
	assert.True(t, lists.Tasks[0].Completed)
	assert.Empty(t, lists.Assigned)

	require.NoError(t, svc.Delete(ctx, "pat", task.ID))
	require.ErrorIs(t, svc.Delete(ctx, "pat", task.ID), shared.ErrNotFound)
	_, err = svc.Complete(ctx, "pat", task.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateKeepsOtherUserDataFields(t *testing.T) {
	f := teamtest.New(t, nil)
	f.Register(t, "pat", "")
	svc := newTestService(f)
	ctx := context.Background()

	_, err := svc.Create(ctx, "pat", Input{Title: "Plan week"})
	require.NoError(t, err)

	settings, err := f.Users.Settings(ctx, "pat")
	require.NoError(t, err)
	assert.Equal(t, "light", settings.Theme)
}

func TestAssignAuthorization(t *testing.T) {
	f := teamtest.New(t, nil)
	f.Company(t, "alice", "bob", "carol")
	f.Company(t, "yuri", "zed")
	svc := newTestService(f)
	ctx := context.Background()
	in := Input{Title: "Review budget", Priority: "high"}

	_, err := svc.Assign(ctx, "bob", "carol", in)
	require.ErrorIs(t, err, shared.ErrPermissionDenied, "employees cannot assign")

	_, err = svc.Assign(ctx, "alice", "nobody", in)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Assign(ctx, "alice", "zed", in)
	require.ErrorIs(t, err, shared.ErrPermissionDenied, "other companies are off limits")

	f.SetRole(t, "carol", "senior_employee")
	_, err = svc.Assign(ctx, "carol", "bob", in)
	require.NoError(t, err)

	f.SetRole(t, "bob", "senior_employee")
	_, err = svc.Assign(ctx, "carol", "bob", in)
	require.ErrorIs(t, err, shared.ErrPermissionDenied, "peers cannot assign to each other")

	_, err = svc.Assign(ctx, "alice", "bob", Input{Title: "you moron"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAssignNotifiesAndCompletionReportsBack(t *testing.T) {
	f := teamtest.New(t, nil)
	f.Company(t, "alice", "bob")
	svc := newTestService(f)
	ctx := context.Background()

	task, err := svc.Assign(ctx, "alice", "bob", Input{Title: "Review budget"})
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, task.Status)
	assert.Equal(t, "alice", task.AssignedBy)
	assert.Equal(t, "bob", task.AssignedTo)

	lists, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, lists.Assigned, 1)
	assert.Empty(t, lists.Tasks)

	inbox := f.Mailbox(t, "bob")
	require.Len(t, inbox, 1)
	assert.Equal(t, "Task Assigned", inbox[0].Title)
	assert.Equal(t, "Task 'Review budget' has been assigned by alice full", inbox[0].Message)
	assert.Equal(t, notifications.TypeTask, inbox[0].Type)
	assert.Equal(t, notifications.PriorityHigh, inbox[0].Priority)
	assert.Equal(t, "alice", inbox[0].FromUsername)

	require.ErrorIs(t, svc.Delete(ctx, "bob", task.ID), shared.ErrNotFound)

	_, err = svc.Complete(ctx, "bob", task.ID)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, "bob", task.ID)
	require.NoError(t, err)

	var completions int
	for _, n := range f.Mailbox(t, "alice") {
		if n.Title == "Task Completed" {
			completions++
		}
	}
	assert.Equal(t, 1, completions)
}

func TestComments(t *testing.T) {
	f := teamtest.New(t, nil)
	f.Register(t, "pat", "")
	svc := newTestService(f)
	ctx := context.Background()

	first, err := svc.AddComment(ctx, "t1", "pat", "Started on this")
	require.NoError(t, err)
	assert.Equal(t, "pat full", first.UserName)
	_, err = svc.AddComment(ctx, "t1", "pat", "Done")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, "t1", "pat", "this is dumb")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.AddComment(ctx, "t1", "pat", "   ")
	require.ErrorIs(t, err, shared.ErrValidation)

	list, err := svc.Comments(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Started on this", list[0].Comment)
	assert.Equal(t, "Done", list[1].Comment)

	empty, err := svc.Comments(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
