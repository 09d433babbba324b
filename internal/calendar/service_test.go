package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/shared"
	"github.com/odyssey-erp/teamhub/internal/testing/teamtest"
)

func day(d, hour int) time.Time {
	return time.Date(2026, 6, d, hour, 0, 0, 0, time.UTC)
}

func TestCreateEventNotifiesAttendees(t *testing.T) {
	f := teamtest.New(t, nil)
	company := f.Company(t, "alice", "bob", "carol")
	svc := NewService(NewRepository(f.Store), f.Companies, f.Notifications, nil)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, company.Code, "alice", Input{
		Title:     "Sprint review",
		StartDate: day(3, 10),
		EndDate:   day(3, 11),
		Attendees: []string{"alice", "bob", "bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, TypeMeeting, event.EventType)
	assert.Equal(t, []string{"alice", "bob"}, event.Attendees)

	inbox := f.Mailbox(t, "bob")
	require.Len(t, inbox, 1)
	assert.Equal(t, notifications.TypeCalendar, inbox[0].Type)
	assert.Equal(t, "Calendar Event Created", inbox[0].Title)
	assert.Equal(t, "Event 'Sprint review' has been created by alice full", inbox[0].Message)
	assert.Empty(t, f.Mailbox(t, "alice"))
	assert.Empty(t, f.Mailbox(t, "carol"))
}

func TestCreateEventValidation(t *testing.T) {
	f := teamtest.New(t, nil)
	company := f.Company(t, "alice")
	f.Company(t, "yuri", "zed")
	svc := NewService(NewRepository(f.Store), f.Companies, f.Notifications, nil)
	ctx := context.Background()

	cases := map[string]Input{
		"no title":        {StartDate: day(1, 9), EndDate: day(1, 10)},
		"no dates":        {Title: "Sync"},
		"ends early":      {Title: "Sync", StartDate: day(2, 9), EndDate: day(1, 9)},
		"bad type":        {Title: "Sync", StartDate: day(1, 9), EndDate: day(1, 10), EventType: "party"},
		"outside company": {Title: "Sync", StartDate: day(1, 9), EndDate: day(1, 10), Attendees: []string{"zed"}},
		"moderated":       {Title: "dumb sync", StartDate: day(1, 9), EndDate: day(1, 10)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateEvent(ctx, company.Code, "alice", in)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestEventsSortedAndFiltered(t *testing.T) {
	f := teamtest.New(t, nil)
	company := f.Company(t, "alice", "bob")
	svc := NewService(NewRepository(f.Store), f.Companies, f.Notifications, nil)
	ctx := context.Background()

	for _, in := range []Input{
		{Title: "Late", StartDate: day(20, 9), EndDate: day(20, 10)},
		{Title: "Early", StartDate: day(2, 9), EndDate: day(2, 10), Attendees: []string{"bob"}},
		{Title: "Spanning", StartDate: day(9, 9), EndDate: day(11, 10)},
	} {
		_, err := svc.CreateEvent(ctx, company.Code, "alice", in)
		require.NoError(t, err)
	}

	all, err := svc.Events(ctx, company.Code, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Early", all[0].Title)
	assert.Equal(t, "Spanning", all[1].Title)
	assert.Equal(t, "Late", all[2].Title)

	window, err := svc.Events(ctx, company.Code, day(1, 0), day(10, 0))
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "Early", window[0].Title)

	mine, err := svc.UserEvents(ctx, company.Code, "bob")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Early", mine[0].Title)

	created, err := svc.UserEvents(ctx, company.Code, "alice")
	require.NoError(t, err)
	assert.Len(t, created, 3)
}
