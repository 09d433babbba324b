package notifications

import (
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// SendTask notifies about a task event, e.g. action "assigned".
func (s *Service) SendTask(ctx context.Context, to, taskTitle, action, from string, priority Priority) (Notification, error) {
	return s.sendNamed(ctx, TypeTask, "Task", "Task", to, taskTitle, action, from, priority)
}

// SendFile notifies about a shared file.
func (s *Service) SendFile(ctx context.Context, to, fileName, action, from string, priority Priority) (Notification, error) {
	return s.sendNamed(ctx, TypeFile, "File", "File", to, fileName, action, from, priority)
}

// SendPoll notifies about a poll. Long questions are cut to 50 characters.
func (s *Service) SendPoll(ctx context.Context, to, question, action, from string, priority Priority) (Notification, error) {
	return s.sendNamed(ctx, TypePoll, "Poll", "Poll", to, truncate(question, 50), action, from, priority)
}

// SendCalendar notifies about a calendar event.
func (s *Service) SendCalendar(ctx context.Context, to, eventTitle, action, from string, priority Priority) (Notification, error) {
	return s.sendNamed(ctx, TypeCalendar, "Calendar Event", "Event", to, eventTitle, action, from, priority)
}

// SendProject notifies about a project.
func (s *Service) SendProject(ctx context.Context, to, projectName, action, from string, priority Priority) (Notification, error) {
	return s.sendNamed(ctx, TypeProject, "Project", "Project", to, projectName, action, from, priority)
}

// SendPerformance notifies about the recipient's own performance review.
func (s *Service) SendPerformance(ctx context.Context, to, action, from string, priority Priority) (Notification, error) {
	message := fmt.Sprintf("Your performance review has been %s", action)
	if from != "" {
		message += " by " + s.fullName(ctx, from)
	}
	return s.Notify(ctx, Outgoing{
		To:       to,
		Title:    "Performance Review " + titleCaser.String(action),
		Message:  message,
		Type:     TypePerformance,
		From:     from,
		Priority: priority,
	})
}

// SendChat notifies about a new message. The preview is cut to 100
// characters and the sender is not recorded on the notification.
func (s *Service) SendChat(ctx context.Context, to, senderName, preview string, priority Priority) (Notification, error) {
	return s.Notify(ctx, Outgoing{
		To:       to,
		Title:    "New Message from " + senderName,
		Message:  truncate(preview, 100),
		Type:     TypeChat,
		Priority: priority,
	})
}

func (s *Service) sendNamed(ctx context.Context, typ Type, titleKind, messageKind, to, name, action, from string, priority Priority) (Notification, error) {
	message := fmt.Sprintf("%s '%s' has been %s", messageKind, name, action)
	if from != "" {
		message += " by " + s.fullName(ctx, from)
	}
	return s.Notify(ctx, Outgoing{
		To:       to,
		Title:    titleKind + " " + titleCaser.String(action),
		Message:  message,
		Type:     typ,
		From:     from,
		Priority: priority,
	})
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
