package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/odyssey-erp/teamhub/internal/moderation"
	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/ids"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Service handles company chat, private chat and pins.
type Service struct {
	repo      *Repository
	directory Directory
	people    People
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds Service instance.
func NewService(repo *Repository, directory Directory, people People, notifier Notifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{repo: repo, directory: directory, people: people, notifier: notifier, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send posts to the company chat and notifies every other member.
func (s *Service) Send(ctx context.Context, code, from, text, messageType string) (Message, error) {
	text, messageType, err := checkText(text, messageType)
	if err != nil {
		return Message{}, err
	}
	sender, err := s.people.Get(ctx, from)
	if err != nil {
		return Message{}, err
	}
	all, err := s.repo.Company(ctx)
	if err != nil {
		return Message{}, err
	}
	msg := Message{
		ID:           ids.New(),
		FromUsername: from,
		FromName:     sender.FullName,
		FromRole:     sender.Role,
		Message:      text,
		MessageType:  messageType,
		Timestamp:    s.now().UTC(),
	}
	all[code] = append(all[code], msg)
	if err := s.repo.SaveCompany(ctx, all); err != nil {
		return Message{}, err
	}

	members, err := s.directory.Usernames(ctx, code)
	if err != nil {
		s.logger.Error("chat: list members for notification", slog.String("company", code), slog.Any("error", err))
		return msg, nil
	}
	for _, member := range members {
		if member == from {
			continue
		}
		if _, err := s.notifier.SendChat(ctx, member, sender.FullName, text, notifications.PriorityNormal); err != nil {
			s.logger.Error("chat: notify member", slog.String("to", member), slog.Any("error", err))
		}
	}
	return msg, nil
}

// Recent returns up to limit live company messages, oldest first.
func (s *Service) Recent(ctx context.Context, code string, limit int) ([]Message, error) {
	all, err := s.repo.Company(ctx)
	if err != nil {
		return nil, err
	}
	return live(all[code], limit), nil
}

// Edit replaces the text of a message. Only its author may edit it.
func (s *Service) Edit(ctx context.Context, code, id, editor, text string) (Message, error) {
	text, _, err := checkText(text, TypeText)
	if err != nil {
		return Message{}, err
	}
	all, err := s.repo.Company(ctx)
	if err != nil {
		return Message{}, err
	}
	list := all[code]
	i := indexOf(list, id)
	if i < 0 || list[i].Deleted {
		return Message{}, fmt.Errorf("message %s: %w", id, shared.ErrNotFound)
	}
	if list[i].FromUsername != editor {
		return Message{}, fmt.Errorf("%w: only the author can edit a message", shared.ErrPermissionDenied)
	}
	edited := s.now().UTC()
	list[i].Message = text
	list[i].Edited = true
	list[i].EditedAt = &edited
	if err := s.repo.SaveCompany(ctx, all); err != nil {
		return Message{}, err
	}
	return list[i], nil
}

// Delete hides a message. Only its author may delete it.
func (s *Service) Delete(ctx context.Context, code, id, username string) error {
	all, err := s.repo.Company(ctx)
	if err != nil {
		return err
	}
	list := all[code]
	i := indexOf(list, id)
	if i < 0 || list[i].Deleted {
		return fmt.Errorf("message %s: %w", id, shared.ErrNotFound)
	}
	if list[i].FromUsername != username {
		return fmt.Errorf("%w: only the author can delete a message", shared.ErrPermissionDenied)
	}
	deleted := s.now().UTC()
	list[i].Deleted = true
	list[i].DeletedAt = &deleted
	return s.repo.SaveCompany(ctx, all)
}

// Search scopes.
const (
	SearchAll     = "all"
	SearchCompany = "company"
	SearchPrivate = "private"
)

// Search matches query case-insensitively against the company chat and the
// private chats username takes part in.
func (s *Service) Search(ctx context.Context, code, username, query, scope string) ([]SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, fmt.Errorf("%w: search query required", shared.ErrValidation)
	}
	if scope == "" {
		scope = SearchAll
	}
	if scope != SearchAll && scope != SearchCompany && scope != SearchPrivate {
		return nil, fmt.Errorf("%w: unknown search scope %q", shared.ErrValidation, scope)
	}

	results := []SearchResult{}
	if scope != SearchPrivate {
		all, err := s.repo.Company(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range all[code] {
			if m.Deleted {
				continue
			}
			if strings.Contains(strings.ToLower(m.Message), needle) || strings.Contains(strings.ToLower(m.FromName), needle) {
				results = append(results, SearchResult{Type: "company_chat", Message: m, Context: "Company Chat"})
			}
		}
	}
	if scope != SearchCompany {
		private, err := s.repo.Private(ctx)
		if err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(private))
		for key := range private {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			other, ok := shared.PairOther(key, username)
			if !ok {
				continue
			}
			for _, m := range private[key] {
				if !m.Deleted && strings.Contains(strings.ToLower(m.Message), needle) {
					results = append(results, SearchResult{Type: "private_chat", Message: m, Context: "Private Chat with " + other})
				}
			}
		}
	}
	return results, nil
}

func checkText(text, messageType string) (string, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", fmt.Errorf("%w: message required", shared.ErrValidation)
	}
	if err := moderation.Check(text); err != nil {
		return "", "", err
	}
	switch messageType {
	case "":
		messageType = TypeText
	case TypeText, TypeCode, TypeLink:
	default:
		return "", "", fmt.Errorf("%w: unknown message type %q", shared.ErrValidation, messageType)
	}
	return text, messageType, nil
}
