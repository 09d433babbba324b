package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/ids"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// SendPrivate sends a direct message. Both users must belong to the same
// company.
func (s *Service) SendPrivate(ctx context.Context, from, to, text, messageType string) (Message, error) {
	text, messageType, err := checkText(text, messageType)
	if err != nil {
		return Message{}, err
	}
	if from == to {
		return Message{}, fmt.Errorf("%w: cannot message yourself", shared.ErrValidation)
	}
	sender, err := s.people.Get(ctx, from)
	if err != nil {
		return Message{}, err
	}
	same, err := s.directory.SameCompany(ctx, from, to)
	if err != nil {
		return Message{}, err
	}
	if !same {
		return Message{}, fmt.Errorf("%w: %s is not in your company", shared.ErrPermissionDenied, to)
	}

	all, err := s.repo.Private(ctx)
	if err != nil {
		return Message{}, err
	}
	msg := Message{
		ID:           ids.New(),
		FromUsername: from,
		FromName:     sender.FullName,
		ToUsername:   to,
		Message:      text,
		MessageType:  messageType,
		Timestamp:    s.now().UTC(),
	}
	key := shared.PairKey(from, to)
	all[key] = append(all[key], msg)
	if err := s.repo.SavePrivate(ctx, all); err != nil {
		return Message{}, err
	}
	if _, err := s.notifier.SendChat(ctx, to, sender.FullName, text, notifications.PriorityNormal); err != nil {
		return msg, fmt.Errorf("chat: notify %s: %w", to, err)
	}
	return msg, nil
}

// Conversation returns up to limit live messages between a and b.
func (s *Service) Conversation(ctx context.Context, a, b string, limit int) ([]Message, error) {
	all, err := s.repo.Private(ctx)
	if err != nil {
		return nil, err
	}
	return live(all[shared.PairKey(a, b)], limit), nil
}

// MarkPrivateRead marks a message sent to username by other as read.
func (s *Service) MarkPrivateRead(ctx context.Context, username, other, id string) error {
	all, err := s.repo.Private(ctx)
	if err != nil {
		return err
	}
	list := all[shared.PairKey(username, other)]
	i := indexOf(list, id)
	if i < 0 || list[i].ToUsername != username {
		return fmt.Errorf("message %s: %w", id, shared.ErrNotFound)
	}
	if list[i].Read {
		return nil
	}
	list[i].Read = true
	return s.repo.SavePrivate(ctx, all)
}

// Conversations summarises the private chats of username, most recent first.
func (s *Service) Conversations(ctx context.Context, username string) ([]Conversation, error) {
	all, err := s.repo.Private(ctx)
	if err != nil {
		return nil, err
	}
	out := []Conversation{}
	for key, list := range all {
		other, ok := shared.PairOther(key, username)
		if !ok {
			continue
		}
		visible := live(list, len(list))
		if len(visible) == 0 {
			continue
		}
		last := visible[len(visible)-1]
		unread := 0
		for _, m := range visible {
			if m.ToUsername == username && !m.Read {
				unread++
			}
		}
		name := other
		if u, err := s.people.Get(ctx, other); err == nil {
			name = u.FullName
		} else {
			s.logger.Warn("chat: resolve conversation partner", slog.String("username", other), slog.Any("error", err))
		}
		out = append(out, Conversation{
			OtherUser:     other,
			OtherUserName: name,
			LastMessage:   last.Message,
			LastTimestamp: last.Timestamp,
			UnreadCount:   unread,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LastTimestamp.Equal(out[j].LastTimestamp) {
			return out[i].LastTimestamp.After(out[j].LastTimestamp)
		}
		return out[i].OtherUser < out[j].OtherUser
	})
	return out, nil
}
