package chat

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/teamhub/internal/platform/ids"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Pin pins a message in the company. Company messages must exist and be
// live; a message can be pinned once.
func (s *Service) Pin(ctx context.Context, code, messageID, pinnedBy, scope string) (Pin, error) {
	if scope == "" {
		scope = ScopeCompany
	}
	switch scope {
	case ScopeCompany:
		all, err := s.repo.Company(ctx)
		if err != nil {
			return Pin{}, err
		}
		list := all[code]
		if i := indexOf(list, messageID); i < 0 || list[i].Deleted {
			return Pin{}, fmt.Errorf("message %s: %w", messageID, shared.ErrNotFound)
		}
	case ScopePrivate:
	default:
		return Pin{}, fmt.Errorf("%w: unknown pin scope %q", shared.ErrValidation, scope)
	}

	pins, err := s.repo.Pins(ctx)
	if err != nil {
		return Pin{}, err
	}
	for _, p := range pins[code] {
		if p.MessageID == messageID {
			return Pin{}, fmt.Errorf("message %s is already pinned: %w", messageID, shared.ErrAlreadyExists)
		}
	}
	pin := Pin{
		ID:          ids.New(),
		MessageID:   messageID,
		MessageType: scope,
		PinnedBy:    pinnedBy,
		PinnedAt:    s.now().UTC(),
	}
	pins[code] = append(pins[code], pin)
	if err := s.repo.SavePins(ctx, pins); err != nil {
		return Pin{}, err
	}
	return pin, nil
}

// Unpin removes the pin on messageID.
func (s *Service) Unpin(ctx context.Context, code, messageID string) error {
	pins, err := s.repo.Pins(ctx)
	if err != nil {
		return err
	}
	list := pins[code]
	for i, p := range list {
		if p.MessageID == messageID {
			pins[code] = append(list[:i], list[i+1:]...)
			return s.repo.SavePins(ctx, pins)
		}
	}
	return fmt.Errorf("pin for %s: %w", messageID, shared.ErrNotFound)
}

// Pinned lists the pins of a company in pin order.
func (s *Service) Pinned(ctx context.Context, code string) ([]Pin, error) {
	pins, err := s.repo.Pins(ctx)
	if err != nil {
		return nil, err
	}
	out := pins[code]
	if out == nil {
		out = []Pin{}
	}
	return out, nil
}
