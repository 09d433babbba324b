package files

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/odyssey-erp/teamhub/internal/moderation"
	"github.com/odyssey-erp/teamhub/internal/notifications"
	"github.com/odyssey-erp/teamhub/internal/platform/ids"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Service handles company and private file sharing.
type Service struct {
	repo      *Repository
	directory Directory
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
func NewService(repo *Repository, directory Directory, notifier Notifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{repo: repo, directory: directory, notifier: notifier, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload stores a file for the whole company and notifies the other members.
func (s *Service) Upload(ctx context.Context, code, uploadedBy string, up Upload) (File, error) {
	f, err := s.newFile(uploadedBy, up)
	if err != nil {
		return File{}, err
	}
	all, err := s.repo.Company(ctx)
	if err != nil {
		return File{}, err
	}
	all[code] = append(all[code], f)
	if err := s.repo.SaveCompany(ctx, all); err != nil {
		return File{}, err
	}
	s.logger.Info("file uploaded", slog.String("company", code), slog.String("file_id", f.ID), slog.Int("size", f.Size))

	members, err := s.directory.Usernames(ctx, code)
	if err != nil {
		s.logger.Error("files: list members for notification", slog.String("company", code), slog.Any("error", err))
		return f.metadata(), nil
	}
	for _, member := range members {
		if member == uploadedBy {
			continue
		}
		if _, err := s.notifier.SendFile(ctx, member, f.Name, "shared", uploadedBy, notifications.PriorityNormal); err != nil {
			s.logger.Error("files: notify member", slog.String("to", member), slog.Any("error", err))
		}
	}
	return f.metadata(), nil
}

// List returns the company's files without content.
func (s *Service) List(ctx context.Context, code string) ([]File, error) {
	all, err := s.repo.Company(ctx)
	if err != nil {
		return nil, err
	}
	return metadataOf(all[code]), nil
}

// Download returns a company file with its content and counts the download.
func (s *Service) Download(ctx context.Context, code, id string) (File, error) {
	all, err := s.repo.Company(ctx)
	if err != nil {
		return File{}, err
	}
	list := all[code]
	i := indexOf(list, id)
	if i < 0 {
		return File{}, fmt.Errorf("file %s: %w", id, shared.ErrNotFound)
	}
	list[i].Downloads++
	if err := s.repo.SaveCompany(ctx, all); err != nil {
		return File{}, err
	}
	return list[i], nil
}

// UploadPrivate shares a file with one colleague.
func (s *Service) UploadPrivate(ctx context.Context, from, to string, up Upload) (File, error) {
	if from == to {
		return File{}, fmt.Errorf("%w: cannot share a file with yourself", shared.ErrValidation)
	}
	same, err := s.directory.SameCompany(ctx, from, to)
	if err != nil {
		return File{}, err
	}
	if !same {
		return File{}, fmt.Errorf("%w: %s is not in your company", shared.ErrPermissionDenied, to)
	}
	f, err := s.newFile(from, up)
	if err != nil {
		return File{}, err
	}
	f.UploadedTo = to
	all, err := s.repo.Private(ctx)
	if err != nil {
		return File{}, err
	}
	key := shared.PairKey(from, to)
	all[key] = append(all[key], f)
	if err := s.repo.SavePrivate(ctx, all); err != nil {
		return File{}, err
	}
	if _, err := s.notifier.SendFile(ctx, to, f.Name, "shared privately", from, notifications.PriorityNormal); err != nil {
		return f.metadata(), fmt.Errorf("files: notify %s: %w", to, err)
	}
	return f.metadata(), nil
}

// ListPrivate returns the files shared between a and b.
func (s *Service) ListPrivate(ctx context.Context, a, b string) ([]File, error) {
	all, err := s.repo.Private(ctx)
	if err != nil {
		return nil, err
	}
	return metadataOf(all[shared.PairKey(a, b)]), nil
}

// SharedWith returns every private file username sent or received, newest
// first.
func (s *Service) SharedWith(ctx context.Context, username string) ([]Shared, error) {
	all, err := s.repo.Private(ctx)
	if err != nil {
		return nil, err
	}
	out := []Shared{}
	for key, list := range all {
		other, ok := shared.PairOther(key, username)
		if !ok {
			continue
		}
		for _, f := range list {
			out = append(out, Shared{File: f.metadata(), OtherUser: other})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DownloadPrivate returns a private file and counts the download. Only the
// two users of the pair can reach it.
func (s *Service) DownloadPrivate(ctx context.Context, username, other, id string) (File, error) {
	all, err := s.repo.Private(ctx)
	if err != nil {
		return File{}, err
	}
	key := shared.PairKey(username, other)
	list := all[key]
	i := indexOf(list, id)
	if i < 0 {
		return File{}, fmt.Errorf("file %s: %w", id, shared.ErrNotFound)
	}
	list[i].Downloads++
	if err := s.repo.SavePrivate(ctx, all); err != nil {
		return File{}, err
	}
	return list[i], nil
}

// DeletePrivate removes a private file. Only the uploader may delete it.
func (s *Service) DeletePrivate(ctx context.Context, username, other, id string) error {
	all, err := s.repo.Private(ctx)
	if err != nil {
		return err
	}
	key := shared.PairKey(username, other)
	list := all[key]
	i := indexOf(list, id)
	if i < 0 {
		return fmt.Errorf("file %s: %w", id, shared.ErrNotFound)
	}
	if list[i].UploadedBy != username {
		return fmt.Errorf("%w: only the uploader can delete a file", shared.ErrPermissionDenied)
	}
	all[key] = append(list[:i], list[i+1:]...)
	return s.repo.SavePrivate(ctx, all)
}

func (s *Service) newFile(uploadedBy string, up Upload) (File, error) {
	name := filepath.Base(strings.TrimSpace(up.Name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return File{}, fmt.Errorf("%w: file name required", shared.ErrValidation)
	}
	if len(up.Content) == 0 {
		return File{}, fmt.Errorf("%w: file is empty", shared.ErrValidation)
	}
	if len(up.Content) > MaxSize {
		return File{}, fmt.Errorf("%w: file exceeds %d bytes", shared.ErrValidation, MaxSize)
	}
	if err := moderation.Check(name); err != nil {
		return File{}, err
	}
	typ := strings.TrimSpace(up.Type)
	if typ == "" || typ == "application/octet-stream" {
		typ = detectType(name, up.Content)
	}
	return File{
		ID:         ids.New(),
		Name:       name,
		Type:       typ,
		Size:       len(up.Content),
		UploadedBy: uploadedBy,
		UploadedAt: s.now().UTC(),
		Content:    append([]byte(nil), up.Content...),
	}, nil
}
