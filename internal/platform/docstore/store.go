// Package docstore persists whole JSON documents, one per logical collection.
//
// Every Save replaces the complete document. There is no locking and no
// version check: when two callers load the same document and both save, the
// later write wins and the earlier one is lost.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Collection names a single stored document.
type Collection string

// Known collections.
const (
	Users         Collection = "users"
	Companies     Collection = "companies"
	Notifications Collection = "notifications"
	CompanyChat   Collection = "company-chat"
	PrivateChat   Collection = "private-chat"
	Pins          Collection = "pins"
	Files         Collection = "files"
	PrivateFiles  Collection = "private-files"
	Calendar      Collection = "calendar"
	Polls         Collection = "polls"
	Projects      Collection = "projects"
	TaskComments  Collection = "task-comments"
	Sessions      Collection = "sessions"
	Performance   Collection = "performance"
)

const userDataPrefix = "user:"

// UserData returns the per-user document holding tasks and settings.
func UserData(username string) Collection {
	return Collection(userDataPrefix + username)
}

var (
	// ErrInvalidCollection is returned for empty collection names.
	ErrInvalidCollection = errors.New("docstore: invalid collection")
	// ErrInvalidDocument is returned when a document is not a JSON object.
	ErrInvalidDocument = errors.New("docstore: invalid document")
)

// emptyDocument is written on the first read of a missing collection.
var emptyDocument = []byte("{}")

// Store loads and saves whole documents.
type Store interface {
	// Load returns the document, creating an empty one if it does not exist yet.
	Load(ctx context.Context, c Collection) ([]byte, error)
	// Save replaces the document.
	Save(ctx context.Context, c Collection, doc []byte) error
}

func validate(c Collection) error {
	if strings.TrimSpace(string(c)) == "" {
		return ErrInvalidCollection
	}
	return nil
}

func validateDocument(doc []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(doc, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

// Read loads a collection and decodes it into T.
func Read[T any](ctx context.Context, s Store, c Collection) (T, error) {
	var out T
	raw, err := s.Load(ctx, c)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("docstore: decode %s: %w", c, err)
	}
	return out, nil
}

// Write encodes v and replaces the collection.
func Write[T any](ctx context.Context, s Store, c Collection, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", c, err)
	}
	return s.Save(ctx, c, raw)
}

// ReadMap loads a document keyed by string and never returns a nil map.
func ReadMap[V any](ctx context.Context, s Store, c Collection) (map[string]V, error) {
	out, err := Read[map[string]V](ctx, s, c)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = make(map[string]V)
	}
	return out, nil
}

// ReadField decodes a single top-level field of a document into dst. A missing
// field leaves dst untouched.
func ReadField(ctx context.Context, s Store, c Collection, field string, dst any) error {
	fields, err := Read[map[string]json.RawMessage](ctx, s, c)
	if err != nil {
		return err
	}
	raw, ok := fields[field]
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("docstore: decode %s.%s: %w", c, field, err)
	}
	return nil
}

// WriteField replaces one top-level field and keeps the others as stored.
func WriteField(ctx context.Context, s Store, c Collection, field string, v any) error {
	fields, err := Read[map[string]json.RawMessage](ctx, s, c)
	if err != nil {
		return err
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("docstore: encode %s.%s: %w", c, field, err)
	}
	fields[field] = raw
	return Write(ctx, s, c, fields)
}
