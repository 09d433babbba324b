package docstore

import (
	"context"
	"sync"
)

// Memory keeps documents in process memory. It backs tests and the
// "memory" driver used for local development.
type Memory struct {
	mu   sync.RWMutex
	docs map[Collection][]byte
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[Collection][]byte)}
}

// Load returns a copy of the stored document.
func (m *Memory) Load(ctx context.Context, c Collection) ([]byte, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	m.mu.RLock()
	doc, ok := m.docs[c]
	m.mu.RUnlock()
	if ok {
		return clone(doc), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.docs[c]; ok {
		return clone(doc), nil
	}
	m.docs[c] = clone(emptyDocument)
	return clone(emptyDocument), nil
}

// Save replaces the stored document.
func (m *Memory) Save(ctx context.Context, c Collection, doc []byte) error {
	if err := validate(c); err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[c] = clone(doc)
	m.mu.Unlock()
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var _ Store = (*Memory)(nil)
