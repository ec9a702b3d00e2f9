package storage

import (
	"context"
	"sort"
	"sync"

	cerrors "github.com/flaneur2020/card-png/cardpng/errors"
)

// MockStorage is a simple in-memory Storage implementation for tests.
type MockStorage struct {
	mu    sync.RWMutex
	cards map[string][]byte
}

// NewMockStorage constructs an empty MockStorage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		cards: make(map[string][]byte),
	}
}

// ListCards returns descriptors for all stored cards, sorted by name.
func (m *MockStorage) ListCards(ctx context.Context) ([]CardDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	descs := make([]CardDescriptor, 0, len(m.cards))
	for name, data := range m.cards {
		descs = append(descs, CardDescriptor{
			Name: name,
			Size: int64(len(data)),
		})
	}
	sort.Slice(descs, func(i, j int) bool {
		return descs[i].Name < descs[j].Name
	})
	return descs, nil
}

// ReadCard returns a copy of the stored bytes.
func (m *MockStorage) ReadCard(ctx context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.cards[name]
	if !ok {
		return nil, cerrors.NewCardNotFoundError(name)
	}
	return append([]byte(nil), data...), nil
}

// WriteCard stores a copy of data under name.
func (m *MockStorage) WriteCard(ctx context.Context, name string, data []byte) error {
	m.AddCard(name, data)
	return nil
}

// AddCard adds card content to the mock storage.
func (m *MockStorage) AddCard(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cards[name] = append([]byte(nil), data...)
}
