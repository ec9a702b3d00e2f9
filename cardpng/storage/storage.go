package storage

import (
	"context"
)

// CardDescriptor describes a card image available in storage.
type CardDescriptor struct {
	Name string // slash-separated path relative to the storage root
	Size int64
}

// Storage abstracts card image enumeration, reads and writes.
type Storage interface {
	ListCards(ctx context.Context) ([]CardDescriptor, error)
	ReadCard(ctx context.Context, name string) ([]byte, error)
	WriteCard(ctx context.Context, name string, data []byte) error
}
