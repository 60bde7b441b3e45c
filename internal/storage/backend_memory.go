package storage

import (
	"context"
	"fmt"
	"sync"

	"sentinela/pkg/platform/sentinel"
)

// MemoryBackend keeps snapshots in a map. It exists for tests and for running
// the core without any durable storage configured.
type MemoryBackend struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

func (b *MemoryBackend) Put(_ context.Context, key string, blob []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]byte, len(blob))
	copy(cp, blob)
	b.blobs[key] = cp
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	blob, ok := b.blobs[key]
	if !ok {
		return nil, fmt.Errorf("snapshot %s: %w", key, sentinel.ErrNotFound)
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	return cp, nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, key)
	return nil
}
