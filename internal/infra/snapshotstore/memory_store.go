// Package snapshotstore keeps submission snapshots between an estimate and a training
// run.
package snapshotstore

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yanqian/solarcast/internal/domain/prediction"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: gocache.New(gocache.NoExpiration, 5*time.Minute)}
}

// Save stores the snapshot; a non-positive ttl never expires.
func (s *MemoryStore) Save(_ context.Context, snapshot prediction.Snapshot, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.items.Set(snapshot.ID, snapshot, ttl)
	return nil
}

// Get implements prediction.SnapshotStore.
func (s *MemoryStore) Get(_ context.Context, id string) (prediction.Snapshot, bool, error) {
	if id == "" {
		return prediction.Snapshot{}, false, nil
	}
	v, ok := s.items.Get(id)
	if !ok {
		return prediction.Snapshot{}, false, nil
	}
	return v.(prediction.Snapshot), true, nil
}

var _ prediction.SnapshotStore = (*MemoryStore)(nil)
