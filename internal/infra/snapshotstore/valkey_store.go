package snapshotstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/solarcast/internal/domain/prediction"
)

// ValkeyStore persists snapshots in a Valkey-compatible database so several instances
// can share them.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "solarcast"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, id string) (prediction.Snapshot, bool, error) {
	if id == "" {
		return prediction.Snapshot{}, false, nil
	}
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(id)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return prediction.Snapshot{}, false, nil
		}
		return prediction.Snapshot{}, false, err
	}
	var snapshot prediction.Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return prediction.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, snapshot prediction.Snapshot, ttl time.Duration) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.key(snapshot.ID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) key(id string) string {
	return fmt.Sprintf("%s:snapshot:%s", s.prefix, id)
}

var _ prediction.SnapshotStore = (*ValkeyStore)(nil)
