// Package modelcache keeps trained regressors addressable for a limited time.
package modelcache

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/yanqian/solarcast/internal/domain/prediction"
)

// Registry stores models under random handles with a sliding TTL.
type Registry struct {
	items *gocache.Cache
	ttl   time.Duration
	newID func() string
}

// NewRegistry builds a registry whose entries expire ttl after their last lookup.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{items: gocache.New(ttl, ttl), ttl: ttl, newID: uuid.NewString}
}

// Register implements prediction.ModelRegistry.
func (r *Registry) Register(m prediction.Model) string {
	id := r.newID()
	r.items.Set(id, m, r.ttl)
	return id
}

// Lookup implements prediction.ModelRegistry.
func (r *Registry) Lookup(id string) (prediction.Model, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := r.items.Get(id)
	if !ok {
		return nil, false
	}
	m := v.(prediction.Model)
	r.items.Set(id, m, r.ttl)
	return m, true
}

// Len reports the number of live models.
func (r *Registry) Len() int {
	return r.items.ItemCount()
}

var _ prediction.ModelRegistry = (*Registry)(nil)
