package prediction

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// generations hands out monotonically increasing tokens per key so a request can tell
// whether a newer one for the same key started while it was in flight.
type generations struct {
	mu    sync.Mutex
	items *gocache.Cache
}

func newGenerations(ttl time.Duration) *generations {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &generations{items: gocache.New(ttl, 2*ttl)}
}

// begin registers a new run for key. An empty key is never superseded.
func (g *generations) begin(key string) uint64 {
	if key == "" {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	next := uint64(1)
	if v, ok := g.items.Get(key); ok {
		next = v.(uint64) + 1
	}
	g.items.Set(key, next, gocache.DefaultExpiration)
	return next
}

func (g *generations) current(key string, gen uint64) bool {
	if key == "" {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.items.Get(key)
	if !ok {
		return true
	}
	return v.(uint64) == gen
}

func estimateKey(clientID string) string {
	if clientID == "" {
		return ""
	}
	return "estimate:" + clientID
}

func trainKey(submissionID string) string {
	return "train:" + submissionID
}
