package modelcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/solarcast/internal/domain/features"
)

type constModel float64

func (m constModel) Predict(features.Vector) float64 { return float64(m) }

func TestRegistryRoundTrip(t *testing.T) {
	r := NewRegistry(time.Minute)
	id := r.Register(constModel(0.3))
	require.NotEmpty(t, id)

	m, ok := r.Lookup(id)
	require.True(t, ok)
	require.Equal(t, 0.3, m.Predict(features.Vector{}))
	require.Equal(t, 1, r.Len())

	_, ok = r.Lookup("unknown")
	require.False(t, ok)
	_, ok = r.Lookup("")
	require.False(t, ok)
}

func TestRegistryHandlesAreUnique(t *testing.T) {
	r := NewRegistry(time.Minute)
	a := r.Register(constModel(0.1))
	b := r.Register(constModel(0.2))
	require.NotEqual(t, a, b)
}

func TestRegistryExpires(t *testing.T) {
	r := NewRegistry(20 * time.Millisecond)
	id := r.Register(constModel(0.5))
	require.Eventually(t, func() bool {
		_, ok := r.Lookup(id)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
