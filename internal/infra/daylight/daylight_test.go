package daylight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDayLengthPrague(t *testing.T) {
	c := NewCalculator()

	autumn, ok := c.DayLength(50.0755, 14.4378, time.Date(2024, 10, 17, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.InDelta(t, 10.8, autumn, 0.3)

	summer, ok := c.DayLength(50.0755, 14.4378, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.InDelta(t, 16.3, summer, 0.3)
	require.Greater(t, summer, autumn)
}

func TestDayLengthIsCached(t *testing.T) {
	c := NewCalculator()
	date := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	first, ok := c.DayLength(0, 0, date)
	require.True(t, ok)
	require.InDelta(t, 12.1, first, 0.3)
	require.Equal(t, 1, c.cache.ItemCount())

	second, _ := c.DayLength(0, 0, date.Add(5*time.Hour))
	require.Equal(t, first, second)
	require.Equal(t, 1, c.cache.ItemCount())
}
