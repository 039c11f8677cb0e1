package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 3, 5, 17, 42, 10, 99, loc)
	require.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, loc), StartOfDay(ts))
}

func TestRound1AndClamp(t *testing.T) {
	require.Equal(t, 3.6, Round1(3.5999999999999996))
	require.Equal(t, 5.0, Round1(4.96))
	require.Equal(t, 12.0, Clamp(14.4, 0, 12))
	require.Equal(t, 0.0, Clamp(-1, 0, 12))
	require.Equal(t, 7.5, Clamp(7.5, 0, 12))
}
