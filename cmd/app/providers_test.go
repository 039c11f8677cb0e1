package main

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/solarcast/internal/domain/solar"
	"github.com/yanqian/solarcast/internal/infra/config"
	"github.com/yanqian/solarcast/internal/infra/snapshotstore"
)

func TestProvidePredictionConfig(t *testing.T) {
	cfg := &config.Config{
		Weather: config.WeatherConfig{
			ForecastDays:     7,
			DisplayDays:      5,
			HistoryDays:      180,
			CorrectionFactor: 0.6,
		},
		Geocoding: config.GeocodingConfig{SearchLimit: 5, MaxSearchLimit: 10, MinQueryLength: 2},
		Snapshots: config.SnapshotsConfig{TTL: time.Hour},
		Defaults:  config.DefaultsConfig{Language: "cs", Temperature: 12, Cloudiness: 40},
	}

	got := providePredictionConfig(cfg)
	require.Equal(t, 7, got.ForecastDays)
	require.Equal(t, 5, got.DisplayDays)
	require.Equal(t, 180, got.HistoryDays)
	require.Equal(t, 0.6, got.ForecastCorrection)
	require.Equal(t, solar.Czech, got.DefaultLanguage)
	require.Equal(t, 10, got.MaxSearchLimit)
	require.Equal(t, time.Hour, got.SnapshotTTL)
	require.Equal(t, 12.0, got.Defaults.Temperature)
	require.Equal(t, 40.0, got.Defaults.Cloudiness)
}

func TestBuildValkeyOptions(t *testing.T) {
	opt, err := buildValkeyOptions(config.ValkeyConfig{Addr: "localhost:6379", Username: "u", Password: "p", TLS: true})
	require.NoError(t, err)
	require.Equal(t, []string{"localhost:6379"}, opt.InitAddress)
	require.Equal(t, "u", opt.Username)
	require.Equal(t, "p", opt.Password)
	require.NotNil(t, opt.TLSConfig)

	opt, err = buildValkeyOptions(config.ValkeyConfig{Addr: "redis://:secret@cache:6380/0"})
	require.NoError(t, err)
	require.Equal(t, []string{"cache:6380"}, opt.InitAddress)
	require.Equal(t, "secret", opt.Password)
	require.Nil(t, opt.TLSConfig)
}

func TestProvideSnapshotStoreDefaultsToMemory(t *testing.T) {
	store := provideSnapshotStore(&config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, ok := store.(*snapshotstore.MemoryStore)
	require.True(t, ok)
}
