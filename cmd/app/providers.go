package main

import (
	"context"
	"crypto/tls"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/solarcast/internal/domain/features"
	"github.com/yanqian/solarcast/internal/domain/prediction"
	"github.com/yanqian/solarcast/internal/domain/solar"
	"github.com/yanqian/solarcast/internal/infra/config"
	"github.com/yanqian/solarcast/internal/infra/ml"
	"github.com/yanqian/solarcast/internal/infra/modelcache"
	"github.com/yanqian/solarcast/internal/infra/openmeteo"
	"github.com/yanqian/solarcast/internal/infra/openweather"
	"github.com/yanqian/solarcast/internal/infra/ratelimit"
	"github.com/yanqian/solarcast/internal/infra/snapshotstore"
	"github.com/yanqian/solarcast/internal/infra/weathercache"
	"github.com/yanqian/solarcast/pkg/metrics"
)

func providePredictionConfig(cfg *config.Config) prediction.Config {
	return prediction.Config{
		ForecastDays:       cfg.Weather.ForecastDays,
		DisplayDays:        cfg.Weather.DisplayDays,
		HistoryDays:        cfg.Weather.HistoryDays,
		ForecastCorrection: cfg.Weather.CorrectionFactor,
		DefaultLanguage:    solar.ParseLanguage(cfg.Defaults.Language, solar.English),
		SearchLimit:        cfg.Geocoding.SearchLimit,
		MaxSearchLimit:     cfg.Geocoding.MaxSearchLimit,
		MinQueryLength:     cfg.Geocoding.MinQueryLength,
		SnapshotTTL:        cfg.Snapshots.TTL,
		Defaults: features.Defaults{
			Temperature: cfg.Defaults.Temperature,
			Cloudiness:  cfg.Defaults.Cloudiness,
		},
	}
}

func provideMetrics() (*metrics.Metrics, error) {
	return metrics.New(prometheus.NewRegistry())
}

func provideGeocoder(cfg *config.Config, m *metrics.Metrics) *openweather.Client {
	return openweather.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.APIKey, cfg.Geocoding.Timeout, m)
}

func provideGeocodeLimiter(cfg *config.Config) *ratelimit.SlidingWindow {
	return ratelimit.NewSlidingWindow(cfg.Geocoding.RateLimit.Window, cfg.Geocoding.RateLimit.MaxRequests)
}

func provideOpenMeteoClient(cfg *config.Config, m *metrics.Metrics) *openmeteo.Client {
	return openmeteo.NewClient(openmeteo.Config{
		ForecastURL: cfg.Weather.ForecastURL,
		ArchiveURL:  cfg.Weather.ArchiveURL,
		Timeout:     cfg.Weather.Timeout,
	}, m)
}

func provideWeatherCache(cfg *config.Config, client *openmeteo.Client, logger *slog.Logger) *weathercache.Cache {
	return weathercache.New(client, client, weathercache.Config{
		ForecastTTL: cfg.Weather.ForecastCacheTTL,
		ArchiveTTL:  cfg.Weather.ArchiveCacheTTL,
	}, logger)
}

func provideTrainer(cfg *config.Config, logger *slog.Logger) *ml.Trainer {
	return ml.NewTrainer(ml.Config{
		Epochs:          cfg.Training.Epochs,
		BatchSize:       cfg.Training.BatchSize,
		LearningRate:    cfg.Training.LearningRate,
		ValidationSplit: cfg.Training.ValidationSplit,
		Dropout:         cfg.Training.Dropout,
		HiddenUnits:     cfg.Training.HiddenUnits,
		Seed:            cfg.Training.Seed,
	}, logger)
}

func provideModelRegistry(cfg *config.Config) *modelcache.Registry {
	return modelcache.NewRegistry(cfg.Training.ModelTTL)
}

func provideSnapshotStore(cfg *config.Config, logger *slog.Logger) prediction.SnapshotStore {
	valkeyCfg := cfg.Snapshots.Valkey
	if valkeyCfg.Enabled {
		opt, err := buildValkeyOptions(valkeyCfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return snapshotstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return snapshotstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("snapshot valkey store enabled", "addr", valkeyCfg.Addr)
			return snapshotstore.NewValkeyStore(client, valkeyCfg.Prefix)
		}
	}
	return snapshotstore.NewMemoryStore()
}

func buildValkeyOptions(cfg config.ValkeyConfig) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	if cfg.Username != "" {
		opt.Username = cfg.Username
	}
	if cfg.Password != "" {
		opt.Password = cfg.Password
	}
	if cfg.TLS && opt.TLSConfig == nil {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opt, nil
}
