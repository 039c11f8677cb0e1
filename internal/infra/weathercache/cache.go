// Package weathercache sits in front of the weather providers, caching responses and
// collapsing concurrent identical requests into one upstream call.
package weathercache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/yanqian/solarcast/internal/domain/prediction"
)

// Config controls how long each kind of response is reused.
type Config struct {
	ForecastTTL time.Duration
	ArchiveTTL  time.Duration
}

// Cache decorates a forecast and an archive provider.
type Cache struct {
	forecast prediction.ForecastProvider
	archive  prediction.ArchiveProvider
	cfg      Config
	items    *gocache.Cache
	group    singleflight.Group
	logger   *slog.Logger
	now      func() time.Time
}

// New wraps the providers. A zero TTL disables caching for that kind.
func New(forecast prediction.ForecastProvider, archive prediction.ArchiveProvider, cfg Config, logger *slog.Logger) *Cache {
	return &Cache{
		forecast: forecast,
		archive:  archive,
		cfg:      cfg,
		items:    gocache.New(gocache.NoExpiration, 10*time.Minute),
		logger:   logger.With("component", "weathercache"),
		now:      time.Now,
	}
}

// Forecast implements prediction.ForecastProvider.
func (c *Cache) Forecast(ctx context.Context, lat, lon float64, days int) ([]prediction.DailyWeather, error) {
	key := c.key("forecast", lat, lon, days)
	return c.load(ctx, key, c.cfg.ForecastTTL, func(ctx context.Context) ([]prediction.DailyWeather, error) {
		return c.forecast.Forecast(ctx, lat, lon, days)
	})
}

// History implements prediction.ArchiveProvider.
func (c *Cache) History(ctx context.Context, lat, lon float64, days int) ([]prediction.DailyWeather, error) {
	key := c.key("archive", lat, lon, days)
	return c.load(ctx, key, c.cfg.ArchiveTTL, func(ctx context.Context) ([]prediction.DailyWeather, error) {
		return c.archive.History(ctx, lat, lon, days)
	})
}

// key includes the current UTC date so cached windows roll over at midnight.
func (c *Cache) key(kind string, lat, lon float64, days int) string {
	return fmt.Sprintf("%s:%.4f:%.4f:%d:%s", kind, lat, lon, days, c.now().UTC().Format(time.DateOnly))
}

func (c *Cache) load(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) ([]prediction.DailyWeather, error)) ([]prediction.DailyWeather, error) {
	if ttl > 0 {
		if v, ok := c.items.Get(key); ok {
			c.logger.Debug("weather cache hit", "key", key)
			return clone(v.([]prediction.DailyWeather)), nil
		}
	}
	// The shared fetch must outlive any single caller; the HTTP client timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		days, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if ttl > 0 {
			c.items.Set(key, days, ttl)
		}
		return days, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("weather request shared", "key", key)
		}
		return clone(res.Val.([]prediction.DailyWeather)), nil
	}
}

func clone(days []prediction.DailyWeather) []prediction.DailyWeather {
	return append([]prediction.DailyWeather(nil), days...)
}

var (
	_ prediction.ForecastProvider = (*Cache)(nil)
	_ prediction.ArchiveProvider  = (*Cache)(nil)
)
