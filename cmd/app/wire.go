//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/solarcast/internal/bootstrap"
	"github.com/yanqian/solarcast/internal/domain/prediction"
	"github.com/yanqian/solarcast/internal/infra/config"
	"github.com/yanqian/solarcast/internal/infra/daylight"
	"github.com/yanqian/solarcast/internal/infra/ml"
	"github.com/yanqian/solarcast/internal/infra/modelcache"
	"github.com/yanqian/solarcast/internal/infra/openweather"
	"github.com/yanqian/solarcast/internal/infra/ratelimit"
	"github.com/yanqian/solarcast/internal/infra/weathercache"
	httpiface "github.com/yanqian/solarcast/internal/interface/http"
	"github.com/yanqian/solarcast/pkg/logger"
)

var serviceSet = wire.NewSet(
	config.Load,
	logger.New,
	provideMetrics,
	providePredictionConfig,
	provideGeocoder,
	provideGeocodeLimiter,
	provideOpenMeteoClient,
	provideWeatherCache,
	provideTrainer,
	provideModelRegistry,
	provideSnapshotStore,
	daylight.NewCalculator,
	wire.Bind(new(prediction.Geocoder), new(*openweather.Client)),
	wire.Bind(new(prediction.ForecastProvider), new(*weathercache.Cache)),
	wire.Bind(new(prediction.ArchiveProvider), new(*weathercache.Cache)),
	wire.Bind(new(prediction.Limiter), new(*ratelimit.SlidingWindow)),
	wire.Bind(new(prediction.Trainer), new(*ml.Trainer)),
	wire.Bind(new(prediction.ModelRegistry), new(*modelcache.Registry)),
	wire.Bind(new(prediction.DaylightCalculator), new(*daylight.Calculator)),
	wire.Struct(new(prediction.Dependencies), "*"),
	prediction.NewService,
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		serviceSet,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}

func initializeService() (prediction.Service, error) {
	wire.Build(serviceSet)
	return nil, nil
}
