package prediction

import (
	"context"
	"time"

	"github.com/yanqian/solarcast/internal/domain/features"
	"github.com/yanqian/solarcast/internal/domain/solar"
)

// Geocoder resolves place names.
type Geocoder interface {
	Resolve(ctx context.Context, query string, lang solar.Language) (Location, error)
	Search(ctx context.Context, query string, limit int, lang solar.Language) ([]Location, error)
}

// ForecastProvider returns upcoming days starting today.
type ForecastProvider interface {
	Forecast(ctx context.Context, lat, lon float64, days int) ([]DailyWeather, error)
}

// ArchiveProvider returns observed days ending yesterday.
type ArchiveProvider interface {
	History(ctx context.Context, lat, lon float64, days int) ([]DailyWeather, error)
}

// Limiter gates outbound geocoding calls.
type Limiter interface {
	Allow() bool
}

// Model maps a feature vector to a normalized sun-hours value.
type Model interface {
	Predict(v features.Vector) float64
}

// Trainer fits a fresh model.
type Trainer interface {
	Train(ctx context.Context, samples []Sample, progress ProgressFunc) (TrainedModel, error)
}

// ModelRegistry keeps trained models addressable by handle.
type ModelRegistry interface {
	Register(m Model) string
	Lookup(id string) (Model, bool)
}

// SnapshotStore keeps submission snapshots for later training.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot Snapshot, ttl time.Duration) error
	Get(ctx context.Context, id string) (Snapshot, bool, error)
}

// DaylightCalculator reports the astronomical day length in hours.
type DaylightCalculator interface {
	DayLength(lat, lon float64, date time.Time) (float64, bool)
}
