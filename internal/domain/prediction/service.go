package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yanqian/solarcast/internal/domain/features"
	"github.com/yanqian/solarcast/internal/domain/solar"
	apperrors "github.com/yanqian/solarcast/pkg/errors"
	"github.com/yanqian/solarcast/pkg/metrics"
	"github.com/yanqian/solarcast/pkg/util"
)

// Service exposes the estimate, autocomplete and regressor flows.
type Service interface {
	Estimate(ctx context.Context, req EstimateRequest) (EstimateResponse, error)
	Suggest(ctx context.Context, req SuggestRequest) (SuggestResponse, error)
	Train(ctx context.Context, req TrainRequest, progress ProgressFunc) (TrainResponse, error)
	TrainStream(ctx context.Context, req TrainRequest) (<-chan TrainEvent, error)
	Predict(ctx context.Context, req PredictRequest) (PredictResponse, error)
}

// Dependencies groups the collaborators of the service. Daylight is optional.
type Dependencies struct {
	Geocoder  Geocoder
	Forecast  ForecastProvider
	Archive   ArchiveProvider
	Limiter   Limiter
	Trainer   Trainer
	Models    ModelRegistry
	Snapshots SnapshotStore
	Daylight  DaylightCalculator
}

type service struct {
	cfg         Config
	geocoder    Geocoder
	forecast    ForecastProvider
	archive     ArchiveProvider
	limiter     Limiter
	trainer     Trainer
	models      ModelRegistry
	snapshots   SnapshotStore
	daylight    DaylightCalculator
	generations *generations
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

// NewService wires up the prediction domain.
func NewService(cfg Config, deps Dependencies, m *metrics.Metrics, logger *slog.Logger) Service {
	return &service{
		cfg:         cfg,
		geocoder:    deps.Geocoder,
		forecast:    deps.Forecast,
		archive:     deps.Archive,
		limiter:     deps.Limiter,
		trainer:     deps.Trainer,
		models:      deps.Models,
		snapshots:   deps.Snapshots,
		daylight:    deps.Daylight,
		generations: newGenerations(time.Hour),
		metrics:     m,
		logger:      logger.With("component", "prediction.service"),
		now:         util.NowUTC,
		newID:       uuid.NewString,
	}
}

func (s *service) Estimate(ctx context.Context, req EstimateRequest) (EstimateResponse, error) {
	lang := solar.ParseLanguage(req.Language, s.cfg.DefaultLanguage)
	panel := solar.PanelParams{
		Area:        req.Area,
		Efficiency:  req.Efficiency,
		Orientation: solar.ParseOrientation(req.Orientation),
	}
	if err := panel.Validate(); err != nil {
		return EstimateResponse{}, err
	}
	city := strings.TrimSpace(req.City)
	hasCoords := req.Lat != nil && req.Lon != nil
	if city == "" && !hasCoords {
		return EstimateResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "city or coordinates are required", nil)
	}
	if hasCoords && city == "" {
		if *req.Lat < -90 || *req.Lat > 90 || *req.Lon < -180 || *req.Lon > 180 {
			return EstimateResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "coordinates out of range", nil)
		}
	}

	key := estimateKey(strings.TrimSpace(req.ClientID))
	gen := s.generations.begin(key)
	today := util.StartOfDay(s.now())

	resp, snapshot, err := s.liveEstimate(ctx, panel, lang, city, req.Lat, req.Lon)
	if err != nil {
		s.logger.Warn("live estimate failed, using simulated data", "city", city, "error", err)
		resp = s.simulatedEstimate(panel, lang, today)
		snapshot = nil
	}
	if !s.generations.current(key, gen) {
		s.logger.Info("estimate superseded", "clientId", req.ClientID)
		return EstimateResponse{}, apperrors.Wrap(apperrors.CodeSuperseded, "a newer estimate was requested", nil)
	}

	if snapshot != nil {
		if saveErr := s.snapshots.Save(ctx, *snapshot, s.cfg.SnapshotTTL); saveErr != nil {
			s.logger.Error("snapshot save failed", "error", saveErr)
		} else {
			resp.SubmissionID = snapshot.ID
		}
	}
	s.metrics.IncEstimate(resp.Source)
	return resp, nil
}

func (s *service) liveEstimate(ctx context.Context, panel solar.PanelParams, lang solar.Language, city string, lat, lon *float64) (EstimateResponse, *Snapshot, error) {
	loc, err := s.locate(ctx, city, lat, lon, lang)
	if err != nil {
		return EstimateResponse{}, nil, err
	}
	weather, err := s.forecast.Forecast(ctx, loc.Lat, loc.Lon, s.cfg.ForecastDays)
	if err != nil {
		return EstimateResponse{}, nil, err
	}
	if len(weather) == 0 {
		return EstimateResponse{}, nil, apperrors.Wrap(apperrors.CodeUpstreamHTTP, "forecast returned no days", nil)
	}
	if s.cfg.DisplayDays > 0 && len(weather) > s.cfg.DisplayDays {
		weather = weather[:s.cfg.DisplayDays]
	}

	series := make([]solar.SunHoursDay, 0, len(weather))
	days := make([]ForecastDay, 0, len(weather))
	snapDays := make([]SnapshotDay, 0, len(weather))
	for i, day := range weather {
		label := solar.DayLabel(day.Date, i, lang)
		hours := s.baselineSunHours(day)
		series = append(series, solar.SunHoursDay{Label: label, SunHours: hours})
		fd := ForecastDay{
			Date:        day.Date.Format(time.DateOnly),
			Label:       label,
			Temperature: day.Temperature,
			Cloudiness:  day.Cloudiness,
			SunHours:    util.Round1(hours),
		}
		if s.daylight != nil {
			if length, ok := s.daylight.DayLength(loc.Lat, loc.Lon, day.Date); ok {
				rounded := util.Round1(length)
				fd.DaylightHours = &rounded
			}
		}
		days = append(days, fd)
		snapDays = append(snapDays, SnapshotDay{
			Date:        day.Date,
			Label:       label,
			Temperature: day.Temperature,
			Cloudiness:  day.Cloudiness,
			SunHours:    hours,
		})
	}

	records := solar.Estimate(panel, series)
	snapshot := &Snapshot{
		ID:        s.newID(),
		Location:  loc,
		Language:  lang,
		Panel:     panel,
		Days:      snapDays,
		CreatedAt: s.now(),
	}
	return EstimateResponse{
		Location:         &loc,
		Language:         lang,
		Panel:            panel,
		OrientationLabel: panel.Orientation.Label(lang),
		Forecast:         days,
		Records:          records,
		Statistics:       solar.Summarize(records),
		Source:           SourceForecast,
	}, snapshot, nil
}

func (s *service) simulatedEstimate(panel solar.PanelParams, lang solar.Language, today time.Time) EstimateResponse {
	records, _ := solar.EstimateWithFallback(panel, nil, today, lang)
	return EstimateResponse{
		Language:         lang,
		Panel:            panel,
		OrientationLabel: panel.Orientation.Label(lang),
		Records:          records,
		Statistics:       solar.Summarize(records),
		Simulated:        true,
		Warning:          solar.FallbackWarning(lang),
		Source:           SourceSimulated,
	}
}

func (s *service) locate(ctx context.Context, city string, lat, lon *float64, lang solar.Language) (Location, error) {
	if city == "" {
		name := fmt.Sprintf("%.4f, %.4f", *lat, *lon)
		return Location{Lat: *lat, Lon: *lon, Name: name, DisplayName: name}, nil
	}
	if !s.limiter.Allow() {
		s.metrics.IncRateLimited("geocode")
		return Location{}, apperrors.Wrap(apperrors.CodeRateLimited, "geocoding rate limit reached", nil)
	}
	return s.geocoder.Resolve(ctx, city, lang)
}

// baselineSunHours prefers the measured sunshine duration and falls back to the
// cloud-cover heuristic when the provider has none.
func (s *service) baselineSunHours(day DailyWeather) float64 {
	if day.SunshineSeconds != nil {
		return features.SunHoursFromSunshineSeconds(*day.SunshineSeconds, s.cfg.ForecastCorrection, features.DisplayClamp)
	}
	cloudiness := s.cfg.Defaults.Cloudiness
	if day.Cloudiness != nil {
		cloudiness = *day.Cloudiness
	}
	return features.SunHoursFromCloudiness(cloudiness, int(day.Date.Month())-1)
}

func (s *service) Suggest(ctx context.Context, req SuggestRequest) (SuggestResponse, error) {
	empty := SuggestResponse{Suggestions: []Location{}}
	query := strings.TrimSpace(req.Query)
	minLen := s.cfg.MinQueryLength
	if minLen <= 0 {
		minLen = 2
	}
	if utf8.RuneCountInString(query) < minLen {
		return empty, nil
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.SearchLimit
	}
	if s.cfg.MaxSearchLimit > 0 && limit > s.cfg.MaxSearchLimit {
		limit = s.cfg.MaxSearchLimit
	}
	if !s.limiter.Allow() {
		s.metrics.IncRateLimited("suggest")
		s.logger.Debug("suggest skipped by rate limiter", "query", query)
		return empty, nil
	}
	lang := solar.ParseLanguage(req.Language, s.cfg.DefaultLanguage)
	locations, err := s.geocoder.Search(ctx, query, limit, lang)
	if err != nil {
		s.logger.Warn("location search failed", "query", query, "error", err)
		return empty, nil
	}
	if len(locations) == 0 {
		return empty, nil
	}
	return SuggestResponse{Suggestions: locations}, nil
}

func (s *service) Train(ctx context.Context, req TrainRequest, progress ProgressFunc) (TrainResponse, error) {
	snapshot, err := s.lookupSnapshot(ctx, req.SubmissionID)
	if err != nil {
		return TrainResponse{}, err
	}
	return s.train(ctx, snapshot, progress)
}

func (s *service) TrainStream(ctx context.Context, req TrainRequest) (<-chan TrainEvent, error) {
	snapshot, err := s.lookupSnapshot(ctx, req.SubmissionID)
	if err != nil {
		return nil, err
	}

	out := make(chan TrainEvent)
	go func() {
		defer close(out)
		send := func(ev TrainEvent) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		res, trainErr := s.train(ctx, snapshot, func(p Progress) {
			send(TrainEvent{Type: EventProgress, Progress: &p})
		})
		if trainErr != nil {
			if ctx.Err() != nil {
				return
			}
			send(TrainEvent{Type: EventFailed, Error: toEventError(trainErr)})
			return
		}
		send(TrainEvent{Type: EventResult, Result: &res})
	}()

	return out, nil
}

func (s *service) lookupSnapshot(ctx context.Context, id string) (Snapshot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Snapshot{}, apperrors.Wrap(apperrors.CodeInvalidInput, "submissionId is required", nil)
	}
	snapshot, ok, err := s.snapshots.Get(ctx, id)
	if err != nil {
		return Snapshot{}, apperrors.Wrap(apperrors.CodeSubmissionNotFound, "submission could not be loaded", err)
	}
	if !ok {
		return Snapshot{}, apperrors.Wrap(apperrors.CodeSubmissionNotFound, "submission not found or expired", nil)
	}
	return snapshot, nil
}

func (s *service) train(ctx context.Context, snapshot Snapshot, progress ProgressFunc) (TrainResponse, error) {
	key := trainKey(snapshot.ID)
	gen := s.generations.begin(key)

	history, err := s.archive.History(ctx, snapshot.Location.Lat, snapshot.Location.Lon, s.cfg.HistoryDays)
	if err != nil {
		if apperrors.CodeOf(err) != "" {
			return TrainResponse{}, err
		}
		return TrainResponse{}, apperrors.Wrap(apperrors.CodeUpstreamHTTP, "historical weather request failed", err)
	}
	samples := BuildSamples(history, s.cfg.Defaults)
	if len(samples) == 0 {
		return TrainResponse{}, apperrors.Wrap(apperrors.CodeModelTraining, "no usable historical observations", nil)
	}
	s.logger.Info("training started", "submissionId", snapshot.ID, "samples", len(samples))

	report := func(p Progress) {
		if progress != nil && s.generations.current(key, gen) {
			progress(p)
		}
	}
	started := time.Now()
	trained, err := s.trainer.Train(ctx, samples, report)
	s.metrics.ObserveTraining(err, time.Since(started))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return TrainResponse{}, err
		}
		return TrainResponse{}, apperrors.Wrap(apperrors.CodeModelTraining, "model training failed", err)
	}
	if !s.generations.current(key, gen) {
		s.logger.Info("training superseded", "submissionId", snapshot.ID)
		return TrainResponse{}, apperrors.Wrap(apperrors.CodeSuperseded, "a newer training run was started", nil)
	}

	modelID := s.models.Register(trained.Model)
	s.logger.Info("training finished", "submissionId", snapshot.ID, "modelId", modelID, "loss", trained.Loss)
	return TrainResponse{
		SubmissionID: snapshot.ID,
		ModelID:      modelID,
		Location:     snapshot.Location,
		Samples:      len(samples),
		Epochs:       trained.Epochs,
		FinalLoss:    trained.Loss,
		FinalValLoss: trained.ValLoss,
		Rows:         CompareDays(snapshot.Days, trained.Model, s.cfg.Defaults),
	}, nil
}

func (s *service) Predict(_ context.Context, req PredictRequest) (PredictResponse, error) {
	modelID := strings.TrimSpace(req.ModelID)
	model, ok := s.models.Lookup(modelID)
	if !ok {
		return PredictResponse{}, apperrors.Wrap(apperrors.CodeModelNotFound, "model not found or expired", nil)
	}
	date := util.StartOfDay(s.now())
	if raw := strings.TrimSpace(req.Date); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return PredictResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date must be formatted as YYYY-MM-DD", err)
		}
		date = parsed
	}
	vec := features.ToFeatureVector(features.Observation{
		Date:        date,
		Temperature: req.Temperature,
		Cloudiness:  req.Cloudiness,
	}, s.cfg.Defaults)
	hours := features.FromModelOutput(model.Predict(vec), features.DisplayClamp)
	return PredictResponse{
		ModelID:  modelID,
		Date:     date.Format(time.DateOnly),
		SunHours: util.Round1(hours),
	}, nil
}

// BuildSamples labels archive days with their observed sun hours. Days without a
// sunshine figure carry no label and are skipped.
func BuildSamples(history []DailyWeather, defaults features.Defaults) []Sample {
	samples := make([]Sample, 0, len(history))
	for _, day := range history {
		if day.SunshineSeconds == nil {
			continue
		}
		hours := features.SunHoursFromSunshineSeconds(*day.SunshineSeconds, features.ArchiveCorrection, features.HistoricalClamp)
		samples = append(samples, Sample{
			Input: features.ToFeatureVector(features.Observation{
				Date:        day.Date,
				Temperature: day.Temperature,
				Cloudiness:  day.Cloudiness,
			}, defaults),
			Target: features.ToTrainingTarget(hours),
		})
	}
	return samples
}

// CompareDays predicts each stored day and sets it against the baseline.
func CompareDays(days []SnapshotDay, model Model, defaults features.Defaults) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(days))
	for _, day := range days {
		vec := features.ToFeatureVector(features.Observation{
			Date:        day.Date,
			Temperature: day.Temperature,
			Cloudiness:  day.Cloudiness,
		}, defaults)
		ai := util.Round1(features.FromModelOutput(model.Predict(vec), features.DisplayClamp))
		base := util.Round1(day.SunHours)
		rows = append(rows, ComparisonRow{
			Day:        day.Label,
			SunHours:   base,
			AISunHours: ai,
			Difference: util.Round1(ai - base),
		})
	}
	return rows
}

func toEventError(err error) *EventError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return &EventError{Code: appErr.Code, Message: appErr.Message}
	}
	return &EventError{Code: "internal_error", Message: "unexpected error"}
}
