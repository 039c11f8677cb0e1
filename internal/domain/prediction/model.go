package prediction

import (
	"time"

	"github.com/yanqian/solarcast/internal/domain/features"
	"github.com/yanqian/solarcast/internal/domain/solar"
)

// Config wires runtime knobs for the prediction domain.
type Config struct {
	ForecastDays       int
	DisplayDays        int
	HistoryDays        int
	ForecastCorrection float64
	DefaultLanguage    solar.Language
	SearchLimit        int
	MaxSearchLimit     int
	MinQueryLength     int
	SnapshotTTL        time.Duration
	Defaults           features.Defaults
}

// Location is a resolved place.
type Location struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Country     string  `json:"country,omitempty"`
	State       string  `json:"state,omitempty"`
}

// DailyWeather is one provider day. Nil fields were null upstream.
type DailyWeather struct {
	Date            time.Time
	Temperature     *float64
	Cloudiness      *float64
	SunshineSeconds *float64
}

// EstimateRequest is the submitted panel form.
type EstimateRequest struct {
	City        string   `json:"city"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	Area        float64  `json:"area"`
	Efficiency  float64  `json:"efficiency"`
	Orientation string   `json:"orientation"`
	Language    string   `json:"language,omitempty"`
	ClientID    string   `json:"clientId,omitempty"`
}

// ForecastDay is a displayed forecast day with its baseline sun hours.
type ForecastDay struct {
	Date          string   `json:"date"`
	Label         string   `json:"label"`
	Temperature   *float64 `json:"temperature,omitempty"`
	Cloudiness    *float64 `json:"cloudiness,omitempty"`
	SunHours      float64  `json:"sunHours"`
	DaylightHours *float64 `json:"daylightHours,omitempty"`
}

// EstimateResponse is returned for both live and simulated estimates.
type EstimateResponse struct {
	SubmissionID     string                    `json:"submissionId,omitempty"`
	Location         *Location                 `json:"location,omitempty"`
	Language         solar.Language            `json:"language"`
	Panel            solar.PanelParams         `json:"panel"`
	OrientationLabel string                    `json:"orientationLabel"`
	Forecast         []ForecastDay             `json:"forecast,omitempty"`
	Records          []solar.DailyEnergyRecord `json:"records"`
	Statistics       solar.Statistics          `json:"statistics"`
	Simulated        bool                      `json:"simulated"`
	Warning          string                    `json:"warning,omitempty"`
	Source           string                    `json:"source"`
}

// SuggestRequest drives location autocomplete.
type SuggestRequest struct {
	Query    string
	Limit    int
	Language string
}

// SuggestResponse always carries a non-nil list.
type SuggestResponse struct {
	Suggestions []Location `json:"suggestions"`
}

// Snapshot is the cached state of one successful live estimate.
type Snapshot struct {
	ID        string            `json:"id"`
	Location  Location          `json:"location"`
	Language  solar.Language    `json:"language"`
	Panel     solar.PanelParams `json:"panel"`
	Days      []SnapshotDay     `json:"days"`
	CreatedAt time.Time         `json:"createdAt"`
}

// SnapshotDay is one forecast day kept for the model comparison.
type SnapshotDay struct {
	Date        time.Time `json:"date"`
	Label       string    `json:"label"`
	Temperature *float64  `json:"temperature,omitempty"`
	Cloudiness  *float64  `json:"cloudiness,omitempty"`
	SunHours    float64   `json:"sunHours"`
}

// TrainRequest starts a regressor training for a stored submission.
type TrainRequest struct {
	SubmissionID string `json:"submissionId"`
	ClientID     string `json:"clientId,omitempty"`
}

// Sample is one labelled training example.
type Sample struct {
	Input  features.Vector
	Target float64
}

// Progress is reported once per completed epoch.
type Progress struct {
	Epoch       int      `json:"epoch"`
	TotalEpochs int      `json:"totalEpochs"`
	Loss        float64  `json:"loss"`
	ValLoss     *float64 `json:"valLoss,omitempty"`
}

// ProgressFunc receives training progress. It may be nil.
type ProgressFunc func(Progress)

// TrainedModel is the outcome of a successful training run.
type TrainedModel struct {
	Model   Model
	Epochs  int
	Loss    float64
	ValLoss *float64
}

// ComparisonRow sets the model's sun hours against the baseline for one day.
type ComparisonRow struct {
	Day        string  `json:"day"`
	SunHours   float64 `json:"sunHours"`
	AISunHours float64 `json:"aiSunHours"`
	Difference float64 `json:"difference"`
}

// TrainResponse is the result of a training run.
type TrainResponse struct {
	SubmissionID string          `json:"submissionId"`
	ModelID      string          `json:"modelId"`
	Location     Location        `json:"location"`
	Samples      int             `json:"samples"`
	Epochs       int             `json:"epochs"`
	FinalLoss    float64         `json:"finalLoss"`
	FinalValLoss *float64        `json:"finalValLoss,omitempty"`
	Rows         []ComparisonRow `json:"rows"`
}

// Train event types.
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventFailed   = "error"
)

// EventError is the error payload of a streamed training run.
type EventError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TrainEvent is one frame of a streamed training run.
type TrainEvent struct {
	Type     string         `json:"type"`
	Progress *Progress      `json:"progress,omitempty"`
	Result   *TrainResponse `json:"result,omitempty"`
	Error    *EventError    `json:"error,omitempty"`
}

// PredictRequest asks a trained model for one day.
type PredictRequest struct {
	ModelID     string   `json:"modelId"`
	Date        string   `json:"date"`
	Temperature *float64 `json:"temperature,omitempty"`
	Cloudiness  *float64 `json:"cloudiness,omitempty"`
}

// PredictResponse carries the predicted sun hours.
type PredictResponse struct {
	ModelID  string  `json:"modelId"`
	Date     string  `json:"date"`
	SunHours float64 `json:"sunHours"`
}

// Estimate sources.
const (
	SourceForecast  = "forecast"
	SourceSimulated = "simulated"
)
