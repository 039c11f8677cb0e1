package solar

import (
	"strings"

	apperrors "github.com/yanqian/solarcast/pkg/errors"
)

// Orientation is the compass direction a roof (and its panels) faces.
type Orientation string

const (
	South     Orientation = "south"
	Southeast Orientation = "southeast"
	Southwest Orientation = "southwest"
	East      Orientation = "east"
	West      Orientation = "west"
	North     Orientation = "north"
)

// Orientations lists the supported values in display order.
var Orientations = []Orientation{South, Southeast, Southwest, East, West, North}

var orientationFactors = map[Orientation]float64{
	South:     1.0,
	Southeast: 0.9,
	Southwest: 0.9,
	East:      0.75,
	West:      0.75,
	North:     0.5,
}

// Factor returns the relative output versus a south-facing panel.
// Unrecognized orientations count as south.
func (o Orientation) Factor() float64 {
	if f, ok := orientationFactors[o]; ok {
		return f
	}
	return 1.0
}

// Known reports whether o is one of the six supported orientations.
func (o Orientation) Known() bool {
	_, ok := orientationFactors[o]
	return ok
}

// ParseOrientation normalizes user input. Empty input means south; anything else is kept
// verbatim (lowercased) so Factor can apply the default.
func ParseOrientation(raw string) Orientation {
	clean := strings.ToLower(strings.TrimSpace(raw))
	if clean == "" {
		return South
	}
	return Orientation(clean)
}

// PanelParams describes the installation being estimated.
type PanelParams struct {
	Area        float64     `json:"area"`
	Efficiency  float64     `json:"efficiency"`
	Orientation Orientation `json:"orientation"`
}

// Validate enforces the estimator preconditions.
func (p PanelParams) Validate() error {
	if !(p.Area > 0) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "panel area must be greater than 0", nil)
	}
	if !(p.Efficiency >= 0 && p.Efficiency <= 1) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "efficiency must be between 0 and 1", nil)
	}
	return nil
}

// SunHoursDay is one input row for the estimator.
type SunHoursDay struct {
	Label    string
	SunHours float64
}

// DailyEnergyRecord is one row of the output series.
type DailyEnergyRecord struct {
	Day               string      `json:"day"`
	SunHours          float64     `json:"sunHours"`
	Energy            int64       `json:"energy"`
	Orientation       Orientation `json:"orientation"`
	OrientationFactor float64     `json:"orientationFactor"`
}

// Statistics aggregates a displayed series.
type Statistics struct {
	TotalWh         int64 `json:"totalWh"`
	AveragePerDayWh int64 `json:"averagePerDayWh"`
	MaxWh           int64 `json:"maxWh"`
}
