// Package features turns raw weather observations into bounded regression inputs and
// converts model outputs back into sun hours.
package features

import (
	"time"

	"github.com/yanqian/solarcast/pkg/util"
)

const (
	// ForecastCorrection damps the optimistic sunshine figures of forecast providers.
	ForecastCorrection = 0.6
	// ArchiveCorrection leaves observed archive figures untouched.
	ArchiveCorrection = 1.0
	// DisplayClamp bounds sun hours shown for forecast days.
	DisplayClamp = 12.0
	// HistoricalClamp bounds sun hours used as training targets.
	HistoricalClamp = 24.0
)

// MonthlyBaseline holds typical Central-European sun hours per month (January first).
var MonthlyBaseline = [12]float64{2, 3, 4, 6, 7, 8, 8, 7, 5, 4, 2, 2}

// Defaults are the substitutions applied when an observation lacks a field.
type Defaults struct {
	Temperature float64
	Cloudiness  float64
}

// DefaultFallbacks is 10 °C and 50 % cloud cover.
var DefaultFallbacks = Defaults{Temperature: 10, Cloudiness: 50}

// Observation is one day of weather. Nil pointers mean the provider had no value.
type Observation struct {
	Date        time.Time
	Temperature *float64
	Cloudiness  *float64
}

// Vector is the normalized model input: month, day of year, cloudiness, temperature.
type Vector [4]float64

// Slice returns the vector as a fresh slice.
func (v Vector) Slice() []float64 {
	return []float64{v[0], v[1], v[2], v[3]}
}

// ToFeatureVector normalizes an observation, substituting d for missing fields.
func ToFeatureVector(obs Observation, d Defaults) Vector {
	temperature := d.Temperature
	if obs.Temperature != nil {
		temperature = *obs.Temperature
	}
	cloudiness := d.Cloudiness
	if obs.Cloudiness != nil {
		cloudiness = *obs.Cloudiness
	}
	month := float64(obs.Date.Month() - 1)
	dayOfYear := float64(obs.Date.YearDay() - 1)
	return Vector{
		unit(month / 11),
		unit(dayOfYear / 365),
		unit(cloudiness / 100),
		unit((temperature + 20) / 60),
	}
}

// ToTrainingTarget normalizes sun hours in [0,24] to [0,1].
func ToTrainingTarget(sunHours float64) float64 {
	return sunHours / 24
}

// FromModelOutput denormalizes a model output and clamps it to [0, clampMax].
func FromModelOutput(normalized, clampMax float64) float64 {
	return util.Clamp(normalized*24, 0, clampMax)
}

// SunHoursFromSunshineSeconds converts a sunshine duration to corrected, clamped hours.
func SunHoursFromSunshineSeconds(seconds, correction, clampMax float64) float64 {
	return util.Clamp(seconds/3600*correction, 0, clampMax)
}

// SunHoursFromCloudiness estimates sun hours from cloud cover when no sunshine figure is
// available, interpolating from the monthly baseline toward 1 hour at full overcast.
func SunHoursFromCloudiness(cloudiness float64, month int) float64 {
	if month < 0 || month > 11 {
		month = ((month % 12) + 12) % 12
	}
	cover := util.Clamp(cloudiness, 0, 100) / 100
	base := MonthlyBaseline[month]
	return util.Clamp(base*(1-cover)+cover*1, 1, 12)
}

func unit(v float64) float64 {
	return util.Clamp(v, 0, 1)
}
