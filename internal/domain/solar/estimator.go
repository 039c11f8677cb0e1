package solar

import (
	"math"
	"time"

	"github.com/yanqian/solarcast/pkg/util"
)

// DefaultSunHours is the simulated series used when no forecast is available.
var DefaultSunHours = []float64{5, 6, 7, 6, 5}

// Estimate converts a sun-hours series into daily energy records, one per input day.
// p must already have passed Validate.
func Estimate(p PanelParams, series []SunHoursDay) []DailyEnergyRecord {
	factor := p.Orientation.Factor()
	records := make([]DailyEnergyRecord, 0, len(series))
	for _, day := range series {
		energy := p.Area * p.Efficiency * day.SunHours * factor * 1000
		records = append(records, DailyEnergyRecord{
			Day:               day.Label,
			SunHours:          util.Round1(day.SunHours),
			Energy:            int64(math.Round(energy)),
			Orientation:       p.Orientation,
			OrientationFactor: factor,
		})
	}
	return records
}

// EstimateWithFallback behaves like Estimate but substitutes DefaultSeries when series is
// empty. The second return value reports whether the simulated series was used.
func EstimateWithFallback(p PanelParams, series []SunHoursDay, today time.Time, lang Language) ([]DailyEnergyRecord, bool) {
	if len(series) > 0 {
		return Estimate(p, series), false
	}
	return Estimate(p, DefaultSeries(today, lang)), true
}

// DefaultSeries builds the simulated five-day series starting at today.
func DefaultSeries(today time.Time, lang Language) []SunHoursDay {
	series := make([]SunHoursDay, 0, len(DefaultSunHours))
	for i, hours := range DefaultSunHours {
		series = append(series, SunHoursDay{
			Label:    DayLabel(today.AddDate(0, 0, i), i, lang),
			SunHours: hours,
		})
	}
	return series
}

// Summarize computes the totals shown next to the chart.
func Summarize(records []DailyEnergyRecord) Statistics {
	if len(records) == 0 {
		return Statistics{}
	}
	var stats Statistics
	for i, rec := range records {
		stats.TotalWh += rec.Energy
		if i == 0 || rec.Energy > stats.MaxWh {
			stats.MaxWh = rec.Energy
		}
	}
	stats.AveragePerDayWh = int64(math.Round(float64(stats.TotalWh) / float64(len(records))))
	return stats
}
