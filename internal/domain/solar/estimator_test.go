package solar

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/solarcast/pkg/errors"
)

func TestOrientationFactor(t *testing.T) {
	tests := []struct {
		orientation Orientation
		want        float64
	}{
		{South, 1.0},
		{Southeast, 0.9},
		{Southwest, 0.9},
		{East, 0.75},
		{West, 0.75},
		{North, 0.5},
		{Orientation("northwest"), 1.0},
		{Orientation(""), 1.0},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, tc.orientation.Factor(), string(tc.orientation))
	}
}

func TestParseOrientation(t *testing.T) {
	require.Equal(t, South, ParseOrientation(""))
	require.Equal(t, North, ParseOrientation("  North "))
	require.Equal(t, Orientation("up"), ParseOrientation("UP"))
	require.False(t, ParseOrientation("UP").Known())
}

func TestPanelParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  PanelParams
		wantErr bool
	}{
		{"valid", PanelParams{Area: 10, Efficiency: 0.2}, false},
		{"efficiency bounds inclusive", PanelParams{Area: 1, Efficiency: 1}, false},
		{"zero efficiency", PanelParams{Area: 1, Efficiency: 0}, false},
		{"zero area", PanelParams{Area: 0, Efficiency: 0.2}, true},
		{"negative area", PanelParams{Area: -3, Efficiency: 0.2}, true},
		{"efficiency above one", PanelParams{Area: 10, Efficiency: 1.2}, true},
		{"efficiency negative", PanelParams{Area: 10, Efficiency: -0.1}, true},
		{"nan area", PanelParams{Area: math.NaN(), Efficiency: 0.2}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.params.Validate()
			if tt.wantErr {
				require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEstimateFormula(t *testing.T) {
	series := []SunHoursDay{{"a", 0}, {"b", 3.26}, {"c", 7.5}, {"d", 11.99}, {"e", 4.04}}
	for _, o := range append(Orientations, Orientation("bogus")) {
		for _, area := range []float64{0.5, 10, 37.3} {
			for _, eff := range []float64{0, 0.15, 0.22, 1} {
				p := PanelParams{Area: area, Efficiency: eff, Orientation: o}
				records := Estimate(p, series)
				require.Len(t, records, len(series))
				for i, rec := range records {
					want := int64(math.Round(area * eff * series[i].SunHours * o.Factor() * 1000))
					require.Equal(t, want, rec.Energy)
					require.Equal(t, series[i].Label, rec.Day)
					require.Equal(t, math.Round(series[i].SunHours*10)/10, rec.SunHours)
					require.Equal(t, o, rec.Orientation)
					require.Equal(t, o.Factor(), rec.OrientationFactor)
				}
			}
		}
	}
}

func TestEstimateScenarios(t *testing.T) {
	south := Estimate(PanelParams{Area: 10, Efficiency: 0.2, Orientation: South}, []SunHoursDay{{Label: "Today 1.7.", SunHours: 5}})
	require.Equal(t, []DailyEnergyRecord{{
		Day:               "Today 1.7.",
		SunHours:          5.0,
		Energy:            10000,
		Orientation:       South,
		OrientationFactor: 1.0,
	}}, south)

	north := Estimate(PanelParams{Area: 10, Efficiency: 0.2, Orientation: North}, []SunHoursDay{{SunHours: 5}})
	require.Len(t, north, 1)
	require.Equal(t, int64(5000), north[0].Energy)
	require.Equal(t, 0.5, north[0].OrientationFactor)
}

func TestEstimateWithFallback(t *testing.T) {
	// Thursday 17 October 2024.
	today := time.Date(2024, 10, 17, 9, 30, 0, 0, time.UTC)
	p := PanelParams{Area: 10, Efficiency: 0.2, Orientation: South}

	records, simulated := EstimateWithFallback(p, nil, today, English)
	require.True(t, simulated)
	require.Len(t, records, 5)

	hours := make([]float64, 0, len(records))
	labels := make([]string, 0, len(records))
	for _, rec := range records {
		hours = append(hours, rec.SunHours)
		labels = append(labels, rec.Day)
	}
	require.Equal(t, []float64{5, 6, 7, 6, 5}, hours)
	require.Equal(t, []string{"Today 17.10.", "Tomorrow 18.10.", "Sat 19.10.", "Sun 20.10.", "Mon 21.10."}, labels)
	require.Equal(t, int64(14000), records[2].Energy)

	live, simulated := EstimateWithFallback(p, []SunHoursDay{{Label: "x", SunHours: 2}}, today, English)
	require.False(t, simulated)
	require.Len(t, live, 1)
}

func TestDefaultSeriesCzechAcrossMonthEnd(t *testing.T) {
	today := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)
	series := DefaultSeries(today, Czech)
	labels := []string{}
	for _, d := range series {
		labels = append(labels, d.Label)
	}
	require.Equal(t, []string{"Dnes 30.1.", "Zítra 31.1.", "Čt 1.2.", "Pá 2.2.", "So 3.2."}, labels)
}

func TestSummarize(t *testing.T) {
	require.Equal(t, Statistics{}, Summarize(nil))

	stats := Summarize([]DailyEnergyRecord{{Energy: 1000}, {Energy: 2500}, {Energy: 1001}})
	require.Equal(t, int64(4501), stats.TotalWh)
	require.Equal(t, int64(1500), stats.AveragePerDayWh)
	require.Equal(t, int64(2500), stats.MaxWh)
}
