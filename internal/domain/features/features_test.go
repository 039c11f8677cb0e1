package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/solarcast/pkg/util"
)

func ptr(v float64) *float64 { return &v }

func TestToFeatureVector(t *testing.T) {
	obs := Observation{
		Date:        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Temperature: ptr(40),
		Cloudiness:  ptr(25),
	}
	v := ToFeatureVector(obs, DefaultFallbacks)
	require.Equal(t, 1.0, v[0])
	require.Equal(t, 1.0, v[1]) // leap year: day 365 (0-based)
	require.Equal(t, 0.25, v[2])
	require.Equal(t, 1.0, v[3])

	jan := ToFeatureVector(Observation{Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Temperature: ptr(-20), Cloudiness: ptr(0)}, DefaultFallbacks)
	require.Equal(t, Vector{0, 0, 0, 0}, jan)
}

func TestToFeatureVectorDefaults(t *testing.T) {
	v := ToFeatureVector(Observation{Date: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}, DefaultFallbacks)
	require.InDelta(t, 5.0/11, v[0], 1e-12)
	require.InDelta(t, 166.0/365, v[1], 1e-12)
	require.InDelta(t, 0.5, v[2], 1e-12)
	require.InDelta(t, 0.5, v[3], 1e-12)

	custom := ToFeatureVector(Observation{Date: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)}, Defaults{Temperature: 25, Cloudiness: 80})
	require.InDelta(t, 0.8, custom[2], 1e-12)
	require.InDelta(t, 0.75, custom[3], 1e-12)
}

func TestToFeatureVectorZeroIsNotMissing(t *testing.T) {
	v := ToFeatureVector(Observation{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Temperature: ptr(0), Cloudiness: ptr(0)}, DefaultFallbacks)
	require.Equal(t, 0.0, v[2])
	require.InDelta(t, 20.0/60, v[3], 1e-12)
}

func TestToFeatureVectorClampsOutOfDomain(t *testing.T) {
	v := ToFeatureVector(Observation{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Temperature: ptr(55), Cloudiness: ptr(130)}, DefaultFallbacks)
	for i, component := range v {
		require.GreaterOrEqual(t, component, 0.0, i)
		require.LessOrEqual(t, component, 1.0, i)
	}
}

// Dividing by 24 and multiplying back is exact in real arithmetic, but float64 rounds
// h/24 first, so some inputs (0.21 is the first on a 0.01 grid) come back one ulp off.
// The round trip is therefore exact up to one ulp, and exact after display rounding.
func TestTargetRoundTrip(t *testing.T) {
	for i := 0; i <= 2400; i++ {
		h := float64(i) / 100
		got := FromModelOutput(ToTrainingTarget(h), HistoricalClamp)
		ulp := math.Nextafter(h, math.Inf(1)) - h
		require.LessOrEqual(t, math.Abs(got-h), ulp, "h=%v", h)
	}
	for i := 0; i <= 240; i++ {
		h := float64(i) / 10
		require.Equal(t, util.Round1(h), util.Round1(FromModelOutput(ToTrainingTarget(h), HistoricalClamp)), "h=%v", h)
	}
	for _, h := range []float64{0, 6, 12, 24} {
		require.Equal(t, h, FromModelOutput(ToTrainingTarget(h), HistoricalClamp))
	}
	require.Equal(t, 0.5, ToTrainingTarget(12))
}

func TestFromModelOutputClamp(t *testing.T) {
	require.Equal(t, 12.0, FromModelOutput(0.75, DisplayClamp))
	require.Equal(t, 18.0, FromModelOutput(0.75, HistoricalClamp))
	require.Equal(t, 0.0, FromModelOutput(-0.1, DisplayClamp))
	require.Equal(t, 24.0, FromModelOutput(1.2, HistoricalClamp))
}

func TestSunHoursFromSunshineSeconds(t *testing.T) {
	require.InDelta(t, 3.6, SunHoursFromSunshineSeconds(21600, ForecastCorrection, DisplayClamp), 1e-9)
	require.Equal(t, 6.0, SunHoursFromSunshineSeconds(21600, ArchiveCorrection, HistoricalClamp))
	require.Equal(t, 12.0, SunHoursFromSunshineSeconds(60000, ArchiveCorrection, DisplayClamp))
	require.Equal(t, 0.0, SunHoursFromSunshineSeconds(0, ForecastCorrection, DisplayClamp))
}

func TestSunHoursFromCloudiness(t *testing.T) {
	for m := 0; m < 12; m++ {
		require.Equal(t, MonthlyBaseline[m], SunHoursFromCloudiness(0, m), m)
		require.Equal(t, 1.0, SunHoursFromCloudiness(100, m), m)

		prev := SunHoursFromCloudiness(0, m)
		for c := 1.0; c <= 100; c++ {
			cur := SunHoursFromCloudiness(c, m)
			require.LessOrEqual(t, cur, prev, "month %d cloudiness %v", m, c)
			require.GreaterOrEqual(t, cur, 1.0)
			require.LessOrEqual(t, cur, 12.0)
			prev = cur
		}
	}
	require.Equal(t, 4.5, SunHoursFromCloudiness(50, 5))
}
