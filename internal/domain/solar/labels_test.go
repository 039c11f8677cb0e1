package solar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	require.Equal(t, Czech, ParseLanguage("cs", English))
	require.Equal(t, Czech, ParseLanguage("cs-CZ", English))
	require.Equal(t, English, ParseLanguage("EN_gb", Czech))
	require.Equal(t, Czech, ParseLanguage("de", Czech))
	require.Equal(t, English, ParseLanguage("", Language("xx")))
}

func TestDayLabel(t *testing.T) {
	date := time.Date(2024, 7, 3, 12, 0, 0, 0, time.UTC) // Wednesday
	require.Equal(t, "Today 3.7.", DayLabel(date, 0, English))
	require.Equal(t, "Zítra 3.7.", DayLabel(date, 1, Czech))
	require.Equal(t, "Wed 3.7.", DayLabel(date, 4, English))
	require.Equal(t, "St 3.7.", DayLabel(date, 2, Czech))
	require.Equal(t, "Wed 3.7.", DayLabel(date, 3, Language("fr")))
}

func TestOrientationLabel(t *testing.T) {
	require.Equal(t, "Jihovýchod", Southeast.Label(Czech))
	require.Equal(t, "West", West.Label(English))
	require.Equal(t, "zenith", Orientation("zenith").Label(English))
	require.NotEmpty(t, FallbackWarning(Czech))
}
