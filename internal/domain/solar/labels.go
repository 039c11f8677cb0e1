package solar

import (
	"fmt"
	"strings"
	"time"
)

// Language selects the label table.
type Language string

const (
	English Language = "en"
	Czech   Language = "cs"
)

type labelTable struct {
	today    string
	tomorrow string
	weekdays [7]string // indexed by time.Weekday
	orients  map[Orientation]string
	fallback string
}

var labelTables = map[Language]labelTable{
	English: {
		today:    "Today",
		tomorrow: "Tomorrow",
		weekdays: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		orients: map[Orientation]string{
			South: "South", Southeast: "Southeast", Southwest: "Southwest",
			East: "East", West: "West", North: "North",
		},
		fallback: "Failed to load weather data. Using simulated data.",
	},
	Czech: {
		today:    "Dnes",
		tomorrow: "Zítra",
		weekdays: [7]string{"Ne", "Po", "Út", "St", "Čt", "Pá", "So"},
		orients: map[Orientation]string{
			South: "Jih", Southeast: "Jihovýchod", Southwest: "Jihozápad",
			East: "Východ", West: "Západ", North: "Sever",
		},
		fallback: "Nepodařilo se načíst data o počasí. Používám simulovaná data.",
	},
}

// ParseLanguage maps a language tag ("cs", "en-GB", ...) to a supported Language,
// returning def when the tag is not supported.
func ParseLanguage(tag string, def Language) Language {
	clean := strings.ToLower(strings.TrimSpace(tag))
	if idx := strings.IndexAny(clean, "-_"); idx > 0 {
		clean = clean[:idx]
	}
	if _, ok := labelTables[Language(clean)]; ok {
		return Language(clean)
	}
	if _, ok := labelTables[def]; ok {
		return def
	}
	return English
}

func tableFor(lang Language) labelTable {
	if t, ok := labelTables[lang]; ok {
		return t
	}
	return labelTables[English]
}

// DayLabel renders the label of the day at position index of a series:
// "Today d.m.", "Tomorrow d.m.", then "<weekday> d.m.".
func DayLabel(date time.Time, index int, lang Language) string {
	t := tableFor(lang)
	dayMonth := fmt.Sprintf("%d.%d.", date.Day(), int(date.Month()))
	switch index {
	case 0:
		return t.today + " " + dayMonth
	case 1:
		return t.tomorrow + " " + dayMonth
	default:
		return t.weekdays[date.Weekday()] + " " + dayMonth
	}
}

// Label returns the localized orientation name, or the raw value when unknown.
func (o Orientation) Label(lang Language) string {
	if name, ok := tableFor(lang).orients[o]; ok {
		return name
	}
	return string(o)
}

// FallbackWarning is the user-visible notice attached to simulated estimates.
func FallbackWarning(lang Language) string {
	return tableFor(lang).fallback
}
