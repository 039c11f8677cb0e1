// Package daylight computes the astronomical day length shown next to each forecast day.
package daylight

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sj14/astral/pkg/astral"
)

// Calculator caches day lengths per location and date.
type Calculator struct {
	cache *gocache.Cache
}

// NewCalculator builds a calculator whose results are kept for a day.
func NewCalculator() *Calculator {
	return &Calculator{cache: gocache.New(24*time.Hour, time.Hour)}
}

// DayLength returns the hours between sunrise and sunset. ok is false when the sun does
// not rise or set on that date (polar day or night).
func (c *Calculator) DayLength(lat, lon float64, date time.Time) (float64, bool) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, time.UTC)
	key := fmt.Sprintf("%.4f:%.4f:%s", lat, lon, day.Format(time.DateOnly))
	if v, ok := c.cache.Get(key); ok {
		hours := v.(float64)
		return hours, hours >= 0
	}
	hours, err := dayLength(astral.Observer{Latitude: lat, Longitude: lon}, day)
	if err != nil {
		hours = -1
	}
	c.cache.Set(key, hours, gocache.DefaultExpiration)
	return hours, hours >= 0
}

func dayLength(observer astral.Observer, day time.Time) (float64, error) {
	sunrise, err := astral.Sunrise(observer, day)
	if err != nil {
		return 0, fmt.Errorf("sunrise: %w", err)
	}
	sunset, err := astral.Sunset(observer, day)
	if err != nil {
		return 0, fmt.Errorf("sunset: %w", err)
	}
	length := sunset.Sub(sunrise)
	if length < 0 {
		length += 24 * time.Hour
	}
	return length.Hours(), nil
}
