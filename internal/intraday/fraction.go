package intraday

import (
	"fmt"
	"strings"
	"time"
)

// DayFraction 영업시간 중 경과 비율 [0, 1]
// Hours are interpreted in now's location. <= open → 0, >= close → 1, linear between.
func DayFraction(now time.Time, openHour, closeHour int) float64 {
	y, m, d := now.Date()
	openAt := time.Date(y, m, d, openHour, 0, 0, 0, now.Location())
	closeAt := time.Date(y, m, d, closeHour, 0, 0, 0, now.Location())

	if !now.After(openAt) {
		return 0
	}
	if !now.Before(closeAt) {
		return 1
	}

	window := closeAt.Sub(openAt)
	if window < time.Second {
		window = time.Second
	}
	return clamp01(float64(now.Sub(openAt)) / float64(window))
}

// ResolveNow picks the instant treated as "now" for an intraday forecast on target:
// an explicit asOf, else the latest observation recorded for target, else target's opening time.
func ResolveNow(target time.Time, asOf *time.Time, latest time.Time, hasLatest bool, openHour int, loc *time.Location) time.Time {
	if asOf != nil {
		return asOf.In(loc)
	}
	if hasLatest {
		return latest.In(loc)
	}
	y, m, d := target.Date()
	return time.Date(y, m, d, openHour, 0, 0, 0, loc)
}

// ParseAsOf parses an ISO timestamp; one without an offset is read in loc
func ParseAsOf(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid as_of timestamp %q (use ISO 8601)", s)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
